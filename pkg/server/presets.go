package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridboard/pkg/autocycle"
	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
)

type presetsResponse struct {
	Slots   dashboard.Slots `json:"slots"`
	Current int             `json:"current"`
	Valid   []int           `json:"valid"`
}

type saveRequest struct {
	Name string `json:"name"`
}

type autoCycleBody struct {
	Enabled            bool            `json:"enabled"`
	Interval           config.Duration `json:"interval"`
	Selected           []int           `json:"selected"`
	PauseOnInteraction bool            `json:"pause_on_interaction"`
	ResumeDelay        config.Duration `json:"resume_delay"`
}

type autoCycleResponse struct {
	autoCycleBody
	Running bool  `json:"running"`
	Paused  bool  `json:"paused"`
	Valid   []int `json:"valid"`
	Current int   `json:"current"`
}

type inputRequest struct {
	Kind autocycle.InputKind `json:"kind"`
}

type inputResponse struct {
	Paused bool `json:"paused"`
}

type modalRequest struct {
	Open bool `json:"open"`
}

func slotParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "slot")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidSlot, "invalid preset slot %q", raw)
	}
	return i, errs.ValidateSlot(i)
}

func (s *Server) presets() presetsResponse {
	slots := s.board.Presets()
	return presetsResponse{
		Slots:   slots,
		Current: s.board.Current(),
		Valid:   slots.ValidIndices(nil),
	}
}

func (s *Server) getPresets(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, s.presets())
}

func (s *Server) putPreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var p dashboard.Preset
	if err := decodeBody(r, &p); err != nil {
		handleError(w, r, err)
		return
	}
	for _, wdg := range p.Layout {
		if err := errs.ValidateWidgetID(wdg.ID); err != nil {
			handleError(w, r, err)
			return
		}
	}
	if err := s.board.SetPreset(slot, &p); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.presets())
}

func (s *Server) deletePreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.board.SetPreset(slot, nil); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.presets())
}

func (s *Server) savePreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Name == "" {
		req.Name = "Preset " + strconv.Itoa(slot+1)
	}
	if err := s.board.SavePreset(slot, req.Name); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.presets())
}

func (s *Server) loadPreset(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.board.LoadPreset(slot); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.snapshot())
}

func (s *Server) autoCycle() autoCycleResponse {
	sched := s.board.Scheduler()
	cfg := sched.Config()
	return autoCycleResponse{
		autoCycleBody: autoCycleBody{
			Enabled:            cfg.Enabled,
			Interval:           config.Duration{Duration: cfg.Interval},
			Selected:           cfg.SelectedIndices,
			PauseOnInteraction: cfg.PauseOnInteraction,
			ResumeDelay:        config.Duration{Duration: cfg.ResumeDelay},
		},
		Running: sched.Running(),
		Paused:  sched.Paused(),
		Valid:   sched.ValidIndices(),
		Current: sched.Current(),
	}
}

func (s *Server) getAutoCycle(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, s.autoCycle())
}

func (s *Server) putAutoCycle(w http.ResponseWriter, r *http.Request) {
	var req autoCycleBody
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	err := s.board.ConfigureAutoCycle(autocycle.Config{
		Enabled:            req.Enabled,
		Interval:           req.Interval.Duration,
		SelectedIndices:    req.Selected,
		PauseOnInteraction: req.PauseOnInteraction,
		ResumeDelay:        req.ResumeDelay.Duration,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.autoCycle())
}

func (s *Server) autoCycleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, inputResponse{Paused: s.board.NotifyInput(req.Kind)})
}

func (s *Server) setModal(w http.ResponseWriter, r *http.Request) {
	var req modalRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.board.SetModalOpen(req.Open)
	writeSuccess(w, r, http.StatusOK, s.autoCycle())
}
