package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridboard/pkg/adapter"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/interaction"
	"github.com/matzehuels/gridboard/pkg/layout"
)

type dashboardResponse struct {
	Cols    int                  `json:"cols"`
	Widgets []dashboard.Widget   `json:"widgets"`
	Layout  []adapter.EngineItem `json:"layout"`
	State   string               `json:"state"`
	Gesture string               `json:"gesture,omitempty"`
	Pending bool                 `json:"pending"`
	Preset  int                  `json:"current_preset"`
}

type layoutRequest struct {
	Layout []adapter.EngineItem `json:"layout"`
}

type gestureRequest struct {
	Kind     interaction.GestureKind `json:"kind"`
	WidgetID string                  `json:"widget_id,omitempty"`
	Layout   []adapter.EngineItem    `json:"layout,omitempty"`
	Item     *adapter.EngineItem     `json:"item,omitempty"`
}

type resizeRequest struct {
	W int `json:"w"`
	H int `json:"h"`
}

func (s *Server) snapshot() dashboardResponse {
	ctrl := s.board.Controller()
	return dashboardResponse{
		Cols:    s.board.Cols(),
		Widgets: s.board.Widgets(),
		Layout:  s.board.EngineLayout(),
		State:   ctrl.State().String(),
		Gesture: ctrl.Gesture(),
		Pending: ctrl.Pending(),
		Preset:  s.board.Current(),
	}
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, s.snapshot())
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, s.board.History())
}

func (s *Server) compact(w http.ResponseWriter, r *http.Request) {
	mode, err := layout.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		handleError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid compaction mode"))
		return
	}
	if err := s.board.Compact(mode); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.snapshot())
}

// layoutChanged forwards an engine layout notification into the debounce
// window. The result arrives later on the update stream.
func (s *Server) layoutChanged(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.board.LayoutChanged(req.Layout); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusAccepted, s.snapshot())
}

func (s *Server) gesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Kind != interaction.GestureMove && req.Kind != interaction.GestureResize {
		handleError(w, r, errs.New(errs.ErrCodeInvalidInput, "gesture kind must be %q or %q", interaction.GestureMove, interaction.GestureResize))
		return
	}

	var err error
	switch chi.URLParam(r, "phase") {
	case "start":
		if err = errs.ValidateWidgetID(req.WidgetID); err != nil {
			break
		}
		if req.Kind == interaction.GestureMove {
			err = s.board.DragStart(req.WidgetID)
		} else {
			err = s.board.ResizeStart(req.WidgetID)
		}
	case "stop":
		if req.Item == nil {
			err = errs.New(errs.ErrCodeInvalidInput, "item is required to stop a gesture")
			break
		}
		if req.Kind == interaction.GestureMove {
			err = s.board.DragStop(req.Layout, *req.Item)
		} else {
			err = s.board.ResizeStop(req.Layout, *req.Item)
		}
	default:
		err = errs.New(errs.ErrCodeNotFound, "unknown gesture phase %q", chi.URLParam(r, "phase"))
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.snapshot())
}

func (s *Server) removeWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateWidgetID(id); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.board.RemoveWidget(id); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.snapshot())
}

func (s *Server) resizeWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateWidgetID(id); err != nil {
		handleError(w, r, err)
		return
	}
	var req resizeRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.W <= 0 || req.H <= 0 {
		handleError(w, r, errs.New(errs.ErrCodeInvalidInput, "size must be positive, got %dx%d", req.W, req.H))
		return
	}
	if dashboard.Find(s.board.Widgets(), id) < 0 {
		handleError(w, r, errs.New(errs.ErrCodeWidgetNotFound, "widget %q not found", id))
		return
	}
	if err := s.board.ResizeWidget(id, req.W, req.H); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.snapshot())
}
