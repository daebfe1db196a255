package layout

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestCompactList(t *testing.T) {
	tests := []struct {
		name  string
		rects []Rect
		cols  int
		want  []Rect
	}{
		{
			name:  "empty",
			rects: nil,
			cols:  12,
			want:  []Rect{},
		},
		{
			name: "gap closes to the left",
			rects: []Rect{
				{ID: "a", X: 0, Y: 0, W: 2, H: 2},
				{ID: "b", X: 5, Y: 0, W: 2, H: 2},
			},
			cols: 12,
			want: []Rect{
				{ID: "a", X: 0, Y: 0, W: 2, H: 2},
				{ID: "b", X: 2, Y: 0, W: 2, H: 2},
			},
		},
		{
			name: "vertical gap closes",
			rects: []Rect{
				{ID: "a", X: 0, Y: 0, W: 12, H: 1},
				{ID: "b", X: 0, Y: 5, W: 12, H: 2},
			},
			cols: 12,
			want: []Rect{
				{ID: "a", X: 0, Y: 0, W: 12, H: 1},
				{ID: "b", X: 0, Y: 1, W: 12, H: 2},
			},
		},
		{
			name: "wraps to next free row",
			rects: []Rect{
				{ID: "a", X: 0, Y: 0, W: 3, H: 1},
				{ID: "b", X: 0, Y: 1, W: 3, H: 1},
			},
			cols: 4,
			want: []Rect{
				{ID: "a", X: 0, Y: 0, W: 3, H: 1},
				{ID: "b", X: 0, Y: 1, W: 3, H: 1},
			},
		},
		{
			name: "overlapping input is separated",
			rects: []Rect{
				{ID: "a", X: 0, Y: 0, W: 4, H: 2},
				{ID: "b", X: 1, Y: 1, W: 4, H: 2},
			},
			cols: 6,
			want: []Rect{
				{ID: "a", X: 0, Y: 0, W: 4, H: 2},
				{ID: "b", X: 0, Y: 2, W: 4, H: 2},
			},
		},
		{
			name: "too wide is clamped",
			rects: []Rect{
				{ID: "a", X: 3, Y: 2, W: 20, H: 1},
			},
			cols: 8,
			want: []Rect{
				{ID: "a", X: 0, Y: 0, W: 8, H: 1},
			},
		},
		{
			name: "result is a fixed point",
			rects: []Rect{
				{ID: "a", X: 2, Y: 1, W: 2, H: 1},
				{ID: "b", X: 3, Y: 4, W: 1, H: 3},
				{ID: "c", X: 1, Y: 2, W: 3, H: 2},
			},
			cols: 4,
			want: []Rect{
				{ID: "a", X: 0, Y: 0, W: 2, H: 1},
				{ID: "b", X: 2, Y: 0, W: 1, H: 3},
				{ID: "c", X: 0, Y: 3, W: 3, H: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compact(tt.rects, tt.cols, ModeList)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compact() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCompactDoesNotMutateInput(t *testing.T) {
	in := []Rect{{ID: "a", X: 4, Y: 4, W: 2, H: 2}}
	Compact(in, 12, ModeList)
	Compact(in, 12, ModeDense)
	if in[0].X != 4 || in[0].Y != 4 {
		t.Errorf("input mutated: %+v", in[0])
	}
}

func TestCompactOrderPreservation(t *testing.T) {
	packed := []Rect{
		{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		{ID: "b", X: 4, Y: 0, W: 4, H: 2},
		{ID: "c", X: 8, Y: 0, W: 4, H: 2},
		{ID: "d", X: 0, Y: 2, W: 6, H: 1},
		{ID: "e", X: 6, Y: 2, W: 6, H: 1},
	}
	if got := Compact(packed, 12, ModeList); !reflect.DeepEqual(got, packed) {
		t.Errorf("Compact(packed) = %+v, want unchanged", got)
	}
}

func TestCompactDense(t *testing.T) {
	rects := []Rect{
		{ID: "a", X: 0, Y: 3, W: 2, H: 2},
		{ID: "b", X: 0, Y: 6, W: 2, H: 1},
		{ID: "c", X: 4, Y: 1, W: 2, H: 2},
		{ID: "d", X: 11, Y: 0, W: 3, H: 1},
	}
	want := []Rect{
		{ID: "a", X: 0, Y: 0, W: 2, H: 2},
		{ID: "b", X: 0, Y: 2, W: 2, H: 1},
		{ID: "c", X: 4, Y: 0, W: 2, H: 2},
		{ID: "d", X: 9, Y: 0, W: 3, H: 1},
	}
	if got := Compact(rects, 12, ModeDense); !reflect.DeepEqual(got, want) {
		t.Errorf("Compact(dense) = %+v, want %+v", got, want)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeList, false},
		{"list", ModeList, false},
		{"compact", ModeDense, false},
		{"masonry", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func randomLayout(rng *rand.Rand, cols int) []Rect {
	n := 1 + rng.Intn(12)
	out := make([]Rect, n)
	for i := range out {
		w := 1 + rng.Intn(cols)
		out[i] = Rect{
			ID: string(rune('a' + i)),
			X:  rng.Intn(cols - w + 1),
			Y:  rng.Intn(10),
			W:  w,
			H:  1 + rng.Intn(4),
		}
	}
	return out
}

func TestCompactProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, mode := range []Mode{ModeList, ModeDense} {
		for i := 0; i < 2000; i++ {
			cols := 2 + rng.Intn(11)
			in := randomLayout(rng, cols)
			once := Compact(in, cols, mode)

			if pairs := Overlapping(once); len(pairs) > 0 {
				t.Fatalf("%s: Compact(%+v) overlaps: %v", mode, in, pairs)
			}
			if ids := OutOfBounds(once, cols); len(ids) > 0 {
				t.Fatalf("%s: Compact(%+v) out of bounds: %v", mode, in, ids)
			}
			for j := range in {
				if once[j].W != in[j].W || once[j].H != in[j].H || once[j].ID != in[j].ID {
					t.Fatalf("%s: size changed: %+v -> %+v", mode, in[j], once[j])
				}
			}
			if twice := Compact(once, cols, mode); !reflect.DeepEqual(twice, once) {
				t.Fatalf("%s: not idempotent for %+v\nonce:  %+v\ntwice: %+v", mode, in, once, twice)
			}
		}
	}
}

func TestCompactInputOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		cols := 2 + rng.Intn(11)
		in := randomLayout(rng, cols)
		shuffled := make([]Rect, len(in))
		copy(shuffled, in)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		if !Equal(Compact(in, cols, ModeList), Compact(shuffled, cols, ModeList)) {
			t.Fatalf("Compact() depends on input order for %+v", in)
		}
	}
}

func TestResolveCollisions(t *testing.T) {
	rects := []Rect{
		{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		{ID: "b", X: 2, Y: 1, W: 2, H: 2},
		{ID: "c", X: 2, Y: 3, W: 2, H: 1},
		{ID: "d", X: 8, Y: 0, W: 2, H: 2},
	}
	want := []Rect{
		{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		{ID: "b", X: 2, Y: 2, W: 2, H: 2},
		{ID: "c", X: 2, Y: 4, W: 2, H: 1},
		{ID: "d", X: 8, Y: 0, W: 2, H: 2},
	}
	got := ResolveCollisions(rects, "a", 12)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveCollisions() = %+v, want %+v", got, want)
	}
}

func TestResolveCollisionsPinnedWins(t *testing.T) {
	// b sorts first but a is pinned, so b moves.
	rects := []Rect{
		{ID: "a", X: 0, Y: 1, W: 6, H: 3},
		{ID: "b", X: 0, Y: 0, W: 2, H: 2},
	}
	got := ResolveCollisions(rects, "a", 12)
	if got[0] != rects[0] {
		t.Errorf("pinned rect moved: %+v", got[0])
	}
	if got[1].Y != 4 {
		t.Errorf("b.Y = %d, want 4", got[1].Y)
	}
	if pairs := Overlapping(got); len(pairs) > 0 {
		t.Errorf("ResolveCollisions() overlaps: %v", pairs)
	}
}

func TestCompactListRepeatsUntilStable(t *testing.T) {
	in := []Rect{
		{ID: "a", X: 0, Y: 2, W: 3, H: 2},
		{ID: "b", X: 3, Y: 3, W: 1, H: 3},
		{ID: "c", X: 2, Y: 0, W: 2, H: 2},
	}
	onePass := []Rect{
		{ID: "a", X: 0, Y: 2, W: 3, H: 2},
		{ID: "b", X: 3, Y: 0, W: 1, H: 3},
		{ID: "c", X: 0, Y: 0, W: 2, H: 2},
	}
	want := []Rect{
		{ID: "a", X: 0, Y: 3, W: 3, H: 2},
		{ID: "b", X: 2, Y: 0, W: 1, H: 3},
		{ID: "c", X: 0, Y: 0, W: 2, H: 2},
	}

	if got := firstFitPass(in, 4); !reflect.DeepEqual(got, onePass) {
		t.Fatalf("firstFitPass() = %v, want %v", got, onePass)
	}
	got := Compact(in, 4, ModeList)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compact() = %v, want %v", got, want)
	}
	if again := Compact(got, 4, ModeList); !reflect.DeepEqual(again, got) {
		t.Errorf("Compact() of a compacted layout = %v, want %v", again, got)
	}
}
