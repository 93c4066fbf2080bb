package annotation

import (
	"encoding/json"
	"math"
	"testing"
)

func TestIsSubmittable(t *testing.T) {
	tests := []struct {
		name     string
		entry    int
		crossing int
		want     bool
	}{
		{"both empty", 0, 0, false},
		{"entry partial", 1, 2, false},
		{"crossing partial", 2, 1, false},
		{"both usable", 2, 2, true},
		{"polyline", 5, 3, true},
	}
	for _, tt := range tests {
		s := NewSnapshot()
		for i := 0; i < tt.entry; i++ {
			_ = s.Append(BoundaryEntry, Point{X: float64(i), Y: 0})
		}
		for i := 0; i < tt.crossing; i++ {
			_ = s.Append(BoundaryCrossing, Point{X: float64(i), Y: 10})
		}
		if got := s.IsSubmittable(); got != tt.want {
			t.Fatalf("%s: IsSubmittable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAppendUnknownBoundary(t *testing.T) {
	s := NewSnapshot()
	if err := s.Append("diagonal", Point{}); err == nil {
		t.Fatal("expected error for unknown boundary name")
	}
}

func TestClear(t *testing.T) {
	s := NewSnapshot()
	_ = s.Append(BoundaryEntry, Point{X: 1, Y: 1})
	_ = s.Append(BoundaryEntry, Point{X: 2, Y: 2})
	_ = s.Append(BoundaryCrossing, Point{X: 3, Y: 3})
	if err := s.Clear(BoundaryEntry); err != nil {
		t.Fatal(err)
	}
	if !s.Entry.Empty() {
		t.Fatalf("entry should be empty, got %d points", len(s.Entry))
	}
	if len(s.Crossing) != 1 {
		t.Fatalf("crossing should be untouched, got %d points", len(s.Crossing))
	}
}

func TestComputeSideLabelsHorizontal(t *testing.T) {
	s := NewSnapshot()
	_ = s.Append(BoundaryEntry, Point{X: 0, Y: 0})
	_ = s.Append(BoundaryEntry, Point{X: 10, Y: 0})

	labels, err := s.ComputeSideLabels()
	if err != nil {
		t.Fatal(err)
	}
	// 方向向量 (10,0)，法向量 (-dy,dx) = (0,1)，图像坐标系朝下
	if labels.Normal.X != 0 || labels.Normal.Y != 1 {
		t.Fatalf("normal = %+v, want (0,1)", labels.Normal)
	}
	// primary 时 +n 一侧是 IN
	if labels.In.Y <= labels.Out.Y {
		t.Fatalf("primary: IN should be on +n side, in=%+v out=%+v", labels.In, labels.Out)
	}
	if labels.In.X != 5 || labels.In.Y != labelProbeOffset {
		t.Fatalf("in anchor = %+v, want (5,%v)", labels.In, labelProbeOffset)
	}
}

func TestToggleOrientationSwapsLabels(t *testing.T) {
	s := NewSnapshot()
	_ = s.Append(BoundaryEntry, Point{X: 3, Y: 7})
	_ = s.Append(BoundaryEntry, Point{X: 20, Y: 15})
	_ = s.Append(BoundaryEntry, Point{X: 31, Y: 9})

	before, err := s.ComputeSideLabels()
	if err != nil {
		t.Fatal(err)
	}
	pointsBefore := append(Boundary{}, s.Entry...)

	s.ToggleOrientation()
	after, err := s.ComputeSideLabels()
	if err != nil {
		t.Fatal(err)
	}

	if before.In != after.Out || before.Out != after.In {
		t.Fatalf("toggle should swap labels: before=%+v after=%+v", before, after)
	}
	for i, p := range s.Entry {
		if p != pointsBefore[i] {
			t.Fatalf("toggle must not change points, idx %d: %+v != %+v", i, p, pointsBefore[i])
		}
	}

	s.ToggleOrientation()
	if s.Orientation != OrientationPrimary {
		t.Fatalf("double toggle should restore primary, got %s", s.Orientation)
	}
}

func TestComputeSideLabelsMidSegment(t *testing.T) {
	// 4 个点取下标 1、2 作为中段
	s := NewSnapshot()
	for _, p := range []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}} {
		_ = s.Append(BoundaryEntry, p)
	}
	labels, err := s.ComputeSideLabels()
	if err != nil {
		t.Fatal(err)
	}
	// 中段 (10,0)->(10,10)，方向 (0,10)，法向量 (-1,0)
	if math.Abs(labels.Normal.X+1) > 1e-9 || math.Abs(labels.Normal.Y) > 1e-9 {
		t.Fatalf("normal = %+v, want (-1,0)", labels.Normal)
	}
}

func TestLinesRoundTrip(t *testing.T) {
	lc := LinesConfig{
		Entrant:  []Point{{X: 5, Y: 5}, {X: 50, Y: 5}},
		Passerby: []Point{{X: 0, Y: 80}, {X: 100, Y: 80}},
		InSide:   InSideInverted,
	}
	s := FromLines(lc)
	if s.Orientation != OrientationInverted {
		t.Fatalf("in_side=left should map to inverted, got %s", s.Orientation)
	}

	got := s.Lines()
	raw1, _ := json.Marshal(lc)
	raw2, _ := json.Marshal(got)
	if string(raw1) != string(raw2) {
		t.Fatalf("round trip mismatch:\n%s\n%s", raw1, raw2)
	}
}

func TestCloneIsolation(t *testing.T) {
	s := NewSnapshot()
	_ = s.Append(BoundaryEntry, Point{X: 1, Y: 2})
	c := s.Clone()
	_ = c.Append(BoundaryEntry, Point{X: 9, Y: 9})
	if len(s.Entry) != 1 {
		t.Fatalf("clone must not share storage, original has %d points", len(s.Entry))
	}
}
