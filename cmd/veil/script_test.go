package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelveil/veil/input"
)

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strokes.yaml")
	content := `strokes:
  - points: [[40, 40], [60, 40]]
  - kind: touch
    points: [[10, 90]]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	s, err := loadScript(path)
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	if len(s.Strokes) != 2 {
		t.Fatalf("strokes = %d, want 2", len(s.Strokes))
	}
	if s.Strokes[1].Kind != "touch" || s.Strokes[1].Points[0] != [2]float64{10, 90} {
		t.Errorf("second stroke = %+v", s.Strokes[1])
	}
}

func TestScriptRun(t *testing.T) {
	var points [][2]int
	r := input.NewRouter(
		func() bool { return true },
		func(x, y int) { points = append(points, [2]int{x, y}) },
	)

	s := &Script{Strokes: []Stroke{
		{Points: [][2]float64{{1, 2}, {3, 4}, {5, 6}}},
		{Kind: "touch", Points: [][2]float64{{7, 8}}},
	}}

	if applied := s.Run(r); applied != 4 {
		t.Errorf("applied = %d, want 4", applied)
	}
	if len(points) != 4 || points[0] != [2]int{1, 2} || points[3] != [2]int{7, 8} {
		t.Errorf("points = %v", points)
	}
	if r.Session().Active {
		t.Error("session still active after script run")
	}
}
