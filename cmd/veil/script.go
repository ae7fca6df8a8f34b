package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pixelveil/veil/input"
)

// Stroke is one scripted drag: a kind and the screen points it visits.
type Stroke struct {
	Kind   string       `yaml:"kind,omitempty"` // "pointer" (default) or "touch"
	Points [][2]float64 `yaml:"points"`
}

// Script is a YAML stroke list, e.g.:
//
//	strokes:
//	  - points: [[40, 40], [60, 40], [80, 45]]
//	  - kind: touch
//	    points: [[10, 90]]
type Script struct {
	Strokes []Stroke `yaml:"strokes"`
}

// loadScript reads a stroke script from a YAML file.
func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return &s, nil
}

// Run replays the strokes through the router and returns the number of
// brush applications.
func (s *Script) Run(r *input.Router) int {
	applied := 0
	for _, stroke := range s.Strokes {
		if len(stroke.Points) == 0 {
			continue
		}
		kind := input.KindPointer
		if stroke.Kind == "touch" {
			kind = input.KindTouch
		}

		for i, p := range stroke.Points {
			typ := input.Move
			if i == 0 {
				typ = input.Down
			}
			if r.Handle(input.Event{Kind: kind, Type: typ, X: p[0], Y: p[1]}) {
				applied++
			}
		}
		r.Handle(input.Event{Kind: kind, Type: input.Up})
	}
	return applied
}
