// Copyright 2026 The veil Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package veil implements the core of a brush-on blur image editor.
//
// An Editor owns three equally-sized raster surfaces: Original (immutable
// after load), Display (mutated by brush strokes) and Blurred (a fully
// blurred rendition of Original, regenerated on every strength change).
// Painting copies circular windows from Blurred onto Display, so the brush
// reveals blur instead of computing it per stroke.
//
// Blur strategies live in the blur package and are chosen through a priority
// registry: a separable CPU gaussian, an optional GPU compute path
// (import _ "github.com/pixelveil/veil/blur/gpu"), and a downscale/upscale
// approximation that works everywhere.
//
// Basic use:
//
//	ed := veil.NewEditor()
//	defer ed.Close()
//
//	if err := ed.Load(data, "photo.png"); err != nil {
//	    return err
//	}
//	ed.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Down, X: 120, Y: 80})
//	png, err := ed.ExportPNG()
//
// By default veil produces no log output; call SetLogger to enable logging.
package veil
