/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BoldWeight is the weight at and above which the bold face is picked.
const BoldWeight = 600

// fontLib caches opentype faces for the two embedded Go fonts, keyed by
// size and weight bucket. Faces are not safe for concurrent use; the lib
// serializes access the way the drawer is used (one render at a time holds
// the face).
type fontLib struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

var lib fontLib

func (fl *fontLib) init() error {
	if fl.regular != nil {
		return nil
	}
	r, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse regular font: %w", err)
	}
	b, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fmt.Errorf("parse bold font: %w", err)
	}
	fl.regular, fl.bold = r, b
	fl.faces = make(map[faceKey]font.Face)
	return nil
}

// Face resolves a face for the given pixel size and CSS-style weight
// (100..900). Faces are cached for the process lifetime.
func (fl *fontLib) Face(size float64, weight int) (font.Face, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if err := fl.init(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 16
	}
	key := faceKey{size: size, bold: weight >= BoldWeight}
	if f, ok := fl.faces[key]; ok {
		return f, nil
	}
	src := fl.regular
	if key.bold {
		src = fl.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	fl.faces[key] = face
	return face, nil
}
