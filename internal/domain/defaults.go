/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "github.com/google/uuid"

// Default construction rules. The per-subtype default table is fixed: the
// sanitizer falls back to these values for missing fields, so changing them
// changes how older documents load.

const (
	// PanelBG is the background of freshly created panels.
	PanelBG = "#ffffff"

	// DefaultTextZ keeps callouts above images (DefaultImageZ) by default.
	DefaultTextZ  = 1
	DefaultImageZ = 0

	// MaxImageDefaultW caps the default footprint of imported images.
	MaxImageDefaultW = 300
	MaxImageDefaultH = 220
)

// TextDefaults is one row of the subtype default table.
type TextDefaults struct {
	W, H         float64
	FontSize     float64
	Color        string
	Background   string
	Align        string
	CornerRadius float64
	Weight       int
	Placeholder  string
}

// textDefaults maps subtype to its default look. speech doubles as the
// fallback row for unknown subtypes.
var textDefaults = map[string]TextDefaults{
	SubtypeSpeech: {
		W: 160, H: 80,
		FontSize:     16,
		Color:        "#111111",
		Background:   "rgba(255,255,255,0.92)",
		Align:        AlignCenter,
		CornerRadius: 18,
		Weight:       400,
		Placeholder:  "Say something...",
	},
	SubtypeCaption: {
		W: 200, H: 60,
		FontSize:     14,
		Color:        "#111111",
		Background:   "#fff8d9",
		Align:        AlignLeft,
		CornerRadius: 4,
		Weight:       500,
		Placeholder:  "Meanwhile...",
	},
	SubtypeSFX: {
		W: 220, H: 100,
		FontSize:     48,
		Color:        "#e03131",
		Background:   "rgba(0,0,0,0)",
		Align:        AlignCenter,
		CornerRadius: 0,
		Weight:       800,
		Placeholder:  "BOOM!",
	},
}

// DefaultsFor returns the default table row for a subtype. Unknown subtypes
// get the speech row.
func DefaultsFor(subtype string) TextDefaults {
	if d, ok := textDefaults[subtype]; ok {
		return d
	}
	return textDefaults[SubtypeSpeech]
}

// NewID returns a fresh unique id for panels and elements.
func NewID() string { return uuid.NewString() }

// NewPage creates a document with the default 2x2 layout and empty panels.
func NewPage() Page {
	lay := Layouts[DefaultLayout]
	p := Page{Layout: DefaultLayout, Panels: make([]Panel, lay.PanelCount)}
	for i := range p.Panels {
		p.Panels[i] = NewPanel()
	}
	return p
}

// NewPanel creates an empty white panel with a fresh id.
func NewPanel() Panel {
	return Panel{ID: NewID(), BG: PanelBG, Elements: []Element{}}
}

// NewTextElement creates a text callout populated from the subtype default
// table. Unknown subtypes are normalized to speech.
func NewTextElement(subtype string) Element {
	if _, ok := textDefaults[subtype]; !ok {
		subtype = SubtypeSpeech
	}
	d := textDefaults[subtype]
	return Element{
		Type:         ElementText,
		ID:           NewID(),
		X:            40,
		Y:            40,
		W:            d.W,
		H:            d.H,
		Rotate:       0,
		Z:            DefaultTextZ,
		Subtype:      subtype,
		Text:         d.Placeholder,
		FontSize:     d.FontSize,
		Color:        d.Color,
		Background:   d.Background,
		Align:        d.Align,
		CornerRadius: d.CornerRadius,
		Weight:       d.Weight,
	}
}

// NewImageElement creates an image element sized to the natural image size
// capped to the maximum default footprint. Zero natural dimensions (unknown)
// fall back to the caps. Images default below callouts in the z order.
func NewImageElement(src string, naturalW, naturalH int) Element {
	w := float64(MaxImageDefaultW)
	if naturalW > 0 && naturalW < MaxImageDefaultW {
		w = float64(naturalW)
	}
	h := float64(MaxImageDefaultH)
	if naturalH > 0 && naturalH < MaxImageDefaultH {
		h = float64(naturalH)
	}
	return Element{
		Type: ElementImage,
		ID:   NewID(),
		X:    20,
		Y:    20,
		W:    w,
		H:    h,
		Z:    DefaultImageZ,
		Src:  src,
	}
}
