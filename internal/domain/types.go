/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for Comic Board: a single comic page
// made of layout-driven panels, each holding a stack of text callouts and
// images. The structures serialize to the human-readable JSON interchange
// document whose top-level shape is checked against the schema embedded in
// the sanitize package.

// ElementType discriminates the element union in the interchange format.
const (
	ElementText  = "text"
	ElementImage = "image"
)

// Text subtypes. The subtype selects the default look of a callout.
const (
	SubtypeSpeech  = "speech"
	SubtypeCaption = "caption"
	SubtypeSFX     = "sfx"
)

// Horizontal text alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Page is the whole document: a named layout plus its panels.
// The invariant len(Panels) == Layouts[Layout].PanelCount is restored by
// mutate.SetLayout and by the sanitizer; intermediate states never escape.
type Page struct {
	Layout string  `json:"layout"`
	Panels []Panel `json:"panels"`
}

// Panel is one rectangular cell of the page grid.
// Element order defines paint order before z adjustment.
type Panel struct {
	ID       string    `json:"id"`
	BG       string    `json:"bg"` // CSS-style color string, kept opaque here
	Elements []Element `json:"elements"`
}

// Element is a positioned, rotatable, z-ordered item inside a panel; either a
// text callout or an image, discriminated by Type. Variant fields are tagged
// omitempty so a text element never carries image fields and vice versa.
type Element struct {
	Type   string  `json:"type"` // text, image
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Rotate float64 `json:"rotate"` // degrees, clockwise
	Z      int     `json:"z"`

	// Text variant
	Subtype      string  `json:"subtype,omitempty"` // speech, caption, sfx
	Text         string  `json:"text,omitempty"`
	FontSize     float64 `json:"fontSize,omitempty"`
	Color        string  `json:"color,omitempty"`
	Background   string  `json:"background,omitempty"`
	Align        string  `json:"align,omitempty"` // left, center, right
	CornerRadius float64 `json:"cornerRadius,omitempty"`
	Weight       int     `json:"weight,omitempty"` // 100..900

	// Image variant
	Src string `json:"src,omitempty"` // opaque source ref: file path or URL
}

// IsText reports whether the element is a text callout.
func (e Element) IsText() bool { return e.Type != ElementImage }

// FindElement returns the index of the element with the given id, or -1.
func (p Panel) FindElement(id string) int {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the page. Mutation ops use it so previous
// snapshots stay untouched and change detection can compare by reference.
func (p Page) Clone() Page {
	out := Page{Layout: p.Layout, Panels: make([]Panel, len(p.Panels))}
	for i, pn := range p.Panels {
		out.Panels[i] = pn
		out.Panels[i].Elements = append([]Element(nil), pn.Elements...)
	}
	return out
}
