/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mutate holds the pure document operations. Every op takes a Page
// and returns a new snapshot; the input is never aliased, so callers can
// detect change by comparing before/after by reference semantics (an op that
// cannot resolve its target returns the input unchanged).
package mutate

import "comicboard/internal/domain"

// SetLayout replaces the page layout and synchronously restores the
// panel-count invariant: extra panels are truncated from the tail, missing
// panels are appended as fresh empty ones. Panels at overlapping indices are
// kept as-is, so switching 4→2→4 preserves panels 0-1 (2-3 come back empty).
// Unknown keys are a no-op.
func SetLayout(p domain.Page, key string) domain.Page {
	if !domain.ValidLayout(key) || key == p.Layout {
		return p
	}
	out := p.Clone()
	out.Layout = key
	out.Panels = syncPanels(out.Panels, domain.Layouts[key].PanelCount)
	return out
}

// syncPanels resizes panels to want entries, appending fresh empty panels or
// truncating the tail.
func syncPanels(panels []domain.Panel, want int) []domain.Panel {
	if len(panels) > want {
		return panels[:want]
	}
	for len(panels) < want {
		panels = append(panels, domain.NewPanel())
	}
	return panels
}

// PanelPatch is a shallow-merge patch for a panel. Nil fields are untouched.
type PanelPatch struct {
	BG *string
}

// PatchPanel merges patch into the panel at idx. Unresolvable indices fail
// silently, returning the input unchanged.
func PatchPanel(p domain.Page, idx int, patch PanelPatch) domain.Page {
	if idx < 0 || idx >= len(p.Panels) {
		return p
	}
	out := p.Clone()
	if patch.BG != nil {
		out.Panels[idx].BG = *patch.BG
	}
	return out
}

// ElementPatch is a shallow-merge patch for an element. Nil fields are
// untouched. Patching never changes an element's type or id.
type ElementPatch struct {
	X      *float64
	Y      *float64
	W      *float64
	H      *float64
	Rotate *float64
	Z      *int

	Subtype      *string
	Text         *string
	FontSize     *float64
	Color        *string
	Background   *string
	Align        *string
	CornerRadius *float64
	Weight       *int

	Src *string
}

// PatchElement merges patch into the element with id elID inside the panel at
// panelIdx. Unresolvable targets fail silently.
func PatchElement(p domain.Page, panelIdx int, elID string, patch ElementPatch) domain.Page {
	if panelIdx < 0 || panelIdx >= len(p.Panels) {
		return p
	}
	i := p.Panels[panelIdx].FindElement(elID)
	if i < 0 {
		return p
	}
	out := p.Clone()
	el := &out.Panels[panelIdx].Elements[i]
	if patch.X != nil {
		el.X = *patch.X
	}
	if patch.Y != nil {
		el.Y = *patch.Y
	}
	if patch.W != nil {
		el.W = *patch.W
	}
	if patch.H != nil {
		el.H = *patch.H
	}
	if patch.Rotate != nil {
		el.Rotate = *patch.Rotate
	}
	if patch.Z != nil {
		el.Z = *patch.Z
	}
	if patch.Subtype != nil {
		el.Subtype = *patch.Subtype
	}
	if patch.Text != nil {
		el.Text = *patch.Text
	}
	if patch.FontSize != nil {
		el.FontSize = *patch.FontSize
	}
	if patch.Color != nil {
		el.Color = *patch.Color
	}
	if patch.Background != nil {
		el.Background = *patch.Background
	}
	if patch.Align != nil {
		el.Align = *patch.Align
	}
	if patch.CornerRadius != nil {
		el.CornerRadius = *patch.CornerRadius
	}
	if patch.Weight != nil {
		el.Weight = *patch.Weight
	}
	if patch.Src != nil {
		el.Src = *patch.Src
	}
	return out
}

// AddElement appends el to the panel at panelIdx.
func AddElement(p domain.Page, panelIdx int, el domain.Element) domain.Page {
	if panelIdx < 0 || panelIdx >= len(p.Panels) {
		return p
	}
	out := p.Clone()
	out.Panels[panelIdx].Elements = append(out.Panels[panelIdx].Elements, el)
	return out
}

// RemoveElement deletes the element with id elID from the panel at panelIdx.
func RemoveElement(p domain.Page, panelIdx int, elID string) domain.Page {
	if panelIdx < 0 || panelIdx >= len(p.Panels) {
		return p
	}
	i := p.Panels[panelIdx].FindElement(elID)
	if i < 0 {
		return p
	}
	out := p.Clone()
	els := out.Panels[panelIdx].Elements
	out.Panels[panelIdx].Elements = append(els[:i], els[i+1:]...)
	return out
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T { return &v }
