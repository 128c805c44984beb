/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor owns the transient editing state around the document: the
// current selection and the active manipulation gesture. Pointer and keyboard
// events come in, mutation ops go out; the committed Page snapshot is the
// only drag feedback there is (no preview buffering).
//
// The controller is single-threaded by contract: it is driven from the UI
// event loop and must not be shared across goroutines.
package editor

import (
	"log/slog"
	"sort"

	"comicboard/internal/domain"
	"comicboard/internal/geom"
	applog "comicboard/internal/log"
	"comicboard/internal/mutate"
)

// Gesture floor: elements can never be resized below this in either axis.
const MinDragSize = 20

// Keyboard nudge distances, in page units.
const (
	NudgeStep     = 1
	NudgeStepFast = 10
)

// Mode describes what an active gesture manipulates.
type Mode int

const (
	ModeMove Mode = iota
	ModeResize
)

// Key is the closed set of editing keys the controller understands.
type Key int

const (
	KeyDelete Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyRaise // ]
	KeyLower // [
)

// Selection points at most one element inside one panel. Panel is -1 and
// Element empty when nothing is selected. Selection is transient and never
// serialized with the document.
type Selection struct {
	Panel   int
	Element string
}

// None reports whether nothing is selected.
func (s Selection) None() bool { return s.Panel < 0 || s.Element == "" }

var noSelection = Selection{Panel: -1}

// gesture is the ephemeral state of one pointer-down→move→up interaction.
type gesture struct {
	active bool
	mode   Mode
	panel  int
	elID   string
	// pointer anchor and the element rect at gesture start
	startX, startY float64
	anchor         geom.Rect
}

// Controller tracks the committed Page snapshot, the Selection and the
// active gesture, and translates input events into mutation calls.
type Controller struct {
	page     domain.Page
	sel      Selection
	drag     gesture
	onChange func(domain.Page)
	log      *slog.Logger
}

// New creates a controller owning the given page snapshot. onChange, if not
// nil, fires after every committed mutation with the new snapshot.
func New(page domain.Page, onChange func(domain.Page)) *Controller {
	return &Controller{
		page:     page,
		sel:      noSelection,
		onChange: onChange,
		log:      applog.WithComponent("editor"),
	}
}

// Page returns the current committed snapshot.
func (c *Controller) Page() domain.Page { return c.page }

// Selection returns the current selection.
func (c *Controller) Selection() Selection { return c.sel }

// Selected returns the selected element, if any.
func (c *Controller) Selected() (domain.Element, bool) {
	if c.sel.None() || c.sel.Panel >= len(c.page.Panels) {
		return domain.Element{}, false
	}
	i := c.page.Panels[c.sel.Panel].FindElement(c.sel.Element)
	if i < 0 {
		return domain.Element{}, false
	}
	return c.page.Panels[c.sel.Panel].Elements[i], true
}

// Replace swaps in a whole new document (successful load) and resets all
// transient state.
func (c *Controller) Replace(page domain.Page) {
	c.page = page
	c.sel = noSelection
	c.drag = gesture{}
	c.commit(c.page)
}

// commit stores the snapshot and notifies.
func (c *Controller) commit(p domain.Page) {
	c.page = p
	if c.onChange != nil {
		c.onChange(p)
	}
}

// apply commits only if the op actually produced a change. Mutation ops
// return the input page untouched on a no-op, so slice identity tells the
// two cases apart.
func (c *Controller) apply(p domain.Page) {
	if len(p.Panels) > 0 && len(c.page.Panels) > 0 && &p.Panels[0] == &c.page.Panels[0] {
		return
	}
	c.commit(p)
}

// PointerDown starts a gesture. An empty elID means the press hit panel
// background: selection is cleared and no gesture starts. onHandle selects
// resize mode (the handle is only rendered on the selected element, but a
// stale press is tolerated). A pointer-down during an active gesture
// replaces it; last gesture wins.
func (c *Controller) PointerDown(panel int, elID string, onHandle bool, x, y float64) {
	if panel < 0 || panel >= len(c.page.Panels) || elID == "" {
		c.sel = noSelection
		c.drag = gesture{}
		return
	}
	i := c.page.Panels[panel].FindElement(elID)
	if i < 0 {
		c.sel = noSelection
		c.drag = gesture{}
		return
	}
	el := c.page.Panels[panel].Elements[i]
	c.sel = Selection{Panel: panel, Element: elID}
	mode := ModeMove
	if onHandle {
		mode = ModeResize
	}
	c.drag = gesture{
		active: true,
		mode:   mode,
		panel:  panel,
		elID:   elID,
		startX: x,
		startY: y,
		anchor: geom.R(el.X, el.Y, el.W, el.H),
	}
}

// PointerMove recomputes the dragged element's rect from the anchor and the
// pointer delta and commits a patch immediately. Move is unclamped: elements
// may be dragged outside the visible panel area. Resize floors at
// MinDragSize per axis with no maximum and no aspect lock.
func (c *Controller) PointerMove(x, y float64) {
	if !c.drag.active {
		return
	}
	dx := x - c.drag.startX
	dy := y - c.drag.startY
	var patch mutate.ElementPatch
	switch c.drag.mode {
	case ModeMove:
		patch.X = mutate.Ptr(c.drag.anchor.X + dx)
		patch.Y = mutate.Ptr(c.drag.anchor.Y + dy)
	case ModeResize:
		w := c.drag.anchor.W + dx
		if w < MinDragSize {
			w = MinDragSize
		}
		h := c.drag.anchor.H + dy
		if h < MinDragSize {
			h = MinDragSize
		}
		patch.W = mutate.Ptr(w)
		patch.H = mutate.Ptr(h)
	}
	c.apply(mutate.PatchElement(c.page, c.drag.panel, c.drag.elID, patch))
}

// PointerUp ends the active gesture, wherever the pointer is.
func (c *Controller) PointerUp() { c.drag = gesture{} }

// Dragging reports whether a gesture is active.
func (c *Controller) Dragging() bool { return c.drag.active }

// Key handles editing keys for the current selection. Events with no
// selection are ignored. shift switches arrows to the fast nudge step.
func (c *Controller) Key(k Key, shift bool) {
	el, ok := c.Selected()
	if !ok {
		return
	}
	step := float64(NudgeStep)
	if shift {
		step = NudgeStepFast
	}
	var patch mutate.ElementPatch
	switch k {
	case KeyDelete:
		c.apply(mutate.RemoveElement(c.page, c.sel.Panel, c.sel.Element))
		c.sel = noSelection
		c.drag = gesture{}
		return
	case KeyLeft:
		patch.X = mutate.Ptr(el.X - step)
	case KeyRight:
		patch.X = mutate.Ptr(el.X + step)
	case KeyUp:
		patch.Y = mutate.Ptr(el.Y - step)
	case KeyDown:
		patch.Y = mutate.Ptr(el.Y + step)
	case KeyRaise:
		patch.Z = mutate.Ptr(el.Z + 1)
	case KeyLower:
		z := el.Z - 1
		if z < 0 {
			z = 0
		}
		patch.Z = mutate.Ptr(z)
	default:
		return
	}
	c.apply(mutate.PatchElement(c.page, c.sel.Panel, c.sel.Element, patch))
}

// AddElement appends el to the panel and selects it.
func (c *Controller) AddElement(panel int, el domain.Element) {
	next := mutate.AddElement(c.page, panel, el)
	if len(next.Panels) == len(c.page.Panels) && panel >= 0 && panel < len(next.Panels) {
		c.commit(next)
		c.sel = Selection{Panel: panel, Element: el.ID}
		c.log.Debug("element added", slog.String("type", el.Type), slog.Int("panel", panel))
	}
}

// SetLayout switches the page layout, keeping the selection only if its
// panel survives the resync.
func (c *Controller) SetLayout(key string) {
	next := mutate.SetLayout(c.page, key)
	c.apply(next)
	if !c.sel.None() && c.sel.Panel >= len(next.Panels) {
		c.sel = noSelection
		c.drag = gesture{}
	}
}

// HitTest finds the topmost element of the panel under the point, honoring
// z order (higher z wins; document order breaks ties) and rotation.
func (c *Controller) HitTest(panel int, x, y float64) (string, bool) {
	if panel < 0 || panel >= len(c.page.Panels) {
		return "", false
	}
	els := PaintOrder(c.page.Panels[panel].Elements)
	for i := len(els) - 1; i >= 0; i-- {
		el := els[i]
		if geom.HitRotatedRect(geom.R(el.X, el.Y, el.W, el.H), el.Rotate, geom.Pt{X: x, Y: y}) {
			return el.ID, true
		}
	}
	return "", false
}

// PaintOrder returns the elements sorted bottom-to-top: ascending z, with
// document order preserved among equal z values.
func PaintOrder(els []domain.Element) []domain.Element {
	out := append([]domain.Element(nil), els...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}
