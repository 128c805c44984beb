/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"comicboard/internal/domain"
)

func pageWithElement(el domain.Element) domain.Page {
	p := domain.NewPage()
	p.Panels[0].Elements = append(p.Panels[0].Elements, el)
	return p
}

func textAt(id string, x, y, w, h float64) domain.Element {
	el := domain.NewTextElement(domain.SubtypeSpeech)
	el.ID = id
	el.X, el.Y, el.W, el.H = x, y, w, h
	return el
}

func TestPointerDownSelects(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 50, 50)
	if c.Selection().Panel != 0 || c.Selection().Element != "a" {
		t.Fatalf("selection = %+v", c.Selection())
	}
	if !c.Dragging() {
		t.Fatal("expected active gesture after pointer down")
	}
}

func TestPointerDownBackgroundClearsSelection(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 50, 50)
	c.PointerUp()
	c.PointerDown(0, "", false, 5, 5)
	if !c.Selection().None() {
		t.Fatalf("selection not cleared: %+v", c.Selection())
	}
	if c.Dragging() {
		t.Fatal("background press must not start a gesture")
	}
}

func TestMoveIsUnclamped(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 100, 100)
	c.PointerMove(-400, -400)
	el, _ := c.Selected()
	if el.X != -460 || el.Y != -460 {
		t.Fatalf("got x=%v y=%v, want -460,-460", el.X, el.Y)
	}
}

func TestMoveRelativeToAnchorNotLastEvent(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 0, 0)
	c.PointerMove(10, 0)
	c.PointerMove(25, 5)
	el, _ := c.Selected()
	if el.X != 65 || el.Y != 45 {
		t.Fatalf("got x=%v y=%v, want 65,45", el.X, el.Y)
	}
}

func TestResizeFloors(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 100, 50)), nil)
	c.PointerDown(0, "a", true, 140, 90)
	c.PointerMove(-60, -110) // dx=-200 dy=-200
	el, _ := c.Selected()
	if el.W != MinDragSize || el.H != MinDragSize {
		t.Fatalf("got w=%v h=%v, want %d,%d", el.W, el.H, MinDragSize, MinDragSize)
	}
	// position is untouched by resize
	if el.X != 40 || el.Y != 40 {
		t.Fatalf("resize moved element to %v,%v", el.X, el.Y)
	}
}

func TestResizeHasNoMaximum(t *testing.T) {
	c := New(pageWithElement(textAt("a", 0, 0, 100, 50)), nil)
	c.PointerDown(0, "a", true, 0, 0)
	c.PointerMove(5000, 5000)
	el, _ := c.Selected()
	if el.W != 5100 || el.H != 5050 {
		t.Fatalf("got w=%v h=%v", el.W, el.H)
	}
}

func TestMoveAfterPointerUpIgnored(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 0, 0)
	c.PointerUp()
	c.PointerMove(100, 100)
	el, _ := c.Selected()
	if el.X != 40 || el.Y != 40 {
		t.Fatalf("element moved after pointer up: %v,%v", el.X, el.Y)
	}
}

func TestLastGestureWins(t *testing.T) {
	p := pageWithElement(textAt("a", 40, 40, 160, 80))
	p.Panels[0].Elements = append(p.Panels[0].Elements, textAt("b", 300, 300, 160, 80))
	c := New(p, nil)
	c.PointerDown(0, "a", false, 0, 0)
	// a second pointer down replaces the gesture without an up event
	c.PointerDown(0, "b", false, 0, 0)
	c.PointerMove(10, 10)
	if c.Selection().Element != "b" {
		t.Fatalf("selection = %+v", c.Selection())
	}
	el, _ := c.Selected()
	if el.X != 310 || el.Y != 310 {
		t.Fatalf("b at %v,%v", el.X, el.Y)
	}
	i := c.Page().Panels[0].FindElement("a")
	if a := c.Page().Panels[0].Elements[i]; a.X != 40 {
		t.Fatalf("a moved to %v", a.X)
	}
}

func TestKeyNudge(t *testing.T) {
	cases := []struct {
		name  string
		key   Key
		shift bool
		x, y  float64
	}{
		{"left", KeyLeft, false, 39, 40},
		{"right", KeyRight, false, 41, 40},
		{"up", KeyUp, false, 40, 39},
		{"down", KeyDown, false, 40, 41},
		{"left-fast", KeyLeft, true, 30, 40},
		{"down-fast", KeyDown, true, 40, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
			c.PointerDown(0, "a", false, 0, 0)
			c.PointerUp()
			c.Key(tc.key, tc.shift)
			el, _ := c.Selected()
			if el.X != tc.x || el.Y != tc.y {
				t.Fatalf("got %v,%v want %v,%v", el.X, el.Y, tc.x, tc.y)
			}
		})
	}
}

func TestKeyZOrder(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 0, 0)
	c.PointerUp()
	c.Key(KeyRaise, false)
	el, _ := c.Selected()
	if el.Z != 2 {
		t.Fatalf("z = %d after raise", el.Z)
	}
	c.Key(KeyLower, false)
	c.Key(KeyLower, false)
	c.Key(KeyLower, false) // would go negative
	el, _ = c.Selected()
	if el.Z != 0 {
		t.Fatalf("z = %d, want floor at 0", el.Z)
	}
}

func TestKeyDeleteClearsSelection(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.PointerDown(0, "a", false, 0, 0)
	c.PointerUp()
	c.Key(KeyDelete, false)
	if !c.Selection().None() {
		t.Fatalf("selection after delete: %+v", c.Selection())
	}
	if n := len(c.Page().Panels[0].Elements); n != 0 {
		t.Fatalf("%d elements remain", n)
	}
}

func TestKeyWithoutSelectionIgnored(t *testing.T) {
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), nil)
	c.Key(KeyDelete, false)
	if n := len(c.Page().Panels[0].Elements); n != 1 {
		t.Fatalf("%d elements, want 1", n)
	}
}

func TestSetLayoutDropsOrphanedSelection(t *testing.T) {
	p := domain.NewPage() // layout "4"
	p.Panels[3].Elements = append(p.Panels[3].Elements, textAt("a", 40, 40, 160, 80))
	c := New(p, nil)
	c.PointerDown(3, "a", false, 0, 0)
	c.PointerUp()
	c.SetLayout("1")
	if !c.Selection().None() {
		t.Fatalf("selection survived layout shrink: %+v", c.Selection())
	}
}

func TestSetLayoutNoopDoesNotNotify(t *testing.T) {
	var n int
	c := New(domain.NewPage(), func(domain.Page) { n++ }) // layout "4"
	c.SetLayout("4")     // identical key
	c.SetLayout("bogus") // unknown key
	if n != 0 {
		t.Fatalf("onChange fired %d times for no-op layout changes", n)
	}
	c.SetLayout("2")
	if n != 1 {
		t.Fatalf("onChange fired %d times after a real layout change, want 1", n)
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	p := domain.NewPage()
	a := textAt("a", 0, 0, 100, 100)
	b := textAt("b", 0, 0, 100, 100)
	b.Z = 5
	p.Panels[0].Elements = append(p.Panels[0].Elements, a, b)
	c := New(p, nil)
	id, ok := c.HitTest(0, 50, 50)
	if !ok || id != "b" {
		t.Fatalf("hit %q ok=%v, want b", id, ok)
	}
}

func TestHitTestRotated(t *testing.T) {
	p := domain.NewPage()
	el := textAt("a", 0, 0, 100, 40)
	el.Rotate = 90
	p.Panels[0].Elements = append(p.Panels[0].Elements, el)
	c := New(p, nil)
	if _, ok := c.HitTest(0, 95, 20); ok {
		t.Fatal("hit unrotated corner of a rotated rect")
	}
	if _, ok := c.HitTest(0, 50, -20); !ok {
		t.Fatal("missed point inside the rotated rect")
	}
}

func TestOnChangeFires(t *testing.T) {
	var n int
	c := New(pageWithElement(textAt("a", 40, 40, 160, 80)), func(domain.Page) { n++ })
	c.PointerDown(0, "a", false, 0, 0)
	c.PointerMove(5, 5)
	c.PointerMove(10, 10)
	c.PointerUp()
	if n != 2 {
		t.Fatalf("onChange fired %d times, want 2", n)
	}
}
