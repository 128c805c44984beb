/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"testing"
)

func TestNewPageDefaults(t *testing.T) {
	p := NewPage()
	if p.Layout != DefaultLayout {
		t.Fatalf("layout = %q, want %q", p.Layout, DefaultLayout)
	}
	if len(p.Panels) != 4 {
		t.Fatalf("panel count = %d, want 4", len(p.Panels))
	}
	seen := map[string]bool{}
	for i, pn := range p.Panels {
		if pn.ID == "" {
			t.Fatalf("panel %d has empty id", i)
		}
		if seen[pn.ID] {
			t.Fatalf("duplicate panel id %q", pn.ID)
		}
		seen[pn.ID] = true
		if pn.BG != PanelBG {
			t.Fatalf("panel %d bg = %q, want %q", i, pn.BG, PanelBG)
		}
		if len(pn.Elements) != 0 {
			t.Fatalf("panel %d not empty", i)
		}
	}
}

func TestNewTextElementSubtypeTable(t *testing.T) {
	cases := []struct {
		subtype  string
		fontSize float64
		weight   int
		align    string
	}{
		{SubtypeSpeech, 16, 400, AlignCenter},
		{SubtypeCaption, 14, 500, AlignLeft},
		{SubtypeSFX, 48, 800, AlignCenter},
	}
	for _, c := range cases {
		el := NewTextElement(c.subtype)
		if el.Type != ElementText {
			t.Errorf("%s: type = %q", c.subtype, el.Type)
		}
		if el.Subtype != c.subtype {
			t.Errorf("%s: subtype = %q", c.subtype, el.Subtype)
		}
		if el.FontSize != c.fontSize {
			t.Errorf("%s: fontSize = %v, want %v", c.subtype, el.FontSize, c.fontSize)
		}
		if el.Weight != c.weight {
			t.Errorf("%s: weight = %d, want %d", c.subtype, el.Weight, c.weight)
		}
		if el.Align != c.align {
			t.Errorf("%s: align = %q, want %q", c.subtype, el.Align, c.align)
		}
		if el.Z != DefaultTextZ {
			t.Errorf("%s: z = %d, want %d", c.subtype, el.Z, DefaultTextZ)
		}
	}
}

func TestNewTextElementUnknownSubtypeFallsBackToSpeech(t *testing.T) {
	el := NewTextElement("whisper")
	if el.Subtype != SubtypeSpeech {
		t.Fatalf("subtype = %q, want speech", el.Subtype)
	}
}

func TestNewImageElementCapsNaturalSize(t *testing.T) {
	cases := []struct {
		nw, nh int
		w, h   float64
	}{
		{0, 0, 300, 220},       // unknown natural size
		{100, 80, 100, 80},     // smaller than cap
		{4000, 3000, 300, 220}, // larger than cap
		{100, 3000, 100, 220},  // mixed
	}
	for _, c := range cases {
		el := NewImageElement("assets/x.png", c.nw, c.nh)
		if el.W != c.w || el.H != c.h {
			t.Errorf("natural %dx%d: got %vx%v, want %vx%v", c.nw, c.nh, el.W, el.H, c.w, c.h)
		}
		if el.Z != DefaultImageZ {
			t.Errorf("image z = %d, want %d", el.Z, DefaultImageZ)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := NewPage()
	p.Panels[0].Elements = append(p.Panels[0].Elements, NewTextElement(SubtypeSpeech))
	c := p.Clone()
	c.Panels[0].Elements[0].X = 999
	c.Panels[0].BG = "#000000"
	if p.Panels[0].Elements[0].X == 999 {
		t.Fatal("element mutation leaked into original")
	}
	if p.Panels[0].BG == "#000000" {
		t.Fatal("panel mutation leaked into original")
	}
}

func TestElementJSONOmitsForeignVariantFields(t *testing.T) {
	img := NewImageElement("a.png", 50, 50)
	b, err := json.Marshal(img)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"subtype", "text", "fontSize", "align", "weight"} {
		if _, ok := m[k]; ok {
			t.Errorf("image element carries text field %q", k)
		}
	}
	if m["src"] != "a.png" {
		t.Errorf("src = %v", m["src"])
	}
}
