/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"comicboard/internal/domain"
)

func TestParseColor(t *testing.T) {
	fb := color.RGBA{1, 2, 3, 4}
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"#e03131", color.RGBA{0xe0, 0x31, 0x31, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#11223344", color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{"rgba(255,255,255,0.92)", color.RGBA{255, 255, 255, 235}},
		{"rgba(0, 0, 0, 0)", color.RGBA{0, 0, 0, 0}},
		{"rgb(10,20,30)", color.RGBA{10, 20, 30, 255}},
		{"", fb},
		{"#xyz", fb},
		{"rgba(300,0,0,1)", fb},
		{"blue", fb},
	}
	for _, tc := range cases {
		if got := ParseColor(tc.in, fb); got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBoardSize(t *testing.T) {
	w, h := BoardSize("4") // 2x2
	if w != 2*Margin+2*PanelW+Gap || h != 2*Margin+2*PanelH+Gap {
		t.Fatalf("got %v x %v", w, h)
	}
	// unknown keys fall back to the default grid
	w2, h2 := BoardSize("nope")
	if w2 != w || h2 != h {
		t.Fatalf("fallback size %v x %v, want %v x %v", w2, h2, w, h)
	}
}

func TestPanelRectRowMajor(t *testing.T) {
	r0 := PanelRect("4", 0)
	r1 := PanelRect("4", 1)
	r2 := PanelRect("4", 2)
	if r0.X != Margin || r0.Y != Margin {
		t.Fatalf("panel 0 at %v,%v", r0.X, r0.Y)
	}
	if r1.X != Margin+PanelW+Gap || r1.Y != Margin {
		t.Fatalf("panel 1 at %v,%v", r1.X, r1.Y)
	}
	if r2.X != Margin || r2.Y != Margin+PanelH+Gap {
		t.Fatalf("panel 2 at %v,%v", r2.X, r2.Y)
	}
}

func TestRenderFillsPanelBG(t *testing.T) {
	p := domain.Page{Layout: "1", Panels: []domain.Panel{{ID: "p", BG: "#ff0000"}}}
	img, err := Render(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	c := img.RGBAAt(int(Margin+PanelW/2), int(Margin+PanelH/2))
	if c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("panel center = %v", c)
	}
	// outside the panel the board stays white
	if c := img.RGBAAt(2, 2); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("board corner = %v", c)
	}
}

func TestRenderScale(t *testing.T) {
	p := domain.Page{Layout: "1", Panels: []domain.Panel{{ID: "p", BG: "#ffffff"}}}
	img1, _ := Render(p, 1)
	img2, _ := Render(p, 2)
	if img2.Bounds().Dx() != 2*img1.Bounds().Dx() {
		t.Fatalf("2x width %d vs %d", img2.Bounds().Dx(), img1.Bounds().Dx())
	}
}

func TestRenderTextBackground(t *testing.T) {
	el := domain.NewTextElement(domain.SubtypeCaption) // opaque #fff8d9, radius 4
	el.X, el.Y = 50, 50
	p := domain.Page{Layout: "1", Panels: []domain.Panel{{ID: "p", BG: "#ffffff", Elements: []domain.Element{el}}}}
	img, err := Render(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	c := img.RGBAAt(int(Margin+el.X+el.W/2), int(Margin+el.Y+2))
	if c != (color.RGBA{0xff, 0xf8, 0xd9, 255}) {
		t.Fatalf("caption background = %v", c)
	}
}

func TestRenderMissingImagePlaceholder(t *testing.T) {
	el := domain.NewImageElement("/nonexistent/image.png", 0, 0)
	p := domain.Page{Layout: "1", Panels: []domain.Panel{{ID: "p", BG: "#ffffff", Elements: []domain.Element{el}}}}
	img, err := Render(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	c := img.RGBAAt(int(Margin+el.X+el.W/2), int(Margin+el.Y+el.H/2))
	if c != placeholderC {
		t.Fatalf("placeholder center = %v", c)
	}
}

func TestNaturalSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 31, 17))); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	w, h, err := NaturalSize(path)
	if err != nil {
		t.Fatal(err)
	}
	if w != 31 || h != 17 {
		t.Fatalf("got %dx%d", w, h)
	}
	if _, _, err := NaturalSize(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWrapText(t *testing.T) {
	face, err := lib.Face(16, 400)
	if err != nil {
		t.Fatal(err)
	}
	lines := wrapText(face, "one two three four five six", 80)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	if got := wrapText(face, "a\nb", 1000); len(got) != 2 {
		t.Fatalf("newline split: %q", got)
	}
}

func TestFontLibWeightBuckets(t *testing.T) {
	r, err := lib.Face(16, 400)
	if err != nil {
		t.Fatal(err)
	}
	b, err := lib.Face(16, 800)
	if err != nil {
		t.Fatal(err)
	}
	if r == b {
		t.Fatal("regular and bold resolved to the same face")
	}
	b2, _ := lib.Face(16, 800)
	if b != b2 {
		t.Fatal("face cache miss for identical key")
	}
}
