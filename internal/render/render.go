/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterizes a Page into an image.RGBA. It is the single
// drawing path shared by PNG export and UI snapshots; selection state is
// never part of the input and never drawn.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"comicboard/internal/domain"
	"comicboard/internal/geom"
	applog "comicboard/internal/log"
)

// Board metrics in page units. Element coordinates are panel-local; panels
// are placed on the board grid by PanelRect.
const (
	PanelW = 400.0
	PanelH = 300.0
	Gap    = 12.0
	Margin = 16.0
)

const textPad = 8.0

var (
	boardBG      = color.RGBA{255, 255, 255, 255}
	panelBorder  = color.RGBA{17, 17, 17, 255}
	placeholderC = color.RGBA{229, 231, 235, 255}
)

// BoardSize returns the full board dimensions for a layout key, in page
// units. Unknown keys use the default layout.
func BoardSize(layoutKey string) (w, h float64) {
	l := layoutOf(layoutKey)
	w = 2*Margin + float64(l.Cols)*PanelW + float64(l.Cols-1)*Gap
	h = 2*Margin + float64(l.Rows)*PanelH + float64(l.Rows-1)*Gap
	return w, h
}

// PanelRect returns panel i's rectangle in board coordinates. Panels fill
// the grid row-major.
func PanelRect(layoutKey string, i int) geom.Rect {
	l := layoutOf(layoutKey)
	row := i / l.Cols
	col := i % l.Cols
	return geom.R(
		Margin+float64(col)*(PanelW+Gap),
		Margin+float64(row)*(PanelH+Gap),
		PanelW, PanelH,
	)
}

func layoutOf(key string) domain.Layout {
	if l, ok := domain.Layouts[key]; ok {
		return l
	}
	return domain.Layouts[domain.DefaultLayout]
}

// Render rasterizes the page at the given scale factor (1 = page units as
// pixels). Image elements whose source cannot be loaded render as gray
// placeholders rather than failing the whole page.
func Render(page domain.Page, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	bw, bh := BoardSize(page.Layout)
	img := image.NewRGBA(image.Rect(0, 0, px(bw*scale), px(bh*scale)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: boardBG}, image.Point{}, draw.Src)

	log := applog.WithComponent("render")
	for i, pnl := range page.Panels {
		pr := PanelRect(page.Layout, i)
		fillRect(img, scaleRect(pr, scale), ParseColor(pnl.BG, boardBG))
		strokeRect(img, scaleRect(pr, scale), px(scale), panelBorder)

		for _, el := range paintOrder(pnl.Elements) {
			layer, err := renderElement(el, scale)
			if err != nil {
				log.Debug("element render fallback", "id", el.ID, "err", err)
				continue
			}
			compositeElement(img, layer, pr, el, scale)
		}
	}
	return img, nil
}

func paintOrder(els []domain.Element) []domain.Element {
	out := append([]domain.Element(nil), els...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// renderElement draws the element, unrotated, into its own layer.
func renderElement(el domain.Element, scale float64) (*image.RGBA, error) {
	w, h := px(el.W*scale), px(el.H*scale)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("degenerate element %s", el.ID)
	}
	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	if el.IsText() {
		drawTextElement(layer, el, scale)
		return layer, nil
	}
	src, err := LoadImage(el.Src)
	if err != nil {
		fillRect(layer, layer.Bounds(), placeholderC)
		strokeRect(layer, layer.Bounds(), px(scale), panelBorder)
		return layer, nil
	}
	xdraw.ApproxBiLinear.Scale(layer, layer.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return layer, nil
}

func drawTextElement(layer *image.RGBA, el domain.Element, scale float64) {
	b := layer.Bounds()
	bg := ParseColor(el.Background, color.RGBA{255, 255, 255, 235})
	if bg.A > 0 {
		fillRoundedRect(layer, b, px(el.CornerRadius*scale), bg)
	}
	face, err := lib.Face(el.FontSize*scale, el.Weight)
	if err != nil || el.Text == "" {
		return
	}
	fg := ParseColor(el.Color, color.RGBA{17, 17, 17, 255})
	pad := px(textPad * scale)
	maxW := b.Dx() - 2*pad
	lines := wrapText(face, el.Text, maxW)
	m := face.Metrics()
	lineH := m.Height.Ceil()
	y := b.Min.Y + pad + m.Ascent.Ceil()
	d := &font.Drawer{Dst: layer, Src: &image.Uniform{C: fg}, Face: face}
	for _, line := range lines {
		if y-m.Ascent.Ceil() > b.Max.Y {
			break
		}
		adv := d.MeasureString(line).Ceil()
		x := b.Min.X + pad
		switch el.Align {
		case domain.AlignCenter:
			x = b.Min.X + (b.Dx()-adv)/2
		case domain.AlignRight:
			x = b.Max.X - pad - adv
		}
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += lineH
	}
}

// wrapText splits text into lines fitting maxW pixels, breaking greedily on
// spaces. Explicit newlines are honored; a single overlong word is emitted
// unbroken.
func wrapText(face font.Face, text string, maxW int) []string {
	d := &font.Drawer{Face: face}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			cand := cur + " " + w
			if d.MeasureString(cand).Ceil() <= maxW {
				cur = cand
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines
}

// compositeElement places the layer on the board, applying the element's
// rotation around its center.
func compositeElement(dst *image.RGBA, layer *image.RGBA, panel geom.Rect, el domain.Element, scale float64) {
	ox := (panel.X + el.X) * scale
	oy := (panel.Y + el.Y) * scale
	if el.Rotate == 0 {
		r := image.Rect(px(ox), px(oy), px(ox)+layer.Bounds().Dx(), px(oy)+layer.Bounds().Dy())
		draw.Draw(dst, r, layer, image.Point{}, draw.Over)
		return
	}
	er := geom.R(ox, oy, el.W*scale, el.H*scale)
	m := geom.RotateAround(geom.Degrees(el.Rotate), er.Center()).Mul(geom.Translate(ox, oy))
	aff := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
	xdraw.BiLinear.Transform(dst, aff, layer, layer.Bounds(), xdraw.Over, nil)
}

// px rounds a scaled coordinate to a pixel.
func px(v float64) int { return int(math.Round(v)) }

func scaleRect(r geom.Rect, s float64) image.Rectangle {
	return image.Rect(px(r.X*s), px(r.Y*s), px((r.X+r.W)*s), px((r.Y+r.H)*s))
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

// strokeRect draws an inset border of the given thickness.
func strokeRect(img *image.RGBA, r image.Rectangle, thick int, col color.RGBA) {
	if thick < 1 {
		thick = 1
	}
	u := &image.Uniform{C: col}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
}

// fillRoundedRect fills r with col, clipping the four corners to quarter
// circles of the given radius via an alpha mask.
func fillRoundedRect(img *image.RGBA, r image.Rectangle, radius int, col color.RGBA) {
	if radius <= 0 {
		fillRect(img, r, col)
		return
	}
	max := r.Dx() / 2
	if r.Dy()/2 < max {
		max = r.Dy() / 2
	}
	if radius > max {
		radius = max
	}
	mask := image.NewAlpha(r)
	rr := float64(radius)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			// distance from the nearest corner circle center, or inside the
			// straight sections
			cx := math.Max(math.Max(float64(r.Min.X+radius-x), float64(x-(r.Max.X-1-radius))), 0)
			cy := math.Max(math.Max(float64(r.Min.Y+radius-y), float64(y-(r.Max.Y-1-radius))), 0)
			if cx*cx+cy*cy <= rr*rr {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	draw.DrawMask(img, r, &image.Uniform{C: col}, image.Point{}, mask, r.Min, draw.Over)
}
