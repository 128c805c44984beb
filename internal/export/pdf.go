/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"comicboard/internal/domain"
	applog "comicboard/internal/log"
	"comicboard/internal/render"
)

// PDF writes the page as a single-page vector PDF at outPath. Page units map
// 1:1 to points. Text uses built-in Helvetica so nothing needs embedding;
// images are placed from their source files and skipped when unreadable.
func PDF(page domain.Page, outPath string) error {
	log := applog.WithOperation(applog.WithComponent("export"), "pdf")

	bw, bh := render.BoardSize(page.Layout)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: bw, Ht: bh},
	})
	pdf.SetTitle("Comic Board page", false)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: bw, Ht: bh})

	for i, pnl := range page.Panels {
		pr := render.PanelRect(page.Layout, i)
		bg := render.ParseColor(pnl.BG, color.RGBA{255, 255, 255, 255})
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.SetDrawColor(17, 17, 17)
		pdf.SetLineWidth(1)
		pdf.Rect(pr.X, pr.Y, pr.W, pr.H, "FD")

		// clip element drawing to the panel frame
		pdf.ClipRect(pr.X, pr.Y, pr.W, pr.H, false)
		for _, el := range pnl.Elements {
			drawPDFElement(pdf, pr.X+el.X, pr.Y+el.Y, el)
		}
		pdf.ClipEnd()
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export pdf: ensure dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("export pdf: write: %w", err)
	}
	log.Info("exported pdf", "path", outPath)
	return nil
}

func drawPDFElement(pdf *gofpdf.Fpdf, x, y float64, el domain.Element) {
	if el.Rotate != 0 {
		pdf.TransformBegin()
		pdf.TransformRotate(-el.Rotate, x+el.W/2, y+el.H/2)
		defer pdf.TransformEnd()
	}
	if !el.IsText() {
		if _, err := os.Stat(el.Src); err == nil {
			opts := gofpdf.ImageOptions{ReadDpi: true}
			pdf.ImageOptions(el.Src, x, y, el.W, el.H, false, opts, 0, "")
		} else {
			pdf.SetFillColor(229, 231, 235)
			pdf.Rect(x, y, el.W, el.H, "F")
		}
		return
	}

	bg := render.ParseColor(el.Background, color.RGBA{255, 255, 255, 235})
	if bg.A > 0 {
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		if el.CornerRadius > 0 {
			pdf.RoundedRect(x, y, el.W, el.H, el.CornerRadius, "1234", "F")
		} else {
			pdf.Rect(x, y, el.W, el.H, "F")
		}
	}
	if el.Text == "" {
		return
	}
	fg := render.ParseColor(el.Color, color.RGBA{17, 17, 17, 255})
	pdf.SetTextColor(int(fg.R), int(fg.G), int(fg.B))
	style := ""
	if el.Weight >= render.BoldWeight {
		style = "B"
	}
	size := el.FontSize
	if size <= 0 {
		size = 16
	}
	pdf.SetFont("Helvetica", style, size)

	const pad = 8.0
	cy := y + pad + size
	for _, line := range strings.Split(el.Text, "\n") {
		w := pdf.GetStringWidth(line)
		cx := x + pad
		switch el.Align {
		case domain.AlignCenter:
			cx = x + (el.W-w)/2
		case domain.AlignRight:
			cx = x + el.W - pad - w
		}
		pdf.Text(cx, cy, line)
		cy += size * 1.2
	}
}
