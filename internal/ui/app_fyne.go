//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"comicboard/internal/config"
	"comicboard/internal/crash"
	"comicboard/internal/domain"
	"comicboard/internal/editor"
	"comicboard/internal/export"
	"comicboard/internal/geom"
	applog "comicboard/internal/log"
	"comicboard/internal/render"
	"comicboard/internal/storage"
	"comicboard/internal/version"
)

// Run starts the Fyne desktop composer. docPath may be empty for a new page.
func Run(docPath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, _, _ := config.Load()

	page := domain.NewPage()
	if docPath != "" {
		if p, err := storage.OpenDocument(docPath); err == nil {
			page = p
		} else {
			l.Warn("open document failed, starting fresh", slog.String("path", docPath), slog.Any("err", err))
			docPath = ""
		}
	}

	fyneApp := app.NewWithID("comicboard")
	w := fyneApp.NewWindow("Comic Board")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 800)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	board := NewBoardCanvas(page)
	board.docPath = docPath

	defer func() { crash.Recover(recover(), boardSnapshot(board)) }()

	// settings db for the export counter; a failure here degrades to no tally
	var counter export.Counter
	if home, err := os.UserHomeDir(); err == nil {
		if s, serr := storage.OpenSettings(home); serr == nil {
			counter = s
			defer s.Close()
		} else {
			l.Warn("settings unavailable", slog.Any("err", serr))
		}
	}

	exportDir := cfg.General.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(os.TempDir(), "comicboard-exports")
	}

	saveDoc := func() {
		if board.docPath == "" {
			fd := dialog.NewFileSave(func(uri fyne.URIWriteCloser, err error) {
				if err != nil || uri == nil {
					return
				}
				_ = uri.Close()
				board.docPath = uri.URI().Path()
				if serr := storage.SaveDocument(board.docPath, board.ctrl.Page()); serr != nil {
					dialog.ShowError(serr, w)
					return
				}
				status.SetText("Saved " + board.docPath)
			}, w)
			fd.SetFileName("comic.json")
			fd.Show()
			return
		}
		if err := storage.SaveDocument(board.docPath, board.ctrl.Page()); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + board.docPath)
	}

	openDoc := func() {
		fd := dialog.NewFileOpen(func(uri fyne.URIReadCloser, err error) {
			if err != nil || uri == nil {
				return
			}
			_ = uri.Close()
			path := uri.URI().Path()
			p, oerr := storage.OpenDocument(path)
			if oerr != nil {
				// keep the current page on an unrepairable document
				dialog.ShowError(oerr, w)
				return
			}
			board.docPath = path
			board.ctrl.Replace(p)
			board.Refresh()
			status.SetText("Opened " + path)
		}, w)
		fd.Show()
	}

	addText := func(subtype string) {
		board.ctrl.AddElement(board.targetPanel(), domain.NewTextElement(subtype))
		board.Refresh()
	}

	addImage := func() {
		// each request bumps the generation; a completion for a stale
		// generation is dropped instead of mutating the newer state
		board.imageGen++
		gen := board.imageGen
		fd := dialog.NewFileOpen(func(uri fyne.URIReadCloser, err error) {
			if err != nil || uri == nil {
				return
			}
			_ = uri.Close()
			if gen != board.imageGen {
				l.Debug("dropping stale image pick")
				return
			}
			path := uri.URI().Path()
			nw, nh, perr := render.NaturalSize(path)
			if perr != nil {
				nw, nh = 0, 0
			}
			board.ctrl.AddElement(board.targetPanel(), domain.NewImageElement(path, nw, nh))
			board.Refresh()
		}, w)
		fd.Show()
	}

	exportPNG := func() {
		path, err := export.PNG(board.ctrl.Page(), exportDir, counter)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported " + path)
	}

	exportPDF := func() {
		path := filepath.Join(exportDir, "comic.pdf")
		if err := export.PDF(board.ctrl.Page(), path); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported " + path)
	}

	layoutSelect := widget.NewSelect(domain.LayoutKeys, func(key string) {
		board.ctrl.SetLayout(key)
		board.Refresh()
	})
	layoutSelect.SetSelected(page.Layout)

	toolbar := container.NewHBox(
		widget.NewButton("Speech", func() { addText(domain.SubtypeSpeech) }),
		widget.NewButton("Caption", func() { addText(domain.SubtypeCaption) }),
		widget.NewButton("SFX", func() { addText(domain.SubtypeSFX) }),
		widget.NewButton("Image", addImage),
		widget.NewSeparator(),
		widget.NewLabel("Layout"),
		layoutSelect,
		widget.NewSeparator(),
		widget.NewButton("Export PNG", exportPNG),
		widget.NewButton("Export PDF", exportPDF),
	)

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", openDoc),
		fyne.NewMenuItem("Save", saveDoc),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG", exportPNG),
		fyne.NewMenuItem("Export PDF", exportPDF),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu))

	// keyboard editing goes straight to the controller; shift state is
	// tracked from raw key events
	if dc, ok := w.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case desktop.KeyShiftLeft, desktop.KeyShiftRight:
				board.shift = true
			default:
				board.handleKey(ev.Name)
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				board.shift = false
			}
		})
	}

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, board))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	return nil
}

func boardSnapshot(b *BoardCanvas) crash.Snapshot {
	if b == nil {
		return crash.Snapshot{}
	}
	return crash.Snapshot{Path: b.docPath, Page: b.ctrl.Page(), OK: true}
}

// BoardCanvas shows the rendered page and feeds pointer and keyboard input
// to the editor controller. It draws the committed snapshot only; the
// selection bbox and resize handle are the sole overlay.
type BoardCanvas struct {
	widget.BaseWidget

	ctrl *editor.Controller

	zoom             float32
	offsetX, offsetY float32

	docPath  string
	shift    bool
	imageGen int

	dragging bool
}

const handleSize = 10

func NewBoardCanvas(page domain.Page) *BoardCanvas {
	b := &BoardCanvas{zoom: 1}
	b.ctrl = editor.New(page, nil)
	b.ExtendBaseWidget(b)
	return b
}

// targetPanel is where new elements land: the selected panel, else panel 0.
func (b *BoardCanvas) targetPanel() int {
	if sel := b.ctrl.Selection(); !sel.None() {
		return sel.Panel
	}
	return 0
}

func (b *BoardCanvas) handleKey(name fyne.KeyName) {
	switch name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		b.ctrl.Key(editor.KeyDelete, b.shift)
	case fyne.KeyLeft:
		b.ctrl.Key(editor.KeyLeft, b.shift)
	case fyne.KeyRight:
		b.ctrl.Key(editor.KeyRight, b.shift)
	case fyne.KeyUp:
		b.ctrl.Key(editor.KeyUp, b.shift)
	case fyne.KeyDown:
		b.ctrl.Key(editor.KeyDown, b.shift)
	case fyne.KeyRightBracket:
		b.ctrl.Key(editor.KeyRaise, b.shift)
	case fyne.KeyLeftBracket:
		b.ctrl.Key(editor.KeyLower, b.shift)
	default:
		return
	}
	b.Refresh()
}

// board <-> screen mapping (board units scaled by zoom, centered with pan)
func (b *BoardCanvas) boardOrigin() (cx, cy float32) {
	bw, bh := render.BoardSize(b.ctrl.Page().Layout)
	size := b.Size()
	cx = size.Width/2 - float32(bw)*b.zoom/2 + b.offsetX
	cy = size.Height/2 - float32(bh)*b.zoom/2 + b.offsetY
	return cx, cy
}

func (b *BoardCanvas) toBoard(pos fyne.Position) geom.Pt {
	cx, cy := b.boardOrigin()
	return geom.Pt{X: float64((pos.X - cx) / b.zoom), Y: float64((pos.Y - cy) / b.zoom)}
}

func (b *BoardCanvas) toScreen(p geom.Pt) fyne.Position {
	cx, cy := b.boardOrigin()
	return fyne.NewPos(cx+float32(p.X)*b.zoom, cy+float32(p.Y)*b.zoom)
}

// panelAt returns the panel index under the board point, or -1.
func (b *BoardCanvas) panelAt(pt geom.Pt) int {
	page := b.ctrl.Page()
	for i := range page.Panels {
		if render.PanelRect(page.Layout, i).Contains(pt) {
			return i
		}
	}
	return -1
}

// selectionRect returns the selected element's unrotated rect in board
// coordinates.
func (b *BoardCanvas) selectionRect() (geom.Rect, bool) {
	el, ok := b.ctrl.Selected()
	if !ok {
		return geom.Rect{}, false
	}
	sel := b.ctrl.Selection()
	pr := render.PanelRect(b.ctrl.Page().Layout, sel.Panel)
	return geom.R(pr.X+el.X, pr.Y+el.Y, el.W, el.H), true
}

// onSEHandle reports whether the screen position hits the resize handle.
func (b *BoardCanvas) onSEHandle(pos fyne.Position) bool {
	r, ok := b.selectionRect()
	if !ok {
		return false
	}
	corner := b.toScreen(r.Max())
	dx := pos.X - corner.X
	dy := pos.Y - corner.Y
	return dx >= -handleSize && dx <= handleSize && dy >= -handleSize && dy <= handleSize
}

// pressAt routes a press position into a controller PointerDown. Local
// coordinates are panel-relative, matching element geometry.
func (b *BoardCanvas) pressAt(pos fyne.Position) {
	pt := b.toBoard(pos)
	onHandle := b.onSEHandle(pos)
	panel := b.panelAt(pt)
	if onHandle {
		// a handle press keeps the current selection even when the handle
		// juts outside the panel
		panel = b.ctrl.Selection().Panel
	}
	if panel < 0 {
		b.ctrl.PointerDown(-1, "", false, 0, 0)
		return
	}
	pr := render.PanelRect(b.ctrl.Page().Layout, panel)
	lx, ly := pt.X-pr.X, pt.Y-pr.Y
	id := ""
	if onHandle {
		id = b.ctrl.Selection().Element
	} else if hit, ok := b.ctrl.HitTest(panel, lx, ly); ok {
		id = hit
	}
	b.ctrl.PointerDown(panel, id, onHandle, lx, ly)
}

// Tapped selects (press and release in place).
func (b *BoardCanvas) Tapped(e *fyne.PointEvent) {
	b.pressAt(e.Position)
	b.ctrl.PointerUp()
	b.Refresh()
}

// Dragged starts a gesture on its first event and feeds moves afterwards.
// Drags on the board background pan the view.
func (b *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if !b.dragging {
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		b.pressAt(start)
		b.dragging = true
	}
	if b.ctrl.Dragging() {
		sel := b.ctrl.Selection()
		pr := render.PanelRect(b.ctrl.Page().Layout, sel.Panel)
		pt := b.toBoard(e.Position)
		b.ctrl.PointerMove(pt.X-pr.X, pt.Y-pr.Y)
	} else {
		b.offsetX += e.Dragged.DX
		b.offsetY += e.Dragged.DY
	}
	b.Refresh()
}

func (b *BoardCanvas) DragEnd() {
	b.ctrl.PointerUp()
	b.dragging = false
	b.Refresh()
}

// Scrolled zooms around the widget center.
func (b *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	b.zoom += e.Scrolled.DY * 0.05
	if b.zoom < 0.25 {
		b.zoom = 0.25
	}
	if b.zoom > 4 {
		b.zoom = 4
	}
	b.Refresh()
}

func (b *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	img := canvas.NewImageFromImage(nil)
	img.ScaleMode = canvas.ImageScaleFastest

	bbox := canvas.NewRectangle(color.RGBA{})
	bbox.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	bbox.StrokeWidth = 1
	bbox.Hide()
	handle := canvas.NewRectangle(color.RGBA{R: 0, G: 170, B: 255, A: 255})
	handle.Hide()

	return &boardRenderer{
		b:       b,
		objects: []fyne.CanvasObject{bg, img, bbox, handle},
		bg:      bg, img: img, bbox: bbox, handle: handle,
	}
}

type boardRenderer struct {
	b       *BoardCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	img     *canvas.Image
	bbox    *canvas.Rectangle
	handle  *canvas.Rectangle
}

func (r *boardRenderer) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.Refresh()
}

func (r *boardRenderer) Refresh() {
	b := r.b
	page := b.ctrl.Page()
	snapshot, err := render.Render(page, float64(b.zoom))
	if err == nil {
		r.img.Image = snapshot
		bw, bh := render.BoardSize(page.Layout)
		cx, cy := b.boardOrigin()
		r.img.Move(fyne.NewPos(cx, cy))
		r.img.Resize(fyne.NewSize(float32(bw)*b.zoom, float32(bh)*b.zoom))
		r.img.Refresh()
	}

	if sel, ok := b.selectionRect(); ok {
		p0 := b.toScreen(sel.Min())
		p1 := b.toScreen(sel.Max())
		r.bbox.Move(p0)
		r.bbox.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
		r.bbox.Show()
		r.handle.Move(fyne.NewPos(p1.X-handleSize/2, p1.Y-handleSize/2))
		r.handle.Resize(fyne.NewSize(handleSize, handleSize))
		r.handle.Show()
	} else {
		r.bbox.Hide()
		r.handle.Hide()
	}
	r.bbox.Refresh()
	r.handle.Refresh()
}

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) Destroy()                     {}
