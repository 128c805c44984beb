/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sanitize is the trust boundary for externally supplied page
// documents. Decode accepts arbitrary bytes claiming to be a document and
// either fails with ErrInvalidDocument (input beyond repair) or returns a
// structurally valid domain.Page with every field normalized: ids present and
// unique, enumerations restricted, numerics clamped into range. Out-of-range
// and missing fields are repaired silently; the document must always render.
//
// The routine is idempotent: sanitizing an already-sanitized document is a
// no-op, which keeps save→load cycles lossless.
package sanitize

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	"comicboard/internal/domain"
	applog "comicboard/internal/log"
)

//go:embed schema.json
var schemaBytes []byte

// ErrInvalidDocument marks input that fails the minimal shape check: not a
// JSON object, or "panels" not an array. Callers must keep their current
// document and surface the error; nothing else in this package fails.
var ErrInvalidDocument = errors.New("invalid document")

// MaxTextLen is the hard cap on a callout's text, in runes. Longer text is
// truncated silently, not rejected.
const MaxTextLen = 2000

// Numeric field ranges. Missing values fall back to the type defaults before
// clamping.
const (
	MinPos    = 0
	MaxPos    = 10000
	MinImageW = 10
	MinImageH = 10
	MinTextW  = 40
	MinTextH  = 30
	MaxSize   = 10000

	MinFontSize     = 8
	MaxFontSize     = 160
	MinCornerRadius = 0
	MaxCornerRadius = 64
	MinWeight       = 100
	MaxWeight       = 900
)

// Decode parses data as a JSON page document and sanitizes it. Parse errors
// and shape failures both map to ErrInvalidDocument.
func Decode(data []byte) (domain.Page, error) {
	docLoader := gojsonschema.NewBytesLoader(data)
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		// Unparseable JSON surfaces here.
		return domain.Page{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !result.Valid() {
		return domain.Page{}, fmt.Errorf("%w: shape check failed", ErrInvalidDocument)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Page{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Document(raw)
}

// Document sanitizes a decoded JSON value into a Page. It performs the same
// shape check as Decode for callers that already hold parsed data.
func Document(raw any) (domain.Page, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.Page{}, fmt.Errorf("%w: not an object", ErrInvalidDocument)
	}
	rawPanels, ok := obj["panels"].([]any)
	if !ok {
		return domain.Page{}, fmt.Errorf("%w: panels is not an array", ErrInvalidDocument)
	}

	l := applog.WithComponent("sanitize")

	page := domain.Page{
		Layout: domain.DefaultLayout,
		Panels: make([]domain.Panel, 0, len(rawPanels)),
	}
	if lay, ok := obj["layout"].(string); ok && domain.ValidLayout(lay) {
		page.Layout = lay
	} else if ok {
		l.Debug("unknown layout repaired", slog.String("layout", lay))
	}

	ids := map[string]bool{}
	for _, rp := range rawPanels {
		page.Panels = append(page.Panels, panel(rp, ids))
	}

	// restore len(Panels) == layout panel count so no invalid page escapes
	want := domain.Layouts[page.Layout].PanelCount
	if len(page.Panels) > want {
		l.Debug("extra panels truncated", slog.Int("have", len(page.Panels)), slog.Int("want", want))
		page.Panels = page.Panels[:want]
	}
	for len(page.Panels) < want {
		page.Panels = append(page.Panels, domain.NewPanel())
	}
	return page, nil
}

// panel repairs a single panel value. Non-object panels become fresh empty
// panels so indices stay aligned with the input.
func panel(raw any, ids map[string]bool) domain.Panel {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.NewPanel()
	}
	p := domain.Panel{
		ID:       uniqueID(str(obj["id"], ""), ids),
		BG:       str(obj["bg"], domain.PanelBG),
		Elements: []domain.Element{},
	}
	if rawEls, ok := obj["elements"].([]any); ok {
		elIDs := map[string]bool{}
		for _, re := range rawEls {
			if eobj, ok := re.(map[string]any); ok {
				p.Elements = append(p.Elements, element(eobj, elIDs))
			}
		}
	}
	return p
}

// element repairs one element object, dispatching on the "type" field.
// Unrecognized or missing types are treated as text.
func element(obj map[string]any, ids map[string]bool) domain.Element {
	if str(obj["type"], domain.ElementText) == domain.ElementImage {
		return imageElement(obj, ids)
	}
	return textElement(obj, ids)
}

func textElement(obj map[string]any, ids map[string]bool) domain.Element {
	subtype := str(obj["subtype"], domain.SubtypeSpeech)
	switch subtype {
	case domain.SubtypeSpeech, domain.SubtypeCaption, domain.SubtypeSFX:
	default:
		subtype = domain.SubtypeSpeech
	}
	d := domain.DefaultsFor(subtype)

	align := str(obj["align"], d.Align)
	switch align {
	case domain.AlignLeft, domain.AlignCenter, domain.AlignRight:
	default:
		align = d.Align
	}

	return domain.Element{
		Type:         domain.ElementText,
		ID:           uniqueID(str(obj["id"], ""), ids),
		X:            clamp(num(obj["x"], 40), MinPos, MaxPos),
		Y:            clamp(num(obj["y"], 40), MinPos, MaxPos),
		W:            clamp(num(obj["w"], d.W), MinTextW, MaxSize),
		H:            clamp(num(obj["h"], d.H), MinTextH, MaxSize),
		Rotate:       num(obj["rotate"], 0),
		Z:            intFloor(num(obj["z"], domain.DefaultTextZ), 0),
		Subtype:      subtype,
		Text:         truncate(text(obj["text"]), MaxTextLen),
		FontSize:     clamp(num(obj["fontSize"], d.FontSize), MinFontSize, MaxFontSize),
		Color:        str(obj["color"], d.Color),
		Background:   str(obj["background"], d.Background),
		Align:        align,
		CornerRadius: clamp(num(obj["cornerRadius"], d.CornerRadius), MinCornerRadius, MaxCornerRadius),
		Weight:       int(clamp(num(obj["weight"], float64(d.Weight)), MinWeight, MaxWeight)),
	}
}

func imageElement(obj map[string]any, ids map[string]bool) domain.Element {
	return domain.Element{
		Type:   domain.ElementImage,
		ID:     uniqueID(str(obj["id"], ""), ids),
		X:      clamp(num(obj["x"], 20), MinPos, MaxPos),
		Y:      clamp(num(obj["y"], 20), MinPos, MaxPos),
		W:      clamp(num(obj["w"], domain.MaxImageDefaultW), MinImageW, MaxSize),
		H:      clamp(num(obj["h"], domain.MaxImageDefaultH), MinImageH, MaxSize),
		Rotate: num(obj["rotate"], 0),
		Z:      intFloor(num(obj["z"], domain.DefaultImageZ), 0),
		Src:    str(obj["src"], ""),
	}
}

// --- Field coercion helpers ---

// str returns v if it is a non-empty string, else def.
func str(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// text coerces a value to a string the way a lenient reader would: strings
// pass through, numbers and bools are formatted, everything else is empty.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// num returns v as a finite float64, or def for missing, non-numeric and
// NaN/Inf values.
func num(v any, def float64) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// intFloor truncates v to an int not smaller than floor.
func intFloor(v float64, floor int) int {
	n := int(v)
	if n < floor {
		return floor
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// uniqueID keeps id if present and unused in this scope, else generates one.
func uniqueID(id string, seen map[string]bool) string {
	if id == "" || seen[id] {
		id = domain.NewID()
	}
	seen[id] = true
	return id
}
