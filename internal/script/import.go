/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"log/slog"

	"comicboard/internal/domain"
	applog "comicboard/internal/log"
	"comicboard/internal/mutate"
)

// Placement constants for imported elements, in panel units.
const (
	importMargin  = 16
	importSpacing = 12
)

// layoutForPanels picks the smallest layout that fits the given block count.
func layoutForPanels(n int) string {
	switch {
	case n <= 1:
		return "1"
	case n == 2:
		return "2"
	case n == 3:
		return "3"
	case n == 4:
		return "4"
	default:
		return "6"
	}
}

// ToPage converts a parsed script into a document. Each panel block fills one
// panel; blocks beyond the largest layout are folded into the last panel so no
// text is lost. Dialogue keeps its speaker as a "NAME: " prefix.
func ToPage(s Script) domain.Page {
	l := applog.WithComponent("script")
	layout := layoutForPanels(len(s.Panels))
	page := mutate.SetLayout(domain.NewPage(), layout)
	max := len(page.Panels)

	for i, blk := range s.Panels {
		idx := i
		if idx >= max {
			idx = max - 1
		}
		y := float64(importMargin)
		for _, ln := range blk.Lines {
			var el domain.Element
			switch ln.Type {
			case LineDialogue:
				el = domain.NewTextElement(domain.SubtypeSpeech)
				el.Text = ln.Speaker + ": " + ln.Text
			case LineCaption:
				el = domain.NewTextElement(domain.SubtypeCaption)
				el.Text = ln.Text
			case LineSFX:
				el = domain.NewTextElement(domain.SubtypeSFX)
				el.Text = ln.Text
			case LineUnknown:
				el = domain.NewTextElement(domain.SubtypeCaption)
				el.Text = ln.Text
			default:
				continue
			}
			el.X = importMargin
			el.Y = y
			y += el.H + importSpacing
			page = mutate.AddElement(page, idx, el)
		}
	}
	l.Debug("script imported", slog.Int("blocks", len(s.Panels)), slog.String("layout", layout))
	return page
}

// Import parses a script text and converts it into a document in one step.
func Import(input string) (domain.Page, []Error) {
	s, errs := Parse(input)
	return ToPage(s), errs
}
