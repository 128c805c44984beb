/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strings"
)

// Parse parses a script text into panel blocks.
// Supported syntax (minimal):
// - Panel markers: lines starting with "Panel"/"PANEL" (optionally numbered)
//   open a new block; the rest of the line is the panel description.
// - Dialogue: NAME: text  (NAME is captured as Speaker; upper-cased, trimmed)
//   - Continuation lines indented by 2+ spaces are appended to the previous
//     Dialogue/Caption/SFX line.
//
// - Caption: CAPTION: text or NARRATION: text
// - Sound effects: SFX: text
// - Notes: lines starting with ';' are LineNote and never reach the page.
// Blank lines end continuations but are not represented as lines.
func Parse(input string) (Script, []Error) {
	s := Script{Panels: []PanelScript{}}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	current := PanelScript{}
	started := false
	var lastLine *Line

	rePanel := regexp.MustCompile(`^(?i)panel(\s*\d+)?\b[.:]?\s*(.*)$`)
	reName := regexp.MustCompile(`^([A-Za-z0-9_\- ]{1,64})\s*:\s*(.*)$`)

	flushPanel := func() {
		if started {
			s.Panels = append(s.Panels, current)
		}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Continuation line (indented) -> append to last placeable line
		if strings.HasPrefix(line, "  ") && lastLine != nil && lastLine.Type != LineNote {
			if cont := strings.TrimSpace(line); cont != "" {
				lastLine.Text += "\n" + cont
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			lastLine = nil
			continue
		}

		// Panel marker
		if m := rePanel.FindStringSubmatch(trim); m != nil {
			flushPanel()
			current = PanelScript{Description: strings.TrimSpace(m[2])}
			started = true
			lastLine = nil
			continue
		}

		// Note line
		if strings.HasPrefix(trim, ";") {
			current.Lines = append(current.Lines, Line{Type: LineNote, Text: strings.TrimSpace(strings.TrimPrefix(trim, ";")), LineNo: lineNo})
			started = true
			lastLine = nil
			continue
		}

		// NAME: text, CAPTION/NARRATION or SFX
		if m := reName.FindStringSubmatch(trim); m != nil {
			upper := strings.ToUpper(strings.TrimSpace(m[1]))
			text := strings.TrimSpace(m[2])
			lt := LineDialogue
			switch upper {
			case "CAPTION", "NARRATION":
				lt = LineCaption
			case "SFX", "SOUND":
				lt = LineSFX
			}
			current.Lines = append(current.Lines, Line{Type: lt, Speaker: upper, Text: text, LineNo: lineNo})
			started = true
			lastLine = &current.Lines[len(current.Lines)-1]
			continue
		}

		// Anything else before the first marker is an implicit first panel;
		// keep the text as an unknown line so nothing is silently dropped.
		errs = append(errs, Error{Line: lineNo, Message: "unrecognized line"})
		current.Lines = append(current.Lines, Line{Type: LineUnknown, Text: trim, LineNo: lineNo})
		started = true
		lastLine = &current.Lines[len(current.Lines)-1]
	}
	flushPanel()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return s, errs
}
