/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Script is a parsed comic page script: an ordered list of panel blocks.
// The syntax is a minimal Fountain-like convention: "PANEL n" markers open a
// panel, NAME: lines inside it become speech, CAPTION:/NARRATION: lines
// become captions and SFX: lines become sound effects.

type Script struct {
	Panels []PanelScript
}

// PanelScript holds the lines of one panel block.
type PanelScript struct {
	Description string
	Lines       []Line
}

// LineType indicates the kind of a script line.
// Dialogue: CHARACTER: text
// Caption:  CAPTION: text or NARRATION: text
// SFX:      SFX: text
// Note:     lines starting with ";" are author notes and never placed on the page
type LineType int

const (
	LineUnknown LineType = iota
	LineDialogue
	LineCaption
	LineSFX
	LineNote
)

// Line captures a single logical line (possibly with continuations) in a
// panel block. For Dialogue, Speaker holds the upper-cased character name.
type Line struct {
	Type    LineType
	Speaker string
	Text    string
	LineNo  int // 1-based starting line number in the source
}

// Error represents a parse problem with position context. Parsing is
// forgiving, so errors are advisory; the importer still produces a page.
type Error struct {
	Line    int
	Message string
}
