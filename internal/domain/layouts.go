/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Layout is a named preset mapping to a fixed panel count and grid shape.
type Layout struct {
	Key        string
	Rows       int
	Cols       int
	PanelCount int
}

// DefaultLayout is the layout new pages start with and the fallback the
// sanitizer applies for unknown keys.
const DefaultLayout = "4"

// Layouts is the closed set of page layouts. Keys are the values accepted in
// the interchange document's "layout" field.
var Layouts = map[string]Layout{
	"1": {Key: "1", Rows: 1, Cols: 1, PanelCount: 1},
	"2": {Key: "2", Rows: 2, Cols: 1, PanelCount: 2},
	"3": {Key: "3", Rows: 3, Cols: 1, PanelCount: 3},
	"4": {Key: "4", Rows: 2, Cols: 2, PanelCount: 4},
	"6": {Key: "6", Rows: 3, Cols: 2, PanelCount: 6},
}

// LayoutKeys lists the layout keys in presentation order.
var LayoutKeys = []string{"1", "2", "3", "4", "6"}

// ValidLayout reports whether key names a known layout.
func ValidLayout(key string) bool {
	_, ok := Layouts[key]
	return ok
}
