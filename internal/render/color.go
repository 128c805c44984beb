/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ParseColor parses the color strings documents carry: "#rgb", "#rrggbb",
// "#rrggbbaa" and "rgba(r,g,b,a)" with a in 0..1. The document treats colors
// as opaque strings; only the renderer interprets them. Unparseable input
// returns fallback.
func ParseColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if strings.HasPrefix(s, "#") {
		if c, ok := parseHex(s[1:]); ok {
			return c
		}
		return fallback
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "rgba("); ok {
		if c, ok := parseRGBA(rest); ok {
			return c
		}
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "rgb("); ok {
		if c, ok := parseRGBA(rest); ok {
			return c
		}
	}
	return fallback
}

func parseHex(h string) (color.RGBA, bool) {
	hex := func(s string) (uint8, bool) {
		v, err := strconv.ParseUint(s, 16, 8)
		return uint8(v), err == nil
	}
	switch len(h) {
	case 3:
		r, ok1 := hex(strings.Repeat(h[0:1], 2))
		g, ok2 := hex(strings.Repeat(h[1:2], 2))
		b, ok3 := hex(strings.Repeat(h[2:3], 2))
		if ok1 && ok2 && ok3 {
			return color.RGBA{R: r, G: g, B: b, A: 255}, true
		}
	case 6, 8:
		r, ok1 := hex(h[0:2])
		g, ok2 := hex(h[2:4])
		b, ok3 := hex(h[4:6])
		a := uint8(255)
		ok4 := true
		if len(h) == 8 {
			a, ok4 = hex(h[6:8])
		}
		if ok1 && ok2 && ok3 && ok4 {
			return color.RGBA{R: r, G: g, B: b, A: a}, true
		}
	}
	return color.RGBA{}, false
}

func parseRGBA(body string) (color.RGBA, bool) {
	body = strings.TrimSuffix(strings.TrimSpace(body), ")")
	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, false
		}
		ch[i] = uint8(math.Round(v))
	}
	a := uint8(255)
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return color.RGBA{}, false
		}
		a = uint8(math.Round(v * 255))
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}
