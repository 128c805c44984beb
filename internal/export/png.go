/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export flattens a Page into shareable artifacts: PNG, PDF and the
// raw JSON document. Exports read the page snapshot only; selection and
// other editing state never reach an export.
package export

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"comicboard/internal/domain"
	applog "comicboard/internal/log"
	"comicboard/internal/render"
	"comicboard/internal/telemetry"
)

// PNGScale is the fixed supersampling factor for PNG output.
const PNGScale = 2

// CounterKey is the settings key tracking successful exports.
const CounterKey = "export.count"

// Counter persists the export tally. Satisfied by *storage.Settings; nil is
// allowed and skips counting.
type Counter interface {
	Increment(key string) (int64, error)
}

// PNG renders the page at PNGScale and writes comic-<unix-ms>.png into dir.
// The file is written to a temp name and renamed so a failed export leaves
// no partial output, and the counter is incremented only after the rename
// succeeded. Returns the written path.
func PNG(page domain.Page, dir string, counter Counter) (string, error) {
	log := applog.WithOperation(applog.WithComponent("export"), "png")

	img, err := render.Render(page, PNGScale)
	if err != nil {
		return "", fmt.Errorf("export png: render: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export png: ensure dir: %w", err)
	}
	name := fmt.Sprintf("comic-%d.png", time.Now().UnixMilli())
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("export png: create: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("export png: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("export png: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("export png: rename: %w", err)
	}

	var count int64
	if counter != nil {
		count, err = counter.Increment(CounterKey)
		if err != nil {
			// the artifact exists; a broken tally is not an export failure
			log.Warn("export counter update failed", "err", err)
		}
	}
	log.Info("exported png", "path", path, "count", count)
	telemetry.Event("export_png", map[string]any{"layout": page.Layout, "panels": len(page.Panels)})
	return path, nil
}
