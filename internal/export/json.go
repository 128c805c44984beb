/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/json"
	"fmt"
	"os"

	"comicboard/internal/domain"
)

// JSON serializes the page to indented document JSON. The output is a valid
// input for the sanitizer, so exported files round-trip.
func JSON(page domain.Page) ([]byte, error) {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	return append(data, '\n'), nil
}

// JSONFile writes the document JSON to path (no temp dance; callers wanting
// atomic document saves use the storage package).
func JSONFile(page domain.Page, path string) error {
	data, err := JSON(page)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export json: write: %w", err)
	}
	return nil
}
