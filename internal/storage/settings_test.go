/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"path/filepath"
	"testing"
)

func openTestSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := OpenSettings(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSettingsGetSetRoundTrip(t *testing.T) {
	s := openTestSettings(t)
	if v, err := s.Get("missing"); err != nil || v != "" {
		t.Fatalf("missing key: %q err=%v", v, err)
	}
	if err := s.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("k"); v != "v2" {
		t.Fatalf("got %q", v)
	}
}

func TestSettingsIncrement(t *testing.T) {
	s := openTestSettings(t)
	for want := int64(1); want <= 3; want++ {
		got, err := s.Increment("export.count")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
	if v, _ := s.GetInt("export.count"); v != 3 {
		t.Fatalf("GetInt = %d", v)
	}
}

func TestSettingsPersistAcrossReopen(t *testing.T) {
	root := t.TempDir()
	s, err := OpenSettings(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Increment("export.count"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	s2, err := OpenSettings(root)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if v, _ := s2.GetInt("export.count"); v != 1 {
		t.Fatalf("counter after reopen = %d", v)
	}
}

func TestOpenSettingsRequiresRoot(t *testing.T) {
	if _, err := OpenSettings(""); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestSettingsPathUnderRoot(t *testing.T) {
	p := SettingsPath("/tmp/x")
	if p != filepath.Join("/tmp/x", SettingsDirName, SettingsFileName) {
		t.Fatalf("path %q", p)
	}
}
