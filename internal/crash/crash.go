/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics into a crash report plus a crash-safe autosave
// of the open document.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"comicboard/internal/domain"
	applog "comicboard/internal/log"
	"comicboard/internal/storage"
	"comicboard/internal/telemetry"
	"comicboard/internal/version"
)

// exitFn is swapped in tests so Recover does not kill the test process.
var exitFn = os.Exit

// Snapshot supplies the document state to preserve when a panic is caught.
// Path may be empty for a never-saved page.
type Snapshot struct {
	Path string
	Page domain.Page
	OK   bool // false when there is no document to save
}

// Recover logs a caught panic with a stack trace, writes a report file and
// autosaves the document next to it. The recovered value must be passed in
// because recover() only works when called directly by the deferred function.
//
// Usage: defer func() { crash.Recover(recover(), snap()) }()
func Recover(r any, snap Snapshot) {
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, _ := writeReport(snap, r, stack)
	if snap.OK {
		if path, err := autosave(snap); err != nil {
			l.Error("crash autosave failed", slog.Any("err", err))
		} else {
			l.Info("crash autosave written", slog.String("path", path))
		}
	}

	fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// autosave writes the page under a timestamped crash name so it never
// clobbers the regular document or its backups.
func autosave(snap Snapshot) (string, error) {
	dir := os.TempDir()
	base := "untitled.json"
	if snap.Path != "" {
		dir = filepath.Dir(snap.Path)
		base = filepath.Base(snap.Path)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("%s.crash-%s.json", base, stamp))
	if err := storage.SaveDocument(path, snap.Page); err != nil {
		return "", err
	}
	return path, nil
}

func writeReport(snap Snapshot, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if snap.Path != "" {
		dir = filepath.Join(filepath.Dir(snap.Path), storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Comic Board Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if snap.Path != "" {
		fmt.Fprintf(&buf, "Document: %s\n", snap.Path)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// anonymized upload, opt-in via env
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
