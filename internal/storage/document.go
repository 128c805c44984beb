/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage handles document files and the local settings database.
// Document writes are transactional: temp file in the target directory,
// fsync, rename. Every byte stream read back goes through the sanitizer, so
// a loaded page is always well-formed or the load fails as a whole.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"comicboard/internal/domain"
	applog "comicboard/internal/log"
	"comicboard/internal/sanitize"
)

const (
	// BackupsDirName holds timestamped copies next to the document.
	BackupsDirName = "backups"
)

// SaveDocument writes the page as JSON to path with a timestamped backup of
// the previous file. The write is temp-then-rename so a crash mid-save
// leaves the old document intact.
func SaveDocument(path string, page domain.Page) error {
	if path == "" {
		return errors.New("document path is empty")
	}
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}

	// back up the current file before replacing it
	if _, statErr := os.Stat(path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp)
		if cerr := copyFile(path, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup document: %w", cerr)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// on Windows rename does not replace
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	applog.WithComponent("storage").Debug("document saved", "path", path)
	return nil
}

// OpenDocument reads and sanitizes the document at path. If the current file
// cannot be read or decoded, the newest parseable timestamped backup is
// tried before giving up.
func OpenDocument(path string) (domain.Page, error) {
	log := applog.WithOperation(applog.WithComponent("storage"), "open")
	data, rerr := os.ReadFile(path)
	if rerr == nil {
		page, derr := sanitize.Decode(data)
		if derr == nil {
			return page, nil
		}
		rerr = derr
	}
	page, berr := openFromLatestBackup(path)
	if berr != nil {
		return domain.Page{}, fmt.Errorf("open document: %w; backup attempt: %v", rerr, berr)
	}
	log.Warn("document restored from backup", "path", path, "err", rerr)
	return page, nil
}

// openFromLatestBackup tries backups newest-first until one sanitizes.
func openFromLatestBackup(path string) (domain.Page, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return domain.Page{}, fmt.Errorf("read backups dir: %w", err)
	}
	base := filepath.Base(path)
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return domain.Page{}, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			continue
		}
		page, derr := sanitize.Decode(b)
		if derr == nil {
			return page, nil
		}
	}
	return domain.Page{}, errors.New("no parseable backup")
}

// writeFileSync writes data to path and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
