/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package bundle packs a document and its referenced image assets into a
// single portable .zip, and unpacks such archives again. Image sources are
// rewritten to archive-relative paths so a bundle opens on any machine.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"comicboard/internal/domain"
	"comicboard/internal/export"
	applog "comicboard/internal/log"
	"comicboard/internal/sanitize"
	"comicboard/internal/version"
)

const (
	// DocumentName is the canonical document entry inside a bundle.
	DocumentName = "document.json"
	// AssetsPrefix is the archive directory holding copied images.
	AssetsPrefix = "assets/"
	manifestName = "bundle.manifest.txt"
)

// Export writes the page and every referenced local image into destZipPath.
// Image elements whose source file cannot be read keep their original Src and
// are reported in the returned missing list; the bundle is still written.
func Export(page domain.Page, destZipPath string) (missing []string, err error) {
	l := applog.WithComponent("bundle").With(slog.String("zip", destZipPath))
	if strings.TrimSpace(destZipPath) == "" {
		return nil, errors.New("destZipPath is required")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return nil, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Comic Board Bundle\nCreated: %s\nVersion: %s\n\n%s holds the page; %s holds its images.\n",
		time.Now().Format(time.RFC3339), version.String(), DocumentName, AssetsPrefix)
	w, err := zw.Create(manifestName)
	if err != nil {
		return nil, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	// Copy assets, rewriting each element's Src to its archive path. Basename
	// clashes between distinct sources get a numeric prefix.
	bundled := page.Clone()
	seen := map[string]string{} // original src -> archive path
	names := map[string]bool{}
	added := 0
	for pi := range bundled.Panels {
		for ei := range bundled.Panels[pi].Elements {
			el := &bundled.Panels[pi].Elements[ei]
			if el.Type != domain.ElementImage || el.Src == "" {
				continue
			}
			if arc, ok := seen[el.Src]; ok {
				el.Src = arc
				continue
			}
			data, rerr := os.ReadFile(el.Src)
			if rerr != nil {
				l.Warn("asset unreadable, kept as-is", slog.String("src", el.Src))
				missing = append(missing, el.Src)
				continue
			}
			name := filepath.Base(el.Src)
			if names[name] {
				name = fmt.Sprintf("%d-%s", added, name)
			}
			names[name] = true
			arc := AssetsPrefix + name
			fw, werr := zw.Create(arc)
			if werr != nil {
				return missing, fmt.Errorf("add asset: %w", werr)
			}
			if _, werr := fw.Write(data); werr != nil {
				return missing, fmt.Errorf("write asset: %w", werr)
			}
			seen[el.Src] = arc
			el.Src = arc
			added++
		}
	}

	doc, err := export.JSON(bundled)
	if err != nil {
		return missing, err
	}
	dw, err := zw.Create(DocumentName)
	if err != nil {
		return missing, fmt.Errorf("add document: %w", err)
	}
	if _, err := dw.Write(doc); err != nil {
		return missing, fmt.Errorf("write document: %w", err)
	}
	l.Info("bundle exported", slog.Int("assets", added), slog.Int("missing", len(missing)))
	return missing, nil
}

// Import extracts a bundle into destDir and returns the extracted page with
// image sources rewritten to the extracted asset files. Existing files in
// destDir are not overwritten. The document runs through the sanitizer, so a
// hand-edited bundle still yields a valid page.
func Import(packZipPath, destDir string) (domain.Page, error) {
	l := applog.WithComponent("bundle").With(slog.String("zip", packZipPath))
	if strings.TrimSpace(destDir) == "" {
		return domain.Page{}, errors.New("destDir is required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return domain.Page{}, fmt.Errorf("ensure dest dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return domain.Page{}, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	var docData []byte
	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == manifestName || f.FileInfo().IsDir() {
			continue
		}
		if name == DocumentName {
			rc, oerr := f.Open()
			if oerr != nil {
				return domain.Page{}, oerr
			}
			docData, err = io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return domain.Page{}, err
			}
			continue
		}
		if !strings.HasPrefix(name, AssetsPrefix) || strings.Contains(name, "..") {
			l.Warn("skip unexpected entry", slog.String("name", name))
			continue
		}
		targetPath := filepath.Join(destDir, filepath.FromSlash(name))
		if _, serr := os.Stat(targetPath); serr == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return domain.Page{}, err
		}
		rc, oerr := f.Open()
		if oerr != nil {
			return domain.Page{}, oerr
		}
		out, cerr := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if cerr != nil {
			_ = rc.Close()
			return domain.Page{}, cerr
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return domain.Page{}, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}

	if docData == nil {
		return domain.Page{}, fmt.Errorf("bundle has no %s", DocumentName)
	}
	page, err := sanitize.Decode(docData)
	if err != nil {
		return domain.Page{}, fmt.Errorf("bundle document: %w", err)
	}
	// point extracted assets at their on-disk location
	for pi := range page.Panels {
		for ei := range page.Panels[pi].Elements {
			el := &page.Panels[pi].Elements[ei]
			if el.Type == domain.ElementImage && strings.HasPrefix(el.Src, AssetsPrefix) {
				el.Src = filepath.Join(destDir, filepath.FromSlash(el.Src))
			}
		}
	}
	l.Info("bundle imported", slog.Int("files", installed))
	return page, nil
}
