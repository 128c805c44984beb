/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"comicboard/internal/backend"
	"comicboard/internal/bundle"
	"comicboard/internal/config"
	"comicboard/internal/crash"
	"comicboard/internal/domain"
	"comicboard/internal/export"
	applog "comicboard/internal/log"
	"comicboard/internal/sanitize"
	"comicboard/internal/script"
	"comicboard/internal/storage"
	"comicboard/internal/ui"
	"comicboard/internal/version"
)

func usage() {
	fmt.Println("Comic Board — multi-panel comic composer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  comicboard version|-v|--version          Show version")
	fmt.Println("  comicboard new <file.json>                Create a new document at <file.json>")
	fmt.Println("  comicboard open <file.json>               Open document and print summary")
	fmt.Println("  comicboard sanitize <in.json> <out.json>  Repair a document and write the clean form")
	fmt.Println("  comicboard export-png <file.json> <dir>   Render the document to a PNG under <dir>")
	fmt.Println("  comicboard export-pdf <file.json> <out>   Render the document to a PDF at <out>")
	fmt.Println("  comicboard export-json <file.json> <out>  Re-emit the document in canonical JSON")
	fmt.Println("  comicboard import-script <in.txt> <out.json>  Build a document from a panel script")
	fmt.Println("  comicboard export-bundle <file.json> <out.zip>  Pack the document and its images")
	fmt.Println("  comicboard import-bundle <in.zip> <dir>   Unpack a bundle into <dir>")
	fmt.Println("  comicboard publish <file.json> <title>    Publish the document to the gallery")
	fmt.Println("  comicboard gallery list                   List published pages")
	fmt.Println("  comicboard gallery get <id> <out.json>    Download a published page")
	fmt.Println("  comicboard counter                        Print the lifetime export tally")
	fmt.Println("  comicboard ui [<file.json>]               Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var snap crash.Snapshot
	defer func() { crash.Recover(recover(), snap) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Comic Board — multi-panel comic composer")
			fmt.Println(version.String())
			return
		case "new":
			if len(args) < 3 {
				fmt.Println("new requires <file.json>")
				usage()
				os.Exit(2)
			}
			path, _ := filepath.Abs(args[2])
			page := domain.NewPage()
			snap = crash.Snapshot{Path: path, Page: page, OK: true}
			l.Info("new document", slog.String("path", path))
			if err := storage.SaveDocument(path, page); err != nil {
				l.Error("new failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Created document at", path)
			return
		case "open":
			page, path := mustOpen(args, l)
			snap = crash.Snapshot{Path: path, Page: page, OK: true}
			fmt.Printf("Layout: %s\n", page.Layout)
			fmt.Printf("Panels: %d\n", len(page.Panels))
			for i, p := range page.Panels {
				fmt.Printf("  panel %d: %d element(s)\n", i, len(p.Elements))
			}
			return
		case "sanitize":
			if len(args) < 4 {
				fmt.Println("sanitize requires <in.json> and <out.json>")
				usage()
				os.Exit(2)
			}
			data, err := os.ReadFile(args[2])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			page, err := sanitize.Decode(data)
			if err != nil {
				l.Error("sanitize failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := export.JSONFile(page, args[3]); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote sanitized document to", args[3])
			return
		case "export-png":
			if len(args) < 4 {
				fmt.Println("export-png requires <file.json> and <dir>")
				usage()
				os.Exit(2)
			}
			page, path := mustOpen(args, l)
			snap = crash.Snapshot{Path: path, Page: page, OK: true}
			var counter export.Counter
			if s := openSettings(l); s != nil {
				counter = s
				defer s.Close()
			}
			out, err := export.PNG(page, args[3], counter)
			if err != nil {
				l.Error("export-png failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "export-pdf":
			if len(args) < 4 {
				fmt.Println("export-pdf requires <file.json> and <out>")
				usage()
				os.Exit(2)
			}
			page, path := mustOpen(args, l)
			snap = crash.Snapshot{Path: path, Page: page, OK: true}
			if err := export.PDF(page, args[3]); err != nil {
				l.Error("export-pdf failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", args[3])
			return
		case "export-json":
			if len(args) < 4 {
				fmt.Println("export-json requires <file.json> and <out>")
				usage()
				os.Exit(2)
			}
			page, _ := mustOpen(args, l)
			if err := export.JSONFile(page, args[3]); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", args[3])
			return
		case "import-script":
			if len(args) < 4 {
				fmt.Println("import-script requires <in.txt> and <out.json>")
				usage()
				os.Exit(2)
			}
			data, err := os.ReadFile(args[2])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			page, perrs := script.Import(string(data))
			for _, pe := range perrs {
				fmt.Printf("line %d: %s\n", pe.Line, pe.Message)
			}
			if err := storage.SaveDocument(args[3], page); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote document to", args[3])
			return
		case "export-bundle":
			if len(args) < 4 {
				fmt.Println("export-bundle requires <file.json> and <out.zip>")
				usage()
				os.Exit(2)
			}
			page, path := mustOpen(args, l)
			snap = crash.Snapshot{Path: path, Page: page, OK: true}
			missing, err := bundle.Export(page, args[3])
			if err != nil {
				l.Error("export-bundle failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, m := range missing {
				fmt.Println("Warning: asset not found:", m)
			}
			fmt.Println("Exported", args[3])
			return
		case "import-bundle":
			if len(args) < 4 {
				fmt.Println("import-bundle requires <in.zip> and <dir>")
				usage()
				os.Exit(2)
			}
			dir, _ := filepath.Abs(args[3])
			page, err := bundle.Import(args[2], dir)
			if err != nil {
				l.Error("import-bundle failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			out := filepath.Join(dir, "comic.json")
			if err := storage.SaveDocument(out, page); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Unpacked bundle; document at", out)
			return
		case "publish":
			if len(args) < 4 {
				fmt.Println("publish requires <file.json> and <title>")
				usage()
				os.Exit(2)
			}
			page, path := mustOpen(args, l)
			snap = crash.Snapshot{Path: path, Page: page, OK: true}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			res, err := galleryClient(l).PublishPage(ctx, args[3], page)
			if err != nil {
				l.Error("publish failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Published as", res.StableID)
			return
		case "gallery":
			if len(args) < 3 {
				fmt.Println("gallery requires list or get")
				usage()
				os.Exit(2)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			c := galleryClient(l)
			switch args[2] {
			case "list":
				pages, err := c.ListPages(ctx)
				if err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				for _, pm := range pages {
					fmt.Printf("%s  %-30s  %s  %s\n", pm.StableID, pm.Title, pm.Author, pm.UpdatedAt.Format(time.RFC3339))
				}
			case "get":
				if len(args) < 5 {
					fmt.Println("gallery get requires <id> and <out.json>")
					os.Exit(2)
				}
				env, err := c.GetPage(ctx, args[3])
				if err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				page, err := sanitize.Decode(env.Document)
				if err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				if err := storage.SaveDocument(args[4], page); err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Saved", args[4])
			default:
				fmt.Println("gallery requires list or get")
				os.Exit(2)
			}
			return
		case "counter":
			home, err := os.UserHomeDir()
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			s, err := storage.OpenSettings(home)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer s.Close()
			n, err := s.GetInt(export.CounterKey)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Exports so far: %d\n", n)
			return
		case "ui":
			var path string
			if len(args) >= 3 {
				path = args[2]
			}
			if err := ui.Run(path); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func mustOpen(args []string, l *slog.Logger) (domain.Page, string) {
	if len(args) < 3 {
		fmt.Println(args[1], "requires <file.json>")
		usage()
		os.Exit(2)
	}
	path, _ := filepath.Abs(args[2])
	l.Info("open document", slog.String("path", path))
	page, err := storage.OpenDocument(path)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return page, path
}

// galleryClient builds a backend client from the saved configuration. A
// missing token still yields a client; the server rejects the calls.
func galleryClient(l *slog.Logger) *backend.Client {
	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	return backend.NewClient(cfg.Gallery.BaseURL, token)
}

// openSettings returns the export tally store, or nil when it is
// unavailable. The caller owns the handle and must close it.
func openSettings(l *slog.Logger) *storage.Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	s, err := storage.OpenSettings(home)
	if err != nil {
		l.Warn("settings unavailable", slog.Any("err", err))
		return nil
	}
	return s
}
