/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CBD_TELEMETRY_OPT_IN", "")
	t.Setenv("CBD_TELEMETRY_URL", "")
	cfg := FromEnv()
	if cfg.OptIn || cfg.EventsURL != "" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Fatalf("timeout %v", cfg.Timeout)
	}
}

func TestDisabledDropsEvents(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("export_png", nil)
	c.Flush(context.Background())
	if hits.Load() != 0 {
		t.Fatal("disabled client sent events")
	}
}

func TestEventDelivery(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		select {
		case got <- m:
		default:
		}
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("export_png", map[string]any{"layout": "4"})

	select {
	case m := <-got:
		if m["name"] != "export_png" || m["layout"] != "4" {
			t.Fatalf("payload %v", m)
		}
		if m["version"] == "" || m["os"] == "" {
			t.Fatalf("missing ambient fields: %v", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestEnabled(t *testing.T) {
	if (&Client{}).Enabled() {
		t.Fatal("zero client enabled")
	}
	c := New(Config{OptIn: true, EventsURL: "http://localhost:0", Timeout: time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatal("configured client disabled")
	}
}
