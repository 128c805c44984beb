/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	sub, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "alice" {
		t.Fatalf("subject %q", sub)
	}
}

func TestTokenRejections(t *testing.T) {
	good, _ := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	expired, _ := signToken("s3cret", "alice", time.Now().Add(-time.Minute))
	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", good},
		{"expired", "s3cret", expired},
		{"garbage", "s3cret", "nope"},
		{"empty", "s3cret", ""},
		{"tampered payload", "s3cret", "eyJzdWIiOiJldmUifQ." + good[len(good)-20:]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := verifyToken(tc.secret, tc.token); err == nil {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestWithAuth(t *testing.T) {
	var gotSub string
	h := withAuth("s3cret", func(w http.ResponseWriter, r *http.Request, sub string) {
		gotSub = sub
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no header: %d", w.Code)
	}

	tok, _ := signToken("s3cret", "bob", time.Now().Add(time.Hour))
	r = httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusOK || gotSub != "bob" {
		t.Fatalf("code=%d sub=%q", w.Code, gotSub)
	}
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("0001_pages.sql")
	if err != nil || v != 1 {
		t.Fatalf("v=%d err=%v", v, err)
	}
	if _, err := parseVersion("pages.sql"); err == nil {
		t.Fatal("expected error for unversioned name")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	ents, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) == 0 {
		t.Fatal("no embedded migrations")
	}
}
