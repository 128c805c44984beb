/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"comicboard/internal/domain"
)

// Client talks to a gallery server from the desktop app.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient normalizes baseURL and returns a ready client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// ListPages returns published page metadata, newest first.
func (c *Client) ListPages(ctx context.Context) ([]PageMeta, error) {
	var list []PageMeta
	if err := c.doJSON(ctx, http.MethodGet, "/api/pages", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PageEnvelope matches the server response for a single page.
type PageEnvelope struct {
	Meta     PageMeta        `json:"meta"`
	Document json.RawMessage `json:"document"`
}

// GetPage fetches one published page by its stable id.
func (c *Client) GetPage(ctx context.Context, stableID string) (*PageEnvelope, error) {
	var env PageEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/pages/"+stableID, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PublishResult is the server acknowledgement for a publish.
type PublishResult struct {
	ID       int64  `json:"id"`
	StableID string `json:"stable_id"`
}

// PublishPage uploads the page under the given title.
func (c *Client) PublishPage(ctx context.Context, title string, page domain.Page) (*PublishResult, error) {
	doc, err := json.Marshal(page)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"title": title, "document": json.RawMessage(doc)}
	var res PublishResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/pages", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
