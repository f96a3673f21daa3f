// Package gist is the fire-and-forget upload side-channel §4.7 step 9
// calls when a request sets upload=true. It is named an external
// collaborator by spec.md §1 ("thin I/O wrappers around well-known
// mechanisms"), so it talks to the GitHub Gists API directly over
// net/http rather than pulling in a dedicated client library — there is
// no Gist-specific SDK among the teacher's or the pack's dependencies to
// ground this on (see DESIGN.md).
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiURL is a var rather than a const so tests can redirect it at an
// httptest server.
var apiURL = "https://api.github.com/gists"

type Uploader struct {
	Token  string
	Client *http.Client
}

func New(token string) *Uploader {
	return &Uploader{Token: token, Client: &http.Client{Timeout: 15 * time.Second}}
}

type file struct {
	Content string `json:"content"`
}

type request struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]file `json:"files"`
}

type response struct {
	HTMLURL string `json:"html_url"`
}

// Upload posts content as a new Gist file named filename and returns its
// HTML URL. Called from a goroutine.SafeGo wrapper by the orchestrator —
// its failure must not affect the response already sent to the client.
func (u *Uploader) Upload(ctx context.Context, filename, content string) (string, error) {
	if filename == "" {
		filename = "sub"
	}
	payload, err := json.Marshal(request{
		Description: "subconverter output",
		Public:      false,
		Files:       map[string]file{filename: {Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("gist: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	if u.Token != "" {
		req.Header.Set("Authorization", "token "+u.Token)
	}

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gist: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gist: upload: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gist: read response: %w", err)
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("gist: decode response: %w", err)
	}
	return r.HTMLURL, nil
}
