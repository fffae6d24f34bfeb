// Copyright (C) 2026 The vidscribe authors. All Rights Reserved.

// Package scribe extracts timed transcripts from YouTube watch pages and
// readable text from ordinary web pages, without API keys.
//
// YouTube exposes no public, stable transcript API, so the transcript
// fetcher works by scraping structured state embedded in the watch page
// and falling back through several independent acquisition strategies
// until one produces segments. Each strategy is independently fallible;
// a failure in one never prevents the next from running.
package scribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(id string) string { return "https://www.youtube.com/watch?v=" + id }

// ErrNoTranscript is reported when every acquisition strategy has been
// tried and none produced any transcript segments.
var ErrNoTranscript = errors.New("no transcript available")

// A Segment is one unit of transcript text with optional start and end
// offsets in milliseconds. If EndMS is set, StartMS is also set.
type Segment struct {
	Text    string `json:"text"`
	StartMS *int64 `json:"start_ms,omitempty"`
	EndMS   *int64 `json:"end_ms,omitempty"`
}

// A Transcript is the result of a successful transcript fetch.
type Transcript struct {
	VideoID  string    // the canonical video ID
	URL      string    // the watch page URL the transcript came from
	Title    string    // best-effort page title, "" if not found
	Source   string    // which strategy produced the segments
	Segments []Segment // in chronological order as emitted by the host
}

// Text returns the plain transcript text, one segment per line.
func (t *Transcript) Text() string {
	lines := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		lines[i] = seg.Text
	}
	return strings.Join(lines, "\n")
}

// Options control transcript and page fetching. A nil *Options is
// equivalent to the zero value, which uses the defaults below.
type Options struct {
	// Timeout applies to each HTTP request issued during the fetch.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration

	// Language is the preferred caption language code prefix used to
	// rank caption tracks. If empty, "en" is assumed.
	Language string

	// UserAgent overrides the default browser user agent.
	UserAgent string

	// Client is the HTTP client used for all requests. If nil, a
	// default client honoring Timeout is used.
	Client *http.Client
}

// DefaultTimeout is the per-request HTTP timeout used when Options does
// not specify one.
const DefaultTimeout = 10 * time.Second

func (o *Options) timeout() time.Duration {
	if o == nil || o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o *Options) language() string {
	if o == nil || o.Language == "" {
		return "en"
	}
	return o.Language
}

func (o *Options) userAgent() string {
	if o == nil || o.UserAgent == "" {
		return defaultUserAgent
	}
	return o.UserAgent
}

func (o *Options) httpClient() *http.Client {
	if o == nil || o.Client == nil {
		return &http.Client{Timeout: o.timeout()}
	}
	return o.Client
}

// YouTubeVideoID extracts the video ID from a YouTube URL. It reports
// false if the URL does not belong to YouTube or matches no known path
// shape. It performs no network access.
func YouTubeVideoID(s string) (string, bool) {
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	host := u.Hostname()

	if host == "youtu.be" {
		id := firstPathPart(u.Path)
		return id, id != ""
	}
	if !strings.Contains(host, "youtube.com") {
		return "", false
	}
	if u.Path == "/watch" {
		id := u.Query().Get("v")
		return id, id != ""
	}
	for _, prefix := range []string{"/shorts/", "/live/", "/embed/", "/v/"} {
		if strings.HasPrefix(u.Path, prefix) {
			id := firstPathPart(u.Path[len(prefix):])
			return id, id != ""
		}
	}
	return "", false
}

func firstPathPart(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// FetchTranscript fetches the transcript for the specified video ID.
// It loads the watch page, then tries each acquisition strategy in
// priority order, stopping at the first that produces segments. It
// reports ErrNoTranscript if every strategy comes up empty.
func FetchTranscript(ctx context.Context, videoID string, opts *Options) (*Transcript, error) {
	s := newSession(ctx, videoID, opts)
	page, err := s.get(s.watchURL)
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}
	s.page = page

	source, segs := firstSuccess(s, strategies)
	if len(segs) == 0 {
		return nil, ErrNoTranscript
	}
	return &Transcript{
		VideoID:  videoID,
		URL:      s.watchURL,
		Title:    scrapeTitle(page),
		Source:   source,
		Segments: segs,
	}, nil
}

// FormatTimestamp renders a millisecond offset as "m:ss", or "h:mm:ss"
// when the offset is an hour or more.
func FormatTimestamp(ms int64) string {
	total := ms / 1000
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
