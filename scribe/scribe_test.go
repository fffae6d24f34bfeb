// Copyright (C) 2026 The vidscribe authors. All Rights Reserved.

package scribe_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/vidscribe/tools/scribe"
)

var doManual = flag.Bool("manual", false, "Run manual tests")

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		input, wantID string
		wantOK        bool
	}{
		{"https://google.com", "", false},
		{"https://vimeo.com/12345", "", false},
		{"http://youtu.be/foobar?q=baz", "foobar", true},
		{"https://youtu.be/", "", false},
		{"https://www.youtube.com/watch?v=kiss_me", "kiss_me", true},
		{"https://youtube.com/watch?v=you_fool", "you_fool", true},
		{"https://youtube.com/watch?v=you_fool&feature=youtu.be", "you_fool", true},
		{"https://youtube.com/watch", "", false},
		{"https://www.youtube.com/shorts/shawty?feature=share", "shawty", true},
		{"https://www.youtube.com/live/on_air", "on_air", true},
		{"https://www.youtube.com/embed/inlaid", "inlaid", true},
		{"https://www.youtube.com/v/five", "five", true},
		{"https://www.youtube.com/shorts/", "", false},
		{"https://www.youtube.com/playlist?list=PL123", "", false},
	}
	for _, test := range tests {
		id, ok := scribe.YouTubeVideoID(test.input)
		if id != test.wantID {
			t.Errorf("YouTubeVideoID(%q): got ID %q, want %q", test.input, id, test.wantID)
		}
		if ok != test.wantOK {
			t.Errorf("YouTubeVideoID(%q): got %v, want %v", test.input, ok, test.wantOK)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00"},
		{999, "0:00"},
		{45000, "0:45"},
		{60000, "1:00"},
		{599000, "9:59"},
		{3600000, "1:00:00"},
		{3661000, "1:01:01"},
		{36000000, "10:00:00"},
	}
	for _, test := range tests {
		if got := scribe.FormatTimestamp(test.ms); got != test.want {
			t.Errorf("FormatTimestamp(%d): got %q, want %q", test.ms, got, test.want)
		}
	}
}

func TestTranscriptText(t *testing.T) {
	ts := &scribe.Transcript{Segments: []scribe.Segment{
		{Text: "first line"},
		{Text: "second line"},
		{Text: "third line"},
	}}
	const want = "first line\nsecond line\nthird line"
	if got := ts.Text(); got != want {
		t.Errorf("Text: got %q, want %q", got, want)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"xyz", "", 0},
		{"", "xyz", 0},
		{"a b c", "d e f", 0},
		{"xyz", "xyz", 1},
		{"a b c", "c b a", 1},
		{"a b c", "b d f", 1. / 3},
		{"a b", "b c", 0.5},
	}
	for _, test := range tests {
		got := scribe.Similarity(test.a, test.b)
		if got != test.want {
			t.Errorf("Similarity(%q, %q): got %v, want %v", test.a, test.b, got, test.want)
		}
	}
}

func ms(v int64) *int64 { return &v }

func TestDedupeSegments(t *testing.T) {
	in := []scribe.Segment{
		{Text: "hello out there", StartMS: ms(0), EndMS: ms(1000)},
		{Text: "hello out there", StartMS: ms(1000), EndMS: ms(2000)},
		{Text: "hello out there", StartMS: ms(2000), EndMS: ms(3000)},
		{Text: "a different line entirely", StartMS: ms(3000), EndMS: ms(4000)},
	}
	got := scribe.DedupeSegments(in)
	if len(got) != 2 {
		t.Fatalf("DedupeSegments: got %d segments, want 2", len(got))
	}
	if got[0].Text != "hello out there" {
		t.Errorf("Segment 0 text: got %q", got[0].Text)
	}
	if got[0].EndMS == nil || *got[0].EndMS != 3000 {
		t.Errorf("Segment 0 end: got %v, want 3000", got[0].EndMS)
	}
	if got[1].Text != "a different line entirely" {
		t.Errorf("Segment 1 text: got %q", got[1].Text)
	}

	// Distinct neighbors are left alone.
	in = []scribe.Segment{{Text: "one thing"}, {Text: "and now another"}}
	if got := scribe.DedupeSegments(in); len(got) != 2 {
		t.Errorf("DedupeSegments: got %d segments, want 2", len(got))
	}
	if got := scribe.DedupeSegments(nil); got != nil {
		t.Errorf("DedupeSegments(nil): got %v, want nil", got)
	}
}

// A routeTransport serves canned bodies by URL prefix, standing in for
// the remote hosts during a full fetch.
type routeTransport map[string]string

func (rt routeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for prefix, body := range rt {
		if strings.HasPrefix(req.URL.String(), prefix) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Status:     "200 OK",
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
				Request:    req,
			}, nil
		}
	}
	return nil, fmt.Errorf("no route for %s", req.URL)
}

func TestFetchTranscript(t *testing.T) {
	const watchPage = `<script>var ytInitialPlayerResponse = {"captions":` +
		`{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		`{"baseUrl":"https://caps.example/t","languageCode":"en"}]}},` +
		`"videoDetails":{"title":"Zoo Day"}};</script>`
	const json3Doc = `{"events":[{"segs":[{"utf8":"hello"}],"tStartMs":0,"dDurationMs":500}]}`

	opts := &scribe.Options{Client: &http.Client{Transport: routeTransport{
		"https://www.youtube.com/watch": watchPage,
		"https://caps.example/":         json3Doc,
	}}}
	ts, err := scribe.FetchTranscript(context.Background(), "testvid", opts)
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if ts.Source != "captionTracks" {
		t.Errorf("Source: got %q, want %q", ts.Source, "captionTracks")
	}
	if ts.Title != "Zoo Day" {
		t.Errorf("Title: got %q, want %q", ts.Title, "Zoo Day")
	}
	if ts.URL != scribe.WatchURL("testvid") {
		t.Errorf("URL: got %q", ts.URL)
	}
	if len(ts.Segments) != 1 || ts.Segments[0].Text != "hello" {
		t.Errorf("Segments: got %+v, want one %q segment", ts.Segments, "hello")
	}
}

func TestFetchTranscriptNone(t *testing.T) {
	opts := &scribe.Options{Client: &http.Client{Transport: routeTransport{
		"https://www.youtube.com/watch": `<html><body>nothing embedded here</body></html>`,
	}}}
	_, err := scribe.FetchTranscript(context.Background(), "testvid", opts)
	if !errors.Is(err, scribe.ErrNoTranscript) {
		t.Errorf("FetchTranscript: got error %v, want ErrNoTranscript", err)
	}
}

func TestFetchTranscriptManual(t *testing.T) {
	if !*doManual {
		t.Skip("Skipping manual test (-manual=false)")
	}
	const videoID = "jNQXAC9IVRw" // Me at the zoo

	ts, err := scribe.FetchTranscript(context.Background(), videoID, nil)
	if err != nil {
		t.Fatalf("FetchTranscript(%q): %v", videoID, err)
	}
	t.Logf("Title: %q, source: %s, %d segments", ts.Title, ts.Source, len(ts.Segments))
	for i, seg := range ts.Segments {
		at := "?"
		if seg.StartMS != nil {
			at = scribe.FormatTimestamp(*seg.StartMS)
		}
		t.Logf("[%d] %s\t%s", i+1, at, seg.Text)
	}
}
