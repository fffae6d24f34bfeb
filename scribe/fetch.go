package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	transcriptEndpoint = "https://www.youtube.com/youtubei/v1/get_transcript"
	playerEndpoint     = "https://www.youtube.com/youtubei/v1/player"

	androidClientVersion = "20.10.38"
)

// A session carries the state shared by the strategies during one
// transcript fetch. Nothing in it outlives the fetch.
type session struct {
	ctx      context.Context
	client   *http.Client
	opts     *Options
	videoID  string
	watchURL string
	page     string // the watch page text, set after the initial fetch
}

func newSession(ctx context.Context, videoID string, opts *Options) *session {
	return &session{
		ctx:      ctx,
		client:   opts.httpClient(),
		opts:     opts,
		videoID:  videoID,
		watchURL: WatchURL(videoID),
	}
}

// get fetches url with browser-profile headers and returns the response
// body. Non-2xx responses are reported as errors.
func (s *session) get(url string) (string, error) {
	req, err := http.NewRequestWithContext(s.ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	return s.do(req)
}

func (s *session) do(req *http.Request) (string, error) {
	req.Header.Set("User-Agent", s.opts.userAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	rsp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return "", fmt.Errorf("request failed: %s", rsp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rsp.Body); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Some internal endpoints prefix JSON responses with an XSSI guard
// line that must be stripped before decoding.
var xssiGuard = regexp.MustCompile(`^\)\]\}'[^\n]*\n?`)

// postJSON posts payload as JSON to url and returns the decoded
// response body, or nil if the request or decoding failed.
func (s *session) postJSON(url string, payload interface{}, extra http.Header) []byte {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	req, err := http.NewRequestWithContext(s.ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, vals := range extra {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	text, err := s.do(req)
	if err != nil {
		return nil
	}
	data := []byte(xssiGuard.ReplaceAllString(text, ""))
	if !json.Valid(data) {
		return nil
	}
	return data
}

// A strategy is one self-contained method of obtaining transcript
// segments. It returns nil when it cannot produce any; it never
// reports errors past its own boundary.
type strategy struct {
	name string
	run  func(s *session) []Segment
}

// strategies are tried in priority order. The internal transcript
// endpoint is preferred because it yields cleaner segmentation; the
// track download paths are scrape-based fallbacks.
var strategies = []strategy{
	{"youtubei", viaTranscriptAPI},
	{"captionTracks", viaCaptionTracks},
	{"android_player", viaPlayerAPI},
}

// firstSuccess tries each strategy in order and returns the name and
// segments of the first that produces a non-empty result.
func firstSuccess(s *session, tries []strategy) (string, []Segment) {
	for _, t := range tries {
		if segs := t.run(s); len(segs) > 0 {
			return t.name, segs
		}
	}
	return "", nil
}

// viaTranscriptAPI posts to the internal transcript endpoint using the
// API key, client context, and request parameter scraped from the watch
// page. All three must be present for the strategy to apply.
func viaTranscriptAPI(s *session) []Segment {
	cfg := scrapeBootstrapConfig(s.page)
	if cfg == nil || cfg.APIKey == "" || cfg.Context == nil {
		return nil
	}
	params := scrapeTranscriptParams(s.page)
	if params == "" {
		return nil
	}

	// The endpoint expects the client context to echo the page URL.
	if client, ok := cfg.Context["client"].(map[string]interface{}); ok {
		client["originalUrl"] = s.watchURL
	}

	hdr := http.Header{}
	hdr.Set("Origin", "https://www.youtube.com")
	hdr.Set("Referer", s.watchURL)
	hdr.Set("X-Goog-AuthUser", "0")
	hdr.Set("X-Youtube-Bootstrap-Logged-In", "false")
	if cfg.ClientVersion != "" {
		hdr.Set("X-Youtube-Client-Version", cfg.ClientVersion)
	}
	if cfg.VisitorData != "" {
		hdr.Set("X-Goog-Visitor-Id", cfg.VisitorData)
	}

	data := s.postJSON(transcriptEndpoint+"?key="+url.QueryEscape(cfg.APIKey), map[string]interface{}{
		"context": cfg.Context,
		"params":  params,
	}, hdr)
	if data == nil {
		return nil
	}
	return transcriptSegments(data)
}

// transcriptResponse mirrors the nested path from the transcript
// endpoint response down to its segment renderers. A missing key at any
// level decodes to a zero value and yields no segments.
type transcriptResponse struct {
	Actions []struct {
		UpdatePanel struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						SearchPanel struct {
							Body struct {
								SegmentList struct {
									InitialSegments []struct {
										Renderer struct {
											StartMS    string `json:"startMs"`
											EndMS      string `json:"endMs"`
											DurationMS string `json:"durationMs"`
											Snippet    struct {
												Runs []struct {
													Text string `json:"text"`
												} `json:"runs"`
											} `json:"snippet"`
										} `json:"transcriptSegmentRenderer"`
									} `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// transcriptSegments converts a transcript endpoint response into the
// common segment model: text is the concatenation of inline text runs.
func transcriptSegments(data []byte) []Segment {
	var rsp transcriptResponse
	if err := json.Unmarshal(data, &rsp); err != nil {
		return nil
	}
	if len(rsp.Actions) == 0 {
		return nil
	}
	var segs []Segment
	for _, item := range rsp.Actions[0].UpdatePanel.Content.TranscriptRenderer.Content.
		SearchPanel.Body.SegmentList.InitialSegments {
		r := item.Renderer
		var sb strings.Builder
		for _, run := range r.Snippet.Runs {
			sb.WriteString(run.Text)
		}
		text := collapseSpace(sb.String())
		if text == "" {
			continue
		}
		seg := Segment{Text: text}
		if start, err := strconv.ParseInt(r.StartMS, 10, 64); err == nil {
			seg.StartMS = &start
			// Some responses carry a duration instead of an end offset.
			if end, err := strconv.ParseInt(r.EndMS, 10, 64); err == nil {
				seg.EndMS = &end
			} else if d, err := strconv.ParseInt(r.DurationMS, 10, 64); err == nil {
				end := start + d
				seg.EndMS = &end
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// viaCaptionTracks downloads caption tracks listed by the player
// response embedded in the watch page, in ranked order, stopping at the
// first track that parses into segments.
func viaCaptionTracks(s *session) []Segment {
	raw := scrapePlayerResponse(s.page)
	if raw == nil {
		return nil
	}
	return s.downloadTracks(captionTracks(raw, s.opts.language()))
}

// viaPlayerAPI fetches a fresh player response from the internal player
// endpoint using an Android client profile, then repeats the track
// download attempt against the catalog it reports. This recovers videos
// whose watch page embeds no usable player response.
func viaPlayerAPI(s *session) []Segment {
	key := scrapeAPIKey(s.page)
	if key == "" {
		return nil
	}
	data := s.postJSON(playerEndpoint+"?key="+url.QueryEscape(key), map[string]interface{}{
		"context": map[string]interface{}{
			"client": map[string]string{
				"clientName":    "ANDROID",
				"clientVersion": androidClientVersion,
			},
		},
		"videoId": s.videoID,
	}, nil)
	if data == nil {
		return nil
	}
	return s.downloadTracks(captionTracks(data, s.opts.language()))
}

func (s *session) downloadTracks(tracks []CaptionTrack) []Segment {
	for _, t := range tracks {
		u := t.URL()
		if u == "" {
			continue
		}
		if segs := s.downloadTrack(u); len(segs) > 0 {
			return segs
		}
	}
	return nil
}

// downloadTrack fetches one caption track, preferring the compact json3
// format by overriding the format query parameters, then falling back
// to the timed-text XML served by the unmodified URL.
func (s *session) downloadTrack(base string) []Segment {
	if u, err := url.Parse(base); err == nil {
		q := u.Query()
		q.Set("fmt", "json3")
		q.Set("alt", "json")
		u.RawQuery = q.Encode()
		if body, err := s.get(u.String()); err == nil {
			if segs := parseJSON3(body); len(segs) > 0 {
				return segs
			}
		}
	}

	body, err := s.get(base)
	if err != nil {
		return nil
	}
	// Some tracks serve json3 regardless of the requested format.
	if segs := parseJSON3(body); len(segs) > 0 {
		return segs
	}
	return parseTimedXML(body)
}
