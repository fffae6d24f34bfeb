package scribe

import (
	"encoding/json"
	"regexp"
	"strings"
)

// This file locates JSON objects embedded in watch page script content.
// The page is never executed or parsed as HTML; it is treated as a text
// blob. A marker locates the assignment of interest and a small
// balanced-delimiter scanner recovers the object that follows it. Every
// failure mode here reports "not found" rather than an error, since a
// page format change must degrade the strategy that depends on it, not
// abort the whole fetch.

// balancedObject returns the first balanced {...} group in s at or
// after position from. Braces inside single- or double-quoted strings
// are ignored, honoring backslash escapes. It reports false if no brace
// follows from, or the group never closes before the end of s.
func balancedObject(s string, from int) (string, bool) {
	start := strings.IndexByte(s[from:], '{')
	if start < 0 {
		return "", false
	}
	start += from

	var depth int
	var quote byte // the active string delimiter, or 0
	var escaped bool
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// markedObject returns the JSON object following the first occurrence
// of marker in page, or nil if the marker is absent, no balanced object
// follows it, or the extracted text is not valid JSON.
func markedObject(page, marker string) []byte {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return nil
	}
	obj, ok := balancedObject(page, idx+len(marker))
	if !ok || !json.Valid([]byte(obj)) {
		return nil
	}
	return []byte(obj)
}

// scrapePlayerResponse returns the raw ytInitialPlayerResponse object
// embedded in the watch page, or nil if it cannot be recovered.
func scrapePlayerResponse(page string) []byte {
	return markedObject(page, "ytInitialPlayerResponse")
}

// A bootstrapConfig carries the pieces of the ytcfg bootstrap object
// needed to call the internal transcript endpoint.
type bootstrapConfig struct {
	APIKey        string                 `json:"INNERTUBE_API_KEY"`
	Context       map[string]interface{} `json:"INNERTUBE_CONTEXT"`
	ClientVersion string                 `json:"INNERTUBE_CLIENT_VERSION"`
	VisitorData   string                 `json:"VISITOR_DATA"`
}

// The bootstrap config is installed by a setter call rather than a
// plain assignment, so the marker is the call's opening brace.
var bootstrapMarker = regexp.MustCompile(`ytcfg\.set\s*\(\s*\{`)

// scrapeBootstrapConfig recovers the ytcfg bootstrap object from the
// watch page, or nil if it is absent or unparseable.
func scrapeBootstrapConfig(page string) *bootstrapConfig {
	loc := bootstrapMarker.FindStringIndex(page)
	if loc == nil {
		return nil
	}
	obj, ok := balancedObject(page, loc[0])
	if !ok {
		return nil
	}
	var cfg bootstrapConfig
	if err := json.Unmarshal([]byte(obj), &cfg); err != nil {
		return nil
	}
	return &cfg
}

var transcriptParams = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"\}`)

// scrapeTranscriptParams returns the one-time request parameter string
// for the internal transcript endpoint, or "".
func scrapeTranscriptParams(page string) string {
	if m := transcriptParams.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return ""
}

// The API key appears either plainly or inside an escaped JSON string,
// depending on where in the page it is embedded.
var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`),
	regexp.MustCompile(`INNERTUBE_API_KEY\\":\\"([^\\"]+)\\"`),
}

// scrapeAPIKey returns the INNERTUBE_API_KEY embedded in the page, or "".
func scrapeAPIKey(page string) string {
	for _, pat := range apiKeyPatterns {
		if m := pat.FindStringSubmatch(page); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var titleField = regexp.MustCompile(`"title":"((?:[^"\\]|\\.)*)"`)

// scrapeTitle returns the video title from the first JSON title field
// in the page, with escape sequences decoded, or "" if none is found.
func scrapeTitle(page string) string {
	m := titleField.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	// The captured text is the body of a JSON string, so rewrapping it
	// in quotes lets the JSON decoder handle the escapes.
	var title string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &title); err != nil {
		return ""
	}
	return title
}
