package scribe

import (
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Caption payload decoders. Both decoders are total: malformed input
// yields no segments, never an error, so the caller can fall through to
// another format or another track.

var spaceRun = regexp.MustCompile(`\s+`)

// collapseSpace trims s and collapses interior whitespace runs to
// single spaces.
func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// json3Doc is the shape of the compact "json3" caption format: a flat
// event list where each event carries text fragments and millisecond
// timing.
type json3Doc struct {
	Events []struct {
		StartMS    *int64 `json:"tStartMs"`
		DurationMS *int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// parseJSON3 decodes a json3 caption document. Events without usable
// text are skipped. It returns nil if the input is not json3 or
// contains no text.
func parseJSON3(text string) []Segment {
	var doc json3Doc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil
	}
	var segs []Segment
	for _, ev := range doc.Events {
		var sb strings.Builder
		for _, frag := range ev.Segs {
			sb.WriteString(frag.UTF8)
		}
		text := collapseSpace(sb.String())
		if text == "" {
			continue
		}
		seg := Segment{Text: text}
		if ev.StartMS != nil {
			start := *ev.StartMS
			seg.StartMS = &start
			if ev.DurationMS != nil {
				end := start + *ev.DurationMS
				seg.EndMS = &end
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// The timed-text payload is not always well-formed XML, so the elements
// are pattern-matched rather than fed to an XML decoder.
var (
	textElement = regexp.MustCompile(`(?is)<text[^>]*>(.*?)</text>`)
	startAttr   = regexp.MustCompile(`(?i)\bstart\s*=\s*["']([^"']+)["']`)
	durAttr     = regexp.MustCompile(`(?i)\bdur\s*=\s*["']([^"']+)["']`)
)

// parseTimedXML decodes the timed-text XML caption format. Elements
// whose decoded text is empty after whitespace normalization are
// skipped. It returns nil if no elements carry text.
func parseTimedXML(doc string) []Segment {
	var segs []Segment
	for _, m := range textElement.FindAllStringSubmatch(doc, -1) {
		text := collapseSpace(html.UnescapeString(m[1]))
		if text == "" {
			continue
		}
		seg := Segment{Text: text}

		// The start and dur attributes are fractional seconds.
		if sm := startAttr.FindStringSubmatch(m[0]); sm != nil {
			if v, err := strconv.ParseFloat(sm[1], 64); err == nil {
				start := int64(v * 1000)
				seg.StartMS = &start
				if dm := durAttr.FindStringSubmatch(m[0]); dm != nil {
					if d, err := strconv.ParseFloat(dm[1], 64); err == nil {
						end := start + int64(d*1000)
						seg.EndMS = &end
					}
				}
			}
		}
		segs = append(segs, seg)
	}
	return segs
}
