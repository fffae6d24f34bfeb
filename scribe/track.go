package scribe

import (
	"encoding/json"
	"sort"
	"strings"
)

// A CaptionTrack is a host-provided pointer to a downloadable subtitle
// resource for a video.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	AltURL       string `json:"url"` // some client profiles use this field instead
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" marks automatic speech recognition
}

// URL returns the track's download URL, or "" if it has none.
func (c CaptionTrack) URL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return c.AltURL
}

// Manual reports whether the track was authored by a person rather than
// generated by speech recognition.
func (c CaptionTrack) Manual() bool { return c.Kind != "asr" }

// The caption track list lives at a fixed nested path inside a player
// response object. Keeping the whole path in one declaration means a
// host-side structure change touches exactly one place.
type playerResponse struct {
	Captions struct {
		TracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// captionTracks extracts the caption track list from a raw player
// response object and ranks it for download attempts. Missing keys at
// any level yield an empty list.
func captionTracks(raw []byte, prefer string) []CaptionTrack {
	var pr playerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil
	}
	tracks := pr.Captions.TracklistRenderer.CaptionTracks
	rankTracks(tracks, prefer)
	return tracks
}

// rankTracks orders tracks for download: manual tracks before speech
// recognition, then the preferred language before others. The sort is
// stable, so equally ranked tracks keep their original relative order.
func rankTracks(tracks []CaptionTrack, prefer string) {
	key := func(t CaptionTrack) int {
		k := 0
		if !t.Manual() {
			k += 2
		}
		if !strings.HasPrefix(t.LanguageCode, prefer) {
			k++
		}
		return k
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return key(tracks[i]) < key(tracks[j])
	})
}
