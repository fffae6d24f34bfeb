package scribe

import (
	"math"
	"regexp"
	"strings"

	"bitbucket.org/creachadair/stringset"
)

// Similarity computes an Otsuka-Ochiai coefficient for the words in a and b.
func Similarity(a, b string) float64 {
	wa := stringset.New(Words(a)...)
	wb := stringset.New(Words(b)...)
	if wa.Empty() && wb.Empty() {
		return 1
	}
	num := float64(wa.Intersect(wb).Len())
	den := float64(wa.Len() * wb.Len())
	if den == 0 {
		return 0
	}
	return num / math.Sqrt(den)
}

var punct = regexp.MustCompile(`\W+`)

// Words parses s into a bag of words. Words are separated by whitespace
// and normalized to lower-case.
func Words(s string) []string {
	var words []string
	for _, w := range strings.Fields(strings.TrimSpace(strings.ToLower(s))) {
		words = append(words, punct.ReplaceAllString(w, ""))
	}
	return words
}

// DedupeThreshold is the word-bag similarity at or above which two
// consecutive segments are treated as the same rolling caption line.
const DedupeThreshold = 0.9

// DedupeSegments collapses runs of consecutive segments whose text is
// nearly identical. Speech-recognition captions commonly re-emit the
// current line as it grows; collapsing keeps the first occurrence and
// extends its end offset across the dropped repeats. The input is not
// modified.
func DedupeSegments(segs []Segment) []Segment {
	if len(segs) == 0 {
		return nil
	}
	out := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if Similarity(last.Text, seg.Text) >= DedupeThreshold {
				// Keep the longer rendering of the repeated line.
				if len(seg.Text) > len(last.Text) {
					last.Text = seg.Text
				}
				if seg.EndMS != nil && last.StartMS != nil {
					end := *seg.EndMS
					last.EndMS = &end
				}
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}
