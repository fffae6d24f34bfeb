package scribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// A Page holds the readable content extracted from a web page.
type Page struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

// FetchPage fetches url with browser-profile headers and extracts its
// readable content. The URL recorded on the result is the final one
// after redirects.
func FetchPage(ctx context.Context, pageURL string, opts *Options) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", opts.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	rsp, err := opts.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed: %s", rsp.Status)
	}
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, err
	}

	finalURL := pageURL
	if rsp.Request != nil && rsp.Request.URL != nil {
		finalURL = rsp.Request.URL.String()
	}
	page := ExtractPage(string(body))
	page.URL = finalURL
	return page, nil
}

// Elements whose entire subtree is never readable content.
var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Canvas:   true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Nav:      true,
	atom.Footer:   true,
}

// Elements whose text is collected as a content segment, with the
// minimum rune count a segment must reach to be kept. Short fragments
// are almost always chrome, not prose.
var contentElements = map[atom.Atom]int{
	atom.P:          30,
	atom.H1:         10,
	atom.H2:         10,
	atom.H3:         10,
	atom.H4:         10,
	atom.H5:         10,
	atom.H6:         10,
	atom.Li:         20,
	atom.Blockquote: 30,
	atom.Pre:        30,
	atom.Td:         30,
	atom.Figcaption: 30,
}

// ExtractPage extracts the title, description, and readable content
// segments from raw HTML. The URL field of the result is left empty.
func ExtractPage(raw string) *Page {
	tok := html.NewTokenizer(strings.NewReader(raw))

	var segments []string
	var stack []*contentFrame // open content elements, innermost last
	var inTitle bool
	var titleTag string
	meta := make(map[string]string)

	// Inside a skipped subtree this records the element that opened it
	// and how many same-named elements are nested within.
	var skipAtom atom.Atom
	var skipDepth int

	for tok.Next() != html.ErrorToken {
		next := tok.Token()
		switch next.Type {
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if inTitle {
				titleTag += next.Data
			} else if len(stack) > 0 {
				stack[len(stack)-1].buf.WriteString(next.Data)
			}

		case html.StartTagToken:
			if skipDepth > 0 {
				if next.DataAtom == skipAtom {
					skipDepth++
				}
				continue
			}
			if skipElements[next.DataAtom] || hiddenElement(next) {
				skipAtom, skipDepth = next.DataAtom, 1
				continue
			}
			switch {
			case next.DataAtom == atom.Title:
				inTitle = true
			case next.DataAtom == atom.Meta:
				recordMeta(next, meta)
			default:
				if _, ok := contentElements[next.DataAtom]; ok {
					stack = append(stack, &contentFrame{elem: next.DataAtom})
				}
			}

		case html.EndTagToken:
			if skipDepth > 0 {
				if next.DataAtom == skipAtom {
					skipDepth--
				}
				continue
			}
			if next.DataAtom == atom.Title {
				inTitle = false
				continue
			}
			if n := len(stack); n > 0 && stack[n-1].elem == next.DataAtom {
				if seg, ok := stack[n-1].segment(); ok {
					segments = append(segments, seg)
				}
				stack = stack[:n-1]
			}

		case html.SelfClosingTagToken:
			if skipDepth > 0 {
				continue
			}
			if next.DataAtom == atom.Meta {
				recordMeta(next, meta)
			}
		}
	}

	return &Page{
		Title:       pickTitle(titleTag, meta),
		Description: pickDescription(meta),
		Content:     NormalizeText(strings.Join(segments, "\n")),
	}
}

// A contentFrame accumulates the text of one open content element.
type contentFrame struct {
	elem atom.Atom
	buf  strings.Builder
}

// segment finalizes the frame's text, applying the length threshold and
// the markdown marker for headings and list items.
func (f *contentFrame) segment() (string, bool) {
	text := collapseSpace(f.buf.String())
	if utf8.RuneCountInString(text) < contentElements[f.elem] {
		return "", false
	}
	switch f.elem {
	case atom.H1:
		return "# " + text, true
	case atom.H2:
		return "## " + text, true
	case atom.H3:
		return "### " + text, true
	case atom.H4:
		return "#### " + text, true
	case atom.H5:
		return "##### " + text, true
	case atom.H6:
		return "###### " + text, true
	case atom.Li:
		return "• " + text, true
	}
	return text, true
}

// hiddenElement reports whether the element is marked invisible by
// attribute or inline style.
func hiddenElement(t html.Token) bool {
	for _, attr := range t.Attr {
		switch strings.ToLower(attr.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(attr.Val, "true") {
				return true
			}
		case "style":
			if displayNone.MatchString(attr.Val) {
				return true
			}
		}
	}
	return false
}

var displayNone = regexp.MustCompile(`(?i)display\s*:\s*none`)

func recordMeta(t html.Token, meta map[string]string) {
	var key, content string
	for _, attr := range t.Attr {
		switch strings.ToLower(attr.Key) {
		case "property", "name":
			key = strings.ToLower(attr.Val)
		case "content":
			content = attr.Val
		}
	}
	if key != "" && content != "" {
		if _, ok := meta[key]; !ok {
			meta[key] = content
		}
	}
}

// The tokenizer has already decoded character references in text and
// attribute values, so no further unescaping happens here.

func pickTitle(titleTag string, meta map[string]string) string {
	if v := meta["og:title"]; v != "" {
		return collapseSpace(v)
	}
	return collapseSpace(titleTag)
}

func pickDescription(meta map[string]string) string {
	for _, key := range []string{"og:description", "description", "twitter:description"} {
		if v := meta[key]; v != "" {
			return collapseSpace(v)
		}
	}
	return ""
}

var (
	invisibleChars = regexp.MustCompile(`[\x{200B}-\x{200F}\x{202A}-\x{202E}\x{2060}-\x{2069}\x{FEFF}]`)
	hspaceRun      = regexp.MustCompile(`[\t ]+`)
	newlineRun     = regexp.MustCompile(`\s*\n\s*`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText removes invisible characters and collapses runs of
// horizontal whitespace and blank lines.
func NormalizeText(text string) string {
	text = invisibleChars.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = hspaceRun.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ClipAtSentence truncates text to at most max runes, preferring to cut
// at a sentence or paragraph boundary when one falls in the second half
// of the clipped text.
func ClipAtSentence(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	clip := string(runes[:max])
	best := -1
	for _, mark := range []string{". ", "! ", "? ", "\n\n"} {
		if i := strings.LastIndex(clip, mark); i > best {
			best = i
		}
	}
	if best > len(clip)/2 {
		return clip[:best+1]
	}
	return clip
}
