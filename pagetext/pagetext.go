// Program pagetext extracts the readable content of a web page.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/creachadair/atomicfile"
	"github.com/vidscribe/tools/scribe"
)

var (
	format     = flag.String("format", "text", `Output format: "text", "md", or "json"`)
	maxChars   = flag.Int("max-chars", 0, "Clip content to this many characters (0 = unlimited)")
	timeout    = flag.Int("timeout", 10, "HTTP timeout in seconds")
	outputPath = flag.String("o", "", "Write output to this file instead of stdout")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %[1]s [options] <url>

Fetch a web page and print its readable content: scripts, styles,
hidden elements, and page chrome are discarded, and the text of the
remaining prose elements is emitted in document order. Headings and
list items carry markdown markers.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	url := flag.Arg(0)

	opts := &scribe.Options{Timeout: time.Duration(*timeout) * time.Second}
	page, err := scribe.FetchPage(context.Background(), url, opts)
	if err != nil {
		log.Fatalf("Fetching %q: %v", url, err)
	}
	if *maxChars > 0 {
		page.Content = scribe.ClipAtSentence(page.Content, *maxChars)
	}

	var buf bytes.Buffer
	switch *format {
	case "json":
		if err := renderJSON(&buf, page); err != nil {
			log.Fatalf("Encoding output: %v", err)
		}
	case "text", "md":
		if page.Title != "" {
			fmt.Fprintf(&buf, "# %s\n\n", page.Title)
		}
		if page.Description != "" && *format == "md" {
			fmt.Fprintf(&buf, "> %s\n\n", page.Description)
		}
		fmt.Fprintln(&buf, page.Content)
	default:
		log.Fatalf("Unknown output format %q", *format)
	}

	if err := writeOutput(buf.Bytes()); err != nil {
		log.Fatalf("Writing output: %v", err)
	}
}

// renderJSON writes the page as an indented JSON object. The character
// count is in runes, not bytes.
func renderJSON(buf *bytes.Buffer, page *scribe.Page) error {
	bits, err := json.MarshalIndent(struct {
		*scribe.Page
		Characters int `json:"characters"`
	}{page, utf8.RuneCountInString(page.Content)}, "", "  ")
	if err != nil {
		return err
	}
	buf.Write(bits)
	buf.WriteByte('\n')
	return nil
}

func writeOutput(data []byte) error {
	if *outputPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	f, err := atomicfile.New(*outputPath, 0644)
	if err != nil {
		return err
	}
	defer f.Cancel()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Close()
}
