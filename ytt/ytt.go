// Program ytt fetches the timed transcript of a YouTube video.
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

	"github.com/creachadair/atomicfile"
	"github.com/vidscribe/tools/scribe"
)

var (
	doTimestamps = flag.Bool("timestamps", false, "Prefix each line with its start timestamp")
	doJSON       = flag.Bool("json", false, "Write structured JSON output")
	doDedupe     = flag.Bool("dedupe", false, "Collapse consecutive near-duplicate caption lines")
	timeout      = flag.Int("timeout", 0, "HTTP timeout in seconds (0 uses the config value or default)")
	language     = flag.String("lang", "", "Preferred caption language code")
	configPath   = flag.String("config", "", "YAML config file with tool defaults")
	outputPath   = flag.String("o", "", "Write output to this file instead of stdout")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %[1]s [options] <video-url>

Fetch the transcript of a YouTube video without API keys. The video is
identified by any of the usual URL shapes (watch, short link, shorts,
live, embed). Several acquisition strategies are tried in order until
one produces transcript segments.

By default the transcript text is printed one segment per line. With
-timestamps each line is prefixed by its start offset; segments without
timing render "?". With -json a structured object is written instead.

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

	id, ok := scribe.YouTubeVideoID(url)
	if !ok {
		log.Fatalf("Could not extract a video ID from %q", url)
	}

	opts := loadOptions()
	ts, err := scribe.FetchTranscript(context.Background(), id, opts)
	if err != nil {
		log.Fatalf("Fetching transcript for %q: %v", id, err)
	}
	if *doDedupe {
		ts.Segments = scribe.DedupeSegments(ts.Segments)
	}

	var buf bytes.Buffer
	if err := render(&buf, ts); err != nil {
		log.Fatalf("Rendering output: %v", err)
	}
	if err := writeOutput(buf.Bytes()); err != nil {
		log.Fatalf("Writing output: %v", err)
	}
}

// loadOptions merges the config file, if any, with command-line flags.
// Flags win.
func loadOptions() *scribe.Options {
	var cfg *scribe.Config
	if *configPath != "" {
		c, err := scribe.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Loading config: %v", err)
		}
		cfg = c
	}
	opts := cfg.Options()
	if *language != "" {
		opts.Language = *language
	}
	if *timeout > 0 {
		opts.Timeout = time.Duration(*timeout) * time.Second
	}
	return opts
}

func render(buf *bytes.Buffer, ts *scribe.Transcript) error {
	switch {
	case *doJSON:
		return renderJSON(buf, ts)
	case *doTimestamps:
		for _, seg := range ts.Segments {
			at := "?"
			if seg.StartMS != nil {
				at = scribe.FormatTimestamp(*seg.StartMS)
			}
			fmt.Fprintf(buf, "[%s] %s\n", at, seg.Text)
		}
	default:
		if ts.Title != "" {
			fmt.Fprintf(buf, "# %s\n\n", ts.Title)
		}
		fmt.Fprintln(buf, ts.Text())
	}
	return nil
}

func renderJSON(buf *bytes.Buffer, ts *scribe.Transcript) error {
	var title *string
	if ts.Title != "" {
		title = &ts.Title
	}
	bits, err := json.MarshalIndent(struct {
		VideoID  string           `json:"video_id"`
		Title    *string          `json:"title"`
		URL      string           `json:"url"`
		Source   string           `json:"source"`
		Segments []scribe.Segment `json:"segments"`
		Text     string           `json:"text"`
	}{
		VideoID:  ts.VideoID,
		Title:    title,
		URL:      ts.URL,
		Source:   ts.Source,
		Segments: ts.Segments,
		Text:     ts.Text(),
	}, "", "  ")
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
