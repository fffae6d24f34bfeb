// Program feedscan lists the recent uploads of a YouTube channel or
// playlist from its public RSS feed, and can fetch their transcripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/vidscribe/tools/scribe"
)

var (
	channelID     = flag.String("channel", "", "Channel ID whose upload feed to scan")
	playlistID    = flag.String("playlist", "", "Playlist ID whose feed to scan")
	feedURL       = flag.String("url", "", "Explicit feed URL to scan")
	doJSON        = flag.Bool("json", false, "Write entries as JSON")
	doTranscripts = flag.Bool("transcripts", false, "Fetch the transcript text of each video")
	timeout       = flag.Int("timeout", 0, "HTTP timeout in seconds (0 uses the config value or default)")
	configPath    = flag.String("config", "", "YAML config file with tool defaults")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %[1]s -channel <channel-id>
       %[1]s -playlist <playlist-id>
       %[1]s -url <feed-url>

List the videos published in a YouTube channel or playlist RSS feed.
With -transcripts, the transcript of each listed video is fetched as
well; videos without transcripts are reported and skipped.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

// An entry pairs a feed video with its transcript text, when requested
// and available.
type entry struct {
	*scribe.FeedVideo
	Transcript string `json:"transcript,omitempty"`
}

func main() {
	flag.Parse()

	url := *feedURL
	switch {
	case *channelID != "":
		url = scribe.ChannelFeedURL(*channelID)
	case *playlistID != "":
		url = scribe.PlaylistFeedURL(*playlistID)
	case url == "":
		log.Fatal("You must set one of -channel, -playlist, or -url")
	}

	ctx := context.Background()
	vids, err := scribe.LoadVideoFeed(ctx, url)
	if err != nil {
		log.Fatalf("Loading video feed: %v", err)
	}
	log.Printf("Found %d videos in feed", len(vids))

	opts := loadOptions()
	entries := make([]*entry, 0, len(vids))
	for _, v := range vids {
		e := &entry{FeedVideo: v}
		if *doTranscripts {
			ts, err := scribe.FetchTranscript(ctx, v.VideoID, opts)
			if err != nil {
				log.Printf("No transcript for %q (%s): %v", v.Title, v.VideoID, err)
			} else {
				e.Transcript = ts.Text()
				log.Printf("Fetched %d segments for %q via %s",
					len(ts.Segments), v.Title, ts.Source)
			}
		}
		entries = append(entries, e)
	}

	if *doJSON {
		mustWriteJSON(struct {
			V []*entry `json:"videos"`
		}{V: entries})
		return
	}
	for _, e := range entries {
		fmt.Printf("%s %s %q\n", e.Published.Format("2006-01-02 15:04"), e.VideoID, e.Title)
		if e.Transcript != "" {
			fmt.Println(e.Transcript)
			fmt.Println()
		}
	}
}

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
	if *timeout > 0 {
		opts.Timeout = time.Duration(*timeout) * time.Second
	}
	return opts
}

func mustWriteJSON(v interface{}) {
	bits, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("Encoding output: %v", err)
	}
	fmt.Println(string(bits))
}
