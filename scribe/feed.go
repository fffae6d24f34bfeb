package scribe

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// YouTube publishes an RSS feed of recent uploads per channel and per
// playlist. These are the only stable public listings the host offers,
// so batch tools work from them rather than from a search API.

// ChannelFeedURL returns the upload feed URL for a channel ID.
func ChannelFeedURL(channelID string) string {
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + channelID
}

// PlaylistFeedURL returns the feed URL for a playlist ID.
func PlaylistFeedURL(playlistID string) string {
	return "https://www.youtube.com/feeds/videos.xml?playlist_id=" + playlistID
}

// A FeedVideo records one entry of a channel or playlist feed.
type FeedVideo struct {
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// LoadVideoFeed fetches and parses the video feed at url.
func LoadVideoFeed(ctx context.Context, url string) ([]*FeedVideo, error) {
	p := gofeed.NewParser()
	// Yes, the parser API has the context backward.
	feed, err := p.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return feedVideos(feed), nil
}

func feedVideos(feed *gofeed.Feed) []*FeedVideo {
	var vids []*FeedVideo
	for _, item := range feed.Items {
		v := &FeedVideo{
			VideoID: getExtensionField(item.Extensions, "yt", "videoId"),
			Title:   item.Title,
			URL:     item.Link,
		}
		// Entries missing the yt extension still name the video in
		// their link.
		if v.VideoID == "" {
			if id, ok := YouTubeVideoID(item.Link); ok {
				v.VideoID = id
			}
		}
		if v.VideoID == "" {
			continue
		}
		if v.URL == "" {
			v.URL = WatchURL(v.VideoID)
		}
		if t := item.PublishedParsed; t != nil {
			v.Published = *t
		}
		vids = append(vids, v)
	}
	return vids
}

func getExtensionField(ext ext.Extensions, ns, name string) string {
	es := ext[ns][name]
	if es == nil {
		return ""
	}
	for _, e := range es {
		if e.Name == name {
			return e.Value
		}
	}
	return ""
}
