// Package youtube provides the YouTube Data API catalog client used for
// resolving and searching YouTube Music tracks.
package youtube

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"tunelink/internal/core"
	"tunelink/pkg/fuzzy"
	"tunelink/pkg/services"
)

const (
	// musicCategoryID is YouTube's video category for music
	musicCategoryID = "10"
	// searchLimit is how many candidates we request per search before ranking
	searchLimit = 10
	// expectedSplitParts is the number of parts when splitting "Artist - Title"
	expectedSplitParts = 2
)

var (
	camelCaseRegex = regexp.MustCompile(`([a-z])([A-Z])`)

	videoNoisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[\(\[]official\s*(music\s*)?(video|audio)[\)\]]`),
		regexp.MustCompile(`(?i)[\(\[]lyric(s| video)?[\)\]]`),
		regexp.MustCompile(`(?i)[\(\[]visuali[sz]er[\)\]]`),
		regexp.MustCompile(`(?i)[\(\[](hd|4k)[\)\]]`),
	}
)

// Client implements core.CatalogClient against the YouTube Data API.
// YouTube Music has no public API of its own, but every YouTube Music
// track is a YouTube video, so watch IDs and category-10 searches cover
// lookup and search for both surfaces.
type Client struct {
	api     *youtubeapi.Service
	service *services.YouTubeMusicService
	matcher *fuzzy.Matcher
	logger  *zap.Logger
	region  string
}

// NewClient builds a catalog client authenticated with an API key.
func NewClient(ctx context.Context, cfg core.YouTubeConfig, logger *zap.Logger) (*Client, error) {
	api, err := youtubeapi.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("youtube service init failed: %w", err)
	}

	return &Client{
		api:     api,
		service: services.NewYouTubeMusicService(),
		matcher: fuzzy.NewMatcher(),
		logger:  logger,
		region:  cfg.Region,
	}, nil
}

// Lookup resolves a YouTube or YouTube Music link to track metadata.
// Video titles rarely separate artist and track cleanly, so the channel
// name and common title formats drive the split.
func (c *Client) Lookup(ctx context.Context, link string) (*core.TrackInfo, error) {
	videoID, err := c.service.ExtractID(link)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	snippet := resp.Items[0].Snippet
	title, artist := parseVideoTitle(snippet.Title, snippet.ChannelTitle)

	return &core.TrackInfo{
		ID:         videoID,
		Title:      title,
		Artist:     artist,
		ArtworkURL: thumbnailURL(snippet.Thumbnails),
	}, nil
}

// Search queries YouTube's music category for the given reference track and
// returns up to limit candidates as YouTube Music links, best match first.
func (c *Client) Search(ctx context.Context, track *core.TrackInfo, limit int) ([]core.MusicItem, error) {
	if limit <= 0 || limit > searchLimit {
		limit = searchLimit
	}

	query := strings.TrimSpace(track.Title + " " + track.Artist)

	call := c.api.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoCategoryId(musicCategoryID).
		MaxResults(searchLimit)
	if c.region != "" {
		call = call.RegionCode(c.region)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	items := c.rank(track, resp.Items)
	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func (c *Client) rank(ref *core.TrackInfo, results []*youtubeapi.SearchResult) []core.MusicItem {
	type scored struct {
		item  core.MusicItem
		score float64
	}

	candidates := make([]scored, 0, len(results))
	for _, r := range results {
		if r.Id == nil || r.Id.VideoId == "" || r.Snippet == nil {
			continue
		}

		// Search snippets come back HTML-escaped, video snippets do not.
		rawTitle := html.UnescapeString(r.Snippet.Title)
		title, artist := parseVideoTitle(rawTitle, html.UnescapeString(r.Snippet.ChannelTitle))

		candidates = append(candidates, scored{
			item: core.MusicItem{
				URL:        "https://music.youtube.com/watch?v=" + r.Id.VideoId,
				Title:      title,
				Artist:     artist,
				ArtworkURL: thumbnailURL(r.Snippet.Thumbnails),
			},
			score: c.matcher.Score(ref.Title, ref.Artist, title, artist),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	items := make([]core.MusicItem, len(candidates))
	for i, cand := range candidates {
		items[i] = cand.item
	}

	return items
}

// parseVideoTitle splits a video title into track title and artist using
// the channel name and common upload formats.
func parseVideoTitle(videoTitle, channelTitle string) (title, artist string) {
	title = cleanVideoTitle(videoTitle)

	// VEVO channels encode the artist in camel case ("RickAstleyVEVO").
	if strings.HasSuffix(channelTitle, "VEVO") {
		artist = splitCamelCase(strings.TrimSuffix(channelTitle, "VEVO"))
	} else if strings.HasSuffix(channelTitle, " - Topic") {
		// Auto-generated artist channels back YouTube Music tracks.
		artist = strings.TrimSuffix(channelTitle, " - Topic")
	}

	// "Artist - Title" is the dominant upload format.
	if strings.Contains(title, " - ") {
		parts := strings.SplitN(title, " - ", expectedSplitParts)
		if len(parts) == expectedSplitParts {
			if artist == "" {
				artist = strings.TrimSpace(parts[0])
			}
			title = strings.TrimSpace(parts[1])
		}
	}

	if artist == "" {
		artist = channelTitle
	}

	return title, artist
}

// cleanVideoTitle strips video-specific noise like "(Official Video)".
func cleanVideoTitle(title string) string {
	cleaned := title
	for _, re := range videoNoisePatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// splitCamelCase inserts spaces before capital letters ("RickAstley" ->
// "Rick Astley").
func splitCamelCase(s string) string {
	return camelCaseRegex.ReplaceAllString(s, "$1 $2")
}

// thumbnailURL picks the largest available thumbnail.
func thumbnailURL(thumbs *youtubeapi.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}
	for _, t := range []*youtubeapi.Thumbnail{thumbs.Maxres, thumbs.High, thumbs.Medium, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
