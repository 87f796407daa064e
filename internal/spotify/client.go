// Package spotify provides the Spotify Web API catalog client used for
// resolving and searching tracks.
package spotify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"tunelink/internal/core"
	"tunelink/pkg/fuzzy"
	"tunelink/pkg/services"
)

const (
	// searchLimit is how many candidates we request per search before ranking
	searchLimit = 10
)

// Client implements core.CatalogClient against the Spotify Web API using
// the client-credentials flow. Catalog lookup and search need no user
// scopes so no token is persisted anywhere.
type Client struct {
	api     *spotify.Client
	service *services.SpotifyService
	matcher *fuzzy.Matcher
	logger  *zap.Logger
}

// tokenURL is the accounts-service token endpoint, a var so tests can
// stand in a local server.
var tokenURL = spotifyauth.TokenURL

// NewClient authenticates against the Spotify accounts service and returns
// a ready catalog client. The token source re-requests app tokens as they
// expire, so ctx should outlive the client.
func NewClient(ctx context.Context, cfg core.SpotifyConfig, logger *zap.Logger) (*Client, error) {
	source := newTokenSource(ctx, cfg)

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("spotify token request failed: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, source)

	logger.Info("Authenticated with Spotify",
		zap.String("token_type", token.TokenType))

	return &Client{
		api:     spotify.New(httpClient),
		service: services.NewSpotifyService(),
		matcher: fuzzy.NewMatcher(),
		logger:  logger,
	}, nil
}

// newTokenSource builds a caching client-credentials source. App tokens
// carry no refresh token, so on expiry the source must go back to the
// accounts service for a fresh one rather than attempt a refresh grant.
func newTokenSource(ctx context.Context, cfg core.SpotifyConfig) oauth2.TokenSource {
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	return creds.TokenSource(ctx)
}

// Lookup resolves a Spotify track link to its metadata.
func (c *Client) Lookup(ctx context.Context, link string) (*core.TrackInfo, error) {
	trackID, err := c.service.ExtractID(link)
	if err != nil {
		return nil, err
	}

	track, err := c.api.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("get track %s: %w", trackID, err)
	}

	return &core.TrackInfo{
		ID:         track.ID.String(),
		Title:      track.Name,
		Artist:     joinArtists(track.Artists),
		Album:      track.Album.Name,
		ArtworkURL: largestImageURL(track.Album.Images),
	}, nil
}

// Search queries the Spotify catalog for tracks matching the given
// reference and returns up to limit candidates, best match first.
func (c *Client) Search(ctx context.Context, track *core.TrackInfo, limit int) ([]core.MusicItem, error) {
	if limit <= 0 || limit > searchLimit {
		limit = searchLimit
	}

	query := buildQuery(track)

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(searchLimit))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		// Field-scoped queries miss when catalogs disagree on credits.
		// Retry once with a plain free-text query before giving up.
		result, err = c.api.Search(ctx, freeTextQuery(track), spotify.SearchTypeTrack, spotify.Limit(searchLimit))
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", freeTextQuery(track), err)
		}
	}

	if result.Tracks == nil {
		return nil, nil
	}

	items := c.rank(track, result.Tracks.Tracks)
	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// rank orders candidates by fuzzy match quality against the reference
// track. Spotify's own relevance order breaks ties.
func (c *Client) rank(ref *core.TrackInfo, tracks []spotify.FullTrack) []core.MusicItem {
	type scored struct {
		item  core.MusicItem
		score float64
	}

	candidates := make([]scored, 0, len(tracks))
	for _, t := range tracks {
		artist := joinArtists(t.Artists)

		url := t.ExternalURLs["spotify"]
		if url == "" {
			url = "https://open.spotify.com/track/" + t.ID.String()
		}

		candidates = append(candidates, scored{
			item: core.MusicItem{
				URL:        url,
				Title:      t.Name,
				Artist:     artist,
				Album:      t.Album.Name,
				ArtworkURL: largestImageURL(t.Album.Images),
			},
			score: c.matcher.Score(ref.Title, ref.Artist, t.Name, artist),
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

// buildQuery uses Spotify's field filters when artist metadata is
// available, which sharply reduces karaoke and cover noise.
func buildQuery(track *core.TrackInfo) string {
	if track.Artist == "" {
		return track.Title
	}
	return fmt.Sprintf("track:%s artist:%s", track.Title, track.Artist)
}

func freeTextQuery(track *core.TrackInfo) string {
	return strings.TrimSpace(track.Title + " " + track.Artist)
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// largestImageURL picks the first image, which Spotify orders largest
// first.
func largestImageURL(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
