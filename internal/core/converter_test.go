package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunelink/pkg/services"
)

type fakeCatalog struct {
	track     *TrackInfo
	lookupErr error
	results   []MusicItem
	searchErr error

	lookups  int
	searches int
}

func (f *fakeCatalog) Lookup(ctx context.Context, link string) (*TrackInfo, error) {
	f.lookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.track, nil
}

func (f *fakeCatalog) Search(ctx context.Context, track *TrackInfo, limit int) ([]MusicItem, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

type recordedConversion struct {
	direction string
	outcome   Outcome
}

type fakeMetrics struct {
	conversions []recordedConversion
	hits        int
	misses      int
}

func (f *fakeMetrics) RecordConversion(direction string, outcome Outcome, _ time.Duration) {
	f.conversions = append(f.conversions, recordedConversion{direction: direction, outcome: outcome})
}

func (f *fakeMetrics) RecordCacheHit()  { f.hits++ }
func (f *fakeMetrics) RecordCacheMiss() { f.misses++ }

type mapCache struct {
	entries map[string][]MusicItem
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]MusicItem)}
}

func (m *mapCache) Get(key string) ([]MusicItem, bool) {
	items, ok := m.entries[key]
	return items, ok
}

func (m *mapCache) Add(key string, items []MusicItem) {
	m.entries[key] = items
}

func newTestConverter(t *testing.T, spotify, youtube *fakeCatalog, cache ConversionCache) *Converter {
	t.Helper()

	catalogs := map[services.Name]CatalogClient{
		services.Spotify:      spotify,
		services.YouTubeMusic: youtube,
	}

	return NewConverter(services.NewRegistry(), catalogs, cache, nil, zap.NewNop(), 10)
}

func TestConverter_SpotifyToYouTubeMusic(t *testing.T) {
	spotify := &fakeCatalog{
		track: &TrackInfo{ID: "4uLU6hMCjMI75M1A2tKUQC", Title: "Never Gonna Give You Up", Artist: "Rick Astley"},
	}
	youtube := &fakeCatalog{
		results: []MusicItem{
			{URL: "https://music.youtube.com/watch?v=dQw4w9WgXcQ", Title: "Never Gonna Give You Up", Artist: "Rick Astley"},
		},
	}

	converter := newTestConverter(t, spotify, youtube, nil)

	conversion, err := converter.Convert(context.Background(), "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if conversion.Source != services.Spotify {
		t.Errorf("Source = %q, want %q", conversion.Source, services.Spotify)
	}
	if conversion.Target != services.YouTubeMusic {
		t.Errorf("Target = %q, want %q", conversion.Target, services.YouTubeMusic)
	}
	if len(conversion.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(conversion.Items))
	}
	if conversion.Items[0].URL != "https://music.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("best match URL = %q", conversion.Items[0].URL)
	}
}

func TestConverter_YouTubeMusicToSpotify(t *testing.T) {
	spotify := &fakeCatalog{
		results: []MusicItem{
			{URL: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", Title: "Never Gonna Give You Up"},
		},
	}
	youtube := &fakeCatalog{
		track: &TrackInfo{ID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", Artist: "Rick Astley"},
	}

	converter := newTestConverter(t, spotify, youtube, nil)

	conversion, err := converter.Convert(context.Background(), "https://music.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if conversion.Source != services.YouTubeMusic || conversion.Target != services.Spotify {
		t.Errorf("direction = %s -> %s, want youtube_music -> spotify", conversion.Source, conversion.Target)
	}
	if youtube.lookups != 1 || spotify.searches != 1 {
		t.Errorf("lookups/searches = %d/%d, want 1/1", youtube.lookups, spotify.searches)
	}
}

func TestConverter_UnsupportedLink(t *testing.T) {
	converter := newTestConverter(t, &fakeCatalog{}, &fakeCatalog{}, nil)

	tests := []string{
		"https://soundcloud.com/artist/track",
		"https://example.com/whatever",
		"not a url at all",
		"https://open.spotify.com/album/xyz",
	}

	for _, link := range tests {
		t.Run(link, func(t *testing.T) {
			_, err := converter.Convert(context.Background(), link)
			if !errors.Is(err, ErrUnsupportedLink) {
				t.Errorf("Convert(%q) error = %v, want ErrUnsupportedLink", link, err)
			}
		})
	}
}

func TestConverter_NoResults(t *testing.T) {
	spotify := &fakeCatalog{
		track: &TrackInfo{ID: "abc123", Title: "Extremely Obscure B-Side", Artist: "Nobody"},
	}
	youtube := &fakeCatalog{results: nil}

	converter := newTestConverter(t, spotify, youtube, nil)

	_, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("Convert() error = %v, want ErrNoResults", err)
	}
}

func TestConverter_TransientLookupError(t *testing.T) {
	spotify := &fakeCatalog{lookupErr: fmt.Errorf("api: 503 service unavailable")}
	youtube := &fakeCatalog{}

	converter := newTestConverter(t, spotify, youtube, nil)

	_, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")
	if err == nil {
		t.Fatal("Convert() error = nil, want transient error")
	}
	if errors.Is(err, ErrUnsupportedLink) || errors.Is(err, ErrNoResults) {
		t.Errorf("transient error misclassified: %v", err)
	}
	if got := ClassifyError(err); got != OutcomeTransient {
		t.Errorf("ClassifyError() = %q, want %q", got, OutcomeTransient)
	}
	if youtube.searches != 0 {
		t.Errorf("target searched despite failed lookup")
	}
}

func TestConverter_TransientSearchError(t *testing.T) {
	spotify := &fakeCatalog{
		track: &TrackInfo{ID: "abc123", Title: "Song", Artist: "Artist"},
	}
	youtube := &fakeCatalog{searchErr: fmt.Errorf("quota exceeded")}

	converter := newTestConverter(t, spotify, youtube, nil)

	_, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")
	if got := ClassifyError(err); got != OutcomeTransient {
		t.Errorf("ClassifyError() = %q, want %q", got, OutcomeTransient)
	}
}

func TestConverter_CapsResults(t *testing.T) {
	var many []MusicItem
	for i := 0; i < 25; i++ {
		many = append(many, MusicItem{URL: fmt.Sprintf("https://music.youtube.com/watch?v=vid%d", i)})
	}

	spotify := &fakeCatalog{track: &TrackInfo{ID: "abc123", Title: "Song"}}
	youtube := &fakeCatalog{results: many}

	catalogs := map[services.Name]CatalogClient{
		services.Spotify:      spotify,
		services.YouTubeMusic: youtube,
	}
	converter := NewConverter(services.NewRegistry(), catalogs, nil, nil, zap.NewNop(), 5)

	conversion, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(conversion.Items) != 5 {
		t.Errorf("len(Items) = %d, want 5", len(conversion.Items))
	}
	if conversion.Items[0].URL != many[0].URL {
		t.Errorf("cap changed ordering: first item = %q", conversion.Items[0].URL)
	}
}

func TestConverter_CacheRoundTrip(t *testing.T) {
	spotify := &fakeCatalog{track: &TrackInfo{ID: "abc123", Title: "Song", Artist: "Artist"}}
	youtube := &fakeCatalog{
		results: []MusicItem{{URL: "https://music.youtube.com/watch?v=vid1"}},
	}
	cache := newMapCache()

	converter := newTestConverter(t, spotify, youtube, cache)

	// First call populates the cache, the second must not touch catalogs.
	for i := 0; i < 2; i++ {
		conversion, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123?si=tracking")
		if err != nil {
			t.Fatalf("Convert() #%d error = %v", i+1, err)
		}
		if len(conversion.Items) != 1 {
			t.Fatalf("Convert() #%d len(Items) = %d, want 1", i+1, len(conversion.Items))
		}
	}

	if spotify.lookups != 1 {
		t.Errorf("lookups = %d, want 1 (second call should hit cache)", spotify.lookups)
	}
	if youtube.searches != 1 {
		t.Errorf("searches = %d, want 1 (second call should hit cache)", youtube.searches)
	}
	if _, ok := cache.Get("spotify:abc123"); !ok {
		t.Error("cache key spotify:abc123 missing")
	}
}

func TestConverter_RecordsDirectionOnFailure(t *testing.T) {
	tests := []struct {
		name          string
		spotify       *fakeCatalog
		link          string
		wantDirection string
		wantOutcome   Outcome
	}{
		{
			name:          "no results keeps resolved direction",
			spotify:       &fakeCatalog{track: &TrackInfo{ID: "abc123", Title: "Song"}},
			link:          "https://open.spotify.com/track/abc123",
			wantDirection: "spotify_to_youtube_music",
			wantOutcome:   OutcomeNoResults,
		},
		{
			name:          "transient keeps resolved direction",
			spotify:       &fakeCatalog{lookupErr: fmt.Errorf("api: 503 service unavailable")},
			link:          "https://open.spotify.com/track/abc123",
			wantDirection: "spotify_to_youtube_music",
			wantOutcome:   OutcomeTransient,
		},
		{
			name:          "undetected link stays unknown",
			spotify:       &fakeCatalog{},
			link:          "https://soundcloud.com/artist/track",
			wantDirection: DirectionUnknown,
			wantOutcome:   OutcomeUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &fakeMetrics{}
			catalogs := map[services.Name]CatalogClient{
				services.Spotify:      tt.spotify,
				services.YouTubeMusic: &fakeCatalog{},
			}
			converter := NewConverter(services.NewRegistry(), catalogs, nil, metrics, zap.NewNop(), 10)

			if _, err := converter.Convert(context.Background(), tt.link); err == nil {
				t.Fatal("Convert() error = nil, want failure")
			}

			if len(metrics.conversions) != 1 {
				t.Fatalf("recorded %d conversions, want 1", len(metrics.conversions))
			}
			got := metrics.conversions[0]
			if got.direction != tt.wantDirection {
				t.Errorf("direction = %q, want %q", got.direction, tt.wantDirection)
			}
			if got.outcome != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", got.outcome, tt.wantOutcome)
			}
		})
	}
}

func TestConverter_FailedLookupNotCached(t *testing.T) {
	spotify := &fakeCatalog{lookupErr: fmt.Errorf("timeout")}
	cache := newMapCache()

	converter := newTestConverter(t, spotify, &fakeCatalog{}, cache)

	_, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")
	if err == nil {
		t.Fatal("Convert() error = nil, want transient error")
	}
	if len(cache.entries) != 0 {
		t.Errorf("failed conversion was cached: %v", cache.entries)
	}
}
