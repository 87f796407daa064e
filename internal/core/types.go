package core

import (
	"context"
	"errors"
	"time"

	"tunelink/pkg/services"
)

// MusicItem is a single candidate match on the target service. Immutable
// once returned by a catalog client.
type MusicItem struct {
	URL        string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
}

// TrackInfo holds the metadata a source link resolves to. It is the search
// input for the target catalog.
type TrackInfo struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
}

// Conversion is the result of a successful link conversion. Items are
// ordered best match first; the first element is the canonical answer.
type Conversion struct {
	Source services.Name
	Target services.Name
	Items  []MusicItem
}

// Conversion failure taxonomy. Anything not matching these sentinels is a
// transient failure of the catalog boundary.
var (
	// ErrUnsupportedLink means no registered service claims the input.
	ErrUnsupportedLink = errors.New("unsupported link")
	// ErrNoResults means the target catalog had no match for the track.
	ErrNoResults = errors.New("no results")
)

// Outcome classifies a conversion for metrics and message selection.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeNoResults   Outcome = "no_results"
	OutcomeTransient   Outcome = "transient"
)

// ClassifyError maps a Convert error to its outcome. A nil error is OK.
func ClassifyError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrUnsupportedLink):
		return OutcomeUnsupported
	case errors.Is(err, ErrNoResults):
		return OutcomeNoResults
	default:
		return OutcomeTransient
	}
}

// CatalogClient is a music catalog that can resolve its own links to track
// metadata and search for tracks from another catalog.
type CatalogClient interface {
	// Lookup resolves a link of this catalog to track metadata.
	Lookup(ctx context.Context, link string) (*TrackInfo, error)

	// Search finds candidate matches for the given track, best first.
	Search(ctx context.Context, track *TrackInfo, limit int) ([]MusicItem, error)
}

// ConversionCache stores immutable conversion results keyed by canonical
// link identity.
type ConversionCache interface {
	Get(key string) ([]MusicItem, bool)
	Add(key string, items []MusicItem)
}

// MetricsRecorder receives conversion observations. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	RecordConversion(direction string, outcome Outcome, duration time.Duration)
	RecordCacheHit()
	RecordCacheMiss()
}
