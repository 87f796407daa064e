package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tunelink/pkg/services"
)

// Converter detects the source service of a link and resolves it to
// candidate matches on the complementary service. It never panics outward:
// every failure maps to the taxonomy in types.go.
type Converter struct {
	registry   *services.Registry
	catalogs   map[services.Name]CatalogClient
	cache      ConversionCache
	metrics    MetricsRecorder
	logger     *zap.Logger
	maxResults int
}

// NewConverter creates a converter over the given registry and catalog
// clients. cache and metrics may be nil.
func NewConverter(
	registry *services.Registry,
	catalogs map[services.Name]CatalogClient,
	cache ConversionCache,
	metrics MetricsRecorder,
	logger *zap.Logger,
	maxResults int,
) *Converter {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	return &Converter{
		registry:   registry,
		catalogs:   catalogs,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		maxResults: maxResults,
	}
}

// DirectionUnknown labels conversions whose source service could not be
// detected, so their durations carry no signal.
const DirectionUnknown = "unknown"

// Convert resolves a link to its counterpart on the complementary service.
// On success the returned conversion holds at least one item, best match
// first. Failures are ErrUnsupportedLink, ErrNoResults, or a wrapped
// transient error; catalog errors are logged here and never re-raised with
// internal detail attached.
func (c *Converter) Convert(ctx context.Context, link string) (*Conversion, error) {
	start := time.Now()

	conversion, direction, err := c.convert(ctx, link)

	outcome := ClassifyError(err)
	if c.metrics != nil {
		c.metrics.RecordConversion(direction, outcome, time.Since(start))
	}

	if outcome == OutcomeOK {
		return conversion, nil
	}
	return nil, err
}

// convert reports the resolved direction even on failure so metrics keep a
// meaningful label for no_results and transient outcomes.
func (c *Converter) convert(ctx context.Context, link string) (*Conversion, string, error) {
	source, ok := c.registry.Detect(link)
	if !ok {
		return nil, DirectionUnknown, ErrUnsupportedLink
	}

	target, ok := c.registry.TargetFor(source.Name())
	if !ok {
		return nil, DirectionUnknown, fmt.Errorf("no conversion target for %s", source.Name())
	}

	direction := fmt.Sprintf("%s_to_%s", source.Name(), target.Name())

	sourceCatalog, ok := c.catalogs[source.Name()]
	if !ok {
		return nil, direction, fmt.Errorf("no catalog client for %s", source.Name())
	}
	targetCatalog, ok := c.catalogs[target.Name()]
	if !ok {
		return nil, direction, fmt.Errorf("no catalog client for %s", target.Name())
	}

	cacheKey, err := c.cacheKey(source, link)
	if err != nil {
		// A detected link that yields no ID is effectively unsupported.
		c.logger.Debug("Failed to extract track ID from detected link",
			zap.String("service", string(source.Name())),
			zap.Error(err))
		return nil, direction, ErrUnsupportedLink
	}

	if c.cache != nil {
		if items, hit := c.cache.Get(cacheKey); hit {
			if c.metrics != nil {
				c.metrics.RecordCacheHit()
			}
			return &Conversion{
				Source: source.Name(),
				Target: target.Name(),
				Items:  items,
			}, direction, nil
		}
		if c.metrics != nil {
			c.metrics.RecordCacheMiss()
		}
	}

	track, err := sourceCatalog.Lookup(ctx, link)
	if err != nil {
		c.logger.Error("Source catalog lookup failed",
			zap.String("service", string(source.Name())),
			zap.Error(err))
		return nil, direction, fmt.Errorf("lookup on %s failed: %w", source.DisplayName(), err)
	}

	items, err := targetCatalog.Search(ctx, track, c.maxResults)
	if err != nil {
		c.logger.Error("Target catalog search failed",
			zap.String("service", string(target.Name())),
			zap.String("title", track.Title),
			zap.String("artist", track.Artist),
			zap.Error(err))
		return nil, direction, fmt.Errorf("search on %s failed: %w", target.DisplayName(), err)
	}

	if len(items) == 0 {
		return nil, direction, ErrNoResults
	}

	if len(items) > c.maxResults {
		items = items[:c.maxResults]
	}

	if c.cache != nil {
		c.cache.Add(cacheKey, items)
	}

	c.logger.Info("Converted link",
		zap.String("from", string(source.Name())),
		zap.String("to", string(target.Name())),
		zap.Int("candidates", len(items)),
		zap.String("best", items[0].URL))

	return &Conversion{
		Source: source.Name(),
		Target: target.Name(),
		Items:  items,
	}, direction, nil
}

// cacheKey builds the canonical identity of a link so query-parameter and
// short-link variants of the same track share one cache entry.
func (c *Converter) cacheKey(source services.Service, link string) (string, error) {
	id, err := source.ExtractID(link)
	if err != nil {
		return "", err
	}
	return string(source.Name()) + ":" + id, nil
}
