package walker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rechte-gewalt/chronik-crawler/internal/chronik"
	"github.com/rechte-gewalt/chronik-crawler/internal/extract"
	"github.com/rechte-gewalt/chronik-crawler/internal/geo"
	"github.com/rechte-gewalt/chronik-crawler/internal/metrics"
	"github.com/rechte-gewalt/chronik-crawler/internal/vocab"
)

// Driver orchestrates one full crawl: chronicle metadata, geolocation index,
// vocabularies, then the page walk until pagination ends.
type Driver struct {
	baseURL    string
	geoFeedURL string
	fetch      Fetcher
	sink       Sink
	logger     *zap.Logger
}

// NewDriver constructs a Driver.
func NewDriver(baseURL, geoFeedURL string, fetch Fetcher, sink Sink, logger *zap.Logger) *Driver {
	return &Driver{
		baseURL:    baseURL,
		geoFeedURL: geoFeedURL,
		fetch:      fetch,
		sink:       sink,
		logger:     logger,
	}
}

// Run executes the crawl to completion. It returns the first fatal error;
// idempotent upserts make a re-run after a failure safe.
func (d *Driver) Run(ctx context.Context) error {
	metrics.Init()

	if err := d.sink.UpsertChronicle(ctx, chronik.MuenchenChronik()); err != nil {
		return fmt.Errorf("write chronicle metadata: %w", err)
	}

	feed, err := d.fetch.Fetch(ctx, d.geoFeedURL)
	if err != nil {
		return fmt.Errorf("fetch geolocation feed: %w", err)
	}
	geoIdx, err := geo.BuildIndex(feed, d.logger)
	if err != nil {
		return err
	}

	page, err := d.fetch.Document(ctx, d.baseURL)
	if err != nil {
		return fmt.Errorf("listing page: %w", err)
	}

	// vocabularies come from the first listing page, fresh every run
	vocabs := vocab.Load(page)
	for _, k := range vocab.Kinds() {
		d.logger.Info("vocabulary loaded",
			zap.Stringer("kind", k),
			zap.Int("entries", vocabs.Len(k)),
		)
	}

	w := New(d.fetch, extract.New(vocabs, geoIdx, d.logger), d.sink, d.logger)

	pageURL := d.baseURL
	for {
		d.logger.Info("walking listing page", zap.String("url", pageURL))
		next, err := w.WalkPage(ctx, page)
		if err != nil {
			return err
		}
		if next == "" {
			d.logger.Info("pagination exhausted")
			return nil
		}
		page, err = d.fetch.Document(ctx, next)
		if err != nil {
			return fmt.Errorf("listing page: %w", err)
		}
		pageURL = next
	}
}
