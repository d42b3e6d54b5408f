// Package walker drives the sequential crawl: it enumerates report links on
// each listing page, runs the extractor on every report, persists the
// results, and follows the next-page link until pagination ends.
package walker

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/rechte-gewalt/chronik-crawler/internal/chronik"
	"github.com/rechte-gewalt/chronik-crawler/internal/dates"
	"github.com/rechte-gewalt/chronik-crawler/internal/extract"
	"github.com/rechte-gewalt/chronik-crawler/internal/metrics"
)

// Fetcher is the resilient fetch collaborator. Retries happen inside; an
// error means the budget is exhausted. Fetch returns raw bytes for the
// geolocation feed, Document a parsed tree for listing and report pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Sink persists extracted records idempotently.
type Sink interface {
	UpsertIncident(ctx context.Context, inc chronik.Incident) error
	UpsertSource(ctx context.Context, src chronik.Source) error
	UpsertChronicle(ctx context.Context, c chronik.Chronicle) error
}

// Walker processes listing pages one report at a time.
type Walker struct {
	fetch     Fetcher
	extractor *extract.Extractor
	sink      Sink
	logger    *zap.Logger
}

// New constructs a Walker.
func New(fetch Fetcher, extractor *extract.Extractor, sink Sink, logger *zap.Logger) *Walker {
	return &Walker{
		fetch:     fetch,
		extractor: extractor,
		sink:      sink,
		logger:    logger,
	}
}

// WalkPage processes every report linked from the listing page and returns
// the next-page URL, or "" when pagination is exhausted. Report errors
// propagate except for the documented skip tier (unrecognized date formats),
// which drops the single report and moves on.
func (w *Walker) WalkPage(ctx context.Context, page *goquery.Document) (string, error) {
	metrics.IncPage()

	var links []string
	page.Find(".entry-content a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})

	for _, url := range links {
		if err := w.processReport(ctx, url); err != nil {
			return "", err
		}
	}

	next, _ := page.Find(".nextpostslink").First().Attr("href")
	return next, nil
}

func (w *Walker) processReport(ctx context.Context, url string) error {
	w.logger.Info("processing report", zap.String("url", url))

	doc, err := w.fetch.Document(ctx, url)
	if err != nil {
		metrics.IncReport(metrics.OutcomeFailed)
		return err
	}

	incident, sources, err := w.extractor.Extract(doc, url)
	if errors.Is(err, dates.ErrUnrecognized) {
		// known-unusual header, drop this one report and keep walking
		w.logger.Warn("skipping report with unrecognized header", zap.String("url", url), zap.Error(err))
		metrics.IncReport(metrics.OutcomeSkipped)
		return nil
	}
	if err != nil {
		metrics.IncReport(metrics.OutcomeFailed)
		return err
	}

	if err := w.sink.UpsertIncident(ctx, incident); err != nil {
		metrics.IncReport(metrics.OutcomeFailed)
		return err
	}
	for _, src := range sources {
		if err := w.sink.UpsertSource(ctx, src); err != nil {
			metrics.IncReport(metrics.OutcomeFailed)
			return err
		}
	}
	metrics.AddSources(len(sources))
	metrics.IncReport(metrics.OutcomeProcessed)

	w.logger.Info("incident stored",
		zap.String("rg_id", incident.RgID),
		zap.Time("date", incident.Date),
		zap.Int("sources", len(sources)),
	)
	return nil
}
