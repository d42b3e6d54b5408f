// Package extract turns one fetched report page into a normalized incident
// record plus its source citations.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/rechte-gewalt/chronik-crawler/internal/chronik"
	"github.com/rechte-gewalt/chronik-crawler/internal/dates"
	"github.com/rechte-gewalt/chronik-crawler/internal/geo"
	"github.com/rechte-gewalt/chronik-crawler/internal/metrics"
	"github.com/rechte-gewalt/chronik-crawler/internal/vocab"
)

const (
	sourcePrefix = "Quelle:"
	tagsPrefix   = "Schlagworte:"
)

// Extractor builds incident records from report documents. The vocabularies
// and the geolocation index are constructed once per run and passed in, so
// the extractor itself is stateless and trivially testable with synthetic
// data.
type Extractor struct {
	vocabs vocab.Vocabularies
	geoIdx *geo.Index
	logger *zap.Logger
}

// New constructs an Extractor.
func New(vocabs vocab.Vocabularies, geoIdx *geo.Index, logger *zap.Logger) *Extractor {
	return &Extractor{
		vocabs: vocabs,
		geoIdx: geoIdx,
		logger: logger,
	}
}

// Extract builds the incident and its sources from a report document fetched
// at url. Date failures propagate typed (dates.ErrUnrecognized for the skip
// tier, dates.ErrUnparseable for the fatal tier); everything else about the
// record is tolerant of absence.
func (e *Extractor) Extract(doc *goquery.Document, url string) (chronik.Incident, []chronik.Source, error) {
	article := doc.Find("article.post").First()
	if article.Length() == 0 {
		return chronik.Incident{}, nil, fmt.Errorf("no report article found at %s", url)
	}

	header := article.Find(".entry-header").Text()
	split, err := dates.Split(header)
	if err != nil {
		return chronik.Incident{}, nil, fmt.Errorf("report %s: %w", url, err)
	}

	tags, sources := e.metaInfo(article, url)
	classes := articleClasses(article)

	locations := append([]string{chronik.HomeRegion}, e.vocabs.Classify(vocab.Location, classes)...)

	incident := chronik.Incident{
		RgID:           url,
		URL:            url,
		ChroniclerName: chronik.ChroniclerName,
		Title:          split.Title,
		Date:           split.Date,
		Description:    paragraphText(article.Find(".entry-content").First()),
		City:           strings.Join(locations, ", "),
		Tags:           strings.Join(tags, ", "),
		Motives:        strings.Join(e.vocabs.Classify(vocab.Motive, classes), ", "),
		Contexts:       strings.Join(e.vocabs.Classify(vocab.Context, classes), ", "),
		Factums:        strings.Join(e.vocabs.Classify(vocab.Action, classes), ", "),
	}

	point, ok := e.geoIdx.Lookup(url)
	metrics.IncGeoLookup(ok)
	if ok {
		lat, lon := point.Latitude, point.Longitude
		incident.Latitude = &lat
		incident.Longitude = &lon
	} else {
		e.logger.Info("no geolocation found", zap.String("url", url))
	}

	return incident, sources, nil
}

// metaInfo scans the report's small-print lines for the two tagged kinds:
// "Quelle:" carries comma-separated citations, "Schlagworte:" carries tag
// links.
func (e *Extractor) metaInfo(article *goquery.Selection, url string) (tags []string, sources []chronik.Source) {
	article.Find(".smallinfo").Each(func(_ int, info *goquery.Selection) {
		text := strings.TrimSpace(info.Text())
		switch {
		case strings.HasPrefix(text, sourcePrefix):
			rest := strings.TrimSpace(strings.TrimPrefix(text, sourcePrefix))
			for _, name := range strings.Split(rest, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				sources = append(sources, chronik.Source{RgID: url, Name: name})
			}
		case strings.HasPrefix(text, tagsPrefix):
			info.Find("a").Each(func(_ int, a *goquery.Selection) {
				if tag := strings.TrimSpace(a.Text()); tag != "" {
					tags = append(tags, tag)
				}
			})
		}
	})
	return tags, sources
}

func articleClasses(article *goquery.Selection) []string {
	class, _ := article.Attr("class")
	return strings.Fields(class)
}

// paragraphText flattens the report body to text while keeping paragraph
// boundaries as newlines.
func paragraphText(content *goquery.Selection) string {
	var parts []string
	content.Contents().Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}
