package walker

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rechte-gewalt/chronik-crawler/internal/chronik"
	"github.com/rechte-gewalt/chronik-crawler/internal/extract"
	"github.com/rechte-gewalt/chronik-crawler/internal/geo"
	"github.com/rechte-gewalt/chronik-crawler/internal/vocab"
)

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("fetch %s: retries exhausted", url)
	}
	f.fetched = append(f.fetched, url)
	return []byte(body), nil
}

func (f *fakeFetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

type fakeSink struct {
	incidents  []chronik.Incident
	sources    []chronik.Source
	chronicles []chronik.Chronicle
}

func (s *fakeSink) UpsertIncident(_ context.Context, inc chronik.Incident) error {
	// replace-by-key, as the real store does
	for i, existing := range s.incidents {
		if existing.RgID == inc.RgID {
			s.incidents[i] = inc
			return nil
		}
	}
	s.incidents = append(s.incidents, inc)
	return nil
}

func (s *fakeSink) UpsertSource(_ context.Context, src chronik.Source) error {
	for _, existing := range s.sources {
		if existing == src {
			return nil
		}
	}
	s.sources = append(s.sources, src)
	return nil
}

func (s *fakeSink) UpsertChronicle(_ context.Context, c chronik.Chronicle) error {
	s.chronicles = append(s.chronicles, c)
	return nil
}

const (
	baseURL = "https://muenchen-chronik.de/chronik/"
	feedURL = "https://muenchen-chronik.de/maps/geojson/"
	page2   = "https://muenchen-chronik.de/chronik/page/2/"
	report1 = "https://muenchen-chronik.de/chronik/2018/eins/"
	report2 = "https://muenchen-chronik.de/chronik/2018/zwei/"
	report3 = "https://muenchen-chronik.de/chronik/2018/drei/"
)

func listingPage(links []string, next string) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	b.WriteString(`<div class="sf-field-taxonomy-motiv"><select>`)
	b.WriteString(`<option value=""></option><option value="rassismus">Rassismus</option>`)
	b.WriteString(`</select></div><div class="entry-content">`)
	for _, l := range links {
		fmt.Fprintf(&b, `<a href=%q>Bericht</a>`, l)
	}
	b.WriteString(`</div>`)
	if next != "" {
		fmt.Fprintf(&b, `<a class="nextpostslink" href=%q>»</a>`, next)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func reportPage(header string) string {
	return fmt.Sprintf(`<html><body>
<article class="post motiv-rassismus">
	<div class="entry-header">%s</div>
	<div class="entry-content"><p>Beschreibung.</p></div>
	<div class="smallinfo">Quelle: Abendzeitung, BEFORE</div>
</article>
</body></html>`, header)
}

const feedBody = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [11.5, 48.1]},
		"properties": {"text": "<a href=\"https://muenchen-chronik.de/chronik/2018/eins/\">x</a>"}
	}]
}`

func newFakeSite() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{
		feedURL: feedBody,
		baseURL: listingPage([]string{report1, report2}, page2),
		page2:   listingPage([]string{report3}, ""),
		report1: reportPage("12.3.18: Überfall – Angriff eins"),
		report2: reportPage("13.3.18: – Angriff zwei"),
		report3: reportPage("14.3.18: – Angriff drei"),
	}}
}

func TestDriverRunWalksAllPages(t *testing.T) {
	t.Parallel()

	fetcher := newFakeSite()
	sink := &fakeSink{}
	d := NewDriver(baseURL, feedURL, fetcher, sink, zap.NewNop())

	require.NoError(t, d.Run(context.Background()))

	require.Len(t, sink.chronicles, 1)
	assert.Equal(t, chronik.ChroniclerName, sink.chronicles[0].ChroniclerName)

	require.Len(t, sink.incidents, 3)
	assert.Equal(t, report1, sink.incidents[0].RgID)
	assert.Equal(t, "Angriff eins", sink.incidents[0].Title)
	assert.Equal(t, time.Date(2018, time.March, 12, 0, 0, 0, 0, time.UTC), sink.incidents[0].Date)
	assert.Equal(t, "Rassismus", sink.incidents[0].Motives)

	// geolocation only exists for the first report
	require.NotNil(t, sink.incidents[0].Latitude)
	assert.Nil(t, sink.incidents[1].Latitude)

	// two citations per report
	assert.Len(t, sink.sources, 6)
}

func TestDriverRunIsIdempotent(t *testing.T) {
	t.Parallel()

	fetcher := newFakeSite()
	sink := &fakeSink{}
	d := NewDriver(baseURL, feedURL, fetcher, sink, zap.NewNop())

	require.NoError(t, d.Run(context.Background()))
	first := append([]chronik.Incident(nil), sink.incidents...)

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, first, sink.incidents)
	assert.Len(t, sink.sources, 6)
}

func TestWalkPageReturnsEmptyWhenNoNextLink(t *testing.T) {
	t.Parallel()

	fetcher := newFakeSite()
	page, err := fetcher.Document(context.Background(), page2)
	require.NoError(t, err)

	idx, err := geo.BuildIndex([]byte(feedBody), zap.NewNop())
	require.NoError(t, err)
	vocabs := vocab.Load(page)

	w := New(fetcher, extract.New(vocabs, idx, zap.NewNop()), &fakeSink{}, zap.NewNop())
	next, err := w.WalkPage(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "", next)
}

func TestWalkSkipsReportWithUnrecognizedHeader(t *testing.T) {
	t.Parallel()

	fetcher := newFakeSite()
	fetcher.pages[report2] = reportPage("irgendwann im Frühjahr – Angriff zwei")
	sink := &fakeSink{}
	d := NewDriver(baseURL, feedURL, fetcher, sink, zap.NewNop())

	require.NoError(t, d.Run(context.Background()))

	// the skipped report is dropped, the walk continues
	require.Len(t, sink.incidents, 2)
	assert.Equal(t, report1, sink.incidents[0].RgID)
	assert.Equal(t, report3, sink.incidents[1].RgID)
}

func TestWalkAbortsOnUnparseableHeader(t *testing.T) {
	t.Parallel()

	fetcher := newFakeSite()
	fetcher.pages[report1] = reportPage("Frühjahr / Sommer – Angriff eins")
	sink := &fakeSink{}
	d := NewDriver(baseURL, feedURL, fetcher, sink, zap.NewNop())

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, sink.incidents)
}

func TestWalkAbortsWhenFetchBudgetExhausted(t *testing.T) {
	t.Parallel()

	fetcher := newFakeSite()
	delete(fetcher.pages, report2)
	sink := &fakeSink{}
	d := NewDriver(baseURL, feedURL, fetcher, sink, zap.NewNop())

	err := d.Run(context.Background())
	require.Error(t, err)
	// the first report still made it in before the abort
	require.Len(t, sink.incidents, 1)
}
