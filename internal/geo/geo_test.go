package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const feedJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [11.5755, 48.1374]},
			"properties": {"text": "<div><a href=\"https://muenchen-chronik.de/chronik/2019/foo/\">Vorfall</a></div>"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [11.6, 48.2]},
			"properties": {"text": "<div><a href=\"http://muenchen-chronik.de/chronik/2019/bar/\">Vorfall</a></div>"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [11.7, 48.3]},
			"properties": {"text": "<div>kein Link</div>"}
		}
	]
}`

func TestBuildIndexKeysByStrippedURL(t *testing.T) {
	t.Parallel()

	idx, err := BuildIndex([]byte(feedJSON), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())

	p, ok := idx.Lookup("muenchen-chronik.de/chronik/2019/foo/")
	require.True(t, ok)
	assert.Equal(t, 48.1374, p.Latitude)
	assert.Equal(t, 11.5755, p.Longitude)
}

func TestLookupStripsScheme(t *testing.T) {
	t.Parallel()

	idx, err := BuildIndex([]byte(feedJSON), zap.NewNop())
	require.NoError(t, err)

	_, ok := idx.Lookup("https://muenchen-chronik.de/chronik/2019/foo/")
	assert.True(t, ok)
	_, ok = idx.Lookup("http://muenchen-chronik.de/chronik/2019/bar/")
	assert.True(t, ok)
	_, ok = idx.Lookup("https://muenchen-chronik.de/chronik/2019/baz/")
	assert.False(t, ok)
}

func TestBuildIndexCollisionKeepsLast(t *testing.T) {
	t.Parallel()

	collision := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [11.0, 48.0]},
				"properties": {"text": "<a href=\"https://muenchen-chronik.de/chronik/2020/x/\">a</a>"}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [11.9, 48.9]},
				"properties": {"text": "<a href=\"https://muenchen-chronik.de/chronik/2020/x/\">b</a>"}
			}
		]
	}`
	idx, err := BuildIndex([]byte(collision), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	p, ok := idx.Lookup("muenchen-chronik.de/chronik/2020/x/")
	require.True(t, ok)
	assert.Equal(t, 48.9, p.Latitude)
	assert.Equal(t, 11.9, p.Longitude)
}

func TestBuildIndexRejectsMalformedFeed(t *testing.T) {
	t.Parallel()

	_, err := BuildIndex([]byte("not json"), zap.NewNop())
	require.Error(t, err)
}
