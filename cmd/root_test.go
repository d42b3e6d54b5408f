package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiresCrawlSubcommand(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	assert.Equal(t, "chronik-crawler", root.Use)

	crawl, _, err := root.Find([]string{"crawl"})
	require.NoError(t, err)
	assert.Equal(t, "crawl", crawl.Use)

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
}
