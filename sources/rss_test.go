package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

func rssSource(listURL string) data.Source {
	return data.Source{
		ID:       2,
		RegionID: "jp",
		Type:     enums.SourceTypeRSS,
		BaseURL:  listURL,
		ListURL:  listURL,
	}
}

func serveRSS(t *testing.T, items string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
			<rss version="2.0"><channel><title>notices</title>%s</channel></rss>`, items)
	}))
}

func TestCollectRSS_BasicItems(t *testing.T) {
	srv := serveRSS(t, `
		<item>
			<title>ピックアップ開催のお知らせ</title>
			<link>https://example.com/news/1</link>
			<description>&lt;p&gt;期間: 2026/03/01 10:00 〜 2026/03/08 11:30&lt;/p&gt;</description>
			<pubDate>Mon, 02 Mar 2026 01:00:00 GMT</pubDate>
		</item>`)
	defer srv.Close()

	got, err := testCollector().Collect(context.Background(), rssSource(srv.URL))

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "https://example.com/news/1", got[0].URL)
	assert.Equal(t, "ピックアップ開催のお知らせ", got[0].Title)
	assert.Contains(t, got[0].ContentText, "2026/03/08 11:30")
	assert.NotContains(t, got[0].ContentText, "<p>")
	assert.NotNil(t, got[0].PublishedAt)
}

func TestCollectRSS_GuidFallbackAndTitleFallback(t *testing.T) {
	srv := serveRSS(t, `
		<item>
			<title>Maintenance</title>
			<guid>https://example.com/news/2</guid>
		</item>
		<item>
			<title>no link at all</title>
		</item>`)
	defer srv.Close()

	got, err := testCollector().Collect(context.Background(), rssSource(srv.URL))

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "https://example.com/news/2", got[0].URL)
	// Description missing: title becomes the content text.
	assert.Equal(t, "Maintenance", got[0].ContentText)
}

func TestCollectRSS_ItemCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, `<item><title>n%d</title><link>https://example.com/n/%d</link></item>`, i, i)
	}
	srv := serveRSS(t, b.String())
	defer srv.Close()

	got, err := testCollector().Collect(context.Background(), rssSource(srv.URL))

	assert.NoError(t, err)
	assert.Len(t, got, maxRSSItems)
}

func TestCollectRSS_UnreachableFeedFailsRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testCollector().Collect(context.Background(), rssSource(srv.URL))

	assert.Error(t, err)
}
