// Package sources fetches configured notice sources into normalized raw
// candidates. One failing item never aborts its siblings; only a failure to
// fetch the list itself fails the source run.
package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/textutil"
)

const (
	listFetchTimeout   = 15 * time.Second
	detailFetchTimeout = 12 * time.Second
	maxBodyBytes       = 4 << 20
)

// RawCandidate is one fetched, unparsed item from a source.
type RawCandidate struct {
	URL         string
	Title       string
	PublishedAt *time.Time
	ContentText string
	RawPayload  []byte
}

type Collector struct {
	client *http.Client
	logger *slog.Logger
}

func NewCollector(client *http.Client, logger *slog.Logger) *Collector {
	return &Collector{client: client, logger: logger}
}

// Collect runs the fetch strategy for the source's type. API sources are a
// documented limitation: running one is a hard error, not a silent no-op.
func (c *Collector) Collect(ctx context.Context, src data.Source) ([]RawCandidate, error) {
	switch src.Type {
	case enums.SourceTypeRSS:
		return c.collectRSS(ctx, src)
	case enums.SourceTypeHTMLList, enums.SourceTypeHTMLDetail:
		return c.collectHTML(ctx, src)
	case enums.SourceTypeAPI:
		return nil, fmt.Errorf("source %d: API source type is not implemented", src.ID)
	default:
		return nil, fmt.Errorf("source %d: unknown source type %q", src.ID, src.Type)
	}
}

func listURL(src data.Source) string {
	if src.ListURL != "" {
		return src.ListURL
	}
	return src.BaseURL
}

// fetchPage GETs a page with a bounded timeout and converts the body to
// UTF-8. The list fetch is retried a few times since operator sites are
// flaky; detail fetches pass retries=1 and swallow their own failures.
func (c *Collector) fetchPage(ctx context.Context, pageURL string, timeout time.Duration, retries uint) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var page string
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "ko,ja,en;q=0.8")

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d", resp.StatusCode)
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				return err
			}

			page = textutil.DecodeBody(body, headerCharset(resp.Header))
			return nil
		},
		retry.Attempts(retries),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying fetch", "url", pageURL, "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	return page, nil
}

func headerCharset(h http.Header) string {
	ct := h.Get("Content-Type")
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return params["charset"]
}
