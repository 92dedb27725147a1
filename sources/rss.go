package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/textutil"
)

const maxRSSItems = 50

type rssPayload struct {
	GUID       string   `json:"guid,omitempty"`
	Link       string   `json:"link,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Author     string   `json:"author,omitempty"`
}

func (c *Collector) collectRSS(ctx context.Context, src data.Source) ([]RawCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, listFetchTimeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = c.client

	feed, err := parser.ParseURLWithContext(listURL(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	candidates := make([]RawCandidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(candidates) >= maxRSSItems {
			break
		}

		link := item.Link
		if link == "" {
			link = item.GUID
		}
		if link == "" {
			c.logger.Debug("skipping feed item without link or guid", "source_id", src.ID, "title", item.Title)
			continue
		}

		title := textutil.NormalizeWhitespace(item.Title)

		content := textutil.StripHTML(item.Description)
		if content == "" {
			content = textutil.StripHTML(item.Content)
		}
		if content == "" {
			content = title
		}

		var published *time.Time
		if item.PublishedParsed != nil {
			utc := item.PublishedParsed.UTC()
			published = &utc
		}

		var author string
		if item.Author != nil {
			author = item.Author.Name
		}
		payload, _ := json.Marshal(rssPayload{
			GUID:       item.GUID,
			Link:       item.Link,
			Categories: item.Categories,
			Author:     author,
		})

		candidates = append(candidates, RawCandidate{
			URL:         link,
			Title:       title,
			PublishedAt: published,
			ContentText: content,
			RawPayload:  payload,
		})
	}

	return candidates, nil
}
