package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/textutil"
)

const maxHTMLItems = 30

// HTMLConfig is the typed view of a source's free-form config map.
// Unrecognized keys are ignored, missing keys fall back to defaults.
type HTMLConfig struct {
	ItemSelector   string
	TitleSelector  string
	LinkSelector   string
	DateSelector   string
	DetailSelector string
	Timezone       string
}

// HTMLConfigFrom reads the recognized keys out of the raw config map.
func HTMLConfigFrom(cfg map[string]string) HTMLConfig {
	out := HTMLConfig{
		ItemSelector: "a",
		Timezone:     "UTC",
	}
	if v := cfg["itemSelector"]; v != "" {
		out.ItemSelector = v
	}
	out.TitleSelector = cfg["titleSelector"]
	out.LinkSelector = cfg["linkSelector"]
	out.DateSelector = cfg["dateSelector"]
	out.DetailSelector = cfg["detailSelector"]
	if v := cfg["timezone"]; v != "" {
		out.Timezone = v
	}
	return out
}

type htmlPayload struct {
	ListURL  string `json:"listUrl"`
	ItemHTML string `json:"itemHtml,omitempty"`
}

func (c *Collector) collectHTML(ctx context.Context, src data.Source) ([]RawCandidate, error) {
	cfg := HTMLConfigFrom(src.Config())

	page, err := c.fetchPage(ctx, listURL(src), listFetchTimeout, 3)
	if err != nil {
		return nil, fmt.Errorf("fetch list page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse list page: %w", err)
	}

	base, err := url.Parse(src.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	fetchDetail := src.Type == enums.SourceTypeHTMLDetail || cfg.DetailSelector != ""

	var candidates []RawCandidate
	doc.Find(cfg.ItemSelector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if len(candidates) >= maxHTMLItems {
			return false
		}

		title := c.extractTitle(node, cfg)
		link := c.extractLink(node, cfg, base)
		if title == "" || link == "" {
			return true
		}

		item := RawCandidate{
			URL:         link,
			Title:       title,
			PublishedAt: c.extractDate(node, cfg),
			ContentText: textutil.NormalizeWhitespace(node.Text()),
		}

		if fetchDetail {
			c.enrichFromDetail(ctx, &item, cfg)
		}

		itemHTML, _ := goquery.OuterHtml(node)
		item.RawPayload, _ = json.Marshal(htmlPayload{
			ListURL:  listURL(src),
			ItemHTML: textutil.Truncate(itemHTML, 2000),
		})

		candidates = append(candidates, item)
		return true
	})

	return candidates, nil
}

func (c *Collector) extractTitle(node *goquery.Selection, cfg HTMLConfig) string {
	if cfg.TitleSelector != "" {
		return textutil.NormalizeWhitespace(node.Find(cfg.TitleSelector).First().Text())
	}
	return textutil.NormalizeWhitespace(node.Text())
}

func (c *Collector) extractLink(node *goquery.Selection, cfg HTMLConfig, base *url.URL) string {
	var href string
	if cfg.LinkSelector != "" {
		href, _ = node.Find(cfg.LinkSelector).First().Attr("href")
	} else if h, ok := node.Attr("href"); ok {
		href = h
	} else {
		href, _ = node.Find("a").First().Attr("href")
	}

	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

var listDateLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02", "01/02/2006", "2006.1.2"}

func (c *Collector) extractDate(node *goquery.Selection, cfg HTMLConfig) *time.Time {
	if cfg.DateSelector == "" {
		return nil
	}

	raw := textutil.NormalizeWhitespace(node.Find(cfg.DateSelector).First().Text())
	if raw == "" {
		return nil
	}

	loc := time.UTC
	for _, layout := range listDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// enrichFromDetail appends the item's own page text to its content. A
// failed or timed-out detail fetch degrades to list-only text and never
// fails the source run.
func (c *Collector) enrichFromDetail(ctx context.Context, item *RawCandidate, cfg HTMLConfig) {
	page, err := c.fetchPage(ctx, item.URL, detailFetchTimeout, 1)
	if err != nil {
		c.logger.Warn("detail fetch failed, keeping list text", "url", item.URL, "error", err)
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		c.logger.Warn("detail parse failed, keeping list text", "url", item.URL, "error", err)
		return
	}

	selector := cfg.DetailSelector
	if selector == "" {
		selector = "body"
	}

	detailText := textutil.NormalizeWhitespace(doc.Find(selector).First().Text())
	if detailText != "" {
		item.ContentText = textutil.NormalizeWhitespace(item.ContentText + " " + detailText)
	}
}
