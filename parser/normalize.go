// Package parser turns raw notice text into typed event drafts using
// ordered regex and keyword rules with fixed confidence deltas, gated by a
// hard visibility threshold. The rule list and weights are the documented
// behavior, not an approximation of one.
package parser

import (
	"time"

	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/textutil"
)

const (
	// BaseConfidence is granted to any notice that made it through fetch
	// and normalization at all.
	BaseConfidence = 0.35

	// SummaryBonus applies when the body yields a non-trivial summary.
	SummaryBonus = 0.1

	// PublicThreshold is the business rule gating PUBLIC visibility. A bare
	// keyword hit with no resolvable date stays under it by construction.
	PublicThreshold = 0.65

	summaryMaxLen   = 220
	summaryBonusMin = 20
)

// EventDraft is a normalized, scored candidate for the event catalog.
type EventDraft struct {
	Type       enums.EventType
	Title      string
	Summary    string
	Language   string
	StartAtUTC *time.Time
	EndAtUTC   *time.Time
	Confidence float64
	Visibility enums.Visibility
}

// Normalize builds a draft from a raw notice's title and body text. The
// timezone is the source's configured zone for interpreting wall-clock
// timestamps in the text.
func Normalize(title, contentText, timezone string) EventDraft {
	cleanTitle := textutil.NormalizeWhitespace(title)
	cleanBody := textutil.NormalizeWhitespace(contentText)

	combined := cleanTitle + " " + cleanBody
	eventType, typeScore := textutil.DetectEventType(combined)
	dates := textutil.ExtractDateRange(combined, timezone)

	summary := textutil.Truncate(cleanBody, summaryMaxLen)

	confidence := BaseConfidence + typeScore + dates.Score
	if len([]rune(summary)) > summaryBonusMin {
		confidence += SummaryBonus
	}
	if confidence > 1 {
		confidence = 1
	}

	visibility := enums.VisibilityNeedReview
	if confidence >= PublicThreshold {
		visibility = enums.VisibilityPublic
	}

	return EventDraft{
		Type:       eventType,
		Title:      cleanTitle,
		Summary:    summary,
		Language:   textutil.DetectLanguage(combined),
		StartAtUTC: dates.Start,
		EndAtUTC:   dates.End,
		Confidence: confidence,
		Visibility: visibility,
	}
}
