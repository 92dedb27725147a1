package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/hoseok0727-sudo/subculture/enums"
)

// CanonicalKey builds the stable identity of a logical notice. Every parse
// of the same (region, type, title, period) must produce the same key so
// repeated fetches merge into one event row instead of duplicating it.
func CanonicalKey(regionID string, eventType enums.EventType, title string, startAtUTC, endAtUTC *time.Time) string {
	titleSlug := slug.Make(title)

	input := fmt.Sprintf("%s:%s:%s:%s:%s",
		regionID, eventType, titleSlug, formatOrNA(startAtUTC), formatOrNA(endAtUTC))
	sum := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(sum[:])[:12]

	return fmt.Sprintf("%s-%s-%s-%s", regionID, eventType, titleSlug, short)
}

func formatOrNA(t *time.Time) string {
	if t == nil {
		return "na"
	}
	return t.UTC().Format(time.RFC3339)
}
