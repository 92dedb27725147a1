package scheduling

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

// Skip reasons reported by ComputeScheduledAt.
const (
	SkipNoBasis = "no_basis_date"
	SkipTooLate = "too_late"
)

// ComputeScheduledAt resolves the delivery time for one rule against one
// event. A rule whose basis date is missing (e.g. BEFORE_END with no end
// date) or whose computed time is more than five minutes in the past is
// skipped; the returned reason is empty only when the time is usable.
func ComputeScheduledAt(rule data.NotificationRule, event data.Event, now time.Time) (time.Time, string) {
	offset := time.Duration(rule.OffsetMinutes) * time.Minute

	var at time.Time
	switch rule.Trigger {
	case enums.TriggerOnStart:
		if !event.StartAtUTC.Valid {
			return time.Time{}, SkipNoBasis
		}
		at = event.StartAtUTC.Time
	case enums.TriggerOnEnd:
		if !event.EndAtUTC.Valid {
			return time.Time{}, SkipNoBasis
		}
		at = event.EndAtUTC.Time
	case enums.TriggerBeforeStart:
		if !event.StartAtUTC.Valid {
			return time.Time{}, SkipNoBasis
		}
		at = event.StartAtUTC.Time.Add(-offset)
	case enums.TriggerBeforeEnd:
		if !event.EndAtUTC.Valid {
			return time.Time{}, SkipNoBasis
		}
		at = event.EndAtUTC.Time.Add(-offset)
	case enums.TriggerOnPublish:
		at = event.CreatedAt
		if at.IsZero() {
			at = now
		}
	default:
		return time.Time{}, SkipNoBasis
	}

	if at.Before(now.Add(-maxLateness)) {
		return time.Time{}, SkipTooLate
	}

	return at.UTC(), ""
}

// BuildDedupeKey is the identity of one logical schedule: at most one row
// may exist per (user, event, channel, trigger shape), no matter how many
// times planning runs.
func BuildDedupeKey(userID uuid.UUID, eventID int64, channel enums.Channel, trigger enums.TriggerType, offsetMinutes int) string {
	input := fmt.Sprintf("%s:%d:%s:%s:%d", userID.String(), eventID, channel, trigger, offsetMinutes)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
