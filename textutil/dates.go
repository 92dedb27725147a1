package textutil

import (
	"regexp"
	"strconv"
	"time"
)

// DateRange is the result of scanning free text for an event period. Score
// reflects which extraction rule fired and feeds the parse confidence.
type DateRange struct {
	Start *time.Time
	End   *time.Time
	Score float64
}

// Extraction rules in order of specificity, with their confidence deltas.
const (
	ScoreFullRange    = 0.35 // "date time ~ date time", both ends resolved
	ScoreSameDayRange = 0.30 // "date time ~ time"
	ScoreSingleTime   = 0.15 // one "date time" occurrence
	ScoreUnresolved   = 0.05 // a rule matched but the timestamp didn't resolve
)

const datetimePattern = `(\d{4})[./\-](\d{1,2})[./\-](\d{1,2})[^\d:]{0,3}(\d{1,2}):(\d{2})`

var (
	rangeSeparator = `\s*[~〜∼\-–—]\s*`

	fullRangeRegex = regexp.MustCompile(datetimePattern + rangeSeparator + datetimePattern)
	sameDayRegex   = regexp.MustCompile(datetimePattern + rangeSeparator + `(\d{1,2}):(\d{2})`)
	singleRegex    = regexp.MustCompile(datetimePattern)
)

// Timezone names are resolved to fixed UTC offsets. Operator sites state a
// single wall-clock zone per region; DST is not a factor for the zones we
// ingest from.
var timezoneOffsets = map[string]int{
	"Asia/Seoul":    9 * 3600,
	"Asia/Tokyo":    9 * 3600,
	"Asia/Shanghai": 8 * 3600,
	"Asia/Taipei":   8 * 3600,
	"UTC":           0,
}

func resolveLocation(timezone string) *time.Location {
	if offset, ok := timezoneOffsets[timezone]; ok {
		return time.FixedZone(timezone, offset)
	}
	return time.UTC
}

// ExtractDateRange scans text for an event period in the given timezone.
// Rules are tried most-specific first: a full "date time ~ date time" range,
// then a same-day "date time ~ time" range, then a lone "date time". Both
// endpoints are converted to UTC. Unresolvable components degrade to nil
// with a near-zero score instead of failing.
func ExtractDateRange(text, timezone string) DateRange {
	loc := resolveLocation(timezone)

	if m := fullRangeRegex.FindStringSubmatch(text); m != nil {
		start := buildTime(m[1:6], loc)
		end := buildTime(m[6:11], loc)
		if start != nil && end != nil {
			return DateRange{Start: start, End: end, Score: ScoreFullRange}
		}
		if start != nil || end != nil {
			return DateRange{Start: start, End: end, Score: ScoreSingleTime}
		}
		return DateRange{Score: ScoreUnresolved}
	}

	if m := sameDayRegex.FindStringSubmatch(text); m != nil {
		start := buildTime(m[1:6], loc)
		end := buildTime([]string{m[1], m[2], m[3], m[6], m[7]}, loc)
		if start != nil && end != nil {
			return DateRange{Start: start, End: end, Score: ScoreSameDayRange}
		}
		if start != nil {
			return DateRange{Start: start, Score: ScoreSingleTime}
		}
		return DateRange{Score: ScoreUnresolved}
	}

	if m := singleRegex.FindStringSubmatch(text); m != nil {
		start := buildTime(m[1:6], loc)
		if start != nil {
			return DateRange{Start: start, Score: ScoreSingleTime}
		}
		return DateRange{Score: ScoreUnresolved}
	}

	return DateRange{}
}

// buildTime resolves [year, month, day, hour, minute] strings in loc to a
// UTC timestamp, or nil if the components don't form a valid wall time.
// "24:00" is accepted as midnight of the following day, a convention common
// on maintenance notices.
func buildTime(parts []string, loc *time.Location) *time.Time {
	year := atoi(parts[0])
	month := atoi(parts[1])
	day := atoi(parts[2])
	hour := atoi(parts[3])
	minute := atoi(parts[4])

	if month < 1 || month > 12 || day < 1 || day > 31 || minute > 59 {
		return nil
	}

	nextDay := false
	if hour == 24 && minute == 0 {
		hour = 0
		nextDay = true
	}
	if hour > 23 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// Reject overflowed dates like 2026/02/31 before any day rollover.
	if t.Day() != day {
		return nil
	}
	if nextDay {
		t = t.AddDate(0, 0, 1)
	}

	utc := t.UTC()
	return &utc
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
