package textutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractDateRange_FullRange(t *testing.T) {
	r := ExtractDateRange("이벤트 기간: 2026/03/01 10:00 ~ 2026/03/08 11:30", "Asia/Seoul")

	assert.Equal(t, ScoreFullRange, r.Score)
	assert.Equal(t, time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC), *r.Start)
	assert.Equal(t, time.Date(2026, 3, 8, 2, 30, 0, 0, time.UTC), *r.End)
}

func TestExtractDateRange_FullRangeDashSeparators(t *testing.T) {
	r := ExtractDateRange("2026-03-01 10:00 - 2026-03-08 11:30", "UTC")

	assert.Equal(t, ScoreFullRange, r.Score)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), *r.Start)
	assert.Equal(t, time.Date(2026, 3, 8, 11, 30, 0, 0, time.UTC), *r.End)
}

func TestExtractDateRange_SameDay(t *testing.T) {
	r := ExtractDateRange("メンテナンス: 2026/04/02 14:00 〜 18:00", "Asia/Tokyo")

	assert.Equal(t, ScoreSameDayRange, r.Score)
	assert.Equal(t, time.Date(2026, 4, 2, 5, 0, 0, 0, time.UTC), *r.Start)
	assert.Equal(t, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), *r.End)
}

func TestExtractDateRange_SingleTimestamp(t *testing.T) {
	r := ExtractDateRange("업데이트는 2026/05/10 06:00 에 진행됩니다", "Asia/Seoul")

	assert.Equal(t, ScoreSingleTime, r.Score)
	assert.Equal(t, time.Date(2026, 5, 9, 21, 0, 0, 0, time.UTC), *r.Start)
	assert.Nil(t, r.End)
}

func TestExtractDateRange_NoDates(t *testing.T) {
	r := ExtractDateRange("점검이 완료되었습니다", "Asia/Seoul")

	assert.Equal(t, 0.0, r.Score)
	assert.Nil(t, r.Start)
	assert.Nil(t, r.End)
}

func TestExtractDateRange_MidnightConvention(t *testing.T) {
	r := ExtractDateRange("2026/03/01 24:00", "UTC")

	assert.Equal(t, ScoreSingleTime, r.Score)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *r.Start)
}

func TestExtractDateRange_MidnightOnInvalidDateDegrades(t *testing.T) {
	// 24:00 rolls the day forward, but only from a date that exists.
	r := ExtractDateRange("2026/02/31 24:00", "UTC")

	assert.Nil(t, r.Start)
	assert.Equal(t, ScoreUnresolved, r.Score)
}

func TestExtractDateRange_InvalidDateDegrades(t *testing.T) {
	r := ExtractDateRange("2026/02/31 77:00", "UTC")

	assert.Nil(t, r.Start)
	assert.Nil(t, r.End)
	assert.Equal(t, ScoreUnresolved, r.Score)
}

func TestExtractDateRange_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	r := ExtractDateRange("2026/03/01 10:00", "Mars/Olympus")

	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), *r.Start)
}

func TestExtractDateRange_FullRangeBeatsSameDay(t *testing.T) {
	// The same-day rule must not swallow the prefix of a full range.
	r := ExtractDateRange("2026/03/01 10:00 ~ 2026/03/08 11:30 (UTC+9)", "Asia/Seoul")

	assert.Equal(t, ScoreFullRange, r.Score)
	assert.Equal(t, time.Date(2026, 3, 8, 2, 30, 0, 0, time.UTC), *r.End)
}
