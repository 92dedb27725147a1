package data

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hoseok0727-sudo/subculture/enums"
)

type User struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
	Avatar      string    `db:"avatar"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Source struct {
	ID                   int64            `db:"id"`
	RegionID             string           `db:"region_id"`
	Type                 enums.SourceType `db:"type"`
	BaseURL              string           `db:"base_url"`
	ListURL              string           `db:"list_url"`
	Enabled              bool             `db:"enabled"`
	FetchIntervalMinutes int              `db:"fetch_interval_minutes"`
	LastSuccessAt        sql.NullTime     `db:"last_success_at"`
	LastErrorAt          sql.NullTime     `db:"last_error_at"`
	LastErrorMessage     sql.NullString   `db:"last_error_message"`
	ConfigRaw            json.RawMessage  `db:"config"`
	CreatedAt            time.Time        `db:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at"`
}

// Config decodes the source's free-form key/value config. Unrecognized keys
// are carried but ignored by the typed views built on top; a broken blob
// degrades to an empty map rather than failing the source run.
func (s Source) Config() map[string]string {
	if len(s.ConfigRaw) == 0 {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(s.ConfigRaw, &m); err != nil {
		return map[string]string{}
	}
	return m
}

type RawNotice struct {
	ID          int64           `db:"id"`
	SourceID    int64           `db:"source_id"`
	URL         string          `db:"url"`
	Title       string          `db:"title"`
	PublishedAt sql.NullTime    `db:"published_at"`
	FetchedAt   time.Time       `db:"fetched_at"`
	ContentText string          `db:"content_text"`
	ContentHash string          `db:"content_hash"`
	RawPayload  json.RawMessage `db:"raw_payload"`
	Status      enums.RawStatus `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
}

type Event struct {
	ID           int64            `db:"id"`
	RegionID     string           `db:"region_id"`
	Type         enums.EventType  `db:"type"`
	Title        string           `db:"title"`
	Summary      string           `db:"summary"`
	StartAtUTC   sql.NullTime     `db:"start_at_utc"`
	EndAtUTC     sql.NullTime     `db:"end_at_utc"`
	SourceURL    string           `db:"source_url"`
	Language     string           `db:"language"`
	Confidence   float64          `db:"confidence"`
	Visibility   enums.Visibility `db:"visibility"`
	CanonicalKey string           `db:"canonical_key"`
	CreatedAt    time.Time        `db:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at"`
}

type EventRawLink struct {
	EventID     int64     `db:"event_id"`
	RawNoticeID int64     `db:"raw_notice_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type NotificationRule struct {
	ID            int64             `db:"id"`
	UserID        uuid.UUID         `db:"user_id"`
	Scope         enums.RuleScope   `db:"scope"`
	RegionID      sql.NullString    `db:"region_id"`
	EventType     enums.EventType   `db:"event_type"`
	Trigger       enums.TriggerType `db:"trigger_type"`
	OffsetMinutes int               `db:"offset_minutes"`
	Channel       enums.Channel     `db:"channel"`
	Enabled       bool              `db:"enabled"`
	CreatedAt     time.Time         `db:"created_at"`
}

type NotificationSchedule struct {
	ID            int64                `db:"id"`
	UserID        uuid.UUID            `db:"user_id"`
	EventID       int64                `db:"event_id"`
	Channel       enums.Channel        `db:"channel"`
	TriggerType   enums.TriggerType    `db:"trigger_type"`
	OffsetMinutes int                  `db:"trigger_offset_minutes"`
	ScheduledAt   time.Time            `db:"scheduled_at_utc"`
	Status        enums.ScheduleStatus `db:"status"`
	Payload       json.RawMessage      `db:"payload"`
	DedupeKey     string               `db:"dedupe_key"`
	CreatedAt     time.Time            `db:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at"`
}

type NotificationDelivery struct {
	ID              int64                `db:"id"`
	ScheduleID      int64                `db:"schedule_id"`
	SentAt          time.Time            `db:"sent_at"`
	Result          enums.DeliveryResult `db:"result"`
	ErrorMessage    sql.NullString       `db:"error_message"`
	ResponsePayload json.RawMessage      `db:"response_payload"`
}

type UserGameSubscription struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	RegionID  string    `db:"region_id"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
}

type PushSubscription struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Endpoint  string    `db:"endpoint"`
	P256dh    string    `db:"p256dh"`
	Auth      string    `db:"auth"`
	CreatedAt time.Time `db:"created_at"`
}

type IngestRun struct {
	ID           int64              `db:"id"`
	SourceID     sql.NullInt64      `db:"source_id"`
	Mode         enums.IngestMode   `db:"mode"`
	Status       enums.IngestStatus `db:"status"`
	FetchedCount int                `db:"fetched_count"`
	ParsedCount  int                `db:"parsed_count"`
	ErrorCount   int                `db:"error_count"`
	Message      sql.NullString     `db:"message"`
	StartedAt    time.Time          `db:"started_at"`
	FinishedAt   time.Time          `db:"finished_at"`
}
