package repos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

type ScheduleRepo struct {
	db *sqlx.DB
}

func NewScheduleRepo(db *sqlx.DB) *ScheduleRepo {
	return &ScheduleRepo{db}
}

// UpsertPlanned inserts or refreshes a schedule by dedupe key. A row that
// was already SENT keeps that status; everything else is forced back to
// PENDING with the recomputed time and payload.
func (r *ScheduleRepo) UpsertPlanned(s data.NotificationSchedule) error {
	query := `
		INSERT INTO notification_schedules (user_id, event_id, channel, trigger_type, trigger_offset_minutes, scheduled_at_utc, status, payload, dedupe_key)
		VALUES (:user_id, :event_id, :channel, :trigger_type, :trigger_offset_minutes, :scheduled_at_utc, 'PENDING', :payload, :dedupe_key)
		ON CONFLICT (dedupe_key) DO UPDATE SET
			scheduled_at_utc = EXCLUDED.scheduled_at_utc,
			payload = EXCLUDED.payload,
			status = CASE
				WHEN notification_schedules.status = 'SENT' THEN 'SENT'
				ELSE 'PENDING'
			END,
			updated_at = now()`

	_, err := r.db.NamedExec(query, s)
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}

	return nil
}

// PurgeForEvent removes stale planning output for an event so a re-plan
// starts clean. SENT rows are history and PROCESSING rows belong to an
// in-flight dispatcher; both are left alone.
func (r *ScheduleRepo) PurgeForEvent(eventID int64) error {
	query := `
		DELETE FROM notification_schedules
		WHERE event_id = $1 AND status IN ('PENDING', 'FAILED', 'CANCELED')`

	_, err := r.db.Exec(query, eventID)
	if err != nil {
		return fmt.Errorf("purge schedules for event: %w", err)
	}

	return nil
}

func (r *ScheduleRepo) PurgeForUser(userID uuid.UUID) error {
	query := `
		DELETE FROM notification_schedules
		WHERE user_id = $1 AND status IN ('PENDING', 'FAILED', 'CANCELED')`

	_, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("purge schedules for user: %w", err)
	}

	return nil
}

// CancelPendingForEvent marks an event's undelivered schedules CANCELED,
// used when the event is no longer PUBLIC.
func (r *ScheduleRepo) CancelPendingForEvent(eventID int64) error {
	query := `
		UPDATE notification_schedules
		SET status = 'CANCELED', updated_at = now()
		WHERE event_id = $1 AND status IN ('PENDING', 'FAILED')`

	_, err := r.db.Exec(query, eventID)
	if err != nil {
		return fmt.Errorf("cancel schedules for event: %w", err)
	}

	return nil
}

// ClaimDue atomically claims up to limit due PENDING schedules and flips
// them to PROCESSING. FOR UPDATE SKIP LOCKED keeps concurrent claimants
// from blocking each other or claiming the same row; the transaction either
// claims its whole batch or nothing.
func (r *ScheduleRepo) ClaimDue(limit int, now time.Time) ([]data.NotificationSchedule, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var claimed []data.NotificationSchedule
	query := `
		SELECT * FROM notification_schedules
		WHERE status = 'PENDING' AND scheduled_at_utc <= $1
		ORDER BY scheduled_at_utc ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	if err := tx.Select(&claimed, query, now, limit); err != nil {
		return nil, fmt.Errorf("select due schedules: %w", err)
	}

	if len(claimed) == 0 {
		return []data.NotificationSchedule{}, tx.Commit()
	}

	ids := make([]int64, 0, len(claimed))
	for _, s := range claimed {
		ids = append(ids, s.ID)
	}

	update := `
		UPDATE notification_schedules
		SET status = 'PROCESSING', updated_at = now()
		WHERE id = ANY($1)`
	if _, err := tx.Exec(update, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("mark schedules processing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}

	for i := range claimed {
		claimed[i].Status = enums.ScheduleProcessing
	}

	return claimed, nil
}

// FinishProcessing records the terminal outcome of a claimed schedule. The
// status guard keeps a row from being finished twice.
func (r *ScheduleRepo) FinishProcessing(id int64, status enums.ScheduleStatus) error {
	query := `
		UPDATE notification_schedules
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'PROCESSING'`

	_, err := r.db.Exec(query, id, status)
	if err != nil {
		return fmt.Errorf("finish schedule: %w", err)
	}

	return nil
}

func (r *ScheduleRepo) GetSchedulesByUserID(userID uuid.UUID) ([]data.NotificationSchedule, error) {
	var schedules []data.NotificationSchedule
	query := `
		SELECT * FROM notification_schedules
		WHERE user_id = $1
		ORDER BY scheduled_at_utc ASC`

	err := r.db.Select(&schedules, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get schedules by user id: %w", err)
	}

	return schedules, nil
}
