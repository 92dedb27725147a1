package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
)

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db}
}

// UpsertByCanonicalKey merges a draft into the event catalog. On a key
// conflict every mutable field is overwritten by the latest parse
// (last-write-wins).
func (r *EventRepo) UpsertByCanonicalKey(event data.Event) (int64, error) {
	query := `
		INSERT INTO events (region_id, type, title, summary, start_at_utc, end_at_utc, source_url, language, confidence, visibility, canonical_key)
		VALUES (:region_id, :type, :title, :summary, :start_at_utc, :end_at_utc, :source_url, :language, :confidence, :visibility, :canonical_key)
		ON CONFLICT (canonical_key) DO UPDATE SET
			region_id = EXCLUDED.region_id,
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			start_at_utc = EXCLUDED.start_at_utc,
			end_at_utc = EXCLUDED.end_at_utc,
			source_url = EXCLUDED.source_url,
			language = EXCLUDED.language,
			confidence = EXCLUDED.confidence,
			visibility = EXCLUDED.visibility,
			updated_at = now()
		RETURNING id`

	rows, err := r.db.NamedQuery(query, event)
	if err != nil {
		return 0, fmt.Errorf("upsert event: %w", err)
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan upserted event id: %w", err)
		}
	}

	return id, nil
}

func (r *EventRepo) GetByID(id int64) (*data.Event, error) {
	var event data.Event
	query := `SELECT * FROM events WHERE id = $1`

	err := r.db.Get(&event, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	return &event, nil
}

func (r *EventRepo) ListPublic(regionID, eventType string, limit int) ([]data.Event, error) {
	var events []data.Event
	query := `
		SELECT * FROM events
		WHERE visibility = 'PUBLIC'
		  AND ($1 = '' OR region_id = $1)
		  AND ($2 = '' OR type = $2)
		ORDER BY COALESCE(start_at_utc, created_at) DESC
		LIMIT $3`

	err := r.db.Select(&events, query, regionID, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}

	return events, nil
}

// ListPublicActiveInRegions returns PUBLIC events in the given regions that
// have not ended before the cutoff. Feeds per-user schedule rebuilds.
func (r *EventRepo) ListPublicActiveInRegions(regionIDs []string, endedCutoff time.Time) ([]data.Event, error) {
	if len(regionIDs) == 0 {
		return []data.Event{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT * FROM events
		WHERE visibility = 'PUBLIC'
		  AND region_id IN (?)
		  AND (end_at_utc IS NULL OR end_at_utc >= ?)
		ORDER BY id`, regionIDs, endedCutoff)
	if err != nil {
		return nil, fmt.Errorf("build list active events: %w", err)
	}
	query = r.db.Rebind(query)

	var events []data.Event
	err = r.db.Select(&events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}

	return events, nil
}

// LinkRaw records provenance between an event and the raw notice that
// produced or updated it. The link table is append-only.
func (r *EventRepo) LinkRaw(eventID, rawNoticeID int64) error {
	query := `
		INSERT INTO event_raw_links (event_id, raw_notice_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	_, err := r.db.Exec(query, eventID, rawNoticeID)
	if err != nil {
		return fmt.Errorf("link event to raw notice: %w", err)
	}

	return nil
}
