package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

type RawNoticeRepo struct {
	db *sqlx.DB
}

func NewRawNoticeRepo(db *sqlx.DB) *RawNoticeRepo {
	return &RawNoticeRepo{db}
}

// Upsert persists a fetched candidate keyed by (source_id, url). When the
// content hash is unchanged only fetched_at and title are refreshed and
// changed=false is reported; that flag is the sole gate deciding whether
// the notice is re-parsed.
func (r *RawNoticeRepo) Upsert(notice data.RawNotice) (data.RawNotice, bool, error) {
	var existing data.RawNotice
	query := `SELECT * FROM raw_notices WHERE source_id = $1 AND url = $2`
	err := r.db.Get(&existing, query, notice.SourceID, notice.URL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return data.RawNotice{}, false, fmt.Errorf("get raw notice: %w", err)
	}

	if err == nil && existing.ContentHash == notice.ContentHash {
		refresh := `
			UPDATE raw_notices
			SET fetched_at = $2, title = $3
			WHERE id = $1`
		if _, err := r.db.Exec(refresh, existing.ID, notice.FetchedAt, notice.Title); err != nil {
			return data.RawNotice{}, false, fmt.Errorf("refresh raw notice: %w", err)
		}
		existing.FetchedAt = notice.FetchedAt
		existing.Title = notice.Title
		return existing, false, nil
	}

	upsert := `
		INSERT INTO raw_notices (source_id, url, title, published_at, fetched_at, content_text, content_hash, raw_payload, status)
		VALUES (:source_id, :url, :title, :published_at, :fetched_at, :content_text, :content_hash, :raw_payload, 'NEW')
		ON CONFLICT (source_id, url) DO UPDATE SET
			title = EXCLUDED.title,
			published_at = EXCLUDED.published_at,
			fetched_at = EXCLUDED.fetched_at,
			content_text = EXCLUDED.content_text,
			content_hash = EXCLUDED.content_hash,
			raw_payload = EXCLUDED.raw_payload,
			status = 'NEW'
		RETURNING *`

	rows, err := r.db.NamedQuery(upsert, notice)
	if err != nil {
		return data.RawNotice{}, false, fmt.Errorf("upsert raw notice: %w", err)
	}
	defer rows.Close()

	var saved data.RawNotice
	if rows.Next() {
		if err = rows.StructScan(&saved); err != nil {
			return data.RawNotice{}, false, fmt.Errorf("scan upserted raw notice: %w", err)
		}
	}

	return saved, true, nil
}

func (r *RawNoticeRepo) GetByID(id int64) (*data.RawNotice, error) {
	var notice data.RawNotice
	query := `SELECT * FROM raw_notices WHERE id = $1`

	err := r.db.Get(&notice, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw notice by id: %w", err)
	}

	return &notice, nil
}

func (r *RawNoticeRepo) SetStatus(id int64, status enums.RawStatus) error {
	query := `UPDATE raw_notices SET status = $2 WHERE id = $1`

	_, err := r.db.Exec(query, id, status)
	if err != nil {
		return fmt.Errorf("set raw notice status: %w", err)
	}

	return nil
}
