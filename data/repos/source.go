package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
)

type SourceRepo struct {
	db *sqlx.DB
}

func NewSourceRepo(db *sqlx.DB) *SourceRepo {
	return &SourceRepo{db}
}

func (r *SourceRepo) CreateSource(src data.Source) (int64, error) {
	query := `
		INSERT INTO sources (region_id, type, base_url, list_url, enabled, fetch_interval_minutes, config)
		VALUES (:region_id, :type, :base_url, :list_url, :enabled, :fetch_interval_minutes, :config)
		RETURNING id`

	rows, err := r.db.NamedQuery(query, src)
	if err != nil {
		return 0, fmt.Errorf("create source: %w", err)
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan returned id: %w", err)
		}
	}

	return id, nil
}

func (r *SourceRepo) GetSources() ([]data.Source, error) {
	var sources []data.Source
	query := `SELECT * FROM sources ORDER BY id`

	err := r.db.Select(&sources, query)
	if err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}

	return sources, nil
}

func (r *SourceRepo) GetSourceByID(id int64) (*data.Source, error) {
	var src data.Source
	query := `SELECT * FROM sources WHERE id = $1`

	err := r.db.Get(&src, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get source by id: %w", err)
	}

	return &src, nil
}

// GetDueSources returns enabled sources whose fetch interval has elapsed
// since the last successful run. Sources that have never succeeded are
// always due.
func (r *SourceRepo) GetDueSources(now time.Time) ([]data.Source, error) {
	var sources []data.Source
	query := `
		SELECT *
		FROM sources
		WHERE enabled = true
		  AND (last_success_at IS NULL
		       OR last_success_at + make_interval(mins => fetch_interval_minutes) <= $1)
		ORDER BY id`

	err := r.db.Select(&sources, query, now)
	if err != nil {
		return nil, fmt.Errorf("get due sources: %w", err)
	}

	return sources, nil
}

func (r *SourceRepo) MarkSuccess(id int64, at time.Time) error {
	query := `
		UPDATE sources
		SET last_success_at = $2, last_error_message = NULL, updated_at = now()
		WHERE id = $1`

	_, err := r.db.Exec(query, id, at)
	if err != nil {
		return fmt.Errorf("mark source success: %w", err)
	}

	return nil
}

func (r *SourceRepo) MarkError(id int64, at time.Time, message string) error {
	query := `
		UPDATE sources
		SET last_error_at = $2, last_error_message = $3, updated_at = now()
		WHERE id = $1`

	_, err := r.db.Exec(query, id, at, message)
	if err != nil {
		return fmt.Errorf("mark source error: %w", err)
	}

	return nil
}
