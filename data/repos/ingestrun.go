package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
)

type IngestRunRepo struct {
	db *sqlx.DB
}

func NewIngestRunRepo(db *sqlx.DB) *IngestRunRepo {
	return &IngestRunRepo{db}
}

func (r *IngestRunRepo) CreateRun(run data.IngestRun) error {
	query := `
		INSERT INTO ingest_runs (source_id, mode, status, fetched_count, parsed_count, error_count, message, started_at, finished_at)
		VALUES (:source_id, :mode, :status, :fetched_count, :parsed_count, :error_count, :message, :started_at, :finished_at)`

	_, err := r.db.NamedExec(query, run)
	if err != nil {
		return fmt.Errorf("create ingest run: %w", err)
	}

	return nil
}

func (r *IngestRunRepo) GetRecentRuns(limit int) ([]data.IngestRun, error) {
	var runs []data.IngestRun
	query := `
		SELECT * FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1`

	err := r.db.Select(&runs, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent ingest runs: %w", err)
	}

	return runs, nil
}
