package handlers

import (
	"net/http"
	"strconv"

	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/ingest"
	"github.com/hoseok0727-sudo/subculture/models"
)

const defaultRunLogLimit = 50

type IngestHandler struct {
	pipeline *ingest.Pipeline
	runs     *repos.IngestRunRepo
}

func NewIngestHandler(pipeline *ingest.Pipeline, runs *repos.IngestRunRepo) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, runs: runs}
}

// RunIngest fetches every source whose interval elapsed, the same work the
// background driver does on its tick.
func (h *IngestHandler) RunIngest(w http.ResponseWriter, r *http.Request) Result {
	processed, err := h.pipeline.RunDueSources(r.Context())
	if err != nil {
		return InternalError(err, "run ingest: ")
	}

	return Ok(models.RunIngestResponse{ProcessedSources: processed})
}

// Reparse re-runs normalization against stored raw content. Used after a
// parser change, without waiting for the source to publish an edit.
func (h *IngestHandler) Reparse(w http.ResponseWriter, r *http.Request) Result {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return BadRequest("Invalid raw notice ID.")
	}

	result, err := h.pipeline.Reparse(id)
	if err != nil {
		return InternalError(err, "reparse: ")
	}

	return Ok(models.ReparseResponse{
		EventID:    result.EventID,
		Visibility: string(result.Visibility),
		Confidence: result.Confidence,
	})
}

func (h *IngestHandler) GetIngestRuns(w http.ResponseWriter, r *http.Request) Result {
	limit := defaultRunLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return BadRequest("Limit must be between 1 and 500.")
		}
		limit = n
	}

	runs, err := h.runs.GetRecentRuns(limit)
	if err != nil {
		return InternalError(err, "get ingest runs: ")
	}

	res := &models.GetIngestRunsResponse{Runs: make([]models.IngestRun, 0)}
	for _, run := range runs {
		m := models.IngestRun{
			ID:           run.ID,
			Mode:         string(run.Mode),
			Status:       string(run.Status),
			FetchedCount: run.FetchedCount,
			ParsedCount:  run.ParsedCount,
			ErrorCount:   run.ErrorCount,
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
		}
		if run.SourceID.Valid {
			id := run.SourceID.Int64
			m.SourceID = &id
		}
		if run.Message.Valid {
			m.Message = run.Message.String
		}
		res.Runs = append(res.Runs, m)
	}

	return Ok(res)
}
