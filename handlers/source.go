package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/ingest"
	"github.com/hoseok0727-sudo/subculture/models"
)

type SourceHandler struct {
	repo     *repos.SourceRepo
	pipeline *ingest.Pipeline
}

func NewSourceHandler(repo *repos.SourceRepo, pipeline *ingest.Pipeline) *SourceHandler {
	return &SourceHandler{repo: repo, pipeline: pipeline}
}

func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) Result {
	var req models.CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	req.RegionID = strings.TrimSpace(req.RegionID)
	if req.RegionID == "" {
		return BadRequest("Region is required.")
	}

	sourceType := enums.ParseSourceType(req.Type)
	if sourceType == enums.SourceTypeInvalid {
		return BadRequest("Invalid source type.")
	}

	if req.BaseURL == "" && req.ListURL == "" {
		return BadRequest("A base or list URL is required.")
	}

	interval := req.FetchIntervalMinutes
	if interval <= 0 {
		interval = 30
	}

	src := data.Source{
		RegionID:             req.RegionID,
		Type:                 sourceType,
		BaseURL:              req.BaseURL,
		ListURL:              req.ListURL,
		Enabled:              true,
		FetchIntervalMinutes: interval,
	}
	if req.Config != nil {
		raw, err := json.Marshal(req.Config)
		if err != nil {
			return BadRequest("Invalid source config.")
		}
		src.ConfigRaw = raw
	}

	id, err := h.repo.CreateSource(src)
	if err != nil {
		return InternalError(err, "create source: ")
	}

	return Created(id)
}

func (h *SourceHandler) GetSources(w http.ResponseWriter, r *http.Request) Result {
	srcs, err := h.repo.GetSources()
	if err != nil {
		return InternalError(err, "get sources: ")
	}

	res := &models.GetSourcesResponse{Sources: make([]models.Source, 0)}
	for _, s := range srcs {
		res.Sources = append(res.Sources, toSourceModel(s))
	}

	return Ok(res)
}

// RunSource triggers a manual fetch of one source and reports the run's
// counters. The fetch happens inline, so slow sources mean slow responses.
func (h *SourceHandler) RunSource(w http.ResponseWriter, r *http.Request) Result {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return BadRequest("Invalid source ID.")
	}

	result, err := h.pipeline.RunSource(r.Context(), id, enums.IngestManual)
	if err != nil {
		return InternalError(err, "run source: ")
	}

	return Ok(models.RunSourceResponse{
		SourceID:     result.SourceID,
		FetchedCount: result.FetchedCount,
		ParsedCount:  result.ParsedCount,
		ErrorCount:   result.ErrorCount,
		Status:       string(result.Status),
	})
}

func toSourceModel(s data.Source) models.Source {
	m := models.Source{
		ID:                   s.ID,
		RegionID:             s.RegionID,
		Type:                 string(s.Type),
		BaseURL:              s.BaseURL,
		ListURL:              s.ListURL,
		Enabled:              s.Enabled,
		FetchIntervalMinutes: s.FetchIntervalMinutes,
		Config:               s.Config(),
	}
	if s.LastSuccessAt.Valid {
		t := s.LastSuccessAt.Time
		m.LastSuccessAt = &t
	}
	if s.LastErrorAt.Valid {
		t := s.LastErrorAt.Time
		m.LastErrorAt = &t
	}
	if s.LastErrorMessage.Valid {
		m.LastErrorMessage = s.LastErrorMessage.String
	}
	return m
}
