// Package ingest runs the fetch-normalize-upsert pipeline for notice
// sources. Item-level failures are converted into counters and row status;
// only a failure to collect the source's list at all fails the run.
package ingest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/metrics"
	"github.com/hoseok0727-sudo/subculture/parser"
	"github.com/hoseok0727-sudo/subculture/sources"
	"github.com/hoseok0727-sudo/subculture/textutil"
)

// maxConcurrentSources bounds the fan-out of a due-sources run.
const maxConcurrentSources = 4

// NoticeCollector fetches raw notice candidates for one source.
type NoticeCollector interface {
	Collect(ctx context.Context, src data.Source) ([]sources.RawCandidate, error)
}

// SourceStore is the source surface the pipeline reads and marks.
type SourceStore interface {
	GetDueSources(now time.Time) ([]data.Source, error)
	GetSourceByID(id int64) (*data.Source, error)
	MarkSuccess(id int64, at time.Time) error
	MarkError(id int64, at time.Time, message string) error
}

// RawNoticeStore persists fetched content behind the hash gate.
type RawNoticeStore interface {
	Upsert(notice data.RawNotice) (data.RawNotice, bool, error)
	GetByID(id int64) (*data.RawNotice, error)
	SetStatus(id int64, status enums.RawStatus) error
}

// EventStore is the event catalog surface the pipeline writes.
type EventStore interface {
	UpsertByCanonicalKey(event data.Event) (int64, error)
	GetByID(id int64) (*data.Event, error)
	LinkRaw(eventID, rawNoticeID int64) error
}

// RunLog records one row per pipeline run.
type RunLog interface {
	CreateRun(run data.IngestRun) error
}

// Planner re-plans notifications after an event changed.
type Planner interface {
	PlanForEvent(eventID int64) error
}

type Pipeline struct {
	collector NoticeCollector
	sources   SourceStore
	raws      RawNoticeStore
	events    EventStore
	runs      RunLog
	planner   Planner
	logger    *slog.Logger
}

func NewPipeline(collector NoticeCollector, sourceRepo SourceStore, rawRepo RawNoticeStore, eventRepo EventStore, runRepo RunLog, planner Planner, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		collector: collector,
		sources:   sourceRepo,
		raws:      rawRepo,
		events:    eventRepo,
		runs:      runRepo,
		planner:   planner,
		logger:    logger,
	}
}

// RunResult is the summary of one source run.
type RunResult struct {
	SourceID     int64              `json:"sourceId"`
	FetchedCount int                `json:"fetchedCount"`
	ParsedCount  int                `json:"parsedCount"`
	ErrorCount   int                `json:"errorCount"`
	Status       enums.IngestStatus `json:"status"`
}

// RunDueSources fetches every source whose interval elapsed, fanning out
// to a bounded number of workers. One failing source never blocks its
// siblings. Returns the number of sources processed.
func (p *Pipeline) RunDueSources(ctx context.Context) (int, error) {
	due, err := p.sources.GetDueSources(time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "run due sources")
	}
	if len(due) == 0 {
		return 0, nil
	}

	sem := make(chan struct{}, maxConcurrentSources)
	var wg sync.WaitGroup
	for _, src := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(src data.Source) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := p.runSource(ctx, src, enums.IngestScheduled); err != nil {
				p.logger.Error("source run failed", "source_id", src.ID, "error", err)
			}
		}(src)
	}
	wg.Wait()

	return len(due), nil
}

// RunSource runs the pipeline for one source on demand.
func (p *Pipeline) RunSource(ctx context.Context, sourceID int64, mode enums.IngestMode) (RunResult, error) {
	src, err := p.sources.GetSourceByID(sourceID)
	if err != nil {
		return RunResult{}, errors.Wrap(err, "run source")
	}
	if src == nil {
		return RunResult{}, fmt.Errorf("source %d not found", sourceID)
	}

	return p.runSource(ctx, *src, mode)
}

func (p *Pipeline) runSource(ctx context.Context, src data.Source, mode enums.IngestMode) (RunResult, error) {
	startedAt := time.Now().UTC()
	result := RunResult{SourceID: src.ID}

	candidates, err := p.collector.Collect(ctx, src)
	if err != nil {
		now := time.Now().UTC()
		if markErr := p.sources.MarkError(src.ID, now, err.Error()); markErr != nil {
			p.logger.Error("failed to record source error", "source_id", src.ID, "error", markErr)
		}
		p.recordRun(src.ID, mode, enums.IngestFailure, result, err.Error(), startedAt)
		metrics.SourcesFetched.WithLabelValues("failure").Inc()
		return result, errors.Wrap(err, "collect source")
	}

	timezone := sources.HTMLConfigFrom(src.Config()).Timezone

	result.FetchedCount = len(candidates)
	for _, candidate := range candidates {
		parsed, itemErr := p.processCandidate(src, candidate, timezone)
		if itemErr != nil {
			p.logger.Warn("candidate failed", "source_id", src.ID, "url", candidate.URL, "error", itemErr)
			result.ErrorCount++
			continue
		}
		if parsed {
			result.ParsedCount++
		}
	}

	if err := p.sources.MarkSuccess(src.ID, time.Now().UTC()); err != nil {
		p.logger.Error("failed to record source success", "source_id", src.ID, "error", err)
	}

	result.Status = enums.IngestSuccess
	if result.ErrorCount > 0 {
		result.Status = enums.IngestPartial
	}
	p.recordRun(src.ID, mode, result.Status, result, "", startedAt)
	metrics.SourcesFetched.WithLabelValues("success").Inc()

	p.logger.Info("source run finished",
		"source_id", src.ID,
		"mode", mode,
		"fetched", result.FetchedCount,
		"parsed", result.ParsedCount,
		"errors", result.ErrorCount)

	return result, nil
}

// processCandidate upserts the candidate as a raw notice and, when its
// content changed, re-runs normalization and the event upsert. Returns
// whether a parse happened.
func (p *Pipeline) processCandidate(src data.Source, candidate sources.RawCandidate, timezone string) (bool, error) {
	notice := data.RawNotice{
		SourceID:    src.ID,
		URL:         candidate.URL,
		Title:       candidate.Title,
		FetchedAt:   time.Now().UTC(),
		ContentText: candidate.ContentText,
		ContentHash: ContentHash(candidate.Title, candidate.ContentText),
		RawPayload:  payloadOrEmpty(candidate.RawPayload),
	}
	if candidate.PublishedAt != nil {
		notice.PublishedAt = sql.NullTime{Time: *candidate.PublishedAt, Valid: true}
	}

	saved, changed, err := p.raws.Upsert(notice)
	if err != nil {
		return false, err
	}
	if !changed {
		metrics.RawNoticesUnchanged.Inc()
		return false, nil
	}
	metrics.RawNoticesChanged.Inc()

	if _, err := p.parseAndUpsert(saved, src, timezone); err != nil {
		metrics.ParseErrors.Inc()
		if statusErr := p.raws.SetStatus(saved.ID, enums.RawError); statusErr != nil {
			p.logger.Error("failed to mark raw notice errored", "raw_id", saved.ID, "error", statusErr)
		}
		return false, err
	}

	return true, nil
}

// parseAndUpsert normalizes a raw notice into the event catalog and
// triggers schedule re-planning for the affected event.
func (p *Pipeline) parseAndUpsert(raw data.RawNotice, src data.Source, timezone string) (int64, error) {
	draft := parser.Normalize(raw.Title, raw.ContentText, timezone)
	if draft.Title == "" {
		return 0, fmt.Errorf("raw notice %d has no usable title", raw.ID)
	}

	event := data.Event{
		RegionID:     src.RegionID,
		Type:         draft.Type,
		Title:        draft.Title,
		Summary:      draft.Summary,
		SourceURL:    raw.URL,
		Language:     draft.Language,
		Confidence:   draft.Confidence,
		Visibility:   draft.Visibility,
		CanonicalKey: parser.CanonicalKey(src.RegionID, draft.Type, draft.Title, draft.StartAtUTC, draft.EndAtUTC),
	}
	if draft.StartAtUTC != nil {
		event.StartAtUTC = sql.NullTime{Time: *draft.StartAtUTC, Valid: true}
	}
	if draft.EndAtUTC != nil {
		event.EndAtUTC = sql.NullTime{Time: *draft.EndAtUTC, Valid: true}
	}

	eventID, err := p.events.UpsertByCanonicalKey(event)
	if err != nil {
		return 0, err
	}
	metrics.EventsUpserted.WithLabelValues(string(draft.Visibility)).Inc()

	if err := p.events.LinkRaw(eventID, raw.ID); err != nil {
		return 0, err
	}
	if err := p.raws.SetStatus(raw.ID, enums.RawParsed); err != nil {
		return 0, err
	}

	if err := p.planner.PlanForEvent(eventID); err != nil {
		p.logger.Error("re-planning failed", "event_id", eventID, "error", err)
	}

	return eventID, nil
}

// ReparseResult reports the outcome of re-running normalization against a
// stored raw notice.
type ReparseResult struct {
	EventID    int64            `json:"eventId"`
	Visibility enums.Visibility `json:"visibility"`
	Confidence float64          `json:"confidence"`
}

// Reparse re-runs normalization and the event upsert against stored raw
// content, without refetching.
func (p *Pipeline) Reparse(rawNoticeID int64) (ReparseResult, error) {
	startedAt := time.Now().UTC()

	raw, err := p.raws.GetByID(rawNoticeID)
	if err != nil {
		return ReparseResult{}, errors.Wrap(err, "reparse")
	}
	if raw == nil {
		return ReparseResult{}, fmt.Errorf("raw notice %d not found", rawNoticeID)
	}

	src, err := p.sources.GetSourceByID(raw.SourceID)
	if err != nil {
		return ReparseResult{}, errors.Wrap(err, "reparse: load source")
	}
	if src == nil {
		return ReparseResult{}, fmt.Errorf("source %d not found", raw.SourceID)
	}

	timezone := sources.HTMLConfigFrom(src.Config()).Timezone

	result := RunResult{SourceID: src.ID, FetchedCount: 0}
	eventID, err := p.parseAndUpsert(*raw, *src, timezone)
	if err != nil {
		metrics.ParseErrors.Inc()
		if statusErr := p.raws.SetStatus(raw.ID, enums.RawError); statusErr != nil {
			p.logger.Error("failed to mark raw notice errored", "raw_id", raw.ID, "error", statusErr)
		}
		result.ErrorCount = 1
		p.recordRun(src.ID, enums.IngestReparse, enums.IngestFailure, result, err.Error(), startedAt)
		return ReparseResult{}, errors.Wrap(err, "reparse")
	}

	event, err := p.events.GetByID(eventID)
	if err != nil || event == nil {
		return ReparseResult{}, fmt.Errorf("reparse: reload event %d: %v", eventID, err)
	}

	result.ParsedCount = 1
	p.recordRun(src.ID, enums.IngestReparse, enums.IngestSuccess, result, "", startedAt)

	return ReparseResult{
		EventID:    event.ID,
		Visibility: event.Visibility,
		Confidence: event.Confidence,
	}, nil
}

func (p *Pipeline) recordRun(sourceID int64, mode enums.IngestMode, status enums.IngestStatus, result RunResult, message string, startedAt time.Time) {
	run := data.IngestRun{
		SourceID:     sql.NullInt64{Int64: sourceID, Valid: sourceID != 0},
		Mode:         mode,
		Status:       status,
		FetchedCount: result.FetchedCount,
		ParsedCount:  result.ParsedCount,
		ErrorCount:   result.ErrorCount,
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UTC(),
	}
	if message != "" {
		run.Message = sql.NullString{String: message, Valid: true}
	}

	if err := p.runs.CreateRun(run); err != nil {
		p.logger.Error("failed to record ingest run", "source_id", sourceID, "error", err)
	}
}

// ContentHash is the identity of a raw notice's content: the hash of its
// normalized title and body. An unchanged hash on re-fetch means
// normalization is skipped entirely.
func ContentHash(title, contentText string) string {
	input := textutil.NormalizeWhitespace(title) + "\n" + textutil.NormalizeWhitespace(contentText)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func payloadOrEmpty(payload []byte) []byte {
	if len(payload) == 0 {
		return []byte(`{}`)
	}
	return payload
}
