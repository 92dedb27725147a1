package ingest

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/sources"
)

type fakeSourceStore struct {
	source       *data.Source
	successCalls int
	errorCalls   int
	lastError    string
}

func (f *fakeSourceStore) GetDueSources(_ time.Time) ([]data.Source, error) {
	if f.source == nil {
		return nil, nil
	}
	return []data.Source{*f.source}, nil
}

func (f *fakeSourceStore) GetSourceByID(_ int64) (*data.Source, error) { return f.source, nil }

func (f *fakeSourceStore) MarkSuccess(_ int64, _ time.Time) error {
	f.successCalls++
	return nil
}

func (f *fakeSourceStore) MarkError(_ int64, _ time.Time, message string) error {
	f.errorCalls++
	f.lastError = message
	return nil
}

type fakeRawStore struct {
	changed  bool
	saved    data.RawNotice
	statuses map[int64]enums.RawStatus
}

func (f *fakeRawStore) Upsert(_ data.RawNotice) (data.RawNotice, bool, error) {
	return f.saved, f.changed, nil
}

func (f *fakeRawStore) GetByID(_ int64) (*data.RawNotice, error) { return &f.saved, nil }

func (f *fakeRawStore) SetStatus(id int64, status enums.RawStatus) error {
	if f.statuses == nil {
		f.statuses = map[int64]enums.RawStatus{}
	}
	f.statuses[id] = status
	return nil
}

type fakeEventStore struct {
	upserts []data.Event
	links   [][2]int64
}

func (f *fakeEventStore) UpsertByCanonicalKey(event data.Event) (int64, error) {
	f.upserts = append(f.upserts, event)
	return 42, nil
}

func (f *fakeEventStore) GetByID(_ int64) (*data.Event, error) {
	if len(f.upserts) == 0 {
		return nil, nil
	}
	e := f.upserts[len(f.upserts)-1]
	e.ID = 42
	return &e, nil
}

func (f *fakeEventStore) LinkRaw(eventID, rawNoticeID int64) error {
	f.links = append(f.links, [2]int64{eventID, rawNoticeID})
	return nil
}

type fakeRunLog struct {
	runs []data.IngestRun
}

func (f *fakeRunLog) CreateRun(run data.IngestRun) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakePlanner struct {
	planned []int64
}

func (f *fakePlanner) PlanForEvent(eventID int64) error {
	f.planned = append(f.planned, eventID)
	return nil
}

type fakeCollector struct {
	candidates []sources.RawCandidate
	err        error
}

func (f *fakeCollector) Collect(_ context.Context, _ data.Source) ([]sources.RawCandidate, error) {
	return f.candidates, f.err
}

func testSource() data.Source {
	return data.Source{ID: 3, RegionID: "kr", Type: enums.SourceTypeRSS, Enabled: true}
}

func newTestPipeline(collector NoticeCollector, srcs *fakeSourceStore, raws *fakeRawStore, events *fakeEventStore, runs *fakeRunLog, planner *fakePlanner) *Pipeline {
	return NewPipeline(collector, srcs, raws, events, runs, planner, slog.New(slog.DiscardHandler))
}

func TestProcessCandidate_UnchangedContentSkipsParse(t *testing.T) {
	raws := &fakeRawStore{
		changed: false,
		saved:   data.RawNotice{ID: 9, SourceID: 3, Title: "Maintenance Notice"},
	}
	events := &fakeEventStore{}
	planner := &fakePlanner{}
	p := newTestPipeline(&fakeCollector{}, &fakeSourceStore{}, raws, events, &fakeRunLog{}, planner)

	parsed, err := p.processCandidate(testSource(), sources.RawCandidate{
		URL:         "https://example.com/n/1",
		Title:       "Maintenance Notice",
		ContentText: "Servers down 2026/03/01 10:00 ~ 2026/03/01 14:00",
	}, "UTC")

	assert.NoError(t, err)
	assert.False(t, parsed)
	assert.Empty(t, events.upserts)
	assert.Empty(t, planner.planned)
	assert.Empty(t, raws.statuses)
}

func TestProcessCandidate_ChangedContentParsesAndPlans(t *testing.T) {
	raws := &fakeRawStore{
		changed: true,
		saved: data.RawNotice{
			ID:          9,
			SourceID:    3,
			URL:         "https://example.com/n/1",
			Title:       "Maintenance Notice",
			ContentText: "Servers down for maintenance 2026/03/01 10:00 ~ 2026/03/01 14:00",
		},
	}
	events := &fakeEventStore{}
	planner := &fakePlanner{}
	p := newTestPipeline(&fakeCollector{}, &fakeSourceStore{}, raws, events, &fakeRunLog{}, planner)

	parsed, err := p.processCandidate(testSource(), sources.RawCandidate{
		URL:         "https://example.com/n/1",
		Title:       "Maintenance Notice",
		ContentText: "Servers down for maintenance 2026/03/01 10:00 ~ 2026/03/01 14:00",
	}, "UTC")

	assert.NoError(t, err)
	assert.True(t, parsed)
	assert.Len(t, events.upserts, 1)
	assert.Equal(t, "kr", events.upserts[0].RegionID)
	assert.Equal(t, enums.EventTypeMaintenance, events.upserts[0].Type)
	assert.Equal(t, [][2]int64{{42, 9}}, events.links)
	assert.Equal(t, enums.RawParsed, raws.statuses[9])
	assert.Equal(t, []int64{42}, planner.planned)
}

func TestProcessCandidate_ParseFailureMarksError(t *testing.T) {
	raws := &fakeRawStore{
		changed: true,
		saved:   data.RawNotice{ID: 9, SourceID: 3},
	}
	events := &fakeEventStore{}
	planner := &fakePlanner{}
	p := newTestPipeline(&fakeCollector{}, &fakeSourceStore{}, raws, events, &fakeRunLog{}, planner)

	parsed, err := p.processCandidate(testSource(), sources.RawCandidate{URL: "https://example.com/n/1"}, "UTC")

	assert.Error(t, err)
	assert.False(t, parsed)
	assert.Equal(t, enums.RawError, raws.statuses[9])
	assert.Empty(t, events.upserts)
	assert.Empty(t, planner.planned)
}

func TestRunSource_CollectFailureMarksSourceAndRun(t *testing.T) {
	srcs := &fakeSourceStore{}
	runs := &fakeRunLog{}
	collector := &fakeCollector{err: errors.New("status 503")}
	p := newTestPipeline(collector, srcs, &fakeRawStore{}, &fakeEventStore{}, runs, &fakePlanner{})

	_, err := p.runSource(context.Background(), testSource(), enums.IngestManual)

	assert.Error(t, err)
	assert.Equal(t, 1, srcs.errorCalls)
	assert.Contains(t, srcs.lastError, "503")
	assert.Len(t, runs.runs, 1)
	assert.Equal(t, enums.IngestFailure, runs.runs[0].Status)
}

func TestRunSource_ItemFailureYieldsPartial(t *testing.T) {
	srcs := &fakeSourceStore{}
	runs := &fakeRunLog{}
	raws := &fakeRawStore{changed: true, saved: data.RawNotice{ID: 9, SourceID: 3}}
	collector := &fakeCollector{candidates: []sources.RawCandidate{
		{URL: "https://example.com/n/1"},
	}}
	p := newTestPipeline(collector, srcs, raws, &fakeEventStore{}, runs, &fakePlanner{})

	result, err := p.runSource(context.Background(), testSource(), enums.IngestScheduled)

	assert.NoError(t, err)
	assert.Equal(t, enums.IngestPartial, result.Status)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, srcs.successCalls)
}

func TestContentHash_StableAcrossWhitespace(t *testing.T) {
	a := ContentHash("Maintenance Notice", "Servers  down\n\nfrom 02:00")
	b := ContentHash("Maintenance  Notice", "Servers down from 02:00")

	assert.Equal(t, a, b)
}

func TestContentHash_ChangesWithContent(t *testing.T) {
	a := ContentHash("Maintenance Notice", "Servers down from 02:00")
	b := ContentHash("Maintenance Notice", "Servers down from 03:00")
	c := ContentHash("Pickup Notice", "Servers down from 02:00")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestContentHash_TitleBodyBoundary(t *testing.T) {
	// Moving text between title and body must change the identity.
	a := ContentHash("New banner", "starts soon")
	b := ContentHash("New banner starts", "soon")

	assert.NotEqual(t, a, b)
}
