package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoseok0727-sudo/subculture/dispatch"
)

type fakeIngestRunner struct {
	processed int
	err       error
	calls     int
}

func (f *fakeIngestRunner) RunDueSources(_ context.Context) (int, error) {
	f.calls++
	return f.processed, f.err
}

type fakeDispatchRunner struct {
	summary dispatch.Summary
	err     error
	calls   int
}

func (f *fakeDispatchRunner) DispatchDue(_ context.Context, _ int) (dispatch.Summary, error) {
	f.calls++
	return f.summary, f.err
}

type recordingHandler struct {
	records *[]slog.Record
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}
func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestDriverTick_RunsIngestThenDispatch(t *testing.T) {
	ingest := &fakeIngestRunner{processed: 2}
	dispatcher := &fakeDispatchRunner{summary: dispatch.Summary{Picked: 1, Sent: 1}}
	d := NewDriver(ingest, dispatcher, slog.New(slog.DiscardHandler))

	err := d.tick(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, ingest.calls)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestDriverTick_IngestFailureSkipsDispatch(t *testing.T) {
	ingest := &fakeIngestRunner{err: errors.New("db down")}
	dispatcher := &fakeDispatchRunner{}
	d := NewDriver(ingest, dispatcher, slog.New(slog.DiscardHandler))

	err := d.tick(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, dispatcher.calls)
}

func TestDriverRunTick_LogsThroughInjectedLogger(t *testing.T) {
	var records []slog.Record
	logger := slog.New(recordingHandler{records: &records})

	ingest := &fakeIngestRunner{err: errors.New("db down")}
	d := NewDriver(ingest, &fakeDispatchRunner{}, logger)

	d.runTick(context.Background())

	assert.Len(t, records, 1)
	assert.Equal(t, slog.LevelError, records[0].Level)
}
