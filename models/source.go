package models

import "time"

type CreateSourceRequest struct {
	RegionID             string            `json:"regionId"`
	Type                 string            `json:"type"`
	BaseURL              string            `json:"baseUrl"`
	ListURL              string            `json:"listUrl"`
	FetchIntervalMinutes int               `json:"fetchIntervalMinutes"`
	Config               map[string]string `json:"config"`
}

type Source struct {
	ID                   int64             `json:"id"`
	RegionID             string            `json:"regionId"`
	Type                 string            `json:"type"`
	BaseURL              string            `json:"baseUrl"`
	ListURL              string            `json:"listUrl"`
	Enabled              bool              `json:"enabled"`
	FetchIntervalMinutes int               `json:"fetchIntervalMinutes"`
	LastSuccessAt        *time.Time        `json:"lastSuccessAt,omitempty"`
	LastErrorAt          *time.Time        `json:"lastErrorAt,omitempty"`
	LastErrorMessage     string            `json:"lastErrorMessage,omitempty"`
	Config               map[string]string `json:"config"`
}

type GetSourcesResponse struct {
	Sources []Source `json:"sources"`
}

type RunSourceResponse struct {
	SourceID     int64  `json:"sourceId"`
	FetchedCount int    `json:"fetchedCount"`
	ParsedCount  int    `json:"parsedCount"`
	ErrorCount   int    `json:"errorCount"`
	Status       string `json:"status"`
}

type RunIngestResponse struct {
	ProcessedSources int `json:"processedSources"`
}

type ReparseResponse struct {
	EventID    int64   `json:"eventId"`
	Visibility string  `json:"visibility"`
	Confidence float64 `json:"confidence"`
}

type IngestRun struct {
	ID           int64     `json:"id"`
	SourceID     *int64    `json:"sourceId,omitempty"`
	Mode         string    `json:"mode"`
	Status       string    `json:"status"`
	FetchedCount int       `json:"fetchedCount"`
	ParsedCount  int       `json:"parsedCount"`
	ErrorCount   int       `json:"errorCount"`
	Message      string    `json:"message,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

type GetIngestRunsResponse struct {
	Runs []IngestRun `json:"runs"`
}
