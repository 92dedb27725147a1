package models

import "time"

type Event struct {
	ID         int64      `json:"id"`
	RegionID   string     `json:"regionId"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	StartAtUTC *time.Time `json:"startAtUtc,omitempty"`
	EndAtUTC   *time.Time `json:"endAtUtc,omitempty"`
	SourceURL  string     `json:"sourceUrl"`
	Language   string     `json:"language"`
	Confidence float64    `json:"confidence"`
}

type GetEventsResponse struct {
	Events []Event `json:"events"`
}
