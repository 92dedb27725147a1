package models

import "github.com/google/uuid"

type CreateRuleRequest struct {
	Scope         string `json:"scope"`
	RegionID      string `json:"regionId,omitempty"`
	EventType     string `json:"eventType"`
	Trigger       string `json:"trigger"`
	OffsetMinutes int    `json:"offsetMinutes"`
	Channel       string `json:"channel"`
}

type Rule struct {
	ID            int64     `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	Scope         string    `json:"scope"`
	RegionID      string    `json:"regionId,omitempty"`
	EventType     string    `json:"eventType"`
	Trigger       string    `json:"trigger"`
	OffsetMinutes int       `json:"offsetMinutes"`
	Channel       string    `json:"channel"`
	Enabled       bool      `json:"enabled"`
}

type GetRulesResponse struct {
	Rules []Rule `json:"rules"`
}
