package models

import "time"

type Schedule struct {
	ID            int64     `json:"id"`
	EventID       int64     `json:"eventId"`
	Channel       string    `json:"channel"`
	Trigger       string    `json:"trigger"`
	OffsetMinutes int       `json:"offsetMinutes"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Status        string    `json:"status"`
}

type GetSchedulesResponse struct {
	Schedules []Schedule `json:"schedules"`
}

type Delivery struct {
	ID           int64     `json:"id"`
	ScheduleID   int64     `json:"scheduleId"`
	SentAt       time.Time `json:"sentAt"`
	Result       string    `json:"result"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

type GetDeliveriesResponse struct {
	Deliveries []Delivery `json:"deliveries"`
}

type DispatchRunResponse struct {
	Picked int `json:"picked"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
