package handlers

import (
	"net/http"
	"strconv"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/models"
)

const defaultEventLimit = 100

type EventHandler struct {
	repo *repos.EventRepo
}

func NewEventHandler(repo *repos.EventRepo) *EventHandler {
	return &EventHandler{repo}
}

// GetEvents lists public events, newest first. NEED_REVIEW and HIDDEN
// events never leave the database through this endpoint.
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) Result {
	regionID := r.URL.Query().Get("region")

	eventType := ""
	if v := r.URL.Query().Get("type"); v != "" {
		parsed := enums.ParseEventType(v)
		if parsed == enums.EventTypeInvalid {
			return BadRequest("Invalid event type.")
		}
		eventType = string(parsed)
	}

	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return BadRequest("Limit must be between 1 and 500.")
		}
		limit = n
	}

	events, err := h.repo.ListPublic(regionID, eventType, limit)
	if err != nil {
		return InternalError(err, "get events: ")
	}

	res := &models.GetEventsResponse{Events: make([]models.Event, 0)}
	for _, e := range events {
		res.Events = append(res.Events, toEventModel(e))
	}

	return Ok(res)
}

func toEventModel(e data.Event) models.Event {
	m := models.Event{
		ID:         e.ID,
		RegionID:   e.RegionID,
		Type:       string(e.Type),
		Title:      e.Title,
		Summary:    e.Summary,
		SourceURL:  e.SourceURL,
		Language:   e.Language,
		Confidence: e.Confidence,
	}
	if e.StartAtUTC.Valid {
		t := e.StartAtUTC.Time
		m.StartAtUTC = &t
	}
	if e.EndAtUTC.Valid {
		t := e.EndAtUTC.Time
		m.EndAtUTC = &t
	}
	return m
}
