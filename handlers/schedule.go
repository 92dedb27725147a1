package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/models"
)

// ScheduleReader and DeliveryReader are the read surfaces this handler
// needs. Both are scoped by user so a caller can only see their own rows.
type ScheduleReader interface {
	GetSchedulesByUserID(userID uuid.UUID) ([]data.NotificationSchedule, error)
}

type DeliveryReader interface {
	GetDeliveriesByScheduleID(scheduleID int64, userID uuid.UUID) ([]data.NotificationDelivery, error)
}

type ScheduleHandler struct {
	schedules  ScheduleReader
	deliveries DeliveryReader
}

func NewScheduleHandler(schedules ScheduleReader, deliveries DeliveryReader) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, deliveries: deliveries}
}

func (h *ScheduleHandler) GetSchedules(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	schedules, err := h.schedules.GetSchedulesByUserID(user.ID)
	if err != nil {
		return InternalError(err, "get schedules: ")
	}

	res := &models.GetSchedulesResponse{Schedules: make([]models.Schedule, 0)}
	for _, s := range schedules {
		res.Schedules = append(res.Schedules, models.Schedule{
			ID:            s.ID,
			EventID:       s.EventID,
			Channel:       string(s.Channel),
			Trigger:       string(s.TriggerType),
			OffsetMinutes: s.OffsetMinutes,
			ScheduledAt:   s.ScheduledAt,
			Status:        string(s.Status),
		})
	}

	return Ok(res)
}

func (h *ScheduleHandler) GetDeliveries(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return BadRequest("Invalid schedule ID.")
	}

	deliveries, err := h.deliveries.GetDeliveriesByScheduleID(id, user.ID)
	if err != nil {
		return InternalError(err, "get deliveries: ")
	}

	res := &models.GetDeliveriesResponse{Deliveries: make([]models.Delivery, 0)}
	for _, d := range deliveries {
		m := models.Delivery{
			ID:         d.ID,
			ScheduleID: d.ScheduleID,
			SentAt:     d.SentAt,
			Result:     string(d.Result),
		}
		if d.ErrorMessage.Valid {
			m.ErrorMessage = d.ErrorMessage.String
		}
		res.Deliveries = append(res.Deliveries, m)
	}

	return Ok(res)
}
