package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/models"
)

type fakeScheduleReader struct {
	schedules []data.NotificationSchedule
}

func (f *fakeScheduleReader) GetSchedulesByUserID(userID uuid.UUID) ([]data.NotificationSchedule, error) {
	var out []data.NotificationSchedule
	for _, s := range f.schedules {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeDeliveryReader struct {
	owner      uuid.UUID
	scheduleID int64
	deliveries []data.NotificationDelivery
}

func (f *fakeDeliveryReader) GetDeliveriesByScheduleID(scheduleID int64, userID uuid.UUID) ([]data.NotificationDelivery, error) {
	if scheduleID != f.scheduleID || userID != f.owner {
		return nil, nil
	}
	return f.deliveries, nil
}

func requestAs(t *testing.T, userID uuid.UUID, scheduleID string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/schedules", nil)
	ctx := context.WithValue(r.Context(), "user", data.User{ID: userID})
	r = r.WithContext(ctx)
	if scheduleID != "" {
		r.SetPathValue("id", scheduleID)
	}
	return r
}

func TestGetDeliveries_OwnerSeesLog(t *testing.T) {
	owner := uuid.New()
	deliveries := &fakeDeliveryReader{
		owner:      owner,
		scheduleID: 7,
		deliveries: []data.NotificationDelivery{
			{ID: 1, ScheduleID: 7, SentAt: time.Now().UTC(), Result: enums.DeliverySuccess},
		},
	}
	h := NewScheduleHandler(&fakeScheduleReader{}, deliveries)

	res := h.GetDeliveries(httptest.NewRecorder(), requestAs(t, owner, "7"))

	assert.Equal(t, http.StatusOK, res.Code)
	body := res.Body.(*models.GetDeliveriesResponse)
	assert.Len(t, body.Deliveries, 1)
	assert.Equal(t, int64(7), body.Deliveries[0].ScheduleID)
}

func TestGetDeliveries_OtherUsersScheduleReadsEmpty(t *testing.T) {
	owner := uuid.New()
	deliveries := &fakeDeliveryReader{
		owner:      owner,
		scheduleID: 7,
		deliveries: []data.NotificationDelivery{
			{ID: 1, ScheduleID: 7, SentAt: time.Now().UTC(), Result: enums.DeliverySuccess},
		},
	}
	h := NewScheduleHandler(&fakeScheduleReader{}, deliveries)

	res := h.GetDeliveries(httptest.NewRecorder(), requestAs(t, uuid.New(), "7"))

	assert.Equal(t, http.StatusOK, res.Code)
	body := res.Body.(*models.GetDeliveriesResponse)
	assert.Empty(t, body.Deliveries)
}

func TestGetSchedules_OnlyCallersRows(t *testing.T) {
	me := uuid.New()
	schedules := &fakeScheduleReader{schedules: []data.NotificationSchedule{
		{ID: 1, UserID: me, EventID: 10, Channel: enums.ChannelEmail, TriggerType: enums.TriggerOnStart, Status: enums.SchedulePending},
		{ID: 2, UserID: uuid.New(), EventID: 11, Channel: enums.ChannelEmail, TriggerType: enums.TriggerOnStart, Status: enums.SchedulePending},
	}}
	h := NewScheduleHandler(schedules, &fakeDeliveryReader{})

	res := h.GetSchedules(httptest.NewRecorder(), requestAs(t, me, ""))

	assert.Equal(t, http.StatusOK, res.Code)
	body := res.Body.(*models.GetSchedulesResponse)
	assert.Len(t, body.Schedules, 1)
	assert.Equal(t, int64(1), body.Schedules[0].ID)
}
