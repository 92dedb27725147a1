package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

type fakeScheduleStore struct {
	due      []data.NotificationSchedule
	claimErr error
	finished map[int64]enums.ScheduleStatus
}

func (f *fakeScheduleStore) ClaimDue(limit int, _ time.Time) ([]data.NotificationSchedule, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeScheduleStore) FinishProcessing(id int64, status enums.ScheduleStatus) error {
	if f.finished == nil {
		f.finished = make(map[int64]enums.ScheduleStatus)
	}
	f.finished[id] = status
	return nil
}

type fakeDeliveryLog struct {
	rows []data.NotificationDelivery
}

func (f *fakeDeliveryLog) CreateDelivery(d data.NotificationDelivery) error {
	f.rows = append(f.rows, d)
	return nil
}

type fakeUsers struct {
	users map[uuid.UUID]*data.User
}

func (f *fakeUsers) GetUserByID(id uuid.UUID) (*data.User, error) {
	return f.users[id], nil
}

type fakePush struct {
	subs map[uuid.UUID][]data.PushSubscription
}

func (f *fakePush) GetPushSubscriptions(userID uuid.UUID) ([]data.PushSubscription, error) {
	return f.subs[userID], nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, _ data.NotificationSchedule, target string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, target)
	return []byte(`{"simulated":true}`), nil
}

func schedule(id int64, userID uuid.UUID, channel enums.Channel) data.NotificationSchedule {
	return data.NotificationSchedule{
		ID:      id,
		UserID:  userID,
		Channel: channel,
		Status:  enums.ScheduleProcessing,
	}
}

func newTestDispatcher(store *fakeScheduleStore, log *fakeDeliveryLog, users *fakeUsers, push *fakePush, sender *fakeSender) *Dispatcher {
	return NewDispatcher(store, log, users, push, sender, slog.Default())
}

func TestDispatchDue_WebPushRequiresSubscription(t *testing.T) {
	userID := uuid.New()
	store := &fakeScheduleStore{due: []data.NotificationSchedule{schedule(1, userID, enums.ChannelWebPush)}}
	log := &fakeDeliveryLog{}
	d := newTestDispatcher(store, log, &fakeUsers{}, &fakePush{}, &fakeSender{})

	summary, err := d.DispatchDue(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, Summary{Picked: 1, Sent: 0, Failed: 1}, summary)
	assert.Equal(t, enums.ScheduleFailed, store.finished[1])
	assert.Len(t, log.rows, 1)
	assert.Equal(t, "no push subscription", log.rows[0].ErrorMessage.String)
}

func TestDispatchDue_WebPushWithSubscriptionSucceeds(t *testing.T) {
	userID := uuid.New()
	store := &fakeScheduleStore{due: []data.NotificationSchedule{schedule(1, userID, enums.ChannelWebPush)}}
	push := &fakePush{subs: map[uuid.UUID][]data.PushSubscription{
		userID: {{Endpoint: "https://push.example/abc"}},
	}}
	log := &fakeDeliveryLog{}
	sender := &fakeSender{}
	d := newTestDispatcher(store, log, &fakeUsers{}, push, sender)

	summary, err := d.DispatchDue(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, Summary{Picked: 1, Sent: 1, Failed: 0}, summary)
	assert.Equal(t, enums.ScheduleSent, store.finished[1])
	assert.Equal(t, []string{"https://push.example/abc"}, sender.sent)
	assert.Equal(t, enums.DeliverySuccess, log.rows[0].Result)
}

func TestDispatchDue_EmailRequiresAddress(t *testing.T) {
	withEmail := uuid.New()
	withoutEmail := uuid.New()
	store := &fakeScheduleStore{due: []data.NotificationSchedule{
		schedule(1, withEmail, enums.ChannelEmail),
		schedule(2, withoutEmail, enums.ChannelEmail),
	}}
	users := &fakeUsers{users: map[uuid.UUID]*data.User{
		withEmail:    {ID: withEmail, Email: "player@example.com"},
		withoutEmail: {ID: withoutEmail},
	}}
	log := &fakeDeliveryLog{}
	d := newTestDispatcher(store, log, users, &fakePush{}, &fakeSender{})

	summary, err := d.DispatchDue(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, Summary{Picked: 2, Sent: 1, Failed: 1}, summary)
	assert.Equal(t, enums.ScheduleSent, store.finished[1])
	assert.Equal(t, enums.ScheduleFailed, store.finished[2])
}

func TestDispatchDue_DiscordIsAlwaysUnconfigured(t *testing.T) {
	store := &fakeScheduleStore{due: []data.NotificationSchedule{schedule(1, uuid.New(), enums.ChannelDiscord)}}
	log := &fakeDeliveryLog{}
	d := newTestDispatcher(store, log, &fakeUsers{}, &fakePush{}, &fakeSender{})

	summary, err := d.DispatchDue(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "channel not configured", log.rows[0].ErrorMessage.String)
}

func TestDispatchDue_SenderErrorStillFinishesRow(t *testing.T) {
	userID := uuid.New()
	store := &fakeScheduleStore{due: []data.NotificationSchedule{schedule(1, userID, enums.ChannelEmail)}}
	users := &fakeUsers{users: map[uuid.UUID]*data.User{userID: {ID: userID, Email: "a@b.c"}}}
	log := &fakeDeliveryLog{}
	d := newTestDispatcher(store, log, users, &fakePush{}, &fakeSender{err: errors.New("smtp down")})

	summary, err := d.DispatchDue(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, enums.ScheduleFailed, store.finished[1])
	assert.Contains(t, log.rows[0].ErrorMessage.String, "smtp down")
}

func TestDispatchDue_EveryOutcomeIsLogged(t *testing.T) {
	userID := uuid.New()
	store := &fakeScheduleStore{due: []data.NotificationSchedule{
		schedule(1, userID, enums.ChannelDiscord),
		schedule(2, userID, enums.ChannelWebPush),
	}}
	log := &fakeDeliveryLog{}
	d := newTestDispatcher(store, log, &fakeUsers{}, &fakePush{}, &fakeSender{})

	_, err := d.DispatchDue(context.Background(), 10)

	assert.NoError(t, err)
	assert.Len(t, log.rows, 2)
	assert.Len(t, store.finished, 2)
}

func TestDispatchDue_ClaimFailureAborts(t *testing.T) {
	store := &fakeScheduleStore{claimErr: errors.New("deadlock")}
	d := newTestDispatcher(store, &fakeDeliveryLog{}, &fakeUsers{}, &fakePush{}, &fakeSender{})

	_, err := d.DispatchDue(context.Background(), 10)

	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 250, ClampLimit(250))
	assert.Equal(t, MaxLimit, ClampLimit(9999))
}
