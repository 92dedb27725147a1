// Package dispatch claims due notification schedules and attempts
// delivery. The claim is the only cross-process mutual exclusion in the
// system; everything after it happens outside the claiming transaction.
package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/metrics"
)

const (
	MinLimit     = 1
	MaxLimit     = 500
	DefaultLimit = 100
)

// ScheduleStore is the claim/finish surface of the schedule repo.
type ScheduleStore interface {
	ClaimDue(limit int, now time.Time) ([]data.NotificationSchedule, error)
	FinishProcessing(id int64, status enums.ScheduleStatus) error
}

// DeliveryLog records one row per dispatch attempt.
type DeliveryLog interface {
	CreateDelivery(d data.NotificationDelivery) error
}

// UserDirectory resolves delivery targets.
type UserDirectory interface {
	GetUserByID(id uuid.UUID) (*data.User, error)
}

// PushDirectory lists a user's stored web push subscriptions.
type PushDirectory interface {
	GetPushSubscriptions(userID uuid.UUID) ([]data.PushSubscription, error)
}

// Sender performs the actual channel transport once policy has passed.
type Sender interface {
	Send(ctx context.Context, schedule data.NotificationSchedule, target string) ([]byte, error)
}

type Dispatcher struct {
	schedules  ScheduleStore
	deliveries DeliveryLog
	users      UserDirectory
	push       PushDirectory
	sender     Sender
	logger     *slog.Logger
}

func NewDispatcher(schedules ScheduleStore, deliveries DeliveryLog, users UserDirectory, push PushDirectory, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		schedules:  schedules,
		deliveries: deliveries,
		users:      users,
		push:       push,
		sender:     sender,
		logger:     logger,
	}
}

type Summary struct {
	Picked int `json:"picked"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ClampLimit normalizes a requested batch size into [MinLimit, MaxLimit],
// applying the default for zero or negative input.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// DispatchDue claims up to limit due schedules and processes each one
// independently. Every claimed schedule reaches a terminal status and a
// delivery log row, delivery errors included; only a failed claim
// transaction aborts the whole call.
func (d *Dispatcher) DispatchDue(ctx context.Context, limit int) (Summary, error) {
	claimed, err := d.schedules.ClaimDue(ClampLimit(limit), time.Now().UTC())
	if err != nil {
		return Summary{}, errors.Wrap(err, "claim due schedules")
	}

	summary := Summary{Picked: len(claimed)}
	for _, schedule := range claimed {
		if d.processOne(ctx, schedule) {
			summary.Sent++
		} else {
			summary.Failed++
		}
	}

	if summary.Picked > 0 {
		d.logger.Info("dispatched due notifications",
			"picked", summary.Picked, "sent", summary.Sent, "failed", summary.Failed)
	}

	return summary, nil
}

// processOne attempts delivery for one claimed schedule and records the
// outcome. Policy failures (no push subscription, no email, unconfigured
// channel) are expected terminal FAILED outcomes, not errors.
func (d *Dispatcher) processOne(ctx context.Context, schedule data.NotificationSchedule) bool {
	target, failReason := d.resolveTarget(schedule)

	var response []byte
	if failReason == "" {
		sent, err := d.sender.Send(ctx, schedule, target)
		if err != nil {
			failReason = "send failed: " + err.Error()
		} else {
			response = sent
		}
	}

	result := enums.DeliverySuccess
	status := enums.ScheduleSent
	if failReason != "" {
		result = enums.DeliveryFailed
		status = enums.ScheduleFailed
	}
	metrics.Dispatches.WithLabelValues(string(schedule.Channel), string(result)).Inc()

	delivery := data.NotificationDelivery{
		ScheduleID:      schedule.ID,
		SentAt:          time.Now().UTC(),
		Result:          result,
		ResponsePayload: responseOrEmpty(response),
	}
	if failReason != "" {
		delivery.ErrorMessage = sql.NullString{String: failReason, Valid: true}
	}

	if err := d.deliveries.CreateDelivery(delivery); err != nil {
		d.logger.Error("failed to log delivery", "schedule_id", schedule.ID, "error", err)
	}

	// Whatever happened above, the row must leave PROCESSING.
	if err := d.schedules.FinishProcessing(schedule.ID, status); err != nil {
		d.logger.Error("failed to finish schedule", "schedule_id", schedule.ID, "error", err)
	}

	return result == enums.DeliverySuccess
}

// resolveTarget applies per-channel delivery policy. The DISCORD branch is
// a policy stub pending real webhook integration.
func (d *Dispatcher) resolveTarget(schedule data.NotificationSchedule) (target, failReason string) {
	switch schedule.Channel {
	case enums.ChannelWebPush:
		subs, err := d.push.GetPushSubscriptions(schedule.UserID)
		if err != nil {
			return "", "load push subscriptions: " + err.Error()
		}
		if len(subs) == 0 {
			return "", "no push subscription"
		}
		return subs[0].Endpoint, ""

	case enums.ChannelEmail:
		user, err := d.users.GetUserByID(schedule.UserID)
		if err != nil {
			return "", "load user: " + err.Error()
		}
		if user == nil || user.Email == "" {
			return "", "user has no email address"
		}
		return user.Email, ""

	case enums.ChannelDiscord:
		return "", "channel not configured"

	default:
		return string(schedule.Channel), ""
	}
}

func responseOrEmpty(response []byte) json.RawMessage {
	if len(response) == 0 {
		return json.RawMessage(`{}`)
	}
	return response
}
