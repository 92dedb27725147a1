// Package scheduling turns notification rules into per-user schedule rows.
// Planning is idempotent: every (user, event, rule shape) maps to one
// dedupe key, and re-planning refreshes rows in place instead of
// duplicating them.
package scheduling

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/metrics"
)

// maxLateness is how far in the past a computed trigger time may lie and
// still be worth scheduling. Anything older is skipped, not back-filled.
const maxLateness = 5 * time.Minute

// rebuildEndedGrace keeps recently-ended events eligible during a user
// rebuild so ON_END triggers inside the lateness window still fire.
const rebuildEndedGrace = time.Hour

type Planner struct {
	events    *repos.EventRepo
	rules     *repos.RuleRepo
	subs      *repos.SubscriptionRepo
	schedules *repos.ScheduleRepo
	logger    *slog.Logger
}

func NewPlanner(events *repos.EventRepo, rules *repos.RuleRepo, subs *repos.SubscriptionRepo, schedules *repos.ScheduleRepo, logger *slog.Logger) *Planner {
	return &Planner{
		events:    events,
		rules:     rules,
		subs:      subs,
		schedules: schedules,
		logger:    logger,
	}
}

// PlanForEvent re-plans all notifications for one event. Only PUBLIC events
// fan out; an event that dropped out of PUBLIC gets its undelivered
// schedules canceled instead. Planning starts by purging stale
// PENDING/FAILED/CANCELED rows for the event so removed rules don't leave
// intents behind.
func (p *Planner) PlanForEvent(eventID int64) error {
	event, err := p.events.GetByID(eventID)
	if err != nil {
		return errors.Wrap(err, "plan for event")
	}
	if event == nil {
		p.logger.Warn("plan requested for missing event", "event_id", eventID)
		return nil
	}

	if event.Visibility != enums.VisibilityPublic {
		if err := p.schedules.CancelPendingForEvent(event.ID); err != nil {
			return errors.Wrap(err, "cancel schedules for non-public event")
		}
		return nil
	}

	if err := p.schedules.PurgeForEvent(event.ID); err != nil {
		return errors.Wrap(err, "purge before plan")
	}

	userIDs, err := p.subs.GetSubscribedUserIDs(event.RegionID)
	if err != nil {
		return errors.Wrap(err, "resolve audience")
	}
	if len(userIDs) == 0 {
		return nil
	}

	planned, skipped, err := p.planEventForUsers(*event, userIDs)
	if err != nil {
		return err
	}

	p.logger.Debug("planned event notifications",
		"event_id", event.ID, "audience", len(userIDs), "planned", planned, "skipped", skipped)
	return nil
}

// RebuildForUser re-derives one user's schedules from scratch. Called when
// the user's subscriptions or rules change, the only planning inputs
// besides the event data itself.
func (p *Planner) RebuildForUser(userID uuid.UUID) error {
	if err := p.schedules.PurgeForUser(userID); err != nil {
		return errors.Wrap(err, "purge before rebuild")
	}

	regions, err := p.subs.GetRegionsForUser(userID)
	if err != nil {
		return errors.Wrap(err, "get user regions")
	}
	if len(regions) == 0 {
		return nil
	}

	events, err := p.events.ListPublicActiveInRegions(regions, time.Now().UTC().Add(-rebuildEndedGrace))
	if err != nil {
		return errors.Wrap(err, "list active events")
	}

	var planned, skipped int
	for _, event := range events {
		pl, sk, err := p.planEventForUsers(event, []uuid.UUID{userID})
		if err != nil {
			return err
		}
		planned += pl
		skipped += sk
	}

	p.logger.Debug("rebuilt user schedules",
		"user_id", userID, "events", len(events), "planned", planned, "skipped", skipped)
	return nil
}

func (p *Planner) planEventForUsers(event data.Event, userIDs []uuid.UUID) (planned, skipped int, err error) {
	rules, err := p.rules.GetApplicableRules(userIDs, event.Type, event.RegionID)
	if err != nil {
		return 0, 0, errors.Wrap(err, "get applicable rules")
	}

	now := time.Now().UTC()
	for _, rule := range rules {
		scheduledAt, reason := ComputeScheduledAt(rule, event, now)
		if reason != "" {
			metrics.SchedulesSkipped.WithLabelValues(reason).Inc()
			skipped++
			continue
		}

		schedule := data.NotificationSchedule{
			UserID:        rule.UserID,
			EventID:       event.ID,
			Channel:       rule.Channel,
			TriggerType:   rule.Trigger,
			OffsetMinutes: rule.OffsetMinutes,
			ScheduledAt:   scheduledAt,
			Payload:       buildPayload(event, scheduledAt),
			DedupeKey:     BuildDedupeKey(rule.UserID, event.ID, rule.Channel, rule.Trigger, rule.OffsetMinutes),
		}

		if err := p.schedules.UpsertPlanned(schedule); err != nil {
			p.logger.Error("failed to upsert schedule", "user_id", rule.UserID, "event_id", event.ID, "error", err)
			continue
		}
		metrics.SchedulesPlanned.Inc()
		planned++
	}

	return planned, skipped, nil
}

type schedulePayload struct {
	EventID      int64           `json:"eventId"`
	EventTitle   string          `json:"eventTitle"`
	EventType    enums.EventType `json:"eventType"`
	RegionID     string          `json:"regionId"`
	ScheduledFor time.Time       `json:"scheduledFor"`
}

func buildPayload(event data.Event, scheduledAt time.Time) json.RawMessage {
	payload, _ := json.Marshal(schedulePayload{
		EventID:      event.ID,
		EventTitle:   event.Title,
		EventType:    event.Type,
		RegionID:     event.RegionID,
		ScheduledFor: scheduledAt,
	})
	return payload
}
