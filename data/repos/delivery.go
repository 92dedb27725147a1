package repos

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
)

type DeliveryRepo struct {
	db *sqlx.DB
}

func NewDeliveryRepo(db *sqlx.DB) *DeliveryRepo {
	return &DeliveryRepo{db}
}

// CreateDelivery appends one attempt to the delivery log. The log is
// append-only; rows are never updated.
func (r *DeliveryRepo) CreateDelivery(d data.NotificationDelivery) error {
	query := `
		INSERT INTO notification_deliveries (schedule_id, sent_at, result, error_message, response_payload)
		VALUES (:schedule_id, :sent_at, :result, :error_message, :response_payload)`

	_, err := r.db.NamedExec(query, d)
	if err != nil {
		return fmt.Errorf("create delivery: %w", err)
	}

	return nil
}

// GetDeliveriesByScheduleID reads one schedule's delivery log, scoped to
// the schedule's owner. A schedule belonging to another user reads as
// empty, not as an error.
func (r *DeliveryRepo) GetDeliveriesByScheduleID(scheduleID int64, userID uuid.UUID) ([]data.NotificationDelivery, error) {
	var deliveries []data.NotificationDelivery
	query := `
		SELECT d.* FROM notification_deliveries d
		JOIN notification_schedules s ON s.id = d.schedule_id
		WHERE d.schedule_id = $1 AND s.user_id = $2
		ORDER BY d.sent_at ASC`

	err := r.db.Select(&deliveries, query, scheduleID, userID)
	if err != nil {
		return nil, fmt.Errorf("get deliveries by schedule id: %w", err)
	}

	return deliveries, nil
}
