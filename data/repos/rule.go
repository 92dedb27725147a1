package repos

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/enums"
)

type RuleRepo struct {
	db *sqlx.DB
}

func NewRuleRepo(db *sqlx.DB) *RuleRepo {
	return &RuleRepo{db}
}

func (r *RuleRepo) CreateRule(rule data.NotificationRule) (int64, error) {
	query := `
		INSERT INTO notification_rules (user_id, scope, region_id, event_type, trigger_type, offset_minutes, channel, enabled)
		VALUES (:user_id, :scope, :region_id, :event_type, :trigger_type, :offset_minutes, :channel, :enabled)
		RETURNING id`

	rows, err := r.db.NamedQuery(query, rule)
	if err != nil {
		return 0, fmt.Errorf("create rule: %w", err)
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan returned id: %w", err)
		}
	}

	return id, nil
}

func (r *RuleRepo) GetRulesByUserID(userID uuid.UUID) ([]data.NotificationRule, error) {
	var rules []data.NotificationRule
	query := `
		SELECT * FROM notification_rules
		WHERE user_id = $1
		ORDER BY created_at DESC`

	err := r.db.Select(&rules, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get rules by user id: %w", err)
	}

	return rules, nil
}

func (r *RuleRepo) DeleteRule(id int64, userID uuid.UUID) error {
	query := `DELETE FROM notification_rules WHERE id = $1 AND user_id = $2`

	_, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}

	return nil
}

// GetApplicableRules returns enabled rules matching the event's type for
// the given users: GLOBAL-scope rules plus REGION-scope rules pinned to the
// event's region.
func (r *RuleRepo) GetApplicableRules(userIDs []uuid.UUID, eventType enums.EventType, regionID string) ([]data.NotificationRule, error) {
	if len(userIDs) == 0 {
		return []data.NotificationRule{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT * FROM notification_rules
		WHERE enabled = true
		  AND event_type = ?
		  AND user_id IN (?)
		  AND (scope = 'GLOBAL' OR (scope = 'REGION' AND region_id = ?))
		ORDER BY id`, string(eventType), userIDs, regionID)
	if err != nil {
		return nil, fmt.Errorf("build get applicable rules: %w", err)
	}
	query = r.db.Rebind(query)

	var rules []data.NotificationRule
	err = r.db.Select(&rules, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get applicable rules: %w", err)
	}

	return rules, nil
}
