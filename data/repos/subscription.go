package repos

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SubscriptionRepo struct {
	db *sqlx.DB
}

func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db}
}

// ReplaceForUser swaps the user's region subscriptions for the given set
// in one transaction.
func (r *SubscriptionRepo) ReplaceForUser(userID uuid.UUID, regionIDs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin replace subscriptions: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM user_game_subscriptions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}

	for _, regionID := range regionIDs {
		_, err := tx.Exec(`
			INSERT INTO user_game_subscriptions (user_id, region_id, enabled)
			VALUES ($1, $2, true)
			ON CONFLICT (user_id, region_id) DO UPDATE SET enabled = true`,
			userID, regionID)
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace subscriptions: %w", err)
	}

	return nil
}

// GetSubscribedUserIDs returns the audience for region-scoped fan-out.
func (r *SubscriptionRepo) GetSubscribedUserIDs(regionID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `
		SELECT user_id FROM user_game_subscriptions
		WHERE region_id = $1 AND enabled = true`

	err := r.db.Select(&ids, query, regionID)
	if err != nil {
		return nil, fmt.Errorf("get subscribed user ids: %w", err)
	}

	return ids, nil
}

func (r *SubscriptionRepo) GetRegionsForUser(userID uuid.UUID) ([]string, error) {
	var regions []string
	query := `
		SELECT region_id FROM user_game_subscriptions
		WHERE user_id = $1 AND enabled = true`

	err := r.db.Select(&regions, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get regions for user: %w", err)
	}

	return regions, nil
}
