package repos

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
)

type PushRepo struct {
	db *sqlx.DB
}

func NewPushRepo(db *sqlx.DB) *PushRepo {
	return &PushRepo{db}
}

func (r *PushRepo) CreatePushSubscription(sub data.PushSubscription) (int64, error) {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES (:user_id, :endpoint, :p256dh, :auth)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
		RETURNING id`

	rows, err := r.db.NamedQuery(query, sub)
	if err != nil {
		return 0, fmt.Errorf("create push subscription: %w", err)
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

func (r *PushRepo) DeletePushSubscription(id int64, userID uuid.UUID) error {
	query := `DELETE FROM push_subscriptions WHERE id = $1 AND user_id = $2`

	_, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}

	return nil
}

func (r *PushRepo) GetPushSubscriptions(userID uuid.UUID) ([]data.PushSubscription, error) {
	var subs []data.PushSubscription
	query := `SELECT * FROM push_subscriptions WHERE user_id = $1 ORDER BY id`

	err := r.db.Select(&subs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get push subscriptions: %w", err)
	}

	return subs, nil
}
