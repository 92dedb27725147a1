package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hoseok0727-sudo/subculture/data"
)

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db}
}

// UpsertUser creates the user row on first sight and refreshes profile
// fields on subsequent logins.
func (r UserRepo) UpsertUser(user data.User) (uuid.UUID, error) {
	query := `
		INSERT INTO users (id, name, display_name, email, avatar)
		VALUES (:id, :name, :display_name, :email, :avatar)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			avatar = EXCLUDED.avatar,
			updated_at = now()
		RETURNING id`

	rows, err := r.db.NamedQuery(query, user)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert user: %w", err)
	}
	defer rows.Close()

	var id uuid.UUID
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("scan returned id: %w", err)
		}
	}

	return id, nil
}

func (r UserRepo) GetUserByID(id uuid.UUID) (*data.User, error) {
	var user data.User
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.Get(&user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r UserRepo) GetUsersByIDs(IDs []uuid.UUID) ([]data.User, error) {
	if len(IDs) == 0 {
		return []data.User{}, nil
	}

	var users []data.User
	query, args, err := sqlx.In(`
		SELECT id, name, display_name, email, avatar, created_at, updated_at
		FROM users
		WHERE id IN (?)`, IDs)
	if err != nil {
		return nil, fmt.Errorf("build get users by ids: %w", err)
	}
	query = r.db.Rebind(query)

	err = r.db.Select(&users, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []data.User{}, nil
		}
		return nil, fmt.Errorf("get users by ids: %w", err)
	}

	return users, nil
}
