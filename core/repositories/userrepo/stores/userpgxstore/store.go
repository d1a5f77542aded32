// Package userpgxstore implements the user Storer against PostgreSQL.
package userpgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/taskhub/core/repositories/userrepo"
	"github.com/jrazmi/taskhub/infrastructure/postgresdb"
	"github.com/jrazmi/taskhub/sdk/logger"
)

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) List(ctx context.Context) ([]userrepo.User, error) {
	query := `SELECT user_id, name, email, role, created_at, updated_at
		FROM users
		ORDER BY name ASC, user_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	sl, err := pgx.CollectRows(rows, pgx.RowToStructByName[userrepo.User])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return sl, nil
}

func (s *Store) GetByID(ctx context.Context, userID string) (userrepo.User, error) {
	query := `SELECT user_id, name, email, role, created_at, updated_at
		FROM users
		WHERE user_id = @user_id`

	args := pgx.NamedArgs{"user_id": userID}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return userrepo.User{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userrepo.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.User{}, fmt.Errorf("user %s: %w", userID, userrepo.ErrNotFound)
		}
		return userrepo.User{}, postgresdb.HandlePgError(err)
	}

	return user, nil
}
