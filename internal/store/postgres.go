package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps room state in a single room_state(room_id, key, value)
// table, one row per durable key.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (ps *PostgresStore) Close() {
	ps.pool.Close()
}

func (ps *PostgresStore) Get(ctx context.Context, roomID, key string) ([]byte, error) {
	row := ps.pool.QueryRow(ctx,
		"SELECT value FROM room_state WHERE room_id = $1 AND key = $2", roomID, key)

	var value []byte
	err := row.Scan(&value)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrKeyNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", UnexpectedStoreError, err)
		}
	}

	return value, nil
}

func (ps *PostgresStore) Put(ctx context.Context, roomID, key string, value []byte) error {
	_, err := ps.pool.Exec(ctx,
		`INSERT INTO room_state(room_id, key, value) VALUES($1, $2, $3)
		 ON CONFLICT (room_id, key) DO UPDATE SET value = $3, updated_at = now()`,
		roomID, key, value)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", UnexpectedStoreError, err)
	}

	return nil
}

func (ps *PostgresStore) Delete(ctx context.Context, roomID, key string) error {
	_, err := ps.pool.Exec(ctx,
		"DELETE FROM room_state WHERE room_id = $1 AND key = $2", roomID, key)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", UnexpectedStoreError, err)
	}

	return nil
}
