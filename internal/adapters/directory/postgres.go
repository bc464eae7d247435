package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Watch/internal/core"
	"github.com/dkeye/Watch/internal/domain"
)

const lookupRoomSQL = `
	SELECT id, room_name, created_by, COALESCE(invited_users, '{}')
	FROM rooms
	WHERE id = $1
`

// Row is the subset of a pgx row the directory scans.
type Row interface {
	Scan(dest ...any) error
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads room records from the rooms table. It never writes.
type Postgres struct {
	db   Querier
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect room directory: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping room directory: %w", err)
	}
	log.Info().Str("module", "adapters.directory").Msg("postgres room directory connected")
	return &Postgres{db: pool, pool: pool}, nil
}

// NewPostgresWith wraps an existing querier, e.g. a transaction.
func NewPostgresWith(db Querier) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Lookup(ctx context.Context, id domain.RoomID) (*domain.RoomInfo, error) {
	info, err := scanRoom(p.db.QueryRow(ctx, lookupRoomSQL, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup room %s: %w", id, err)
	}
	return info, nil
}

func scanRoom(row Row) (*domain.RoomInfo, error) {
	var (
		info    domain.RoomInfo
		id      string
		invited []string
	)
	if err := row.Scan(&id, &info.RoomName, &info.CreatedBy, &invited); err != nil {
		return nil, err
	}
	info.ID = domain.RoomID(id)
	info.InvitedUsers = invited
	if info.InvitedUsers == nil {
		info.InvitedUsers = []string{}
	}
	return &info, nil
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
