package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/example/ride-ledger/internal/events"
	"github.com/example/ride-ledger/internal/models"
)

type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(dsn string) (*PostgresJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresJournal{db: db}, nil
}

func (p *PostgresJournal) Append(ctx context.Context, ev models.Event) error {
	env, err := events.Wrap(ev)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO ledger_events(name, ride_key, payload, emitted_at) VALUES($1,$2,$3,$4)`,
		env.Name, events.PartitionKey(ev), []byte(env.Payload), env.EmittedAt)
	return err
}

func (p *PostgresJournal) Close() error {
	return p.db.Close()
}
