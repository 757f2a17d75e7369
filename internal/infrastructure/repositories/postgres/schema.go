package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL is idempotent and runs at startup. Kept as plain SQL so the
// tables can also be created by hand against a managed database.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS licenses (
    id               UUID PRIMARY KEY,
    code             TEXT NOT NULL UNIQUE,
    duration_minutes INTEGER NOT NULL,
    max_listeners    INTEGER NOT NULL,
    is_active        BOOLEAN NOT NULL DEFAULT FALSE,
    activated_at     TIMESTAMPTZ,
    revoked_at       TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
    id            UUID PRIMARY KEY,
    license_id    UUID NOT NULL REFERENCES licenses(id),
    pin           TEXT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ,
    expires_at    TIMESTAMPTZ NOT NULL,
    max_listeners INTEGER NOT NULL,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE UNIQUE INDEX IF NOT EXISTS sessions_active_pin_idx
    ON sessions (pin) WHERE is_active;

CREATE INDEX IF NOT EXISTS sessions_started_at_idx ON sessions (started_at DESC);

CREATE TABLE IF NOT EXISTS listeners (
    id           UUID PRIMARY KEY,
    session_id   UUID NOT NULL REFERENCES sessions(id),
    display_name TEXT NOT NULL DEFAULT '',
    joined_at    TIMESTAMPTZ NOT NULL,
    left_at      TIMESTAMPTZ,
    is_connected BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS listeners_session_idx ON listeners (session_id);

CREATE TABLE IF NOT EXISTS events (
    id           UUID PRIMARY KEY,
    type         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    session_id   UUID,
    license_code TEXT NOT NULL DEFAULT '',
    payload      JSONB,
    created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS events_created_at_idx ON events (created_at DESC);
CREATE INDEX IF NOT EXISTS events_type_idx ON events (type, created_at DESC);

CREATE TABLE IF NOT EXISTS outbox_events (
    id           UUID PRIMARY KEY,
    event_type   TEXT NOT NULL,
    payload      JSONB,
    status       TEXT NOT NULL,
    retries      INTEGER NOT NULL DEFAULT 0,
    last_error   TEXT NOT NULL DEFAULT '',
    delivered_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS outbox_status_idx ON outbox_events (status, created_at);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
