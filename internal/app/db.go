package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/BigB742/bigb-analyzer/internal/config"
)

const (
	dbMaxOpenConns    = 10
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second

	maxTracedQueryLength = 512
)

// postgresDSN is DB_URL with the application_name applied. Both URL and
// key=value forms are accepted by lib/pq.
type postgresDSN struct {
	conn   string
	dbName string
}

func parsePostgresDSN(raw, applicationName string) postgresDSN {
	raw = strings.TrimSpace(raw)
	applicationName = strings.TrimSpace(applicationName)

	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if applicationName != "" {
			query := parsed.Query()
			if query.Get("application_name") == "" {
				query.Set("application_name", applicationName)
				parsed.RawQuery = query.Encode()
			}
		}
		return postgresDSN{
			conn:   parsed.String(),
			dbName: strings.TrimPrefix(parsed.Path, "/"),
		}
	}

	dsn := postgresDSN{conn: raw}
	hasAppName := false
	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "dbname":
			dsn.dbName = strings.Trim(value, `"'`)
		case "application_name":
			hasAppName = true
		}
	}
	if applicationName != "" && !hasAppName && raw != "" {
		dsn.conn = raw + " application_name=" + applicationName
	}
	return dsn
}

// traceQuery collapses whitespace so multi-line sqlx queries read as one span
// attribute, capped at maxTracedQueryLength bytes.
func traceQuery(query string) string {
	out := strings.Join(strings.Fields(query), " ")
	if len(out) > maxTracedQueryLength {
		return out[:maxTracedQueryLength] + "..."
	}
	return out
}

// OpenDB opens a traced postgres handle and verifies it with a ping.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := parsePostgresDSN(cfg.DBURL, cfg.DBApplicationName)

	db, err := otelsqlx.Open("postgres", dsn.conn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsn.dbName),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %q: %w", dsn.dbName, err)
	}
	return db, nil
}

// MigrationDatabaseURL is the DSN handed to golang-migrate. The migrate
// postgres driver only understands the URL form.
func MigrationDatabaseURL(cfg config.Config) string {
	return parsePostgresDSN(cfg.DBURL, "").conn
}
