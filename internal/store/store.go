// Package store provides the Postgres persistence sink. Every write is an
// idempotent upsert keyed on the record's natural key, so a crawl can be
// re-run or resumed at any point without producing duplicates.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rechte-gewalt/chronik-crawler/internal/chronik"
)

type execCloser interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Store writes incidents, sources and chronicle metadata into Postgres.
type Store struct {
	pool   execCloser
	logger *zap.Logger
}

// New connects a Store to the database behind dsn.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewWithPool(pool execCloser, logger *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS incidents (
	rg_id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	chronicler_name TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	date DATE NOT NULL,
	city TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	motives TEXT NOT NULL DEFAULT '',
	contexts TEXT NOT NULL DEFAULT '',
	factums TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION
)`,
	`CREATE TABLE IF NOT EXISTS sources (
	rg_id TEXT NOT NULL,
	name TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (rg_id, name, url)
)`,
	`CREATE TABLE IF NOT EXISTS chronicles (
	chronicler_name TEXT PRIMARY KEY,
	iso3166_1 TEXT NOT NULL,
	iso3166_2 TEXT NOT NULL,
	region TEXT NOT NULL,
	chronicler_description TEXT NOT NULL,
	chronicler_url TEXT NOT NULL,
	chronicle_source TEXT NOT NULL
)`,
}

// Init creates the three tables if they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.logger.Debug("schema ensured", zap.Int("tables", len(schema)))
	return nil
}

// UpsertIncident inserts or replaces an incident row, keyed by rg_id.
func (s *Store) UpsertIncident(ctx context.Context, inc chronik.Incident) error {
	if inc.RgID == "" {
		return fmt.Errorf("incident rg_id is required")
	}
	if inc.Date.IsZero() {
		return fmt.Errorf("incident %s has no date", inc.RgID)
	}
	const query = `
INSERT INTO incidents (
	rg_id, url, chronicler_name, title, description, date,
	city, tags, motives, contexts, factums, latitude, longitude
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (rg_id) DO UPDATE SET
	url = EXCLUDED.url,
	chronicler_name = EXCLUDED.chronicler_name,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	date = EXCLUDED.date,
	city = EXCLUDED.city,
	tags = EXCLUDED.tags,
	motives = EXCLUDED.motives,
	contexts = EXCLUDED.contexts,
	factums = EXCLUDED.factums,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude`
	_, err := s.pool.Exec(ctx, query,
		inc.RgID,
		inc.URL,
		inc.ChroniclerName,
		inc.Title,
		inc.Description,
		inc.Date,
		inc.City,
		inc.Tags,
		inc.Motives,
		inc.Contexts,
		inc.Factums,
		inc.Latitude,
		inc.Longitude,
	)
	if err != nil {
		return fmt.Errorf("upsert incident %s: %w", inc.RgID, err)
	}
	return nil
}

// UpsertSource inserts a source citation, keyed by (rg_id, name, url).
// Re-inserting the same citation is a no-op.
func (s *Store) UpsertSource(ctx context.Context, src chronik.Source) error {
	if src.RgID == "" || src.Name == "" {
		return fmt.Errorf("source rg_id and name are required")
	}
	const query = `
INSERT INTO sources (rg_id, name, url)
VALUES ($1,$2,$3)
ON CONFLICT (rg_id, name, url) DO NOTHING`
	if _, err := s.pool.Exec(ctx, query, src.RgID, src.Name, src.URL); err != nil {
		return fmt.Errorf("upsert source %s/%s: %w", src.RgID, src.Name, err)
	}
	return nil
}

// UpsertChronicle writes the static chronicle metadata row, keyed by
// chronicler_name. Idempotent across runs.
func (s *Store) UpsertChronicle(ctx context.Context, c chronik.Chronicle) error {
	const query = `
INSERT INTO chronicles (
	chronicler_name, iso3166_1, iso3166_2, region,
	chronicler_description, chronicler_url, chronicle_source
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (chronicler_name) DO UPDATE SET
	iso3166_1 = EXCLUDED.iso3166_1,
	iso3166_2 = EXCLUDED.iso3166_2,
	region = EXCLUDED.region,
	chronicler_description = EXCLUDED.chronicler_description,
	chronicler_url = EXCLUDED.chronicler_url,
	chronicle_source = EXCLUDED.chronicle_source`
	_, err := s.pool.Exec(ctx, query,
		c.ChroniclerName,
		c.ISO31661,
		c.ISO31662,
		c.Region,
		c.ChroniclerDescription,
		c.ChroniclerURL,
		c.ChronicleSource,
	)
	if err != nil {
		return fmt.Errorf("upsert chronicle %s: %w", c.ChroniclerName, err)
	}
	return nil
}
