// Package sqlite provides a SQLite-backed implementation of the analysis repository port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/core/ports"
)

const (
	defaultListLimit = 20
	// Fixed width so text order matches time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Adapter implements ports.AnalysisRepository for SQLite.
type Adapter struct {
	db *sql.DB
}

var _ ports.AnalysisRepository = (*Adapter)(nil)

// NewAdapter opens the database and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Save inserts or replaces an analysis.
func (a *Adapter) Save(ctx context.Context, an domain.Analysis) error {
	var m sql.NullString
	if an.PredictedMood != nil {
		m = sql.NullString{String: string(*an.PredictedMood), Valid: true}
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO analyses (id, source, title, artist, tempo, valence, energy, danceability, instrumentalness, mood, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			artist = excluded.artist,
			tempo = excluded.tempo,
			valence = excluded.valence,
			energy = excluded.energy,
			danceability = excluded.danceability,
			instrumentalness = excluded.instrumentalness,
			mood = excluded.mood,
			analyzed_at = excluded.analyzed_at
	`,
		an.ID, an.Source, an.Title, an.Artist,
		an.Features.Tempo, an.Features.Valence, an.Features.Energy,
		an.Features.Danceability, an.Features.Instrumentalness,
		m, an.AnalyzedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

const selectAnalysis = `
	SELECT id, source, title, artist, tempo, valence, energy, danceability, instrumentalness, mood, analyzed_at
	FROM analyses`

// GetByID loads one analysis.
func (a *Adapter) GetByID(ctx context.Context, id string) (domain.Analysis, error) {
	row := a.db.QueryRowContext(ctx, selectAnalysis+" WHERE id = ?", id)
	an, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Analysis{}, domain.ErrNotFound
		}
		return domain.Analysis{}, fmt.Errorf("failed to load analysis: %w", err)
	}
	return an, nil
}

// ListRecent returns the newest analyses first. A non-positive limit uses
// the default of 20.
func (a *Adapter) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := a.db.QueryContext(ctx, selectAnalysis+" ORDER BY analyzed_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	out := []domain.Analysis{}
	for rows.Next() {
		an, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, an)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (domain.Analysis, error) {
	var (
		an         domain.Analysis
		title      sql.NullString
		artist     sql.NullString
		m          sql.NullString
		analyzedAt string
	)
	if err := s.Scan(
		&an.ID,
		&an.Source,
		&title,
		&artist,
		&an.Features.Tempo,
		&an.Features.Valence,
		&an.Features.Energy,
		&an.Features.Danceability,
		&an.Features.Instrumentalness,
		&m,
		&analyzedAt,
	); err != nil {
		return domain.Analysis{}, err
	}
	an.Title = title.String
	an.Artist = artist.String
	if m.Valid {
		mood := domain.Mood(m.String)
		an.PredictedMood = &mood
	}
	t, err := time.Parse(timeLayout, analyzedAt)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("bad analyzed_at %q: %w", analyzedAt, err)
	}
	an.AnalyzedAt = t
	return an, nil
}

func (a *Adapter) migrate() error {
	_, err := a.db.Exec(`
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		title TEXT,
		artist TEXT,
		tempo REAL NOT NULL,
		valence REAL NOT NULL,
		energy REAL NOT NULL,
		danceability REAL NOT NULL,
		instrumentalness REAL NOT NULL,
		mood TEXT,
		analyzed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);
	`)
	return err
}
