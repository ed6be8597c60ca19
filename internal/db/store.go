// Package db persists climb profiles in SQLite. Segments are stored as a
// JSON document per profile; summary columns are denormalized for listing.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/climb-data/climb.report/internal/profile"
)

// ErrNotFound is returned when a profile id does not exist.
var ErrNotFound = errors.New("profile not found")

// Store wraps the SQLite handle.
type Store struct {
	*sql.DB
}

// NewStore opens (or creates) the database at path and ensures the schema
// exists. Use MigrateUp for versioned upgrades beyond the base schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			start_elevation_m   DOUBLE,
			segments            TEXT NOT NULL,
			total_km            DOUBLE NOT NULL,
			total_gain_m        BIGINT NOT NULL,
			created_at          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db}, nil
}

// ProfileMeta is the listing row: identity plus summary, no segment payload.
type ProfileMeta struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TotalKm    float64   `json:"total_km"`
	TotalGainM int       `json:"total_gain_m"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveProfile stores a profile under a fresh id and returns it.
func (s *Store) SaveProfile(p *profile.ClimbProfile) (string, error) {
	segments, err := json.Marshal(p.Segments)
	if err != nil {
		return "", fmt.Errorf("failed to encode segments: %w", err)
	}

	acc := profile.Accumulate(p.Segments)
	id := uuid.NewString()

	_, err = s.Exec(`
		INSERT INTO profiles (id, name, start_elevation_m, segments, total_km, total_gain_m)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.StartElevationM, string(segments), acc.TotalKm, acc.TotalGainM)
	if err != nil {
		return "", fmt.Errorf("failed to insert profile: %w", err)
	}
	return id, nil
}

// GetProfile loads a stored profile by id.
func (s *Store) GetProfile(id string) (*profile.ClimbProfile, error) {
	var (
		p        profile.ClimbProfile
		startEl  sql.NullFloat64
		segments string
	)
	err := s.QueryRow(`
		SELECT name, start_elevation_m, segments FROM profiles WHERE id = ?
	`, id).Scan(&p.Name, &startEl, &segments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(segments), &p.Segments); err != nil {
		return nil, fmt.Errorf("failed to decode segments for %s: %w", id, err)
	}
	if startEl.Valid {
		p.StartElevationM = &startEl.Float64
	}
	return &p, nil
}

// ListProfiles returns profile summaries, newest first.
func (s *Store) ListProfiles() ([]ProfileMeta, error) {
	rows, err := s.Query(`
		SELECT id, name, total_km, total_gain_m, created_at
		FROM profiles ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileMeta
	for rows.Next() {
		var m ProfileMeta
		if err := rows.Scan(&m.ID, &m.Name, &m.TotalKm, &m.TotalGainM, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteProfile removes a stored profile.
func (s *Store) DeleteProfile(id string) error {
	res, err := s.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountProfiles reports how many profiles are stored.
func (s *Store) CountProfiles() (int, error) {
	var n int
	if err := s.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}
