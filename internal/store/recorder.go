// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store keeps a history of pressure samples in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/relabs-tech/pressure_computer/internal/env"
)

// Recorder appends samples to a SQLite database.
type Recorder struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS readings (
			time_ns INTEGER NOT NULL,
			source TEXT,
			temp_c REAL,
			pressure REAL,
			unit TEXT,
			pressure_pa REAL
		);
		CREATE INDEX IF NOT EXISTS readings_time ON readings(time_ns);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Recorder{db: db}, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

// Add stores one sample.
func (r *Recorder) Add(s env.Sample) error {
	_, err := r.db.Exec(`
		INSERT INTO readings (time_ns, source, temp_c, pressure, unit, pressure_pa)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Time.UnixNano(), s.Source, s.Temperature, s.Pressure, s.Unit, s.PressurePa)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// Range returns the samples taken in [from, to), oldest first, at most
// limit of them when limit > 0.
func (r *Recorder) Range(from, to time.Time, limit int) ([]env.Sample, error) {
	q := `
		SELECT time_ns, source, temp_c, pressure, unit, pressure_pa
		FROM readings
		WHERE time_ns >= ? AND time_ns < ?
		ORDER BY time_ns`
	args := []any{from.UnixNano(), to.UnixNano()}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []env.Sample
	for rows.Next() {
		var (
			s  env.Sample
			ns int64
		)
		if err := rows.Scan(&ns, &s.Source, &s.Temperature, &s.Pressure, &s.Unit, &s.PressurePa); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		s.Time = time.Unix(0, ns)
		s.PressureHPa = s.PressurePa / 100.0
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}
