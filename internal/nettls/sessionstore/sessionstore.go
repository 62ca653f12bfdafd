// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package sessionstore is the GORM-backed storage realization of the
// Session Cache Adapter's "(key, bytes) -> ()" collaborator interface
// (SPEC_FULL §6): a single table keyed by session key, holding one opaque
// envelope per row.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by Retrieve when no row exists for a key.
var ErrNotFound = errors.New("nettls/sessionstore: session cache entry not found")

// entry is the GORM model backing the session_cache_entries table created
// by database/migrations.
type entry struct {
	SessionKey string `gorm:"column:session_key;primaryKey"`
	Envelope   []byte `gorm:"column:envelope"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (entry) TableName() string { return "session_cache_entries" }

// GormStore is the GORM repository over the session_cache_entries table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already-migrated *gorm.DB.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Store upserts the envelope under key.
func (s *GormStore) Store(ctx context.Context, key string, envelope []byte) error {
	now := time.Now()

	row := entry{SessionKey: key, Envelope: envelope, CreatedAt: now, UpdatedAt: now}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"envelope", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to store session cache entry %q: %w", key, result.Error)
	}

	return nil
}

// Retrieve returns the envelope stored under key, or ErrNotFound.
func (s *GormStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	var row entry

	result := s.db.WithContext(ctx).First(&row, "session_key = ?", key)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve session cache entry %q: %w", key, result.Error)
	}

	return row.Envelope, nil
}

// Remove deletes the row for key, if present. Removing an absent key is not
// an error.
func (s *GormStore) Remove(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Delete(&entry{}, "session_key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to remove session cache entry %q: %w", key, result.Error)
	}

	return nil
}
