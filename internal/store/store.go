// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

// Package store persists catalog snapshots pushed by the platform
// backend. Recommendation requests read from the last snapshot, so the
// service keeps answering while the backend is down.
//
// Catalog slices are stored whole under one key each: a snapshot
// replace is a single transaction and the pushed item order survives,
// which the ranker's stable sorts depend on. Per-user activity uses
// prefixed keys. Preference profiles are never stored; they are derived
// per request.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Key layout.
const (
	contentKey         = "snapshot:content"
	genresKey          = "snapshot:genres"
	tagsKey            = "snapshot:tags"
	userKeyPrefix      = "user:"
	historyKeyPrefix   = "history:"
	favoritesKeyPrefix = "favorites:"
)

// Store is a BadgerDB-backed snapshot store. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Options configures Open.
type Options struct {
	// Path is the on-disk database directory. Ignored when InMemory.
	Path string

	// InMemory keeps the whole store in memory. Used by tests and
	// ephemeral deployments.
	InMemory bool
}

// Open opens the snapshot store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(opts Options, logger zerolog.Logger) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceContent atomically replaces the content snapshot.
func (s *Store) ReplaceContent(ctx context.Context, items []catalog.ContentItem) error {
	return s.putJSON(ctx, contentKey, items)
}

// Content returns the current content snapshot. ErrNotFound when no
// snapshot has been pushed yet.
func (s *Store) Content(ctx context.Context) ([]catalog.ContentItem, error) {
	var items []catalog.ContentItem
	if err := s.getJSON(ctx, contentKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceGenres atomically replaces the genre snapshot.
func (s *Store) ReplaceGenres(ctx context.Context, genres []catalog.Genre) error {
	return s.putJSON(ctx, genresKey, genres)
}

// Genres returns the current genre snapshot.
func (s *Store) Genres(ctx context.Context) ([]catalog.Genre, error) {
	var genres []catalog.Genre
	if err := s.getJSON(ctx, genresKey, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// ReplaceTags atomically replaces the tag snapshot.
func (s *Store) ReplaceTags(ctx context.Context, tags []catalog.Tag) error {
	return s.putJSON(ctx, tagsKey, tags)
}

// Tags returns the current tag snapshot.
func (s *Store) Tags(ctx context.Context) ([]catalog.Tag, error) {
	var tags []catalog.Tag
	if err := s.getJSON(ctx, tagsKey, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// PutUser stores or replaces one user record.
func (s *Store) PutUser(ctx context.Context, user *catalog.User) error {
	return s.putJSON(ctx, userKeyPrefix+strconv.Itoa(user.ID), user)
}

// User returns a user record by id. ErrNotFound for unknown users.
func (s *Store) User(ctx context.Context, id int) (*catalog.User, error) {
	var user catalog.User
	if err := s.getJSON(ctx, userKeyPrefix+strconv.Itoa(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ReplaceHistory replaces one user's watch history.
func (s *Store) ReplaceHistory(ctx context.Context, userID int, entries []catalog.WatchHistoryEntry) error {
	return s.putJSON(ctx, historyKeyPrefix+strconv.Itoa(userID), entries)
}

// History returns one user's watch history. A user with no pushed
// history gets an empty slice, not an error.
func (s *Store) History(ctx context.Context, userID int) ([]catalog.WatchHistoryEntry, error) {
	var entries []catalog.WatchHistoryEntry
	err := s.getJSON(ctx, historyKeyPrefix+strconv.Itoa(userID), &entries)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReplaceFavorites replaces one user's favorites.
func (s *Store) ReplaceFavorites(ctx context.Context, userID int, entries []catalog.FavoriteEntry) error {
	return s.putJSON(ctx, favoritesKeyPrefix+strconv.Itoa(userID), entries)
}

// Favorites returns one user's favorites, empty when none were pushed.
func (s *Store) Favorites(ctx context.Context, userID int) ([]catalog.FavoriteEntry, error) {
	var entries []catalog.FavoriteEntry
	err := s.getJSON(ctx, favoritesKeyPrefix+strconv.Itoa(userID), &entries)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) putJSON(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

func (s *Store) getJSON(ctx context.Context, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}
