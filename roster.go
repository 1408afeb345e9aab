/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RosterEntry is one known player on the durable roster. Signing up copies
// the name and position into the session; deleting the entry afterwards
// changes nothing for anyone already signed up.
type RosterEntry struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

const (
	rosterEntryKeyPrefix = "roster:entry:"
	rosterIndexKey       = "roster:index"
	rosterNextIDKey      = "roster:next_id"
)

func rosterEntryKey(id int64) string {
	return fmt.Sprintf("%s%d", rosterEntryKeyPrefix, id)
}

// RosterStore keeps the roster in Redis: one JSON value per entry, a list of
// ids preserving insertion order, and a counter for id allocation. The
// roster outlives sessions and server restarts.
type RosterStore struct {
	client *redis.Client
}

func newRosterStore(client *redis.Client) *RosterStore {
	return &RosterStore{
		client: client,
	}
}

func (s *RosterStore) add(ctx context.Context, name string, position Position) (RosterEntry, error) {
	id, err := s.client.Incr(ctx, rosterNextIDKey).Result()
	if err != nil {
		return RosterEntry{}, fmt.Errorf("failed to allocate roster id: %w", err)
	}

	entry := RosterEntry{
		ID:       id,
		Name:     name,
		Position: position,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return RosterEntry{}, fmt.Errorf("failed to marshal roster entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, rosterEntryKey(id), data, 0)
	pipe.RPush(ctx, rosterIndexKey, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return RosterEntry{}, fmt.Errorf("failed to save roster entry: %w", err)
	}

	return entry, nil
}

// list returns every roster entry in the order they were added.
func (s *RosterStore) list(ctx context.Context) ([]RosterEntry, error) {
	ids, err := s.client.LRange(ctx, rosterIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster index: %w", err)
	}

	if len(ids) == 0 {
		return []RosterEntry{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, rosterEntryKeyPrefix+id)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read roster entries: %w", err)
	}

	entries := make([]RosterEntry, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err == redis.Nil {
			// Deleted between the index read and the fetch.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster entry: %w", err)
		}

		var entry RosterEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roster entry: %w", err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// remove deletes a roster entry, reporting whether it existed.
func (s *RosterStore) remove(ctx context.Context, id int64) (bool, error) {
	removed, err := s.client.Del(ctx, rosterEntryKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete roster entry: %w", err)
	}

	if err := s.client.LRem(ctx, rosterIndexKey, 0, id).Err(); err != nil {
		return false, fmt.Errorf("failed to prune roster index: %w", err)
	}

	return removed > 0, nil
}
