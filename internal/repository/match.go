package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
)

// MatchRepository stores match headers and the ordered journal of updates
// the relay forwarded during each match.
type MatchRepository interface {
	Create(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	AppendUpdate(ctx context.Context, id string, entry entity.JournalEntry) error
	Journal(ctx context.Context, id string) ([]entity.JournalEntry, error)
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchRepository(client *redis.Client) MatchRepository {
	return &dbMatch{
		client: client,
	}
}

func matchKey(id string) string {
	return "match:" + id
}

func journalKey(id string) string {
	return "match:" + id + ":journal"
}

func (that *dbMatch) Create(ctx context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	ok, err := that.client.SetNX(ctx, matchKey(match.ID), matchJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	if !ok {
		return fmt.Errorf("match %s already exists", match.ID)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	response, err := that.client.Get(ctx, matchKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	var match entity.Match
	if err = json.Unmarshal([]byte(response), &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

func (that *dbMatch) AppendUpdate(ctx context.Context, id string, entry entity.JournalEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	if err = that.client.RPush(ctx, journalKey(id), entryJSON).Err(); err != nil {
		return fmt.Errorf("failed to append to journal: %w", err)
	}

	return nil
}

// Journal returns every recorded update in forwarding order. A match with no
// updates yet has an empty journal; an unknown match is an error.
func (that *dbMatch) Journal(ctx context.Context, id string) ([]entity.JournalEntry, error) {
	exists, err := that.client.Exists(ctx, matchKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check match: %w", err)
	}

	if exists == 0 {
		return nil, apperror.ErrMatchNotFound
	}

	items, err := that.client.LRange(ctx, journalKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := make([]entity.JournalEntry, 0, len(items))
	for _, item := range items {
		var entry entity.JournalEntry
		if err = json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
