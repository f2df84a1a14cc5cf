// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"server-warden/datastore"
	"server-warden/internal/moderation"

	"github.com/rs/zerolog"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// Record is everything stored for one guild.
type Record struct {
	CaseCounter      int64                        `json:"case_counter"`
	AuditLog         []moderation.AuditEntry      `json:"audit_log"`
	Notes            []moderation.Note            `json:"notes"`
	LogChannelID     string                       `json:"log_channel_id"`
	BlacklistedWords []moderation.BlacklistedWord `json:"blacklisted_words"`
	CommandsHistory  []CommandHistoryRecord       `json:"commands_history"`
}

func New(filePath string, log zerolog.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// decodeRecord turns whatever the datastore holds for a guild into a fresh
// *Record. Values loaded from disk are generic JSON, so both shapes go
// through a marshal round trip; this also means callers never alias stored data.
func decodeRecord(data any, exists bool) (*Record, error) {
	record := &Record{}
	if exists {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("error marshalling data: %w", err)
		}
		if err := json.Unmarshal(raw, record); err != nil {
			return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
		}
	}
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	return record, nil
}

// guildRecord returns a copy of the guild's record, empty if none is stored.
func (s *Storage) guildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	return decodeRecord(data, exists)
}

// updateGuildRecord applies fn to the guild's record atomically.
func (s *Storage) updateGuildRecord(guildID string, fn func(*Record) error) error {
	return s.ds.Update(guildID, func(current any, exists bool) (any, error) {
		record, err := decodeRecord(current, exists)
		if err != nil {
			return nil, err
		}
		if err := fn(record); err != nil {
			return nil, err
		}
		return record, nil
	})
}
