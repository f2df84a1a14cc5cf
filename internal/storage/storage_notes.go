package storage

import (
	"context"
	"errors"

	"server-warden/internal/moderation"
)

func (s *Storage) AddNote(_ context.Context, note moderation.Note) error {
	if note.GuildID == "" || note.TargetID == "" {
		return errors.New("note needs a guild and a target")
	}
	return s.updateGuildRecord(note.GuildID, func(r *Record) error {
		r.Notes = append(r.Notes, note)
		return nil
	})
}

// Notes returns the notes about userID in the guild, oldest first.
func (s *Storage) Notes(guildID, userID string) ([]moderation.Note, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	var notes []moderation.Note
	for _, n := range record.Notes {
		if n.TargetID == userID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}
