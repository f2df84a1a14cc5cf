package storage

import (
	"context"

	"server-warden/internal/moderation"
)

// AppendAudit stores entry under the guild's next case number.
func (s *Storage) AppendAudit(_ context.Context, entry moderation.AuditEntry) (int64, error) {
	var caseNumber int64
	err := s.updateGuildRecord(entry.GuildID, func(r *Record) error {
		r.CaseCounter++
		caseNumber = r.CaseCounter
		entry.CaseNumber = caseNumber
		r.AuditLog = append(r.AuditLog, entry)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return caseNumber, nil
}

func (s *Storage) AuditEntries(guildID string) ([]moderation.AuditEntry, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.AuditLog, nil
}

// CaseCounter returns the last case number allocated in the guild.
func (s *Storage) CaseCounter(guildID string) (int64, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return 0, err
	}
	return record.CaseCounter, nil
}

func (s *Storage) SetLogChannel(guildID, channelID string) error {
	return s.updateGuildRecord(guildID, func(r *Record) error {
		r.LogChannelID = channelID
		return nil
	})
}

// LogChannel returns the guild's audit channel, empty when unset.
func (s *Storage) LogChannel(guildID string) (string, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.LogChannelID, nil
}
