package storage

import "time"

// AppendCommandToHistory appends a command history record, keeping the
// most recent commandHistoryLimit entries.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	if command.Datetime.IsZero() {
		command.Datetime = time.Now()
	}
	return s.updateGuildRecord(guildID, func(r *Record) error {
		r.CommandsHistory = append(r.CommandsHistory, command)
		if len(r.CommandsHistory) > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-commandHistoryLimit:]
		}
		return nil
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}
