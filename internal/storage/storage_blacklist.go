package storage

import (
	"errors"
	"strings"

	"server-warden/internal/moderation"
)

// AddBlacklistedWord stores w for the guild. An entry for the same word,
// compared without case, is replaced so the word keeps a single method.
func (s *Storage) AddBlacklistedWord(guildID string, w moderation.BlacklistedWord) error {
	if strings.TrimSpace(w.Word) == "" {
		return errors.New("blacklisted word must not be empty")
	}
	return s.updateGuildRecord(guildID, func(r *Record) error {
		for i, existing := range r.BlacklistedWords {
			if strings.EqualFold(existing.Word, w.Word) {
				r.BlacklistedWords[i] = w
				return nil
			}
		}
		r.BlacklistedWords = append(r.BlacklistedWords, w)
		return nil
	})
}

// RemoveBlacklistedWord reports whether word was on the guild's blacklist.
func (s *Storage) RemoveBlacklistedWord(guildID, word string) (bool, error) {
	removed := false
	err := s.updateGuildRecord(guildID, func(r *Record) error {
		kept := r.BlacklistedWords[:0]
		for _, existing := range r.BlacklistedWords {
			if strings.EqualFold(existing.Word, word) {
				removed = true
				continue
			}
			kept = append(kept, existing)
		}
		r.BlacklistedWords = kept
		return nil
	})
	return removed, err
}

func (s *Storage) BlacklistedWords(guildID string) ([]moderation.BlacklistedWord, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.BlacklistedWords, nil
}
