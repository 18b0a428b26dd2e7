package store

import "touristid/internal/sentinel"

// SetStatus overwrites a stored record's status so tests can exercise
// non-active records.
func (s *InMemoryStore) SetStatus(userID, recordID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID][recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	record.Metadata.Status = status
	s.records[userID][recordID] = record
	return nil
}
