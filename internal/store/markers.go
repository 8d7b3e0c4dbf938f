package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetMarker returns the stored value for a key, or "" when absent.
func (s *Store) GetMarker(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM markers WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading marker %s: %w", key, err)
	}
	return value, nil
}

// SetMarker stores a key/value marker, replacing any previous value.
func (s *Store) SetMarker(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO markers (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("writing marker %s: %w", key, err)
	}
	return nil
}

// DismissRecommendation records a recommendation id as dismissed for its
// month; the id already encodes the month.
func (s *Store) DismissRecommendation(id string) error {
	return s.SetMarker("dismissed:"+id, time.Now().Format(time.RFC3339))
}

// IsRecommendationDismissed reports whether the id was dismissed.
func (s *Store) IsRecommendationDismissed(id string) (bool, error) {
	v, err := s.GetMarker("dismissed:" + id)
	if err != nil {
		return false, err
	}
	return v != "", nil
}
