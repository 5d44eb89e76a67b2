package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"wedding-invitation/internal/models"
)

// FileStorage keeps the guest list in a JSON file
type FileStorage struct {
	mu     sync.RWMutex
	guests []models.Guest
	file   string
	now    func() time.Time
}

// NewFileStorage creates a file-backed storage, loading the file if it exists
func NewFileStorage(filePath string) (*FileStorage, error) {
	s := &FileStorage{
		guests: make([]models.Guest, 0),
		file:   filePath,
		now:    time.Now,
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}

	return s, nil
}

// AddGuest adds a new guest or updates the one with the same phone number
func (s *FileStorage) AddGuest(_ context.Context, guest models.Guest) (models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guest.PhoneNumber != "" {
		for i, g := range s.guests {
			if g.PhoneNumber == guest.PhoneNumber {
				s.guests[i].Name = guest.Name
				if guest.Notes != "" {
					s.guests[i].Notes = guest.Notes
				}
				return s.guests[i], s.Save()
			}
		}
	}

	if guest.Token == "" {
		guest.Token = uuid.NewString()
	}
	if guest.InvitedDate.IsZero() {
		guest.InvitedDate = s.now()
	}
	guest.CustomFields = maps.Clone(guest.CustomFields)
	s.guests = append(s.guests, guest)
	return guest.Clone(), s.Save()
}

// GetGuest retrieves a guest by invitation token
func (s *FileStorage) GetGuest(_ context.Context, token string) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.guests {
		if g.Token == token {
			g = g.Clone()
			return &g, nil
		}
	}
	return nil, ErrGuestNotFound
}

// GetGuestByPhone retrieves a guest by phone number
func (s *FileStorage) GetGuestByPhone(_ context.Context, phoneNumber string) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.guests {
		if g.PhoneNumber == phoneNumber {
			g = g.Clone()
			return &g, nil
		}
	}
	return nil, ErrGuestNotFound
}

// MarkViewed sets the viewed date unless it is already set
func (s *FileStorage) MarkViewed(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(token)
	if i < 0 {
		return ErrGuestNotFound
	}
	if !s.guests[i].ViewedDate.IsZero() {
		return nil
	}
	s.guests[i].ViewedDate = s.now()
	return s.Save()
}

// RecordResponse updates the RSVP answer for a guest
func (s *FileStorage) RecordResponse(_ context.Context, token string, accepted bool, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(token)
	if i < 0 {
		return ErrGuestNotFound
	}
	s.guests[i].HasResponded = true
	s.guests[i].Accepted = accepted
	s.guests[i].RSVPDate = s.now()
	s.guests[i].CustomFields = MergeFields(s.guests[i].CustomFields, fields)
	return s.Save()
}

// GetAllGuests returns all guests
func (s *FileStorage) GetAllGuests(_ context.Context) ([]models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guests := make([]models.Guest, len(s.guests))
	for i, g := range s.guests {
		guests[i] = g.Clone()
	}
	return guests, nil
}

// GetGuestsByStatus returns guests filtered by RSVP display state
func (s *FileStorage) GetGuestsByStatus(_ context.Context, status models.RSVPStatus) ([]models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return FilterByStatus(s.guests, status), nil
}

// Close is a no-op; every change is already on disk
func (s *FileStorage) Close() error {
	return nil
}

func (s *FileStorage) indexOf(token string) int {
	for i, g := range s.guests {
		if g.Token == token {
			return i
		}
	}
	return -1
}

// Save saves the guests to file
func (s *FileStorage) Save() error {
	data, err := json.MarshalIndent(s.guests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(s.file, data, 0644)
}

// Load loads guests from file
func (s *FileStorage) Load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		s.guests = make([]models.Guest, 0)
		return nil
	}

	if err := json.Unmarshal(data, &s.guests); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}
