package storage

import (
	"context"
	"errors"
	"maps"

	"wedding-invitation/internal/models"
)

// ErrGuestNotFound is returned when no guest matches the lookup
var ErrGuestNotFound = errors.New("guest not found")

// Storage defines the guest list operations
type Storage interface {
	// AddGuest stores a new guest, or updates the guest with the same phone
	// number. The stored guest, with its token, is returned.
	AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error)
	GetGuest(ctx context.Context, token string) (*models.Guest, error)
	GetGuestByPhone(ctx context.Context, phoneNumber string) (*models.Guest, error)

	// MarkViewed records the first time the guest opened the invitation
	MarkViewed(ctx context.Context, token string) error
	// RecordResponse stores the guest's answer and any custom RSVP fields
	RecordResponse(ctx context.Context, token string, accepted bool, fields map[string]string) error

	GetAllGuests(ctx context.Context) ([]models.Guest, error)
	GetGuestsByStatus(ctx context.Context, status models.RSVPStatus) ([]models.Guest, error)

	Close() error
}

// FilterByStatus returns the guests whose RSVP display state is status
func FilterByStatus(guests []models.Guest, status models.RSVPStatus) []models.Guest {
	var result []models.Guest
	for _, g := range guests {
		if g.Status() == status {
			result = append(result, g.Clone())
		}
	}
	return result
}

// MergeFields returns a new map holding dst overlaid with src. Neither
// argument is modified.
func MergeFields(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return maps.Clone(dst)
	}
	merged := make(map[string]string, len(dst)+len(src))
	maps.Copy(merged, dst)
	maps.Copy(merged, src)
	return merged
}
