// Package eventdetails loads the wedding description shown on every
// invitation page.
package eventdetails

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"wedding-invitation/internal/models"
)

// Document is the on-disk file: the wedding itself plus the RSVP settings
type Document struct {
	Details models.EventDetails `json:"event_details"`
	RSVP    *models.RSVPConfig  `json:"rsvp_config,omitempty"`
}

var validate = validator.New()

// Load reads and validates a document from path
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event details: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a document
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode event details: %w", err)
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document's struct constraints
func Validate(doc *Document) error {
	if err := validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid event details: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid event details: %w", err)
	}
	return nil
}
