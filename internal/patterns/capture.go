package patterns

import (
	"errors"
	"fmt"

	"github.com/mj1618/skipad/internal/model"
)

var (
	// ErrNoApp is returned when a pattern or snapshot has no application id.
	ErrNoApp = errors.New("pattern has no app id")
	// ErrNoSuchElement is returned when a snapshot has no row with the requested id.
	ErrNoSuchElement = errors.New("no element with that id in snapshot")
)

// Capture saves the snapshot row with the given id as a pattern for the
// snapshot's application. Without keepText the pattern matches any text.
func (s *Store) Capture(snap model.Snapshot, id int, keepText bool) (model.Pattern, error) {
	el, ok := snap.Find(id)
	if !ok {
		return model.Pattern{}, fmt.Errorf("%w: %d", ErrNoSuchElement, id)
	}
	if el.App == "" {
		el.App = snap.App
	}
	if el.App == "" {
		return model.Pattern{}, ErrNoApp
	}
	p := model.PatternFromElement(el, keepText)
	if err := s.Save(p); err != nil {
		return model.Pattern{}, err
	}
	return p, nil
}
