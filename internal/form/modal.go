package form

import (
	"context"

	"villagemart-admin/internal/apiclient"
)

// Modal is a create/edit dialog: it validates its draft, hands it to a save
// callback and stays open with an inline message when the save fails.
type Modal[T any] struct {
	Name   string      `json:"name"`
	Draft  T           `json:"draft"`
	Errors FieldErrors `json:"errors,omitempty"`
	Err    string      `json:"error,omitempty"`
	Open   bool        `json:"open"`
}

// NewModal opens a dialog on draft.
func NewModal[T any](name string, draft T) *Modal[T] {
	return &Modal[T]{Name: name, Draft: draft, Open: true}
}

// Submit validates the draft and, when it passes, calls save. Field errors
// are returned without calling save.
func (m *Modal[T]) Submit(ctx context.Context, save func(context.Context, T) error) error {
	m.Errors = nil
	m.Err = ""

	if err := Validate(m.Name, &m.Draft); err != nil {
		if fe, ok := AsFieldErrors(err); ok {
			m.Errors = fe
		}
		return err
	}

	if err := save(ctx, m.Draft); err != nil {
		m.Err = apiclient.MessageOr(err, "Failed to save "+m.Name)
		return err
	}

	m.Open = false
	return nil
}
