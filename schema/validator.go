package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glimte/hedwig-go/contracts"
)

// MessageValidator validates messages against a loaded schema document
type MessageValidator struct {
	document *Document
	logger   *slog.Logger
}

// NewMessageValidator creates a new message validator for a loaded document
func NewMessageValidator(document *Document, opts ...ValidatorOption) (*MessageValidator, error) {
	if document == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}

	config := newConfig(opts)

	return &MessageValidator{
		document: document,
		logger:   config.Logger,
	}, nil
}

// Document returns the schema document the validator checks against
func (v *MessageValidator) Document() *Document {
	return v.document
}

// Validate validates a message against the schema its reference resolves to
func (v *MessageValidator) Validate(ctx context.Context, msg contracts.Message) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	err := v.ValidateMessage(msg.GetSchema(), msg.GetData())
	if err != nil {
		v.logger.DebugContext(ctx, "message failed validation",
			"messageId", msg.GetID(),
			"schema", msg.GetSchema(),
			"error", err,
		)
	}
	return err
}

// ValidateMessage resolves schemaRef and checks payload against it.
// Every violation is reported in a single *contracts.ValidationError.
func (v *MessageValidator) ValidateMessage(schemaRef string, payload interface{}) error {
	s, err := v.document.Resolve(schemaRef)
	if err != nil {
		return err
	}

	if found := check(s, payload); len(found) > 0 {
		return contracts.NewViolationError(schemaRef, found)
	}
	return nil
}

// Violations returns the violations carried by a validation error, if any
func Violations(err error) []contracts.Violation {
	var ve *contracts.ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	return nil
}
