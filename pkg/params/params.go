// Package params extracts and validates the query parameters of the moves
// and solution endpoints.
package params

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Query parameter names.
const (
	FieldPosition = "position"
	FieldXML      = "xml"
	FieldPretty   = "pretty"
)

// MessagePositionInvalid is the response body for a missing or malformed
// position.
const MessagePositionInvalid = "'position' parameter invalid"

// Common errors for parameter extraction.
var (
	ErrMissing         = errors.New("parameter missing")
	ErrInvalidPosition = errors.New("position may only contain digits and spaces")
	ErrInvalidBool     = errors.New("invalid boolean value")
)

// Request holds the typed parameters of one request.
type Request struct {
	// Position is the raw position text as sent by the client.
	Position string

	// XML selects XML rendering instead of HTML.
	XML bool

	// Pretty selects indented XML. It has no effect on HTML.
	Pretty bool

	// FlagErrors lists optional flags that failed to parse and fell back to
	// their default.
	FlagErrors []error
}

// Extract reads position, xml and pretty from values. Only a missing or
// malformed position is an error; unparseable optional flags fall back to
// false and are reported in Request.FlagErrors.
func Extract(values url.Values) (Request, error) {
	var req Request

	position, err := Position(values)
	if err != nil {
		return req, err
	}
	req.Position = position

	var flagErr error
	if req.XML, flagErr = Bool(values, FieldXML, false); flagErr != nil {
		req.FlagErrors = append(req.FlagErrors, flagErr)
	}
	if req.Pretty, flagErr = Bool(values, FieldPretty, false); flagErr != nil {
		req.FlagErrors = append(req.FlagErrors, flagErr)
	}
	return req, nil
}

// Position returns the mandatory position parameter after validation.
func Position(values url.Values) (string, error) {
	position := values.Get(FieldPosition)
	if position == "" {
		return "", fmt.Errorf("%w: %s", ErrMissing, FieldPosition)
	}
	if err := ValidatePosition(position); err != nil {
		return "", err
	}
	return position, nil
}

// ValidatePosition accepts strings made only of spaces and the digits 0-9.
// Token count and length are the engine's concern.
func ValidatePosition(position string) error {
	for i, c := range position {
		if c != ' ' && (c < '0' || c > '9') {
			return fmt.Errorf("%w: %q at offset %d", ErrInvalidPosition, c, i)
		}
	}
	return nil
}

// Bool returns the optional boolean parameter name. A missing or empty value
// yields fallback with no error; an unrecognised value yields fallback and an
// error wrapping ErrInvalidBool.
func Bool(values url.Values, name string, fallback bool) (bool, error) {
	raw := values.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// ParseBool parses the boolean synonyms yes/y/true/t and no/n/false/f,
// case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "t":
		return true, nil
	case "no", "n", "false", "f":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBool, s)
	}
}
