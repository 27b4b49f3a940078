package core

// error_messages.go maps boundary errors to user-facing messages.
//
// Codes by category:
//
//	TBL001  - Table not found: the requested dataset does not exist
//	REQ001  - Missing field: the grouping field parameter is absent or blank
//	RATE001 - Rate limited: too many requests from one client
//	SRV001  - Timeout: the request took too long
//	ERR000  - Fallback for anything else; check the server logs
//
// Sentinel errors are matched with errors.Is first. Anything else falls back
// to case-insensitive substring patterns, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTableNotFound is returned when a table name is not in the Store.
	ErrTableNotFound = errors.New("table not found")

	// ErrMissingField is returned when a grouping request lacks a field.
	ErrMissingField = errors.New("missing required field parameter")

	// ErrRateLimited is returned when a client exceeds its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// TableNotFoundError names the table that was requested.
type TableNotFoundError struct {
	Name string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table not found: %q", e.Name)
}

// Is makes errors.Is(err, ErrTableNotFound) match.
func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgTableNotFound = UserMessage{
		Message: "The requested dataset does not exist",
		Action:  "Use one of the names listed by /api/tables",
		Code:    "TBL001",
	}
	msgMissingField = UserMessage{
		Message: "A field to group by is required",
		Action:  "Add a field query parameter, e.g. ?field=State",
		Code:    "REQ001",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgTimeout = UserMessage{
		Message: "The request timed out",
		Action:  "Please try again",
		Code:    "SRV001",
	}
	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrTableNotFound, msgTableNotFound},
	{ErrMissingField, msgMissingField},
	{ErrRateLimited, msgRateLimited},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{pattern: "table not found", msg: msgTableNotFound},
	{pattern: "unknown table", msg: msgTableNotFound},
	{pattern: "missing required field", msg: msgMissingField},
	{pattern: "rate limit", msg: msgRateLimited},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},
}

// MapError converts an error to a user-friendly message.
// Returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
