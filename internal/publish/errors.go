/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"errors"
	"fmt"
)

// Error definitions
var (
	// ErrInvalidArgument indicates a missing option or an out-of-range value
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrChannelNotFound indicates the channel id is unknown or has no matching history
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNoRollbackTarget indicates there is no earlier publication to revert to
	ErrNoRollbackTarget = errors.New("no rollback target")

	// ErrUserAborted indicates the operator declined the confirmation
	ErrUserAborted = errors.New("rollback aborted")

	// ErrChannelHistoryMismatch indicates the channel id is at neither end of the recent history
	ErrChannelHistoryMismatch = errors.New("channel id not found in recent history")

	// ErrPublicationNotFound indicates the details query matched nothing
	ErrPublicationNotFound = errors.New("publication not found")
)

// Error carries the operator-facing message for a failed publish operation
// along with the channel it concerned. It unwraps to one of the sentinels above.
type Error struct {
	// Err is the sentinel describing the failure class
	Err error

	// Message is shown to the operator
	Message string

	// ChannelID is the channel entry under rollback (if applicable)
	ChannelID string

	// Channel is the release channel name (if known)
	Channel string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the sentinel for errors.Is support
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, channelID, channel, format string, args ...interface{}) *Error {
	return &Error{
		Err:       kind,
		Message:   fmt.Sprintf(format, args...),
		ChannelID: channelID,
		Channel:   channel,
	}
}

func invalidArgument(format string, args ...interface{}) *Error {
	return &Error{Err: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument builds an ErrInvalidArgument error for callers outside the package.
func InvalidArgument(format string, args ...interface{}) error {
	return invalidArgument(format, args...)
}
