/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"context"
)

// Candidate is the first phase of a rollback: the publication users will
// receive once the channel entry is rolled back.
type Candidate struct {
	Channel   string
	ChannelID string
	Target    Publication

	// Revert is true when the rolled-back entry is the live one, so the
	// channel must first be set to Target
	Revert bool

	// Interactive is false when the operator asked not to be prompted
	Interactive bool
}

// Approval is the second phase: a candidate plus the operator's answer.
type Approval struct {
	Candidate
	Approved bool
}

// Confirmer asks whether a candidate may be applied
type Confirmer interface {
	Confirm(ctx context.Context, c Candidate) (Approval, error)
}

// ScriptedConfirmer answers every interactive candidate with Answer. Non-interactive
// candidates are approved without consulting it.
type ScriptedConfirmer struct {
	Answer bool
	Err    error

	// Prompted records candidates that would have shown a prompt
	Prompted []Candidate
}

var _ Confirmer = (*ScriptedConfirmer)(nil)

func (s *ScriptedConfirmer) Confirm(_ context.Context, c Candidate) (Approval, error) {
	if !c.Interactive {
		return Approval{Candidate: c, Approved: true}, nil
	}
	s.Prompted = append(s.Prompted, c)
	if s.Err != nil {
		return Approval{Candidate: c}, s.Err
	}
	return Approval{Candidate: c, Approved: s.Answer}, nil
}

func aborted(c Candidate) *Error {
	return newError(ErrUserAborted, c.ChannelID, c.Channel,
		"Please run 'publish:set' to send the desired publication to users")
}
