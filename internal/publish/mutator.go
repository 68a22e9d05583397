/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"context"
	"fmt"

	"pubctl/internal/api"
)

// Mutator issues the two write calls. They are independent remote calls and
// are not transactional with each other.
type Mutator interface {
	SetChannelToPublication(ctx context.Context, channel, publicationID string) (Ack, error)
	RollbackChannel(ctx context.Context, channelID string) (Ack, error)
}

// Reporter receives progress feedback while writes are in flight
type Reporter interface {
	Progress(msg string)
	Success(msg string)
}

// NopReporter drops all feedback
type NopReporter struct{}

func (NopReporter) Progress(string) {}
func (NopReporter) Success(string) {}

// RemoteMutator implements Mutator over the publish API
type RemoteMutator struct {
	project Project
	poster  api.Poster
}

var _ Mutator = (*RemoteMutator)(nil)

// NewMutator creates a Mutator for project
func NewMutator(project Project, poster api.Poster) *RemoteMutator {
	return &RemoteMutator{project: project, poster: poster}
}

// SetChannelToPublication makes channel serve publicationID
func (m *RemoteMutator) SetChannelToPublication(ctx context.Context, channel, publicationID string) (Ack, error) {
	if err := (SetRequest{ReleaseChannel: channel, PublishID: publicationID}).Validate(); err != nil {
		return nil, err
	}
	return m.write(ctx, "publish/set", map[string]interface{}{
		"releaseChannel": channel,
		"publishId":      publicationID,
		"slug":           m.project.Slug(),
	})
}

// RollbackChannel removes the channel entry channelID
func (m *RemoteMutator) RollbackChannel(ctx context.Context, channelID string) (Ack, error) {
	if channelID == "" {
		return nil, invalidArgument("you must specify a channel id")
	}
	return m.write(ctx, "publish/rollback", map[string]interface{}{
		"channelId": channelID,
		"slug":      m.project.Slug(),
	})
}

func (m *RemoteMutator) write(ctx context.Context, operation string, payload map[string]interface{}) (Ack, error) {
	resp, err := m.poster.Post(ctx, operation, payload)
	if err != nil {
		return nil, err
	}
	ack := Ack{}
	if err := resp.Decode(&ack); err != nil {
		return nil, decodeError(operation, err)
	}
	return ack, nil
}

// Apply executes an approved candidate: a set call when a revert is needed,
// then the rollback call. The returned Result is non-nil whenever a write
// succeeded, including when the rollback call fails after a successful set.
func Apply(ctx context.Context, m Mutator, a Approval, r Reporter) (*Result, error) {
	if !a.Approved {
		return nil, aborted(a.Candidate)
	}
	if r == nil {
		r = NopReporter{}
	}

	result := &Result{
		Channel:   a.Channel,
		ChannelID: a.ChannelID,
		Target:    a.Target,
	}

	if a.Revert {
		r.Progress(fmt.Sprintf("Applying a revert publication to channel %s", a.Channel))
		ack, err := m.SetChannelToPublication(ctx, a.Channel, a.Target.PublicationID)
		if err != nil {
			return nil, err
		}
		result.Reverted = true
		result.SetAck = ack
		r.Success("Successfully applied revert publication. You can view it with `publish:history`")
	}

	r.Progress(fmt.Sprintf("Rolling back entry (channel id %s)", a.ChannelID))
	ack, err := m.RollbackChannel(ctx, a.ChannelID)
	if err != nil {
		if result.Reverted {
			return result, err
		}
		return nil, err
	}
	result.RollbackAck = ack
	r.Success(fmt.Sprintf("Rolled back entry (channel id %s)", a.ChannelID))
	return result, nil
}
