package audit

import (
	"context"
	"errors"

	"pubctl/internal/logx"
	"pubctl/internal/publish"
)

// Mutator records every channel write issued through Next. Recording
// failures are logged and never fail the write itself.
type Mutator struct {
	Next    publish.Mutator
	DAO     *DAO
	Project string
	Logger  logx.Logger
}

var _ publish.Mutator = (*Mutator)(nil)

// NewMutator wraps next so its writes for project are logged to dao
func NewMutator(next publish.Mutator, dao *DAO, project string, logger logx.Logger) *Mutator {
	if logger == nil {
		logger = logx.NopLogger{}
	}
	return &Mutator{Next: next, DAO: dao, Project: project, Logger: logger}
}

func (m *Mutator) SetChannelToPublication(ctx context.Context, channel, publicationID string) (publish.Ack, error) {
	ack, err := m.Next.SetChannelToPublication(ctx, channel, publicationID)
	m.record(ctx, Action{
		Operation:     OperationSet,
		Channel:       channel,
		PublicationID: publicationID,
	}, err)
	return ack, err
}

func (m *Mutator) RollbackChannel(ctx context.Context, channelID string) (publish.Ack, error) {
	ack, err := m.Next.RollbackChannel(ctx, channelID)
	m.record(ctx, Action{
		Operation: OperationRollback,
		ChannelID: channelID,
	}, err)
	return ack, err
}

func (m *Mutator) record(ctx context.Context, a Action, err error) {
	// rejected before anything was sent
	if errors.Is(err, publish.ErrInvalidArgument) {
		return
	}
	a.Project = m.Project
	a.Success = err == nil
	if err != nil {
		a.FailureReason = err.Error()
	}
	if _, rerr := m.DAO.Record(ctx, a); rerr != nil {
		m.Logger.Warn("failed to record %s in audit log: %v", a.Operation, rerr)
	}
}
