/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"context"

	"pubctl/internal/logx"
)

// Engine decides which publication a channel must serve after one of its
// entries is rolled back, and drives the confirmation and writes. It keeps
// no state between calls; every rollback starts from fresh reads.
type Engine struct {
	History   HistoryClient
	Confirmer Confirmer
	Mutator   Mutator
	Reporter  Reporter
	Logger    logx.Logger
}

// NewEngine creates a rollback engine. A nil reporter or logger discards output.
func NewEngine(history HistoryClient, confirmer Confirmer, mutator Mutator, reporter Reporter, logger logx.Logger) *Engine {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if logger == nil {
		logger = logx.NopLogger{}
	}
	return &Engine{
		History:   history,
		Confirmer: confirmer,
		Mutator:   mutator,
		Reporter:  reporter,
		Logger:    logger,
	}
}

// Plan resolves the channel entry and returns the candidate publication
// without writing anything.
func (e *Engine) Plan(ctx context.Context, req RollbackRequest) (Candidate, error) {
	if err := req.Validate(); err != nil {
		return Candidate{}, err
	}
	channelID := req.ChannelID

	details, err := e.History.FetchChannelDetails(ctx, channelID)
	if err != nil {
		return Candidate{}, err
	}
	if details.ErrorCode != "" {
		return Candidate{}, newError(ErrChannelNotFound, channelID, details.Channel,
			"The channel id %s could not be found", channelID)
	}
	e.Logger.Debug("channel id %s is on channel %s (%s, sdk %s)", channelID, details.Channel, details.Platform, details.SDKVersion)

	history, err := e.History.FetchHistory(ctx, HistoryQuery{
		ReleaseChannel: details.Channel,
		Count:          rollbackWindow,
		Platform:       details.Platform,
		SDKVersion:     details.SDKVersion,
	})
	if err != nil {
		return Candidate{}, err
	}

	switch len(history) {
	case 0:
		return Candidate{}, newError(ErrChannelNotFound, channelID, details.Channel,
			"The channel id %s could not be found in the publish history of channel: %s", channelID, details.Channel)
	case 1:
		return Candidate{}, newError(ErrNoRollbackTarget, channelID, details.Channel,
			"There is no publication assigned to channel %s with the same sdkVersion (%s) and platform (%s) for users to receive if we rollback",
			details.Channel, details.SDKVersion, details.Platform)
	}

	mostRecent := history[0]
	secondMostRecent := history[len(history)-1]

	c := Candidate{
		Channel:     details.Channel,
		ChannelID:   channelID,
		Interactive: !req.NonInteractive,
	}
	switch channelID {
	case mostRecent.ChannelID:
		// the live entry is being removed; users fall back to the previous one
		c.Target = secondMostRecent
		c.Revert = true
	case secondMostRecent.ChannelID:
		c.Target = mostRecent
	default:
		return Candidate{}, newError(ErrChannelHistoryMismatch, channelID, details.Channel,
			"The channel id %s is neither the most recent nor the previous entry of channel %s; re-run publish:history and retry with a current id",
			channelID, details.Channel)
	}
	e.Logger.Debug("rollback of %s targets publication %s (revert=%t)", channelID, c.Target.PublicationID, c.Revert)
	return c, nil
}

// Rollback plans the rollback, asks for confirmation and issues the writes.
// See Apply for the partial-failure contract of the returned Result.
func (e *Engine) Rollback(ctx context.Context, req RollbackRequest) (*Result, error) {
	c, err := e.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	approval, err := e.Confirmer.Confirm(ctx, c)
	if err != nil {
		return nil, err
	}
	if !approval.Approved {
		e.Logger.Info("rollback of channel id %s declined", c.ChannelID)
		return nil, aborted(c)
	}

	return Apply(ctx, e.Mutator, approval, e.Reporter)
}
