/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"context"
	"sync"
)

// StubHistoryClient is a test implementation of HistoryClient that serves
// canned data and records the calls it receives.
type StubHistoryClient struct {
	Details        ChannelDetails
	DetailsError   error
	History        []Publication
	HistoryError   error
	Publications   map[string]PublicationDetail
	DetailError    error
	FetchHistoryFn func(q HistoryQuery) ([]Publication, error)

	mu    sync.Mutex
	Calls []string
	Query []HistoryQuery
}

var _ HistoryClient = (*StubHistoryClient)(nil)

func (s *StubHistoryClient) FetchChannelDetails(_ context.Context, channelID string) (ChannelDetails, error) {
	s.record("channel-details")
	if s.DetailsError != nil {
		return ChannelDetails{}, s.DetailsError
	}
	return s.Details, nil
}

func (s *StubHistoryClient) FetchHistory(_ context.Context, q HistoryQuery) ([]Publication, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.record("history")
	s.mu.Lock()
	s.Query = append(s.Query, q)
	s.mu.Unlock()
	if s.FetchHistoryFn != nil {
		return s.FetchHistoryFn(q)
	}
	if s.HistoryError != nil {
		return nil, s.HistoryError
	}
	return s.History, nil
}

func (s *StubHistoryClient) FetchPublicationDetail(_ context.Context, publicationID string) (PublicationDetail, error) {
	s.record("details")
	if s.DetailError != nil {
		return PublicationDetail{}, s.DetailError
	}
	d, ok := s.Publications[publicationID]
	if !ok {
		return PublicationDetail{}, &Error{Err: ErrPublicationNotFound, Message: "No records found matching your query."}
	}
	return d, nil
}

func (s *StubHistoryClient) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, call)
}

// StubMutator is a test implementation of Mutator
type StubMutator struct {
	SetAck        Ack
	SetError      error
	RollbackAck   Ack
	RollbackError error

	mu    sync.Mutex
	Calls []string

	// SetPublications records the publication id of each set call
	SetPublications []string

	// RolledBack records the channel id of each rollback call
	RolledBack []string
}

var _ Mutator = (*StubMutator)(nil)

func (s *StubMutator) SetChannelToPublication(_ context.Context, channel, publicationID string) (Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "set")
	s.SetPublications = append(s.SetPublications, publicationID)
	if s.SetError != nil {
		return nil, s.SetError
	}
	if s.SetAck == nil {
		return Ack{"releaseChannel": channel, "publishId": publicationID}, nil
	}
	return s.SetAck, nil
}

func (s *StubMutator) RollbackChannel(_ context.Context, channelID string) (Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "rollback")
	s.RolledBack = append(s.RolledBack, channelID)
	if s.RollbackError != nil {
		return nil, s.RollbackError
	}
	if s.RollbackAck == nil {
		return Ack{"channelId": channelID}, nil
	}
	return s.RollbackAck, nil
}

// RecordingReporter keeps every message it receives
type RecordingReporter struct {
	Messages []string
}

func (r *RecordingReporter) Progress(msg string) { r.Messages = append(r.Messages, "progress: "+msg) }
func (r *RecordingReporter) Success(msg string) { r.Messages = append(r.Messages, "success: "+msg) }
