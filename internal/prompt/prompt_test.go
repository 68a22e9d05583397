package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubctl/internal/publish"
)

type scriptedAsker struct {
	answer   bool
	err      error
	messages []string
}

func (s *scriptedAsker) Confirm(message string) (bool, error) {
	s.messages = append(s.messages, message)
	return s.answer, s.err
}

type recordingRenderer struct {
	rendered []publish.PublicationDetail
	raw      []bool
}

func (r *recordingRenderer) PublicationDetail(d publish.PublicationDetail, raw bool) error {
	r.rendered = append(r.rendered, d)
	r.raw = append(r.raw, raw)
	return nil
}

func newConfirmer(answer bool) (*RollbackConfirmer, *publish.StubHistoryClient, *recordingRenderer, *scriptedAsker) {
	details := &publish.StubHistoryClient{
		Publications: map[string]publish.PublicationDetail{"p1": {PublicationID: "p1"}},
	}
	renderer := &recordingRenderer{}
	asker := &scriptedAsker{answer: answer}
	return &RollbackConfirmer{Details: details, Renderer: renderer, Asker: asker}, details, renderer, asker
}

func candidate(interactive bool) publish.Candidate {
	return publish.Candidate{
		Channel:     "production",
		ChannelID:   "c2",
		Target:      publish.Publication{PublicationID: "p1"},
		Interactive: interactive,
	}
}

func TestRollbackConfirmer_Interactive(t *testing.T) {
	c, details, renderer, asker := newConfirmer(true)

	approval, err := c.Confirm(context.Background(), candidate(true))
	require.NoError(t, err)
	assert.True(t, approval.Approved)
	assert.Equal(t, "c2", approval.ChannelID)

	assert.Equal(t, []string{"details"}, details.Calls)
	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "p1", renderer.rendered[0].PublicationID)
	require.Len(t, asker.messages, 1)
	assert.Equal(t, "Users on the 'production' channel will receive the above publication as a result of the rollback.", asker.messages[0])
}

func TestRollbackConfirmer_Declined(t *testing.T) {
	c, _, _, _ := newConfirmer(false)

	approval, err := c.Confirm(context.Background(), candidate(true))
	require.NoError(t, err)
	assert.False(t, approval.Approved)
}

func TestRollbackConfirmer_NonInteractiveShowsDetailWithoutPrompt(t *testing.T) {
	c, _, renderer, asker := newConfirmer(false)
	c.Raw = true

	approval, err := c.Confirm(context.Background(), candidate(false))
	require.NoError(t, err)
	assert.True(t, approval.Approved)
	assert.Len(t, renderer.rendered, 1)
	assert.Equal(t, []bool{true}, renderer.raw)
	assert.Empty(t, asker.messages)
}

func TestRollbackConfirmer_DetailErrorStops(t *testing.T) {
	c, details, renderer, asker := newConfirmer(true)
	boom := errors.New("boom")
	details.DetailError = boom

	_, err := c.Confirm(context.Background(), candidate(true))
	assert.Equal(t, boom, err)
	assert.Empty(t, renderer.rendered)
	assert.Empty(t, asker.messages)
}

func TestTerminalAsker(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		a := &TerminalAsker{In: strings.NewReader(tt.input), Out: &out, IsTerminal: func() bool { return true }}
		got, err := a.Confirm("Proceed?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "? Proceed? (y/N) ", out.String())
	}
}

func TestTerminalAsker_RequiresTerminal(t *testing.T) {
	a := &TerminalAsker{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}, IsTerminal: func() bool { return false }}
	_, err := a.Confirm("Proceed?")
	assert.ErrorIs(t, err, publish.ErrInvalidArgument)
}

func TestRollbackConfirmer_WithEngine(t *testing.T) {
	history := &publish.StubHistoryClient{
		Details: publish.ChannelDetails{Channel: "production", Platform: publish.PlatformIOS, SDKVersion: "37.0.0"},
		History: []publish.Publication{
			{ChannelID: "c2", PublicationID: "p2"},
			{ChannelID: "c1", PublicationID: "p1"},
		},
		Publications: map[string]publish.PublicationDetail{"p1": {PublicationID: "p1"}},
	}
	asker := &scriptedAsker{answer: false}
	confirmer := &RollbackConfirmer{Details: history, Renderer: &recordingRenderer{}, Asker: asker}
	mutator := &publish.StubMutator{}

	engine := publish.NewEngine(history, confirmer, mutator, nil, nil)
	_, err := engine.Rollback(context.Background(), publish.RollbackRequest{ChannelID: "c2"})
	assert.ErrorIs(t, err, publish.ErrUserAborted)
	assert.Empty(t, mutator.Calls)
	assert.Len(t, asker.messages, 1)
}
