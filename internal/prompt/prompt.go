// Package prompt implements the interactive confirmation shown before a
// rollback writes anything.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"pubctl/internal/publish"
)

// Asker poses a yes/no question
type Asker interface {
	Confirm(message string) (bool, error)
}

// TerminalAsker reads the answer from In. It refuses to ask when In is not
// an interactive terminal.
type TerminalAsker struct {
	In  io.Reader
	Out io.Writer

	// IsTerminal reports whether In is interactive; defaults to an isatty check on stdin
	IsTerminal func() bool
}

// NewTerminalAsker creates an Asker on stdin/stderr
func NewTerminalAsker() *TerminalAsker {
	return &TerminalAsker{In: os.Stdin, Out: os.Stderr}
}

func (a *TerminalAsker) Confirm(message string) (bool, error) {
	isTerminal := a.IsTerminal
	if isTerminal == nil {
		isTerminal = stdinIsTerminal
	}
	if !isTerminal() {
		return false, publish.InvalidArgument("cannot prompt for confirmation without a terminal; re-run with --non-interactive")
	}

	fmt.Fprintf(a.Out, "? %s (y/N) ", message)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetailFetcher loads the publication shown in the confirmation
type DetailFetcher interface {
	FetchPublicationDetail(ctx context.Context, publicationID string) (publish.PublicationDetail, error)
}

// DetailRenderer prints a publication detail
type DetailRenderer interface {
	PublicationDetail(detail publish.PublicationDetail, raw bool) error
}

// RollbackConfirmer shows the candidate publication and, for interactive
// candidates, asks the operator to accept it.
type RollbackConfirmer struct {
	Details  DetailFetcher
	Renderer DetailRenderer
	Asker    Asker

	// Raw prints the detail as JSON instead of tables
	Raw bool
}

var _ publish.Confirmer = (*RollbackConfirmer)(nil)

func (r *RollbackConfirmer) Confirm(ctx context.Context, c publish.Candidate) (publish.Approval, error) {
	approval := publish.Approval{Candidate: c}

	detail, err := r.Details.FetchPublicationDetail(ctx, c.Target.PublicationID)
	if err != nil {
		return approval, err
	}
	if err := r.Renderer.PublicationDetail(detail, r.Raw); err != nil {
		return approval, err
	}

	if !c.Interactive {
		approval.Approved = true
		return approval, nil
	}

	ok, err := r.Asker.Confirm(fmt.Sprintf(
		"Users on the '%s' channel will receive the above publication as a result of the rollback.", c.Channel))
	if err != nil {
		return approval, err
	}
	approval.Approved = ok
	return approval, nil
}
