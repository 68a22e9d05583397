// Package output renders publish results on the console: key/value tables,
// history tables, raw JSON and progress lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"pubctl/internal/audit"
	"pubctl/internal/publish"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	progressMark = "-"
	successMark  = "✔"
)

// Printer writes tables and JSON to Out, progress lines to Err
type Printer struct {
	Out io.Writer
	Err io.Writer

	// now is the reference time for relative timestamps
	now func() time.Time
}

var _ publish.Reporter = (*Printer)(nil)

// New creates a Printer. Nil writers default to stdout and stderr.
func New(out, err io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Printer{Out: out, Err: err, now: time.Now}
}

// Progress reports a step that is starting
func (p *Printer) Progress(msg string) {
	fmt.Fprintf(p.Err, "%s %s\n", progressMark, msg)
}

// Success reports a step that completed
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.Err, "%s %s\n", successStyle.Render(successMark), msg)
}

// JSON writes v as a single line of JSON
func (p *Printer) JSON(v interface{}) error {
	return json.NewEncoder(p.Out).Encode(v)
}

// StatusTable renders data under a two-column header of title and status,
// e.g. "Channel Rollback Status" / "SUCCESS".
func (p *Printer) StatusTable(title, status string, data map[string]interface{}) error {
	_, err := fmt.Fprintln(p.Out, keyValueTable(title, status, data))
	return err
}

// PublicationDetail renders the general fields and the manifest as two
// tables, or the whole record as JSON when raw is set.
func (p *Printer) PublicationDetail(detail publish.PublicationDetail, raw bool) error {
	if raw {
		return p.JSON(detail)
	}
	general, err := toMap(detail)
	if err != nil {
		return err
	}
	delete(general, "manifest")

	if _, err := fmt.Fprintln(p.Out, keyValueTable("Release Description", "", general)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, keyValueTable("Manifest Details", "", detail.Manifest))
	return err
}

// History renders publications one per row, or as JSON when raw is set.
func (p *Printer) History(history []publish.Publication, raw bool) error {
	if raw {
		return p.JSON(history)
	}
	if len(history) == 0 {
		_, err := fmt.Fprintln(p.Out, "No records found matching your query.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("publishedTime", "appVersion", "sdkVersion", "platform", "channel", "channelId", "publicationId").
		StyleFunc(styleFor)
	for _, pub := range history {
		t.Row(
			p.relativeTime(pub.PublishedTime),
			pub.AppVersion,
			pub.SDKVersion,
			string(pub.Platform),
			pub.Channel,
			pub.ChannelID,
			pub.PublicationID,
		)
	}
	_, err := fmt.Fprintln(p.Out, t.Render())
	return err
}

// Actions renders the local audit log, newest first.
func (p *Printer) Actions(actions []audit.Action, raw bool) error {
	if raw {
		return p.JSON(actions)
	}
	if len(actions) == 0 {
		_, err := fmt.Fprintln(p.Out, "No channel changes recorded.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("time", "operation", "channel", "channelId", "publicationId", "result").
		StyleFunc(styleFor)
	for _, a := range actions {
		result := "ok"
		if !a.Success {
			result = "failed: " + a.FailureReason
		}
		t.Row(p.since(a.CreatedAt), a.Operation, a.Channel, a.ChannelID, a.PublicationID, result)
	}
	_, err := fmt.Fprintln(p.Out, t.Render())
	return err
}

func (p *Printer) relativeTime(published string) string {
	ts, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return published
	}
	return p.since(ts)
}

func (p *Printer) since(ts time.Time) string {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	return humanize.RelTime(ts, now(), "ago", "from now")
}

func keyValueTable(title, status string, data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(title, status).
		StyleFunc(styleFor)
	for _, k := range keys {
		t.Row(k, formatValue(data[k]))
	}
	return t.Render()
}

func styleFor(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
