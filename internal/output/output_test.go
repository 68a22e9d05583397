package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubctl/internal/audit"
	"pubctl/internal/publish"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := New(&out, &errOut)
	p.now = func() time.Time { return time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC) }
	return p, &out, &errOut
}

func TestPrinter_StatusTable(t *testing.T) {
	p, out, _ := newTestPrinter()

	err := p.StatusTable("Channel Rollback Status", "SUCCESS", map[string]interface{}{
		"channelId": "c2",
		"nested":    map[string]interface{}{"a": 1},
	})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Channel Rollback Status")
	assert.Contains(t, s, "SUCCESS")
	assert.Contains(t, s, "channelId")
	assert.Contains(t, s, `{"a":1}`)
	assert.Less(t, strings.Index(s, "channelId"), strings.Index(s, "nested"))
}

func TestPrinter_PublicationDetail(t *testing.T) {
	p, out, _ := newTestPrinter()
	detail := publish.PublicationDetail{
		PublicationID: "p1",
		FullName:      "@acme/app",
		Manifest:      map[string]interface{}{"bundleKey": "abc123"},
	}

	require.NoError(t, p.PublicationDetail(detail, false))
	s := out.String()
	general := strings.Index(s, "Release Description")
	manifest := strings.Index(s, "Manifest Details")
	require.NotEqual(t, -1, general)
	require.NotEqual(t, -1, manifest)
	assert.Less(t, general, manifest)
	assert.Contains(t, s[general:manifest], "@acme/app")
	assert.NotContains(t, s[general:manifest], "bundleKey")
	assert.Contains(t, s[manifest:], "abc123")
}

func TestPrinter_PublicationDetailRaw(t *testing.T) {
	p, out, _ := newTestPrinter()
	detail := publish.PublicationDetail{PublicationID: "p1", Manifest: map[string]interface{}{"k": "v"}}

	require.NoError(t, p.PublicationDetail(detail, true))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "p1", decoded["publicationId"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, decoded["manifest"])
}

func TestPrinter_History(t *testing.T) {
	p, out, _ := newTestPrinter()
	history := []publish.Publication{{
		ChannelID:     "c1",
		PublicationID: "p1",
		Channel:       "production",
		Platform:      publish.PlatformIOS,
		PublishedTime: "2024-05-02T09:00:00.000Z",
	}}

	require.NoError(t, p.History(history, false))
	s := out.String()
	assert.Contains(t, s, "publicationId")
	assert.Contains(t, s, "3 hours ago")
	assert.Contains(t, s, "production")
}

func TestPrinter_HistoryEmpty(t *testing.T) {
	p, out, _ := newTestPrinter()
	require.NoError(t, p.History(nil, false))
	assert.Equal(t, "No records found matching your query.\n", out.String())
}

func TestPrinter_Actions(t *testing.T) {
	p, out, _ := newTestPrinter()
	actions := []audit.Action{
		{Operation: "rollback", ChannelID: "c2", FailureReason: "boom", CreatedAt: time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC)},
		{Operation: "set", Channel: "production", PublicationID: "p1", Success: true, CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, p.Actions(actions, false))

	s := out.String()
	assert.Contains(t, s, "operation")
	assert.Contains(t, s, "failed: boom")
	assert.Contains(t, s, "1 hour ago")
	assert.Contains(t, s, "1 day ago")
	assert.Less(t, strings.Index(s, "rollback"), strings.Index(s, "production"))
}

func TestPrinter_ActionsEmptyAndRaw(t *testing.T) {
	p, out, _ := newTestPrinter()
	require.NoError(t, p.Actions(nil, false))
	assert.Equal(t, "No channel changes recorded.\n", out.String())

	out.Reset()
	require.NoError(t, p.Actions([]audit.Action{{ID: 7, Operation: "set"}}, true))
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, float64(7), decoded[0]["id"])
}

func TestPrinter_Reporter(t *testing.T) {
	p, out, errOut := newTestPrinter()
	p.Progress("Rolling back entry (channel id c1)")
	p.Success("done")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "- Rolling back entry (channel id c1)\n")
	assert.Contains(t, errOut.String(), "done\n")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "x", formatValue("x"))
	assert.Equal(t, "2", formatValue(float64(2)))
	assert.Equal(t, `["a"]`, formatValue([]interface{}{"a"}))
}
