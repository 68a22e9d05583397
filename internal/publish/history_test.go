/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubctl/internal/api"
	"pubctl/internal/api/apitest"
)

type fakeProject struct {
	owner, slug string
}

func (p fakeProject) Owner() string { return p.owner }
func (p fakeProject) Slug() string { return p.slug }

func newRemote(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	client, err := api.NewClient(api.Options{
		BaseURL:       srv.JSONURL(),
		LegacyBaseURL: srv.LegacyURL(),
		Authenticator: &api.TokenAuthenticator{AccessToken: "tok"},
	})
	require.NoError(t, err)
	return srv, client
}

func TestJSONHistoryClient_FetchChannelDetails(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/channel-details", map[string]interface{}{
		"channel": "staging", "platform": "android", "sdkVersion": "38.0.0",
	})
	h := NewHistoryClient(fakeProject{owner: "acme", slug: "app"}, client, client, false)

	details, err := h.FetchChannelDetails(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, ChannelDetails{Channel: "staging", Platform: PlatformAndroid, SDKVersion: "38.0.0"}, details)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]interface{}{"owner": "acme", "slug": "app", "channelId": "c1"}, calls[0].JSON)
}

func TestJSONHistoryClient_ChannelDetailsErrorCode(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/channel-details", map[string]interface{}{"errorCode": 404})
	h := NewHistoryClient(fakeProject{slug: "app"}, client, client, false)

	_, err := h.FetchChannelDetails(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrChannelNotFound)
	assert.Equal(t, "The channel id c1 could not be found", err.Error())
}

func TestJSONHistoryClient_FetchHistory(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/history", []map[string]interface{}{
		{"channelId": "c2", "publicationId": "p2", "channel": "production", "platform": "ios"},
		{"channelId": "c1", "publicationId": "p1", "channel": "production", "platform": "ios"},
	})
	h := NewHistoryClient(fakeProject{slug: "app"}, client, client, false)

	history, err := h.FetchHistory(context.Background(), HistoryQuery{
		ReleaseChannel: "production", Count: 2, Platform: PlatformIOS, SDKVersion: "37.0.0",
	})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c2", history[0].ChannelID)
	assert.Equal(t, "p1", history[1].PublicationID)

	body := srv.Calls()[0].JSON
	assert.Equal(t, "app", body["slug"])
	assert.Equal(t, float64(2), body["version"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "production", body["releaseChannel"])
	assert.Equal(t, "ios", body["platform"])
	assert.Equal(t, "37.0.0", body["sdkVersion"])
	assert.NotContains(t, body, "owner")
}

func TestJSONHistoryClient_EmptyHistoryIsNotAnError(t *testing.T) {
	for _, result := range []interface{}{[]interface{}{}, nil} {
		srv, client := newRemote(t)
		srv.Respond("publish/history", result)
		h := NewHistoryClient(fakeProject{slug: "app"}, client, client, false)

		history, err := h.FetchHistory(context.Background(), HistoryQuery{Count: 2})
		require.NoError(t, err)
		assert.Empty(t, history)
	}
}

func TestHistoryClient_CountOutOfRangeMakesNoCall(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		srv, client := newRemote(t)
		h := NewHistoryClient(fakeProject{slug: "app"}, client, client, legacy)

		for _, count := range []int{0, 101} {
			_, err := h.FetchHistory(context.Background(), HistoryQuery{Count: count})
			assert.ErrorIs(t, err, ErrInvalidArgument)
		}
		assert.Empty(t, srv.Calls())
	}
}

func TestJSONHistoryClient_FetchPublicationDetail(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/details", map[string]interface{}{
		"publicationId": "p1",
		"fullName":      "@acme/app",
		"abiVersion":    nil,
		"manifest":      map[string]interface{}{"name": "app", "version": "1.0.0"},
	})
	h := NewHistoryClient(fakeProject{owner: "acme", slug: "app"}, client, client, false)

	detail, err := h.FetchPublicationDetail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "@acme/app", detail.FullName)
	assert.Nil(t, detail.ABIVersion)
	assert.Equal(t, "1.0.0", detail.Manifest["version"])
	assert.Equal(t, "p1", srv.Calls()[0].JSON["publishId"])
}

func TestJSONHistoryClient_PublicationDetailNotFound(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/details", nil)
	h := NewHistoryClient(fakeProject{slug: "app"}, client, client, false)

	_, err := h.FetchPublicationDetail(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPublicationNotFound)
}

func TestLegacyHistoryClient(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/channel-details", map[string]interface{}{"channel": "production"})
	srv.Handle("publishInfo", func(call apitest.Call) (int, interface{}) {
		if call.Form["queryType"] == "details" {
			return http.StatusOK, map[string]interface{}{"queryResult": map[string]interface{}{"publicationId": call.Form["publishId"]}}
		}
		return http.StatusOK, map[string]interface{}{"queryResult": []map[string]interface{}{{"channelId": "c1"}}}
	})
	h := NewHistoryClient(fakeProject{owner: "acme", slug: "app"}, client, client, true)

	_, err := h.FetchChannelDetails(context.Background(), "c1")
	require.NoError(t, err)

	history, err := h.FetchHistory(context.Background(), HistoryQuery{ReleaseChannel: "production", Count: 2})
	require.NoError(t, err)
	require.Len(t, history, 1)

	detail, err := h.FetchPublicationDetail(context.Background(), "p7")
	require.NoError(t, err)
	assert.Equal(t, "p7", detail.PublicationID)

	assert.Equal(t, []string{"publish/channel-details", "publishInfo", "publishInfo"}, srv.Operations())

	form := srv.Calls()[1].Form
	assert.Equal(t, map[string]string{
		"queryType":      "history",
		"owner":          "acme",
		"slug":           "app",
		"version":        "2",
		"releaseChannel": "production",
		"count":          "2",
	}, form)
	assert.Equal(t, "details", srv.Calls()[2].Form["queryType"])
}

func TestRemoteMutator(t *testing.T) {
	srv, client := newRemote(t)
	srv.Respond("publish/set", map[string]interface{}{"releaseChannel": "production", "publishId": "p1"})
	srv.Respond("publish/rollback", map[string]interface{}{"status": "ok"})
	m := NewMutator(fakeProject{slug: "app"}, client)

	ack, err := m.SetChannelToPublication(context.Background(), "production", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", ack["publishId"])

	ack, err = m.RollbackChannel(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, "ok", ack["status"])

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]interface{}{"releaseChannel": "production", "publishId": "p1", "slug": "app"}, calls[0].JSON)
	assert.Equal(t, map[string]interface{}{"channelId": "c2", "slug": "app"}, calls[1].JSON)
}

func TestRemoteMutator_ValidatesBeforeCalling(t *testing.T) {
	srv, client := newRemote(t)
	m := NewMutator(fakeProject{slug: "app"}, client)

	_, err := m.SetChannelToPublication(context.Background(), "", "p1")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = m.SetChannelToPublication(context.Background(), "production", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = m.RollbackChannel(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, srv.Calls())
}

func TestErrorCode_UnmarshalJSON(t *testing.T) {
	var d ChannelDetails
	require.NoError(t, json.Unmarshal([]byte(`{"errorCode":"MISSING"}`), &d))
	assert.Equal(t, ErrorCode("MISSING"), d.ErrorCode)

	require.NoError(t, json.Unmarshal([]byte(`{"errorCode":12}`), &d))
	assert.Equal(t, ErrorCode("12"), d.ErrorCode)

	d = ChannelDetails{}
	require.NoError(t, json.Unmarshal([]byte(`{"errorCode":null}`), &d))
	assert.Equal(t, ErrorCode(""), d.ErrorCode)
}
