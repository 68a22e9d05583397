/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"context"
	"strconv"

	"pubctl/internal/api"
)

const legacyMethod = "publishInfo"

// Project identifies the project whose channels are queried
type Project interface {
	// Owner returns the owning account, or "" for the authenticated user
	Owner() string

	// Slug returns the project slug
	Slug() string
}

// HistoryClient runs the read-only publish queries
type HistoryClient interface {
	// FetchChannelDetails resolves a channel entry id. It fails with
	// ErrChannelNotFound when the server reports an error code.
	FetchChannelDetails(ctx context.Context, channelID string) (ChannelDetails, error)

	// FetchHistory returns matching publications, most recent first. An empty
	// slice is a valid result.
	FetchHistory(ctx context.Context, q HistoryQuery) ([]Publication, error)

	// FetchPublicationDetail returns the full record of one publication
	FetchPublicationDetail(ctx context.Context, publicationID string) (PublicationDetail, error)
}

// NewHistoryClient picks the protocol once. With legacy set, history and
// details queries go through the multipart endpoint; channel details always
// use the JSON endpoint.
func NewHistoryClient(project Project, poster api.Poster, caller api.FormCaller, legacy bool) HistoryClient {
	modern := &jsonHistoryClient{project: project, poster: poster}
	if legacy {
		return &legacyHistoryClient{jsonHistoryClient: modern, caller: caller}
	}
	return modern
}

type jsonHistoryClient struct {
	project Project
	poster  api.Poster
}

func (c *jsonHistoryClient) FetchChannelDetails(ctx context.Context, channelID string) (ChannelDetails, error) {
	var details ChannelDetails
	if channelID == "" {
		return details, invalidArgument("you must specify a channel id")
	}
	resp, err := c.poster.Post(ctx, "publish/channel-details", map[string]interface{}{
		"owner":     c.project.Owner(),
		"slug":      c.project.Slug(),
		"channelId": channelID,
	})
	if err != nil {
		return details, err
	}
	if err := resp.Decode(&details); err != nil {
		return details, decodeError("publish/channel-details", err)
	}
	if details.ErrorCode != "" {
		return details, newError(ErrChannelNotFound, channelID, details.Channel,
			"The channel id %s could not be found", channelID)
	}
	return details, nil
}

func (c *jsonHistoryClient) FetchHistory(ctx context.Context, q HistoryQuery) ([]Publication, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	resp, err := c.poster.Post(ctx, "publish/history", map[string]interface{}{
		"owner":          c.project.Owner(),
		"slug":           c.project.Slug(),
		"version":        historyVersion,
		"releaseChannel": q.ReleaseChannel,
		"count":          q.Count,
		"platform":       string(q.Platform),
		"sdkVersion":     q.SDKVersion,
	})
	if err != nil {
		return nil, err
	}
	return decodeHistory("publish/history", resp)
}

func (c *jsonHistoryClient) FetchPublicationDetail(ctx context.Context, publicationID string) (PublicationDetail, error) {
	if publicationID == "" {
		return PublicationDetail{}, invalidArgument("you must specify a publish id")
	}
	resp, err := c.poster.Post(ctx, "publish/details", map[string]interface{}{
		"owner":     c.project.Owner(),
		"publishId": publicationID,
		"slug":      c.project.Slug(),
	})
	if err != nil {
		return PublicationDetail{}, err
	}
	return decodeDetail("publish/details", resp)
}

// legacyHistoryClient sends history and details through the multipart API
type legacyHistoryClient struct {
	*jsonHistoryClient
	caller api.FormCaller
}

func (c *legacyHistoryClient) FetchHistory(ctx context.Context, q HistoryQuery) ([]Publication, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	resp, err := c.caller.CallMethod(ctx, legacyMethod, []api.FormField{
		{Name: "queryType", Value: "history"},
		{Name: "owner", Value: c.project.Owner()},
		{Name: "slug", Value: c.project.Slug()},
		{Name: "version", Value: strconv.Itoa(historyVersion)},
		{Name: "releaseChannel", Value: q.ReleaseChannel},
		{Name: "count", Value: strconv.Itoa(q.Count)},
		{Name: "platform", Value: string(q.Platform)},
		{Name: "sdkVersion", Value: q.SDKVersion},
	})
	if err != nil {
		return nil, err
	}
	return decodeHistory(legacyMethod, resp)
}

func (c *legacyHistoryClient) FetchPublicationDetail(ctx context.Context, publicationID string) (PublicationDetail, error) {
	if publicationID == "" {
		return PublicationDetail{}, invalidArgument("you must specify a publish id")
	}
	resp, err := c.caller.CallMethod(ctx, legacyMethod, []api.FormField{
		{Name: "queryType", Value: "details"},
		{Name: "owner", Value: c.project.Owner()},
		{Name: "publishId", Value: publicationID},
		{Name: "slug", Value: c.project.Slug()},
	})
	if err != nil {
		return PublicationDetail{}, err
	}
	return decodeDetail(legacyMethod, resp)
}

func decodeHistory(operation string, resp *api.Response) ([]Publication, error) {
	history := []Publication{}
	if err := resp.Decode(&history); err != nil {
		return nil, decodeError(operation, err)
	}
	return history, nil
}

func decodeDetail(operation string, resp *api.Response) (PublicationDetail, error) {
	var detail *PublicationDetail
	if err := resp.Decode(&detail); err != nil {
		return PublicationDetail{}, decodeError(operation, err)
	}
	if detail == nil {
		return PublicationDetail{}, &Error{Err: ErrPublicationNotFound, Message: "No records found matching your query."}
	}
	return *detail, nil
}

func decodeError(operation string, err error) error {
	return &api.RemoteError{Operation: operation, Message: "unexpected response shape", Err: err}
}
