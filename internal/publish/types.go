/*
Copyright © 2024 LocalRivet <github.com/localrivet>
*/
package publish

import (
	"encoding/json"
	"strings"
)

// Platform is the client platform a publication targets
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

const (
	// MinHistoryCount and MaxHistoryCount bound HistoryQuery.Count
	MinHistoryCount = 1
	MaxHistoryCount = 100

	// historyVersion is the history response format requested from the server
	historyVersion = 2

	// rollbackWindow is how many history entries a rollback inspects
	rollbackWindow = 2
)

// ParsePlatform validates a platform name. The empty string is allowed and
// means "any platform".
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case "", PlatformIOS, PlatformAndroid:
		return p, nil
	default:
		return "", invalidArgument("platform must be %q or %q, got %q", PlatformIOS, PlatformAndroid, s)
	}
}

// Publication is one entry of a channel's publish history
type Publication struct {
	ChannelID     string   `json:"channelId"`
	PublicationID string   `json:"publicationId"`
	Channel       string   `json:"channel"`
	Platform      Platform `json:"platform"`
	SDKVersion    string   `json:"sdkVersion"`
	PublishedTime string   `json:"publishedTime"`
	AppVersion    string   `json:"appVersion"`
	FullName      string   `json:"fullName"`
}

// ChannelDetails is the result of the channel-details query. A non-empty
// ErrorCode means the channel id is unknown.
type ChannelDetails struct {
	Channel    string    `json:"channel"`
	Platform   Platform  `json:"platform"`
	SDKVersion string    `json:"sdkVersion"`
	ErrorCode  ErrorCode `json:"errorCode,omitempty"`
}

// ErrorCode accepts both string and numeric codes from the server.
type ErrorCode string

func (c *ErrorCode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ErrorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = ErrorCode(n.String())
	return nil
}

// PublicationDetail is the full record returned by the details query
type PublicationDetail struct {
	Manifest           map[string]interface{}   `json:"manifest,omitempty"`
	PublishedTime      string                   `json:"publishedTime"`
	PublishingUsername string                   `json:"publishingUsername"`
	PackageUsername    string                   `json:"packageUsername"`
	PackageName        string                   `json:"packageName"`
	FullName           string                   `json:"fullName"`
	Hash               string                   `json:"hash"`
	SDKVersion         string                   `json:"sdkVersion"`
	S3Key              string                   `json:"s3Key"`
	S3URL              string                   `json:"s3Url"`
	ABIVersion         *string                  `json:"abiVersion"`
	BundleURL          *string                  `json:"bundleUrl"`
	Platform           string                   `json:"platform"`
	Version            string                   `json:"version"`
	RevisionID         string                   `json:"revisionId"`
	Channels           []map[string]interface{} `json:"channels"`
	PublicationID      string                   `json:"publicationId"`
}

// HistoryQuery selects entries from a project's publish history
type HistoryQuery struct {
	ReleaseChannel string
	Count          int
	Platform       Platform
	SDKVersion     string
}

// Validate checks the count range and platform.
func (q HistoryQuery) Validate() error {
	if q.Count < MinHistoryCount || q.Count > MaxHistoryCount {
		return invalidArgument("count must be a number between %d and %d inclusive, got %d", MinHistoryCount, MaxHistoryCount, q.Count)
	}
	if _, err := ParsePlatform(string(q.Platform)); err != nil {
		return err
	}
	return nil
}

// SetRequest points a release channel at a publication
type SetRequest struct {
	ReleaseChannel string
	PublishID      string
}

// Validate checks that both fields are present.
func (r SetRequest) Validate() error {
	if r.ReleaseChannel == "" {
		return invalidArgument("you must specify a release channel")
	}
	if r.PublishID == "" {
		return invalidArgument("you must specify a publish id. You can find ids using publish:history")
	}
	return nil
}

// RollbackRequest asks for the channel entry ChannelID to be rolled back
type RollbackRequest struct {
	ChannelID      string
	NonInteractive bool
}

// Validate checks that a channel id is present.
func (r RollbackRequest) Validate() error {
	if r.ChannelID == "" {
		return invalidArgument("you must specify a channel id. You can find ids using publish:history")
	}
	return nil
}

// Ack is the queryResult of a write call
type Ack map[string]interface{}

// Result describes a completed (or partially completed) rollback
type Result struct {
	Channel   string
	ChannelID string

	// Target is the publication users receive after the rollback
	Target Publication

	// Reverted is true when a set call pointed the channel at Target
	Reverted bool

	// SetAck is the set call's result, nil when no set was issued
	SetAck Ack

	// RollbackAck is the rollback call's result, nil if it failed
	RollbackAck Ack
}
