package rongcloud

import "context"

// Push platforms.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// PushAudience selects recipients. IsToAll overrides Tags and UserIDs.
type PushAudience struct {
	Tags    []string
	UserIDs []string
	IsToAll bool
}

// PushNotification is the alert shown by the device.
type PushNotification struct {
	Alert string
}

// PushRequest is the body of a push call.
type PushRequest struct {
	Platforms    []string
	FromUserID   string
	Audience     PushAudience
	Notification PushNotification
}

func (r PushRequest) params() Params {
	return Params{
		{Key: "platform", Value: nonNil(r.Platforms)},
		{Key: "fromuserid", Value: r.FromUserID},
		{Key: "audience", Value: Params{
			{Key: "tag", Value: nonNil(r.Audience.Tags)},
			{Key: "userid", Value: nonNil(r.Audience.UserIDs)},
			{Key: "is_to_all", Value: r.Audience.IsToAll},
		}},
		{Key: "notification", Value: Params{
			{Key: "alert", Value: r.Notification.Alert},
		}},
	}
}

// Push sends a notification to tagged users, listed users or everyone.
func (c *Client) Push(ctx context.Context, req PushRequest) (*Response, error) {
	return c.Send(ctx, ActionPush, req.params())
}
