package rongcloud

import "context"

// Message is the common payload of the publish calls. Content is the
// serialized message body expected by ObjectName, e.g. RC:TxtMsg. Empty push
// fields are sent as empty strings.
type Message struct {
	FromUserID  string
	ObjectName  string
	Content     string
	PushContent string
	PushData    string
}

func (m Message) params(targetKey string, targets []string, withPush bool) Params {
	p := Params{{Key: "fromUserId", Value: m.FromUserID}}
	if targetKey != "" {
		p = p.Add(targetKey, nonNil(targets))
	}
	p = p.Add("objectName", m.ObjectName).Add("content", m.Content)
	if withPush {
		p = p.Add("pushContent", m.PushContent).Add("pushData", m.PushData)
	}
	return p
}

// PublishPrivate sends msg to one or more users.
func (c *Client) PublishPrivate(ctx context.Context, msg Message, toUserIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionMessagePrivatePublish, msg.params("toUserId", toUserIDs, true))
}

// PublishSystem sends msg as a system notice to one or more users.
func (c *Client) PublishSystem(ctx context.Context, msg Message, toUserIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionMessageSystemPublish, msg.params("toUserId", toUserIDs, true))
}

// PublishGroup sends msg to one or more groups.
func (c *Client) PublishGroup(ctx context.Context, msg Message, toGroupIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionMessageGroupPublish, msg.params("toGroupId", toGroupIDs, true))
}

// PublishChatroom sends msg to one or more chatrooms. Chatroom messages carry
// no push fields.
func (c *Client) PublishChatroom(ctx context.Context, msg Message, toChatroomIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionMessageChatroomPublish, msg.params("toChatroomId", toChatroomIDs, false))
}

// Broadcast sends msg to every user of the app.
func (c *Client) Broadcast(ctx context.Context, msg Message) (*Response, error) {
	return c.Send(ctx, ActionMessageBroadcast, msg.params("", nil, true))
}

// History returns the download URL of the message log for one hour, with
// date formatted as 2006010215.
func (c *Client) History(ctx context.Context, date string) (*Response, error) {
	return c.Send(ctx, ActionMessageHistory, Params{{Key: "date", Value: date}})
}

// HistoryDelete removes the message history archive for date.
func (c *Client) HistoryDelete(ctx context.Context, date string) (*Response, error) {
	return c.Send(ctx, ActionMessageHistoryDelete, Params{{Key: "date", Value: date}})
}
