package rongcloud

import "context"

// ChatroomCreate creates chatrooms from an id to name mapping.
func (c *Client) ChatroomCreate(ctx context.Context, chatrooms map[string]string) (*Response, error) {
	return c.Send(ctx, ActionChatroomCreate, indexedParams("chatroom", chatrooms))
}

// ChatroomDestroy deletes the given chatrooms.
func (c *Client) ChatroomDestroy(ctx context.Context, chatroomIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionChatroomDestroy, Params{{Key: "chatroomId", Value: nonNil(chatroomIDs)}})
}

// ChatroomQuery returns details for the given chatrooms.
func (c *Client) ChatroomQuery(ctx context.Context, chatroomIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionChatroomQuery, Params{{Key: "chatroomId", Value: nonNil(chatroomIDs)}})
}
