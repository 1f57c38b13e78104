package rongcloud

import "context"

// WordFilterAdd registers a sensitive word.
func (c *Client) WordFilterAdd(ctx context.Context, word string) (*Response, error) {
	return c.Send(ctx, ActionWordFilterAdd, Params{{Key: "word", Value: word}})
}

// WordFilterDelete removes word from the sensitive word list.
func (c *Client) WordFilterDelete(ctx context.Context, word string) (*Response, error) {
	return c.Send(ctx, ActionWordFilterDelete, Params{{Key: "word", Value: word}})
}

// WordFilterList returns the sensitive word list.
func (c *Client) WordFilterList(ctx context.Context) (*Response, error) {
	return c.Send(ctx, ActionWordFilterList, Params{})
}
