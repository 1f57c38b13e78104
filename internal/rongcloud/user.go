package rongcloud

import (
	"context"
	"fmt"
)

// GetToken issues an IM token for a user.
func (c *Client) GetToken(ctx context.Context, userID, name, portraitURI string) (*Response, error) {
	return c.Send(ctx, ActionUserGetToken, Params{
		{Key: "userId", Value: userID},
		{Key: "name", Value: name},
		{Key: "portraitUri", Value: portraitURI},
	})
}

// RefreshUser updates the cached name and portrait of a user.
func (c *Client) RefreshUser(ctx context.Context, userID, name, portraitURI string) (*Response, error) {
	return c.Send(ctx, ActionUserRefresh, Params{
		{Key: "userId", Value: userID},
		{Key: "name", Value: name},
		{Key: "portraitUri", Value: portraitURI},
	})
}

// CheckOnline reports whether userID is currently connected.
func (c *Client) CheckOnline(ctx context.Context, userID string) (*Response, error) {
	return c.Send(ctx, ActionUserCheckOnline, Params{{Key: "userId", Value: userID}})
}

// PairResult holds the two replies of a mutual blacklist change. Reverse is
// nil when the second call was not issued or failed at transport level.
type PairResult struct {
	Forward *Response
	Reverse *Response
}

// Success reports whether both directions succeeded.
func (p PairResult) Success() bool {
	return p.Forward != nil && p.Forward.Success && p.Reverse != nil && p.Reverse.Success
}

// BlacklistAdd makes userID and blackUserID block each other with two
// sequential calls. A transport failure of the first call skips the second;
// a failure of the second leaves the first in effect.
func (c *Client) BlacklistAdd(ctx context.Context, userID, blackUserID string) (PairResult, error) {
	return c.blacklistPair(ctx, ActionUserBlacklistAdd, userID, blackUserID)
}

// BlacklistRemove reverts BlacklistAdd with the same ordering rules.
func (c *Client) BlacklistRemove(ctx context.Context, userID, blackUserID string) (PairResult, error) {
	return c.blacklistPair(ctx, ActionUserBlacklistRemove, userID, blackUserID)
}

func (c *Client) blacklistPair(ctx context.Context, action Action, a, b string) (PairResult, error) {
	var result PairResult

	forward, err := c.Send(ctx, action, blacklistParams(a, b))
	if err != nil {
		return result, fmt.Errorf("rongcloud: %s %s->%s: %w", action.Name, a, b, err)
	}
	result.Forward = forward

	reverse, err := c.Send(ctx, action, blacklistParams(b, a))
	if err != nil {
		c.logger.Warn().
			Str("action", action.Name).
			Str("user_id", a).
			Str("black_user_id", b).
			Err(err).
			Msg("reverse blacklist call failed, forward call remains in effect")
		return result, fmt.Errorf("rongcloud: %s %s->%s: %w", action.Name, b, a, err)
	}
	result.Reverse = reverse
	return result, nil
}

func blacklistParams(userID, blackUserID string) Params {
	return Params{
		{Key: "userId", Value: userID},
		{Key: "blackUserId", Value: blackUserID},
	}
}

// BlacklistQuery lists the users on userID's blacklist.
func (c *Client) BlacklistQuery(ctx context.Context, userID string) (*Response, error) {
	return c.Send(ctx, ActionUserBlacklistQuery, Params{{Key: "userId", Value: userID}})
}

// Block bans a user for the given number of minutes.
func (c *Client) Block(ctx context.Context, userID string, minute int) (*Response, error) {
	return c.Send(ctx, ActionUserBlock, Params{
		{Key: "userId", Value: userID},
		{Key: "minute", Value: minute},
	})
}

// Unblock lifts a ban placed by Block.
func (c *Client) Unblock(ctx context.Context, userID string) (*Response, error) {
	return c.Send(ctx, ActionUserUnblock, Params{{Key: "userId", Value: userID}})
}

// BlockQuery lists the currently banned users.
func (c *Client) BlockQuery(ctx context.Context) (*Response, error) {
	return c.Send(ctx, ActionUserBlockQuery, Params{})
}

// SetTags replaces the push tags of a user. The body is JSON.
func (c *Client) SetTags(ctx context.Context, userID string, tags []string) (*Response, error) {
	return c.Send(ctx, ActionUserTagSet, Params{
		{Key: "userId", Value: userID},
		{Key: "tags", Value: nonNil(tags)},
	})
}

// nonNil turns a nil slice into an empty one so JSON bodies carry [] instead
// of null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
