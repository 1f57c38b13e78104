package rongcloud

import (
	"context"
	"sort"
)

// GroupSync declares the full set of groups userID belongs to. groups maps a
// group id to its name.
func (c *Client) GroupSync(ctx context.Context, userID string, groups map[string]string) (*Response, error) {
	p := indexedParams("group", groups)
	p = p.Add("userId", userID)
	return c.Send(ctx, ActionGroupSync, p)
}

// indexedParams builds prefix[id]=name pairs sorted by id.
func indexedParams(prefix string, entries map[string]string) Params {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	p := make(Params, 0, len(ids)+1)
	for _, id := range ids {
		p = p.Add(prefix+"["+id+"]", entries[id])
	}
	return p
}

// GroupCreate creates a group with the given members.
func (c *Client) GroupCreate(ctx context.Context, groupID, groupName string, userIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionGroupCreate, groupMembers(groupID, userIDs).Add("groupName", groupName))
}

// GroupJoin adds users to a group, creating it when missing.
func (c *Client) GroupJoin(ctx context.Context, groupID, groupName string, userIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionGroupJoin, groupMembers(groupID, userIDs).Add("groupName", groupName))
}

// GroupQuit removes userIDs from groupID.
func (c *Client) GroupQuit(ctx context.Context, groupID string, userIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionGroupQuit, groupMembers(groupID, userIDs))
}

// GroupDismiss removes a group. userID is the operator.
func (c *Client) GroupDismiss(ctx context.Context, userID, groupID string) (*Response, error) {
	return c.Send(ctx, ActionGroupDismiss, Params{
		{Key: "userId", Value: userID},
		{Key: "groupId", Value: groupID},
	})
}

// GroupRefresh renames groupID.
func (c *Client) GroupRefresh(ctx context.Context, groupID, groupName string) (*Response, error) {
	return c.Send(ctx, ActionGroupRefresh, Params{
		{Key: "groupId", Value: groupID},
		{Key: "groupName", Value: groupName},
	})
}

// GroupUserQuery lists the members of a group.
func (c *Client) GroupUserQuery(ctx context.Context, groupID string) (*Response, error) {
	return c.Send(ctx, ActionGroupUserQuery, Params{{Key: "groupId", Value: groupID}})
}

// GagAdd silences users in a group for the given number of minutes.
func (c *Client) GagAdd(ctx context.Context, groupID string, minute int, userIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionGroupGagAdd, groupMembers(groupID, userIDs).Add("minute", minute))
}

// GagRollback lifts the group mute for userIDs.
func (c *Client) GagRollback(ctx context.Context, groupID string, userIDs ...string) (*Response, error) {
	return c.Send(ctx, ActionGroupGagRollback, groupMembers(groupID, userIDs))
}

// GagList lists the muted members of groupID.
func (c *Client) GagList(ctx context.Context, groupID string) (*Response, error) {
	return c.Send(ctx, ActionGroupGagList, Params{{Key: "groupId", Value: groupID}})
}

func groupMembers(groupID string, userIDs []string) Params {
	return Params{
		{Key: "userId", Value: nonNil(userIDs)},
		{Key: "groupId", Value: groupID},
	}
}
