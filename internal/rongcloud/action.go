package rongcloud

import (
	"fmt"
	"sort"
	"strings"
)

// ContentType selects how request parameters are encoded in the body.
type ContentType int

const (
	// ContentTypeForm encodes parameters as application/x-www-form-urlencoded.
	ContentTypeForm ContentType = iota
	// ContentTypeJSON encodes parameters as a JSON object.
	ContentTypeJSON
)

const (
	mimeForm = "application/x-www-form-urlencoded"
	mimeJSON = "application/json"
)

// MIME returns the content-type header value, or "" for an unknown value.
func (ct ContentType) MIME() string {
	switch ct {
	case ContentTypeForm:
		return mimeForm
	case ContentTypeJSON:
		return mimeJSON
	default:
		return ""
	}
}

func (ct ContentType) String() string {
	switch ct {
	case ContentTypeForm:
		return "form"
	case ContentTypeJSON:
		return "json"
	default:
		return fmt.Sprintf("ContentType(%d)", int(ct))
	}
}

// ParseContentType accepts "form", "json" or the matching MIME types.
func ParseContentType(value string) (ContentType, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	switch v {
	case "form", mimeForm:
		return ContentTypeForm, nil
	case "json", mimeJSON:
		return ContentTypeJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedContentType, value)
	}
}

// Action binds a logical operation name to its URL path and default body
// encoding. Path excludes the response format suffix.
type Action struct {
	Name        string
	Path        string
	ContentType ContentType
}

func (a Action) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidAction)
	}
	if !strings.HasPrefix(a.Path, "/") || strings.ContainsAny(a.Path, "?#. ") {
		return fmt.Errorf("%w: %s has malformed path %q", ErrInvalidAction, a.Name, a.Path)
	}
	if a.ContentType.MIME() == "" {
		return fmt.Errorf("%w: %s declares %s", ErrUnsupportedContentType, a.Name, a.ContentType)
	}
	return nil
}

// User actions.
var (
	ActionUserGetToken        = Action{Name: "user.token.get", Path: "/user/getToken"}
	ActionUserRefresh         = Action{Name: "user.refresh", Path: "/user/refresh"}
	ActionUserCheckOnline     = Action{Name: "user.online.check", Path: "/user/checkOnline"}
	ActionUserBlacklistAdd    = Action{Name: "user.blacklist.add", Path: "/user/blacklist/add"}
	ActionUserBlacklistRemove = Action{Name: "user.blacklist.remove", Path: "/user/blacklist/remove"}
	ActionUserBlacklistQuery  = Action{Name: "user.blacklist.query", Path: "/user/blacklist/query"}
	ActionUserBlock           = Action{Name: "user.block", Path: "/user/block"}
	ActionUserUnblock         = Action{Name: "user.unblock", Path: "/user/unblock"}
	ActionUserBlockQuery      = Action{Name: "user.block.query", Path: "/user/block/query"}
	ActionUserTagSet          = Action{Name: "user.tag.set", Path: "/user/tag/set", ContentType: ContentTypeJSON}
)

// Word filter actions.
var (
	ActionWordFilterAdd    = Action{Name: "wordfilter.add", Path: "/wordfilter/add"}
	ActionWordFilterDelete = Action{Name: "wordfilter.delete", Path: "/wordfilter/delete"}
	ActionWordFilterList   = Action{Name: "wordfilter.list", Path: "/wordfilter/list"}
)

// Message actions.
var (
	ActionMessagePrivatePublish  = Action{Name: "message.private.publish", Path: "/message/private/publish"}
	ActionMessageSystemPublish   = Action{Name: "message.system.publish", Path: "/message/system/publish"}
	ActionMessageGroupPublish    = Action{Name: "message.group.publish", Path: "/message/group/publish"}
	ActionMessageChatroomPublish = Action{Name: "message.chatroom.publish", Path: "/message/chatroom/publish"}
	ActionMessageBroadcast       = Action{Name: "message.broadcast", Path: "/message/broadcast"}
	ActionMessageHistory         = Action{Name: "message.history", Path: "/message/history"}
	ActionMessageHistoryDelete   = Action{Name: "message.history.delete", Path: "/message/history/delete"}
)

// Group actions.
var (
	ActionGroupSync        = Action{Name: "group.sync", Path: "/group/sync"}
	ActionGroupCreate      = Action{Name: "group.create", Path: "/group/create"}
	ActionGroupJoin        = Action{Name: "group.join", Path: "/group/join"}
	ActionGroupQuit        = Action{Name: "group.quit", Path: "/group/quit"}
	ActionGroupDismiss     = Action{Name: "group.dismiss", Path: "/group/dismiss"}
	ActionGroupRefresh     = Action{Name: "group.refresh", Path: "/group/refresh"}
	ActionGroupUserQuery   = Action{Name: "group.user.query", Path: "/group/user/query"}
	ActionGroupGagAdd      = Action{Name: "group.user.gag.add", Path: "/group/user/gag/add"}
	ActionGroupGagRollback = Action{Name: "group.user.gag.rollback", Path: "/group/user/gag/rollback"}
	ActionGroupGagList     = Action{Name: "group.user.gag.list", Path: "/group/user/gag/list"}
)

// Chatroom actions.
var (
	ActionChatroomCreate  = Action{Name: "chatroom.create", Path: "/chatroom/create"}
	ActionChatroomDestroy = Action{Name: "chatroom.destroy", Path: "/chatroom/destroy"}
	ActionChatroomQuery   = Action{Name: "chatroom.query", Path: "/chatroom/query"}
)

// ActionPush sends a push notification to tags, users or everyone.
var ActionPush = Action{Name: "push", Path: "/push", ContentType: ContentTypeJSON}

// catalog is copied from the exported values at init so reassigning one of
// them does not change lookups.
var catalog = buildCatalog(
	ActionUserGetToken,
	ActionUserRefresh,
	ActionUserCheckOnline,
	ActionUserBlacklistAdd,
	ActionUserBlacklistRemove,
	ActionUserBlacklistQuery,
	ActionUserBlock,
	ActionUserUnblock,
	ActionUserBlockQuery,
	ActionUserTagSet,
	ActionWordFilterAdd,
	ActionWordFilterDelete,
	ActionWordFilterList,
	ActionMessagePrivatePublish,
	ActionMessageSystemPublish,
	ActionMessageGroupPublish,
	ActionMessageChatroomPublish,
	ActionMessageBroadcast,
	ActionMessageHistory,
	ActionMessageHistoryDelete,
	ActionGroupSync,
	ActionGroupCreate,
	ActionGroupJoin,
	ActionGroupQuit,
	ActionGroupDismiss,
	ActionGroupRefresh,
	ActionGroupUserQuery,
	ActionGroupGagAdd,
	ActionGroupGagRollback,
	ActionGroupGagList,
	ActionChatroomCreate,
	ActionChatroomDestroy,
	ActionChatroomQuery,
	ActionPush,
)

func buildCatalog(actions ...Action) map[string]Action {
	out := make(map[string]Action, len(actions))
	for _, a := range actions {
		if err := a.validate(); err != nil {
			panic(err)
		}
		if _, dup := out[a.Name]; dup {
			panic(fmt.Sprintf("rongcloud: duplicate action %q", a.Name))
		}
		out[a.Name] = a
	}
	return out
}

// LookupAction returns the catalog action with the given name.
func LookupAction(name string) (Action, bool) {
	a, ok := catalog[strings.TrimSpace(name)]
	return a, ok
}

// Actions returns the catalog sorted by name.
func Actions() []Action {
	out := make([]Action, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
