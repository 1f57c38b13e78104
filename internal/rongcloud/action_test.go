package rongcloud_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

func TestCatalogEntries(t *testing.T) {
	cases := []struct {
		name string
		path string
		ct   rongcloud.ContentType
	}{
		{"user.token.get", "/user/getToken", rongcloud.ContentTypeForm},
		{"user.tag.set", "/user/tag/set", rongcloud.ContentTypeJSON},
		{"message.chatroom.publish", "/message/chatroom/publish", rongcloud.ContentTypeForm},
		{"group.user.gag.rollback", "/group/user/gag/rollback", rongcloud.ContentTypeForm},
		{"chatroom.query", "/chatroom/query", rongcloud.ContentTypeForm},
		{"push", "/push", rongcloud.ContentTypeJSON},
	}
	for _, tc := range cases {
		action, ok := rongcloud.LookupAction(tc.name)
		if !ok {
			t.Fatalf("expected %s in catalog", tc.name)
		}
		if action.Path != tc.path || action.ContentType != tc.ct {
			t.Fatalf("unexpected entry for %s: %+v", tc.name, action)
		}
	}
}

func TestActionsSortedAndComplete(t *testing.T) {
	actions := rongcloud.Actions()
	if len(actions) != 34 {
		t.Fatalf("expected 34 actions, got %d", len(actions))
	}
	if !sort.SliceIsSorted(actions, func(i, j int) bool { return actions[i].Name < actions[j].Name }) {
		t.Fatalf("expected actions sorted by name")
	}
	jsonCount := 0
	for _, a := range actions {
		if a.ContentType == rongcloud.ContentTypeJSON {
			jsonCount++
		}
	}
	if jsonCount != 2 {
		t.Fatalf("expected two JSON actions, got %d", jsonCount)
	}
}

func TestLookupUnknownAction(t *testing.T) {
	if _, ok := rongcloud.LookupAction("user.delete"); ok {
		t.Fatalf("did not expect user.delete in catalog")
	}
}

func TestParseContentType(t *testing.T) {
	cases := map[string]rongcloud.ContentType{
		"form":                              rongcloud.ContentTypeForm,
		"JSON":                              rongcloud.ContentTypeJSON,
		"application/x-www-form-urlencoded": rongcloud.ContentTypeForm,
		"application/json; charset=utf-8":   rongcloud.ContentTypeJSON,
	}
	for input, want := range cases {
		got, err := rongcloud.ParseContentType(input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("expected %s for %q, got %s", want, input, got)
		}
	}
	if _, err := rongcloud.ParseContentType("multipart/form-data"); !errors.Is(err, rongcloud.ErrUnsupportedContentType) {
		t.Fatalf("expected unsupported content type error, got %v", err)
	}
}
