package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	cases := []struct {
		param string
		want  Action
	}{
		{"comment_1", Action{Kind: ActionCompose, Ordinal: 1}},
		{"view_42", Action{Kind: ActionView, Ordinal: 42}},
		{" view_3 ", Action{Kind: ActionView, Ordinal: 3}},
		{"", Action{Kind: ActionMenu}},
		{"comment_abc", Action{Kind: ActionMenu}},
		{"comment_", Action{Kind: ActionMenu}},
		{"comment_0", Action{Kind: ActionMenu}},
		{"comment_-4", Action{Kind: ActionMenu}},
		{"view_1_2", Action{Kind: ActionMenu}},
		{"view_99999999999999999999999", Action{Kind: ActionMenu}},
		{"something_else", Action{Kind: ActionMenu}},
	}
	for _, tc := range cases {
		t.Run(tc.param, func(t *testing.T) {
			assert.Equal(t, tc.want, Route(tc.param))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	assert.Equal(t, Action{Kind: ActionCompose, Ordinal: 17}, Route(CommentParam(17)))
	assert.Equal(t, Action{Kind: ActionView, Ordinal: 17}, Route(ViewParam(17)))
}

func TestBuilder(t *testing.T) {
	b := NewBuilder("https://t.me/", "@confessbot")
	assert.Equal(t, "https://t.me/confessbot?start=comment_5", b.CommentLink(5))
	assert.Equal(t, "https://t.me/confessbot?start=view_5", b.ViewLink(5))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "menu", ActionMenu.String())
	assert.Equal(t, "compose", ActionCompose.String())
	assert.Equal(t, "view", ActionView.String())
}
