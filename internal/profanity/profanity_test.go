package profanity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProfane(t *testing.T) {
	f := New([]string{"BadWord1", "badword2", " ", "badword1"})

	cases := []struct {
		text string
		want bool
	}{
		{"hello", false},
		{"this has badword1 in it", true},
		{"SHOUTING BADWORD2", true},
		{"superbadword1ish", true}, // substring inside a larger word still matches
		{"bad word1", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, f.IsProfane(tc.text), tc.text)
	}
	assert.Equal(t, []string{"badword1", "badword2"}, f.Terms())
}

func TestEmptyFilterAllowsEverything(t *testing.T) {
	assert.False(t, New(nil).IsProfane("anything at all"))
}
