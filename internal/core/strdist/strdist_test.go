package strdist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	var m Levenshtein

	assert.Equal(t, 0.0, m.Distance([]string{"12", "05", "1871"}, []string{"12", "05", "1871"}))
	assert.Equal(t, 0.0, m.Distance(nil, nil))
	assert.InDelta(t, 0.25/3, m.Distance([]string{"12", "05", "1871"}, []string{"12", "05", "1872"}), 1e-9)
	assert.Equal(t, 1.0, m.Distance([]string{"abc"}, []string{"xyz"}))

	// Missing positions are compared with the empty string.
	assert.InDelta(t, 0.5, m.Distance([]string{"a", "b"}, []string{"a"}), 1e-9)
}

func TestMSED(t *testing.T) {
	var m MSED

	assert.Equal(t, 0.0, m.Distance([]string{"anna lisa per olsson"}))
	assert.Equal(t, 0.0, m.Distance([]string{"maria jonsdotter", "maria jonsdotter", "maria jonsdotter"}))

	near := m.Distance([]string{"maria jonsdotter erik olsson", "maria jonsdotter erik olsson", "maria jonsdotter erik olson"})
	far := m.Distance([]string{"maria jonsdotter erik olsson", "maria jonsdotter erik olsson", "karin persdotter nils berg"})
	assert.Greater(t, near, 0.0)
	assert.Less(t, near, far)
	assert.LessOrEqual(t, far, 1.0)

	// Order does not matter.
	a := m.Distance([]string{"abc", "abd", "xyz"})
	b := m.Distance([]string{"xyz", "abc", "abd"})
	assert.InDelta(t, a, b, 1e-12)
}

func TestMSEDDisjoint(t *testing.T) {
	var m MSED
	assert.InDelta(t, 1.0, m.Distance([]string{"aaaa", "bbbb"}), 1e-9)
}
