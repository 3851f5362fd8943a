package dialogs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"Y\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"whatever\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := &StdioConfirmer{In: strings.NewReader(tt.input), Out: &out}

		got, err := c.Confirm(context.Background(), "Close tab", "Discard changes?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Close tab")
	}
}

func TestStaticPicker(t *testing.T) {
	p := &StaticPicker{Paths: []string{"/a.csv", "/b.csv"}}

	first, err := p.PickFile(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "/a.csv", first)

	second, _ := p.PickFile(context.Background(), Filter{})
	assert.Equal(t, "/b.csv", second)

	// Exhausted: cancellation, not an error.
	third, err := p.PickFile(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "", third)
}

func TestCloseConfirm_CleanWorkspaceSkipsPrompt(t *testing.T) {
	confirmer := &StaticConfirmer{Answer: false}
	hook := CloseConfirm(confirmer, "Report.csv", func() bool { return false })

	ok, err := hook(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, confirmer.Asked)
}

func TestCloseConfirm_DirtyWorkspacePrompts(t *testing.T) {
	confirmer := &StaticConfirmer{Answer: false}
	hook := CloseConfirm(confirmer, "Report.csv", func() bool { return true })

	ok, err := hook(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, confirmer.Asked)
}
