// Package dialogs abstracts the shell's user-facing prompts behind
// plain interfaces so the core never binds to a UI toolkit. The GUI
// front-end supplies real implementations; the CLI and tests use the
// ones here.
package dialogs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Filter restricts a file picker to matching files.
type Filter struct {
	Description string
	Extensions  []string // e.g. ".csv", ".xlsx"
}

// FilePicker selects a file path. An empty path with a nil error means
// the user cancelled.
type FilePicker interface {
	PickFile(ctx context.Context, filter Filter) (string, error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// StdioConfirmer prompts on a reader/writer pair, for CLI use.
type StdioConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints the prompt and reads a y/n answer. Anything but an
// explicit yes declines.
func (c *StdioConfirmer) Confirm(_ context.Context, title, message string) (bool, error) {
	fmt.Fprintf(c.Out, "%s\n%s [y/N]: ", title, message)

	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes", nil
}

// StaticPicker returns a fixed sequence of paths, for tests and
// scripted runs. When the sequence is exhausted it reports cancellation.
type StaticPicker struct {
	Paths []string
	next  int
}

// PickFile returns the next path in the sequence.
func (p *StaticPicker) PickFile(context.Context, Filter) (string, error) {
	if p.next >= len(p.Paths) {
		return "", nil
	}

	path := p.Paths[p.next]
	p.next++

	return path, nil
}

// StaticConfirmer answers every prompt with a fixed result.
type StaticConfirmer struct {
	Answer bool
	Err    error
	Asked  int
}

// Confirm returns the configured answer.
func (c *StaticConfirmer) Confirm(context.Context, string, string) (bool, error) {
	c.Asked++

	return c.Answer, c.Err
}

// CloseConfirm builds a workspace close-confirmation hook that prompts
// through the confirmer only when the workspace reports unsaved work.
func CloseConfirm(confirmer Confirmer, title string, dirty func() bool) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		if dirty != nil && !dirty() {
			return true, nil
		}

		return confirmer.Confirm(ctx, "Unsaved changes",
			fmt.Sprintf("Close %q and discard unsaved changes?", title))
	}
}
