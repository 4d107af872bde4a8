package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/klauern/notesync/internal/resolve"
	"github.com/klauern/notesync/internal/ui"
	"github.com/klauern/notesync/internal/ui/tui"
)

// previewLines caps how much of each version the plain prompt shows.
const previewLines = 10

// newPrompter picks a conflict prompt for the current environment. With no
// terminal attached there is nobody to ask, so the prompter fails closed
// and the interactive resolver falls back to its configured strategy.
func newPrompter() resolve.Prompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return failClosedPrompter{}
	}
	if ui.IsColorEnabled() {
		return tui.Prompt{}
	}
	return NewStdinPrompter()
}

// failClosedPrompter rejects every prompt so unattended runs never block.
type failClosedPrompter struct{}

func (failClosedPrompter) Choose(_, _, _ string) (resolve.Choice, error) {
	return 0, resolve.ErrNotInteractive
}

// StdinPrompter asks for a conflict decision on plain stdin/stdout. It is
// used when colors are disabled and the BubbleTea viewer would degrade.
type StdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdinPrompter creates a prompter reading from stdin.
func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// Choose implements resolve.Prompter.
func (p *StdinPrompter) Choose(path, localContent, remoteContent string) (resolve.Choice, error) {
	fmt.Fprintf(p.out, "\nConflict in %s\n", path)
	p.preview("local", localContent)
	p.preview("remote", remoteContent)

	for {
		fmt.Fprint(p.out, "Keep [l]ocal, [r]emote, [m]erge, or [e]dit? ")

		line, err := p.in.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("reading conflict choice: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "l", "local", "1":
			return resolve.ChoiceLocal, nil
		case "r", "remote", "2":
			return resolve.ChoiceRemote, nil
		case "m", "merge", "3":
			return resolve.ChoiceMerge, nil
		case "e", "edit", "4":
			fmt.Fprintf(p.out, "Edit %s in another window, then press Enter.\n", path)
			if _, err := p.in.ReadString('\n'); err != nil {
				return 0, fmt.Errorf("waiting for edit: %w", err)
			}
			return resolve.ChoiceEdit, nil
		default:
			fmt.Fprintln(p.out, "Please answer l, r, m, or e.")
		}
	}
}

// preview prints the first few lines of one version.
func (p *StdinPrompter) preview(label, content string) {
	fmt.Fprintf(p.out, "--- %s ---\n", label)

	lines := strings.Split(content, "\n")
	shown := lines
	if len(lines) > previewLines {
		shown = lines[:previewLines]
	}
	for _, line := range shown {
		fmt.Fprintln(p.out, line)
	}
	if len(lines) > previewLines {
		fmt.Fprintf(p.out, "... (%d more lines)\n", len(lines)-previewLines)
	}
}
