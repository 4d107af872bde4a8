package resolve

import (
	"errors"
	"os"

	"github.com/klauern/notesync/internal/logging"
)

// Choice is an operator's answer to a conflict prompt.
type Choice int

const (
	// ChoiceLocal keeps the local file content.
	ChoiceLocal Choice = iota
	// ChoiceRemote keeps the vault content.
	ChoiceRemote
	// ChoiceMerge applies the line-set merge heuristic.
	ChoiceMerge
	// ChoiceEdit means the operator edited the local file by hand; the
	// prompter returns only after the operator signals completion, and
	// the file is re-read.
	ChoiceEdit
)

// ErrNotInteractive is returned by prompters that have no terminal to ask
// on. The interactive resolver fails closed to its fallback instead of
// blocking.
var ErrNotInteractive = errors.New("no interactive terminal available")

// Prompter presents a conflict to an operator and blocks for a choice.
type Prompter interface {
	Choose(path, localContent, remoteContent string) (Choice, error)
}

// Interactive resolves conflicts by asking an operator. When the prompt
// fails (no terminal, read error, cancelled), the fallback resolver
// decides so that unattended runs never hang.
type Interactive struct {
	prompt   Prompter
	fallback Resolver
	merge    Resolver
}

// NewInteractive creates an interactive resolver. A nil fallback defaults
// to newer-wins.
func NewInteractive(prompt Prompter, fallback Resolver) Interactive {
	if fallback == nil {
		fallback = NewNewerWins()
	}
	return Interactive{
		prompt:   prompt,
		fallback: fallback,
		merge:    NewMerge(fallback),
	}
}

// Resolve implements Resolver.
func (r Interactive) Resolve(localContent, remoteContent, path string) string {
	if r.prompt == nil {
		logging.Warn("interactive strategy without a prompter, using fallback",
			logging.Path(path),
		)
		return r.fallback.Resolve(localContent, remoteContent, path)
	}

	choice, err := r.prompt.Choose(path, localContent, remoteContent)
	if err != nil {
		logging.Warn("conflict prompt failed, using fallback",
			logging.Path(path),
			logging.Err(err),
		)
		return r.fallback.Resolve(localContent, remoteContent, path)
	}

	switch choice {
	case ChoiceLocal:
		return localContent
	case ChoiceRemote:
		return remoteContent
	case ChoiceMerge:
		return r.merge.Resolve(localContent, remoteContent, path)
	case ChoiceEdit:
		return r.reRead(path, localContent)
	default:
		return r.fallback.Resolve(localContent, remoteContent, path)
	}
}

// reRead picks up the operator's manual edit from disk.
func (r Interactive) reRead(path, localContent string) string {
	// #nosec G304 - path is the note's own local file
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("could not re-read edited note, keeping local content",
			logging.Path(path),
			logging.Err(err),
		)
		return localContent
	}
	return string(data)
}
