package resolve

// Resolver produces the winning content for a conflicted note. The first
// argument is always the filesystem-side content and the second always the
// vault-side content, regardless of which sync direction is running; path
// is the local file path of the note. Implementations never fail: on any
// internal error they fall back to one side.
type Resolver interface {
	Resolve(localContent, remoteContent, path string) string
}

// Options configures resolver construction.
type Options struct {
	// Prompter supplies operator input for the interactive strategy.
	// When nil, interactive conflicts fall back to newer-wins instead of
	// blocking.
	Prompter Prompter

	// DryRun suppresses the conflict backup side effect.
	DryRun bool
}

// ForStrategy builds the resolver for a configured strategy name. Every
// strategy is wrapped in the conflict-backup decorator so both versions of
// a conflicted note are preserved before one of them wins.
func ForStrategy(name string, opts Options) Resolver {
	var base Resolver
	switch ParseStrategy(name) {
	case StrategyLocalWins:
		base = LocalWins{}
	case StrategyRemoteWins:
		base = RemoteWins{}
	case StrategyMerge:
		base = NewMerge(nil)
	case StrategyInteractive:
		base = NewInteractive(opts.Prompter, nil)
	default:
		base = NewNewerWins()
	}
	return NewConflictBackup(base, opts.DryRun)
}
