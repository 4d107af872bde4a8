// Package resolve implements conflict resolution strategies for notes that
// changed on both sides of a sync.
package resolve

// Strategy names a conflict resolution behavior.
type Strategy string

const (
	// StrategyNewerWins prefers the local file when it was modified
	// recently, otherwise the remote content.
	StrategyNewerWins Strategy = "newer_wins"

	// StrategyLocalWins always keeps the local content.
	StrategyLocalWins Strategy = "local_wins"

	// StrategyRemoteWins always keeps the remote vault content.
	StrategyRemoteWins Strategy = "remote_wins"

	// StrategyMerge combines pure-addition edits, falling back to
	// newer-wins when the line sets diverge.
	StrategyMerge Strategy = "merge"

	// StrategyInteractive prompts the operator for each conflict.
	StrategyInteractive Strategy = "interactive"

	// strategyObsidianWins is a legacy alias for remote_wins kept for
	// configs written against older releases.
	strategyObsidianWins Strategy = "obsidian_wins"
)

// ParseStrategy maps a configuration string to a Strategy. Unknown names
// fall back to newer_wins rather than failing: a misspelled strategy must
// never stop a sync.
func ParseStrategy(name string) Strategy {
	switch Strategy(name) {
	case StrategyNewerWins, StrategyLocalWins, StrategyRemoteWins, StrategyMerge, StrategyInteractive:
		return Strategy(name)
	case strategyObsidianWins:
		return StrategyRemoteWins
	default:
		return StrategyNewerWins
	}
}

// IsValid returns true if the strategy is recognized.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyNewerWins, StrategyLocalWins, StrategyRemoteWins, StrategyMerge, StrategyInteractive, strategyObsidianWins:
		return true
	default:
		return false
	}
}

// AllStrategies returns all supported strategies.
func AllStrategies() []Strategy {
	return []Strategy{StrategyNewerWins, StrategyLocalWins, StrategyRemoteWins, StrategyMerge, StrategyInteractive}
}

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategyNewerWins:
		return "Keep the side edited most recently (local wins within a 5-minute window)"
	case StrategyLocalWins:
		return "Always keep the local file content"
	case StrategyRemoteWins, strategyObsidianWins:
		return "Always keep the Obsidian vault content"
	case StrategyMerge:
		return "Combine pure-addition edits; fall back to newer-wins otherwise"
	case StrategyInteractive:
		return "Prompt for each conflict interactively"
	default:
		return "Unknown strategy"
	}
}
