package sem

import "errors"

// Invariant errors. These indicate a broken propagation order and are
// fatal to the resolution call, unlike soft semantic failures which are
// recorded as diagnostics and never abort the pass.
var (
	// ErrAlreadyClassified reports a second classification of a symbol.
	ErrAlreadyClassified = errors.New("sem: symbol already classified")
	// ErrSymbolRedefined reports a second definition of a symbol.
	ErrSymbolRedefined = errors.New("sem: symbol definition already set")
	// ErrEntryRedefined reports a second definition of a symbol entry.
	ErrEntryRedefined = errors.New("sem: symbol entry definition already set")
	// ErrNotResolved reports a context read before propagation.
	ErrNotResolved = errors.New("sem: rows source context not resolved yet")
	// ErrAlreadyResolved reports a second propagation of a rows source.
	ErrAlreadyResolved = errors.New("sem: rows source already resolved")
)
