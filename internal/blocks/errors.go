package blocks

import "fmt"

// MalformedGraphError reports a cyclic block reference found while decoding
// a target's scripts. The cycle makes every script reachable from it
// untrustworthy, so decoding of that target stops; other targets are
// unaffected.
type MalformedGraphError struct {
	Target  string
	BlockID string
}

func (e *MalformedGraphError) Error() string {
	return fmt.Sprintf("target %q: block %q: cycle in block graph", e.Target, e.BlockID)
}
