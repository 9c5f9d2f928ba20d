package league

import (
	"errors"
	"fmt"
)

// Sentinel kinds for league errors.
var (
	// ErrUnknownTeam marks a matchup with no usable team identity at all.
	// This is the one case prediction cannot degrade around.
	ErrUnknownTeam = errors.New("unknown team")
)

// DataError describes a malformed or internally inconsistent game record.
// Offending records are rejected individually; replay continues.
type DataError struct {
	GameID string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("bad game record %q: %s", e.GameID, e.Reason)
}
