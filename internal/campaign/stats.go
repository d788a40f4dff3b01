package campaign

import (
	"fmt"
	"slices"
	"strings"
)

// Stats summarizes a campaign run. Processed counts every window that was
// attempted, whether it succeeded or was skipped.
type Stats struct {
	Windows        int
	Processed      int
	Skipped        map[FailureKind]int
	Offers         int
	Unresolved     int
	Rotations      int
	SessionsOpened int
}

func newStats(windows int) Stats {
	return Stats{
		Windows: windows,
		Skipped: make(map[FailureKind]int),
	}
}

func (s Stats) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

func (s Stats) Succeeded() int {
	return s.Processed - s.SkippedTotal()
}

func (s Stats) String() string {
	kinds := make([]string, 0, len(s.Skipped))
	for kind, n := range s.Skipped {
		kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
	}
	slices.Sort(kinds)

	return fmt.Sprintf(
		"windows %d/%d processed, %d skipped [%s], %d offers (%d unresolved), %d rotations",
		s.Processed, s.Windows,
		s.SkippedTotal(), strings.Join(kinds, " "),
		s.Offers, s.Unresolved,
		s.Rotations,
	)
}
