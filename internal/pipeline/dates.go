package pipeline

import (
	"log"
	"strings"
	"time"
)

// ValidClosingDate reports whether the raw closing date parses under layout
// and has not passed. A malformed date is invalid, not an error, and the bid
// still gets committed upstream. The boundary is inclusive: a bid closing at
// exactly now is still open.
func ValidClosingDate(raw, layout string, now time.Time) bool {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		log.Printf("[dates] invalid closing date %q", raw)
		return false
	}
	return !t.Before(now)
}
