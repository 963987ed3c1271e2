package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Ledger is the durable set of bid titles that have already been handled,
// accepted or not. One title per line, append-only. A title present here is
// never re-submitted to classification.
type Ledger struct {
	Path string
}

func New(path string) *Ledger {
	return &Ledger{Path: path}
}

// Load reads every recorded title. A missing file means nothing has been
// processed yet, not an error.
func (l *Ledger) Load() (map[string]struct{}, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("ledger open: %w", err)
	}
	defer f.Close()

	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		t := strings.TrimSpace(sc.Text())
		if t == "" {
			continue
		}
		seen[t] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ledger read: %w", err)
	}
	return seen, nil
}

func Contains(seen map[string]struct{}, title string) bool {
	_, ok := seen[title]
	return ok
}

// Record durably appends one title, creating the file on first use.
// There is no removal or update.
func (l *Ledger) Record(title string) error {
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ledger append open: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(title + "\n"); err != nil {
		return fmt.Errorf("ledger append write: %w", err)
	}
	return nil
}
