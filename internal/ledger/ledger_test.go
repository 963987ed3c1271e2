package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileMeansEmpty(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "processed_bids.txt"))

	seen, err := l.Load()
	require.NoError(t, err)
	require.Empty(t, seen)
}

func TestRecordCreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_bids.txt")
	l := New(path)

	require.NoError(t, l.Record("Snow Removal Services"))
	require.NoError(t, l.Record("AI Monitoring System"))

	seen, err := l.Load()
	require.NoError(t, err)
	require.Len(t, seen, 2)
	require.True(t, Contains(seen, "Snow Removal Services"))
	require.True(t, Contains(seen, "AI Monitoring System"))
	require.False(t, Contains(seen, "Bridge Repair"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Snow Removal Services\nAI Monitoring System\n", string(b))
}

func TestLedgerIsMonotonic(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "processed_bids.txt"))

	require.NoError(t, l.Record("first"))
	before, err := l.Load()
	require.NoError(t, err)

	require.NoError(t, l.Record("second"))
	require.NoError(t, l.Record("third"))
	after, err := l.Load()
	require.NoError(t, err)

	for title := range before {
		require.True(t, Contains(after, title), "ledger lost %q", title)
	}
	require.Len(t, after, 3)
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_bids.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\n\n  \ntwo\n"), 0o644))

	seen, err := New(path).Load()
	require.NoError(t, err)
	require.Len(t, seen, 2)
	require.True(t, Contains(seen, "one"))
	require.True(t, Contains(seen, "two"))
}
