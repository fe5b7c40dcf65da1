package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerMarkersExcludeDocketsFromSweeps(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	require.False(t, l.IsProcessed("FBTCV246001234S"))

	require.NoError(t, l.WriteFound("FBTCV246001234S", []byte{0x89, 'P', 'N', 'G'}))
	require.NoError(t, l.WriteNotFound("NNHCV229876543S", "no parties page detected"))

	require.True(t, l.IsProcessed("FBTCV246001234S"))
	require.True(t, l.IsProcessed("NNHCV229876543S"))
	require.False(t, l.IsProcessed("HHDCV241112223S"))

	processed, err := l.Processed()
	require.NoError(t, err)
	require.Equal(t, map[string]bool{
		"FBTCV246001234S": true,
		"NNHCV229876543S": true,
	}, processed)
}

func TestProcessedIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "FBTCV246001234S.pdf"), []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	processed, err := l.Processed()
	require.NoError(t, err)
	require.Empty(t, processed)
}

func TestWriteFoundStoresImageBytes(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	image := []byte("fake png bytes")
	require.NoError(t, l.WriteFound("FBTCV246001234S", image))

	stored, err := os.ReadFile(filepath.Join(dir, "FBTCV246001234S_parties.png"))
	require.NoError(t, err)
	require.Equal(t, image, stored)
}
