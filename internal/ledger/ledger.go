package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	foundSuffix    = "_parties.png"
	notFoundSuffix = "_no_parties_found.txt"
)

// Ledger is the filesystem record of which dockets have already produced an
// extraction artifact. Presence of either marker makes a docket processed
// and excludes it from future sweeps. It is advisory: the case store stays
// authoritative.
type Ledger struct {
	dir string
}

// New creates the ledger directory if needed.
func New(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &Ledger{dir: dir}, nil
}

// Processed returns the set of dockets with a found or not-found marker.
func (l *Ledger) Processed() (map[string]bool, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}

	processed := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, foundSuffix):
			processed[strings.TrimSuffix(name, foundSuffix)] = true
		case strings.HasSuffix(name, notFoundSuffix):
			processed[strings.TrimSuffix(name, notFoundSuffix)] = true
		}
	}
	return processed, nil
}

// IsProcessed reports whether either marker exists for the docket.
func (l *Ledger) IsProcessed(docket string) bool {
	if _, err := os.Stat(l.foundPath(docket)); err == nil {
		return true
	}
	if _, err := os.Stat(l.notFoundPath(docket)); err == nil {
		return true
	}
	return false
}

// WriteFound stores the selected parties-page image for the docket.
func (l *Ledger) WriteFound(docket string, image []byte) error {
	if err := os.WriteFile(l.foundPath(docket), image, 0644); err != nil {
		return fmt.Errorf("failed to write parties-page artifact: %w", err)
	}
	return nil
}

// WriteNotFound records that no parties page was detected for the docket.
func (l *Ledger) WriteNotFound(docket, note string) error {
	if err := os.WriteFile(l.notFoundPath(docket), []byte(note+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write not-found marker: %w", err)
	}
	return nil
}

func (l *Ledger) foundPath(docket string) string {
	return filepath.Join(l.dir, docket+foundSuffix)
}

func (l *Ledger) notFoundPath(docket string) string {
	return filepath.Join(l.dir, docket+notFoundSuffix)
}
