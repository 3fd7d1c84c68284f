// Package ui implements the interactive item picker for the browse
// command.
package ui

import (
	"errors"
	"fmt"

	"github.com/koki-develop/go-fzf"

	"github.com/driftbox/driftbox/pkg/browse"
	"github.com/driftbox/driftbox/pkg/models"
)

// Entry is one selectable row: a folder, a file, or the ".." parent
// navigation pseudo-entry.
type Entry struct {
	Item models.Item
	Up   bool
}

// BuildEntries turns a listing into picker rows, prepending ".." when not
// at root.
func BuildEntries(path browse.Path, items []models.Item) []Entry {
	entries := make([]Entry, 0, len(items)+1)
	if len(path) > 1 {
		entries = append(entries, Entry{Up: true})
	}
	for _, item := range items {
		entries = append(entries, Entry{Item: item})
	}
	return entries
}

// PickEntry presents the fuzzy finder over the current folder. Returns
// nil when the user cancels.
func PickEntry(path browse.Path, items []models.Item) (*Entry, error) {
	entries := BuildEntries(path, items)
	if len(entries) == 0 {
		return nil, fmt.Errorf("folder is empty")
	}

	f, err := fzf.New(
		fzf.WithPrompt(promptFor(path)),
		fzf.WithInputPosition(fzf.InputPositionTop),
		fzf.WithLimit(1),
	)
	if err != nil {
		return nil, err
	}

	idxs, err := f.Find(entries, func(i int) string {
		return FormatEntry(entries[i])
	})
	if err != nil {
		if errors.Is(err, fzf.ErrAbort) {
			return nil, nil
		}
		return nil, err
	}
	if len(idxs) == 0 {
		return nil, nil
	}
	return &entries[idxs[0]], nil
}

// FormatEntry renders one picker row.
func FormatEntry(e Entry) string {
	if e.Up {
		return "📁 .."
	}
	if e.Item.IsFolder() {
		return fmt.Sprintf("📁 %s", e.Item.Name)
	}
	return fmt.Sprintf("📄 %-40s %s", e.Item.Name, FormatSize(e.Item.Size))
}

// FormatSize renders a byte count for humans.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func promptFor(path browse.Path) string {
	var s string
	for i, crumb := range path {
		if i > 0 {
			s += "/"
		}
		s += crumb.Name
	}
	return s + " > "
}
