package browse

import "github.com/driftbox/driftbox/pkg/models"

// RootName is the display name of the breadcrumb root sentinel.
const RootName = "Root"

// Path is the breadcrumb trail from root to the open folder. It is never
// empty and its last entry is the currently open folder.
type Path []models.Crumb

// NewPath returns a path containing only the root sentinel.
func NewPath() Path {
	return Path{{ID: "", Name: RootName}}
}

// Current returns the open folder's crumb.
func (p Path) Current() models.Crumb {
	return p[len(p)-1]
}

// Navigate returns the path after moving to the given folder. An id
// already on the path truncates back to it (navigating up); an empty id
// resets to root; anything else appends (navigating down). Truncation is
// what keeps ids unique on the path.
func (p Path) Navigate(id, name string) Path {
	if id == "" {
		return NewPath()
	}
	for i, crumb := range p {
		if crumb.ID == id {
			return append(Path(nil), p[:i+1]...)
		}
	}
	next := append(Path(nil), p...)
	return append(next, models.Crumb{ID: id, Name: name})
}
