// Package models contains the data types shared by the client and CLI.
package models

// ItemType distinguishes files from folders in a listing.
type ItemType string

const (
	TypeFile   ItemType = "file"
	TypeFolder ItemType = "folder"
)

// Session is the authenticated user record. It is ephemeral: created on
// login/register or a successful profile restore, destroyed on logout or
// on any authorization failure.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item is a file or folder record as returned by the backend. The client
// holds a read-only snapshot per folder view; nothing is cached across
// navigations.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     ItemType `json:"type"`
	Size     int64    `json:"size,omitempty"`
	ParentID string   `json:"parentId,omitempty"`
}

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool {
	return i.Type == TypeFolder
}

// Crumb is one entry of the breadcrumb path. The root sentinel has an
// empty ID and the name "Root".
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
