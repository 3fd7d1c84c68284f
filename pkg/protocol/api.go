// Package protocol defines the API request/response types.
package protocol

import "github.com/driftbox/driftbox/pkg/models"

// LoginRequest is the body for POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body for POST /api/user/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is returned by the login, register and profile endpoints.
type UserResponse struct {
	User models.Session `json:"user"`
}

// ErrorResponse is returned on API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Folder is a folder record on the wire. ParentID is null for folders
// directly under root.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// File is a file record on the wire. FolderID is null for files directly
// under root.
type File struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	FolderID *string `json:"folderId"`
}

// FolderListResponse is returned by GET /api/folders.
type FolderListResponse struct {
	Folders []Folder `json:"folders"`
}

// FileListResponse is returned by GET /api/files.
type FileListResponse struct {
	Files []File `json:"files"`
}

// CreateFolderRequest is the body for POST /api/folders. ParentID is nil
// when creating under root.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// FolderResponse is returned by POST /api/folders.
type FolderResponse struct {
	Folder Folder `json:"folder"`
}

// FileResponse is returned by the upload and replace endpoints.
type FileResponse struct {
	File File `json:"file"`
}
