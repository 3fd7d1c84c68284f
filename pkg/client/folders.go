package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/driftbox/driftbox/pkg/models"
	"github.com/driftbox/driftbox/pkg/protocol"
)

// ListFolders lists the folders under parentID. An empty parentID means
// root: the query parameter is omitted and the server returns top-level
// folders.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]models.Item, error) {
	query := url.Values{}
	if parentID != "" {
		query.Set("parentId", parentID)
	}

	var resp protocol.FolderListResponse
	if err := c.getJSON(ctx, "/api/folders", query, &resp); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(resp.Folders))
	for _, f := range resp.Folders {
		items = append(items, models.Item{
			ID:       f.ID,
			Name:     f.Name,
			Type:     models.TypeFolder,
			ParentID: deref(f.ParentID),
		})
	}
	return items, nil
}

// CreateFolder creates a folder under parentID ("" for root).
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*models.Item, error) {
	req := protocol.CreateFolderRequest{Name: name}
	if parentID != "" {
		req.ParentID = &parentID
	}

	var resp protocol.FolderResponse
	if err := c.postJSON(ctx, http.MethodPost, "/api/folders", req, &resp); err != nil {
		return nil, err
	}
	return &models.Item{
		ID:       resp.Folder.ID,
		Name:     resp.Folder.Name,
		Type:     models.TypeFolder,
		ParentID: deref(resp.Folder.ParentID),
	}, nil
}

// DeleteFolder deletes a folder. The server deletes descendants
// recursively; callers confirm before dispatching.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.postJSON(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
