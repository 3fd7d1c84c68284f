package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/driftbox/driftbox/pkg/models"
	"github.com/driftbox/driftbox/pkg/protocol"
	"github.com/driftbox/driftbox/pkg/retry"
)

// ListFiles lists the files under folderID ("" for root).
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]models.Item, error) {
	query := url.Values{}
	if folderID != "" {
		query.Set("folderId", folderID)
	}

	var resp protocol.FileListResponse
	if err := c.getJSON(ctx, "/api/files", query, &resp); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(resp.Files))
	for _, f := range resp.Files {
		items = append(items, models.Item{
			ID:       f.ID,
			Name:     f.Name,
			Type:     models.TypeFile,
			Size:     f.Size,
			ParentID: deref(f.FolderID),
		})
	}
	return items, nil
}

// Upload streams a multipart upload of content into folderID ("" for
// root) under the given name.
func (c *Client) Upload(ctx context.Context, folderID, name string, content io.Reader) (*models.Item, error) {
	return c.uploadMultipart(ctx, http.MethodPost, "/api/files/upload", folderID, name, content)
}

// Replace re-uploads content against an existing file id, keeping the id
// stable while swapping the bytes.
func (c *Client) Replace(ctx context.Context, fileID, name string, content io.Reader) (*models.Item, error) {
	return c.uploadMultipart(ctx, http.MethodPut, "/api/files/"+url.PathEscape(fileID), "", name, content)
}

func (c *Client) uploadMultipart(ctx context.Context, method, path, folderID, name string, content io.Reader) (*models.Item, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()

		if folderID != "" {
			if err = mw.WriteField("folderId", folderID); err != nil {
				return
			}
		}
		var part io.Writer
		part, err = mw.CreateFormFile("file", name)
		if err != nil {
			return
		}
		if _, err = io.Copy(part, content); err != nil {
			return
		}
		err = mw.Close()
	}()

	req, err := c.newRequest(ctx, method, path, nil, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var fileResp protocol.FileResponse
	if err := decodeJSON(resp.Body, &fileResp); err != nil {
		return nil, err
	}
	return &models.Item{
		ID:       fileResp.File.ID,
		Name:     fileResp.File.Name,
		Type:     models.TypeFile,
		Size:     fileResp.File.Size,
		ParentID: deref(fileResp.File.FolderID),
	}, nil
}

// DeleteFile deletes a file. Callers confirm before dispatching.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.postJSON(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

// Download fetches a file's bytes. The returned name comes from the
// Content-Disposition header when present, otherwise fallbackName. The
// caller owns the reader. Like the other reads, establishing the response
// retries on network errors and 5xx; the body itself streams once.
func (c *Client) Download(ctx context.Context, fileID, fallbackName string) (io.ReadCloser, string, error) {
	var resp *http.Response
	err := retry.Do(ctx, c.retryConfig, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, "/api/files/download/"+url.PathEscape(fileID), nil, nil)
		if err != nil {
			return err
		}
		r, err := c.do(req)
		if err != nil {
			return markTransient(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	name := fallbackName
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if fn := params["filename"]; fn != "" {
				name = fn
			}
		}
	}
	if name == "" {
		resp.Body.Close()
		return nil, "", fmt.Errorf("download %s: no filename available", fileID)
	}

	return resp.Body, name, nil
}
