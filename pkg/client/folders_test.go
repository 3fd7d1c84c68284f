package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/driftbox/driftbox/pkg/models"
)

func TestListFolders_ParentQuery(t *testing.T) {
	var gotParent string
	var hasParent bool
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParent = r.URL.Query().Get("parentId")
		_, hasParent = r.URL.Query()["parentId"]
		json.NewEncoder(w).Encode(map[string]any{
			"folders": []map[string]any{
				{"id": "d1", "name": "docs", "parentId": "p1"},
			},
		})
	}))

	items, err := c.ListFolders(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotParent != "p1" {
		t.Errorf("expected parentId=p1, got %q", gotParent)
	}
	if len(items) != 1 || items[0].Type != models.TypeFolder || items[0].ParentID != "p1" {
		t.Errorf("unexpected items: %+v", items)
	}

	// Root listing omits the parameter entirely.
	if _, err := c.ListFolders(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasParent {
		t.Error("root listing must not send parentId")
	}
}

func TestCreateFolder_NullParentAtRoot(t *testing.T) {
	var body struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
	}
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"folder": map[string]any{"id": "d2", "name": body.Name, "parentId": body.ParentID},
		})
	}))

	item, err := c.CreateFolder(context.Background(), "inbox", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Name != "inbox" || body.ParentID != nil {
		t.Errorf("unexpected request body: %+v", body)
	}
	if item.ParentID != "" {
		t.Errorf("expected empty parent for root folder, got %q", item.ParentID)
	}
}

func TestCreateFolder_WithParent(t *testing.T) {
	var body struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
	}
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"folder": map[string]any{"id": "d3", "name": body.Name, "parentId": body.ParentID},
		})
	}))

	if _, err := c.CreateFolder(context.Background(), "sub", "p9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.ParentID == nil || *body.ParentID != "p9" {
		t.Errorf("expected parentId p9, got %v", body.ParentID)
	}
}

func TestDeleteFolder_Request(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.DeleteFolder(context.Background(), "d4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/folders/d4" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
}
