package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func TestUpload_MultipartFields(t *testing.T) {
	var (
		gotMethod  string
		gotPath    string
		gotFolder  string
		gotName    string
		gotContent string
	)
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotFolder = r.FormValue("folderId")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		gotName = header.Filename
		data, _ := io.ReadAll(file)
		gotContent = string(data)

		json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{"id": "f1", "name": gotName, "size": len(data), "folderId": "dir9"},
		})
	}))

	item, err := c.Upload(context.Background(), "dir9", "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/files/upload" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotFolder != "dir9" {
		t.Errorf("expected folderId dir9, got %q", gotFolder)
	}
	if gotName != "notes.txt" || gotContent != "hello" {
		t.Errorf("unexpected file part: %q %q", gotName, gotContent)
	}
	if item.ID != "f1" || item.ParentID != "dir9" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestUpload_RootOmitsFolderField(t *testing.T) {
	var hasFolder bool
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, hasFolder = r.MultipartForm.Value["folderId"]
		json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{"id": "f1", "name": "a", "size": 1, "folderId": nil},
		})
	}))

	if _, err := c.Upload(context.Background(), "", "a", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasFolder {
		t.Error("root upload must not send a folderId field")
	}
}

func TestReplace_PutAgainstFileID(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		r.ParseMultipartForm(1 << 20)
		json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{"id": "f7", "name": "a.txt", "size": 2, "folderId": nil},
		})
	}))

	item, err := c.Replace(context.Background(), "f7", "a.txt", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/files/f7" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if item.ID != "f7" {
		t.Errorf("replace must keep the file id, got %q", item.ID)
	}
}

func TestDownload_ContentDispositionWins(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report final.pdf"`)
		w.Write([]byte("pdfbytes"))
	}))

	body, name, err := c.Download(context.Background(), "f1", "fallback.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	if name != "report final.pdf" {
		t.Errorf("expected header filename, got %q", name)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "pdfbytes" {
		t.Errorf("unexpected body %q", data)
	}
}

func TestDownload_FallbackName(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))

	body, name, err := c.Download(context.Background(), "f1", "known-name.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body.Close()
	if name != "known-name.bin" {
		t.Errorf("expected fallback name, got %q", name)
	}
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="a.bin"`)
		w.Write([]byte("payload"))
	}))

	body, name, err := c.Download(context.Background(), "f1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
	if name != "a.bin" {
		t.Errorf("unexpected name %q", name)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "payload" {
		t.Errorf("unexpected body %q", data)
	}
}

func TestDownload_NotFoundNotRetried(t *testing.T) {
	var attempts atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, _, err := c.Download(context.Background(), "gone", "x"); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts.Load())
	}
}

func TestDownload_NoNameAtAll(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))

	if _, _, err := c.Download(context.Background(), "f1", ""); err == nil {
		t.Fatal("expected error when no filename is available")
	}
}

func TestDeleteFile_Request(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.DeleteFile(context.Background(), "f3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/files/f3" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
}
