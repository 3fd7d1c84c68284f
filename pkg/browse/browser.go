// Package browse holds the client-side view state for the file browser:
// the session, the breadcrumb path, and the last-fetched folder listing.
// It is the Go counterpart of the web client's view-model, with explicit
// transition methods per user action.
package browse

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/driftbox/driftbox/pkg/client"
	"github.com/driftbox/driftbox/pkg/logging"
	"github.com/driftbox/driftbox/pkg/models"
)

// ErrBusy is returned when an action is rejected because another request
// is in flight. UI-level exclusion only, per the busy-flag contract.
var ErrBusy = errors.New("another operation is in progress")

// ErrNoSession is returned by actions that need an authenticated session.
var ErrNoSession = errors.New("not logged in")

// Browser is the state container. All transitions go through its methods;
// reads return copies so callers never alias internal state.
type Browser struct {
	api *client.Client

	mu      sync.Mutex
	busy    bool
	session *models.Session
	path    Path
	items   []models.Item
}

// New creates a browser rooted at the top of the namespace.
func New(api *client.Client) *Browser {
	return &Browser{
		api:  api,
		path: NewPath(),
	}
}

// Session returns a copy of the current session, or nil when logged out.
func (b *Browser) Session() *models.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	s := *b.session
	return &s
}

// Items returns a copy of the last-fetched listing.
func (b *Browser) Items() []models.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Item(nil), b.items...)
}

// Path returns a copy of the breadcrumb trail.
func (b *Browser) Path() Path {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(Path(nil), b.path...)
}

// CurrentFolder returns the open folder's id ("" at root).
func (b *Browser) CurrentFolder() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path.Current().ID
}

// Busy reports whether a request is in flight.
func (b *Browser) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

func (b *Browser) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return ErrBusy
	}
	b.busy = true
	return nil
}

func (b *Browser) end() {
	b.mu.Lock()
	b.busy = false
	b.mu.Unlock()
}

// Login authenticates, persists the session cookies, and loads the root
// listing.
func (b *Browser) Login(ctx context.Context, email, password string) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	session, err := b.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := b.api.SaveSession(); err != nil {
		logging.Warn("could not persist session", zap.Error(err))
	}

	b.mu.Lock()
	b.session = session
	b.path = NewPath()
	b.mu.Unlock()

	return b.loadFolder(ctx, "")
}

// Register creates an account, then behaves like Login.
func (b *Browser) Register(ctx context.Context, name, email, password string) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	session, err := b.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	if err := b.api.SaveSession(); err != nil {
		logging.Warn("could not persist session", zap.Error(err))
	}

	b.mu.Lock()
	b.session = session
	b.path = NewPath()
	b.mu.Unlock()

	return b.loadFolder(ctx, "")
}

// Restore tries to resume a saved session. Failure is silent: the caller
// just isn't logged in.
func (b *Browser) Restore(ctx context.Context) bool {
	if err := b.begin(); err != nil {
		return false
	}
	defer b.end()

	if !b.api.LoadSession() {
		return false
	}
	session, err := b.api.Profile(ctx)
	if err != nil {
		logging.Debug("session restore failed", zap.Error(err))
		if client.IsUnauthorized(err) {
			b.api.ClearSession()
		}
		return false
	}

	b.mu.Lock()
	b.session = session
	b.path = NewPath()
	b.mu.Unlock()
	return true
}

// Logout revokes the session remotely and always clears local state, even
// when the remote call fails.
func (b *Browser) Logout(ctx context.Context) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	err := b.api.Logout(ctx)

	b.clearSession()
	if err != nil {
		logging.Warn("server logout failed, local session cleared anyway", zap.Error(err))
	}
	return err
}

// clearSession drops the session, the saved cookies, the listing, and
// resets the path to root.
func (b *Browser) clearSession() {
	b.api.ClearSession()
	b.mu.Lock()
	b.session = nil
	b.items = nil
	b.path = NewPath()
	b.mu.Unlock()
}

// Navigate moves to a folder and fetches its contents. Ids already on the
// breadcrumb truncate back (up); new ids append (down); "" resets to
// root. A folder deleted elsewhere falls back to root with a warning.
func (b *Browser) Navigate(ctx context.Context, folderID, folderName string) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	b.mu.Lock()
	b.path = b.path.Navigate(folderID, folderName)
	target := b.path.Current().ID
	b.mu.Unlock()

	return b.loadFolder(ctx, target)
}

// Refresh re-fetches the open folder.
func (b *Browser) Refresh(ctx context.Context) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	return b.loadFolder(ctx, b.CurrentFolder())
}

// loadFolder fetches and commits the listing for folderID. Callers hold
// the busy flag, not the mutex.
func (b *Browser) loadFolder(ctx context.Context, folderID string) error {
	items, err := b.fetchItems(ctx, folderID)

	switch {
	case err == nil:
		b.mu.Lock()
		b.items = items
		b.mu.Unlock()
		return nil

	case client.IsUnauthorized(err):
		logging.Warn("session expired")
		b.clearSession()
		return err

	case client.IsNotFound(err) && folderID != "":
		logging.Warn("folder no longer exists, returning to root",
			zap.String("folder_id", folderID))
		b.mu.Lock()
		b.path = NewPath()
		b.mu.Unlock()
		return b.loadFolder(ctx, "")

	default:
		return err
	}
}

// fetchItems issues the folder and file listings concurrently and merges
// them: folders first, then files, alphabetical within each group.
func (b *Browser) fetchItems(ctx context.Context, folderID string) ([]models.Item, error) {
	var (
		wg      sync.WaitGroup
		folders []models.Item
		files   []models.Item
		ferr    error
		gerr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		folders, ferr = b.api.ListFolders(ctx, folderID)
	}()
	go func() {
		defer wg.Done()
		files, gerr = b.api.ListFiles(ctx, folderID)
	}()
	wg.Wait()

	if ferr != nil {
		return nil, ferr
	}
	if gerr != nil {
		return nil, gerr
	}

	items := append(folders, files...)
	SortItems(items)
	return items, nil
}

// SortItems orders a listing for display: folders before files, then
// case-insensitive alphabetical within each group.
func SortItems(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsFolder() != items[j].IsFolder() {
			return items[i].IsFolder()
		}
		a, c := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != c {
			return a < c
		}
		return items[i].Name < items[j].Name
	})
}

// mutate runs a mutation and, on success, re-fetches the open folder so
// the listing reflects the change.
func (b *Browser) mutate(ctx context.Context, fn func(folderID string) error) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return ErrNoSession
	}
	folderID := b.path.Current().ID
	b.mu.Unlock()

	if err := fn(folderID); err != nil {
		if client.IsUnauthorized(err) {
			logging.Warn("session expired")
			b.clearSession()
		}
		return err
	}
	return b.loadFolder(ctx, folderID)
}

// Upload stores content as a new file in the open folder.
func (b *Browser) Upload(ctx context.Context, name string, content io.Reader) error {
	return b.mutate(ctx, func(folderID string) error {
		_, err := b.api.Upload(ctx, folderID, name, content)
		return err
	})
}

// UploadFile uploads a local file into the open folder.
func (b *Browser) UploadFile(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Upload(ctx, filepath.Base(localPath), f)
}

// CreateFolder creates a folder inside the open folder.
func (b *Browser) CreateFolder(ctx context.Context, name string) error {
	return b.mutate(ctx, func(folderID string) error {
		_, err := b.api.CreateFolder(ctx, name, folderID)
		return err
	})
}

// Delete removes an item. Folder deletion is recursive on the server;
// the caller must have confirmed the destructive action already.
func (b *Browser) Delete(ctx context.Context, item models.Item) error {
	return b.mutate(ctx, func(string) error {
		if item.IsFolder() {
			return b.api.DeleteFolder(ctx, item.ID)
		}
		return b.api.DeleteFile(ctx, item.ID)
	})
}

// Replace swaps the content of an existing file id with a local file's
// bytes.
func (b *Browser) Replace(ctx context.Context, fileID, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return b.mutate(ctx, func(string) error {
		_, err := b.api.Replace(ctx, fileID, filepath.Base(localPath), f)
		return err
	})
}

// Download saves a file into destDir, named by the response's
// Content-Disposition when present, falling back to fallbackName.
// Returns the written path.
func (b *Browser) Download(ctx context.Context, fileID, fallbackName, destDir string) (string, error) {
	if err := b.begin(); err != nil {
		return "", err
	}
	defer b.end()

	body, name, err := b.api.Download(ctx, fileID, fallbackName)
	if err != nil {
		if client.IsUnauthorized(err) {
			logging.Warn("session expired")
			b.clearSession()
		}
		return "", err
	}
	defer body.Close()

	dest := filepath.Join(destDir, filepath.Base(name))
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}
