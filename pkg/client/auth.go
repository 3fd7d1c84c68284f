package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/driftbox/driftbox/pkg/models"
	"github.com/driftbox/driftbox/pkg/protocol"
)

// Login authenticates with email/password. The session cookie lands in
// the jar; the returned record identifies the user.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var resp protocol.UserResponse
	err := c.postJSON(ctx, http.MethodPost, "/api/user/login", protocol.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.Session, error) {
	var resp protocol.UserResponse
	err := c.postJSON(ctx, http.MethodPost, "/api/user/register", protocol.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout revokes the session server-side. The local jar is cleared by the
// caller regardless of the outcome here.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, http.MethodPost, "/api/user/logout", nil, nil)
}

// Profile returns the user for the current session cookie. Used to
// restore a session at startup.
func (c *Client) Profile(ctx context.Context) (*models.Session, error) {
	var resp protocol.UserResponse
	if err := c.getJSON(ctx, "/api/user/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SessionFile is the on-disk copy of the session cookies, the CLI's
// equivalent of the browser's cookie store.
type SessionFile struct {
	Server  string    `json:"server"`
	SavedAt time.Time `json:"saved_at"`
	Cookies []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"cookies"`
}

// SessionFilePath returns the default path for the session file.
func SessionFilePath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "driftbox", "session.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "driftbox", "session.json")
}

// SaveSession writes the jar's cookies for the server to disk.
func (c *Client) SaveSession() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	sf := SessionFile{Server: c.baseURL, SavedAt: time.Now()}
	for _, ck := range c.jar.Cookies(u) {
		sf.Cookies = append(sf.Cookies, struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		}{ck.Name, ck.Value})
	}

	path := SessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadSession restores saved cookies into the jar. Returns false when no
// usable session file exists for this server.
func (c *Client) LoadSession() bool {
	data, err := os.ReadFile(SessionFilePath())
	if err != nil {
		return false
	}
	var sf SessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return false
	}
	if sf.Server != c.baseURL || len(sf.Cookies) == 0 {
		return false
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	cookies := make([]*http.Cookie, 0, len(sf.Cookies))
	for _, ck := range sf.Cookies {
		cookies = append(cookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	c.jar.SetCookies(u, cookies)
	return true
}

// ClearSession drops saved cookies from disk and resets the jar.
func (c *Client) ClearSession() {
	_ = os.Remove(SessionFilePath())

	// cookiejar has no clear operation; a fresh jar does the job.
	if jar, err := newJar(); err == nil {
		c.jar = jar
		c.httpClient.Jar = jar
	}
}
