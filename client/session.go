package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"logitrack-api/models"

	"gopkg.in/yaml.v3"
)

// IdleTimeout is how long a session survives without activity
const IdleTimeout = 10 * time.Minute

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrForbidden      = errors.New("you do not have access to this page")
)

// stored is the on-disk form of a session
type stored struct {
	User         models.UserInfo `yaml:"user"`
	Token        string          `yaml:"token"`
	LastActivity time.Time       `yaml:"last_activity"`
}

// Session holds the logged-in user and token in memory and mirrors them to a
// file. An empty path keeps the session in memory only.
type Session struct {
	mu           sync.Mutex
	path         string
	user         *models.UserInfo
	token        string
	lastActivity time.Time
	now          func() time.Time
}

func NewSession(path string) *Session {
	return &Session{path: path, now: time.Now}
}

// DefaultSessionPath is the session file under the user config directory
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logitrack", "session.yaml"), nil
}

// Load restores a saved session. A session idle for longer than IdleTimeout
// is deleted and reported as ErrSessionExpired; a missing file is not an error.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	var st stored
	if err := yaml.Unmarshal(data, &st); err != nil {
		// a corrupt file is treated like no session
		_ = os.Remove(s.path)
		return nil
	}
	if st.Token == "" {
		return nil
	}
	if s.now().Sub(st.LastActivity) > IdleTimeout {
		_ = os.Remove(s.path)
		return ErrSessionExpired
	}
	s.user = &st.User
	s.token = st.Token
	s.lastActivity = st.LastActivity
	return nil
}

// Set stores a freshly issued token
func (s *Session) Set(user models.UserInfo, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.token = token
	s.lastActivity = s.now()
	return s.saveLocked()
}

// Touch records activity so the idle clock restarts
func (s *Session) Touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return nil
	}
	s.lastActivity = s.now()
	return s.saveLocked()
}

// Clear forgets the user in memory and on disk
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.lastActivity = time.Time{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Session) saveLocked() error {
	if s.path == "" || s.user == nil {
		return nil
	}
	data, err := yaml.Marshal(stored{User: *s.user, Token: s.token, LastActivity: s.lastActivity})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the logged-in user; ok is false for guests
func (s *Session) User() (user models.UserInfo, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.UserInfo{}, false
	}
	return *s.user, true
}

// Require is the route guard: the session must be logged in and, when roles
// are given, hold one of them.
func (s *Session) Require(roles ...models.UserRole) (models.UserInfo, error) {
	user, ok := s.User()
	if !ok {
		return models.UserInfo{}, ErrNotLoggedIn
	}
	if len(roles) > 0 && !slices.Contains(roles, user.Role) {
		return user, ErrForbidden
	}
	return user, nil
}
