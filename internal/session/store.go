package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/spf13/afero"
)

// Store is a typed key-value store over files in one directory.
//
// Every public method swallows I/O failures: a store that cannot be read
// behaves as empty, and a write that fails leaves the previous value. The
// failure is logged at WARN so it can still be diagnosed.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *logging.Logger
	mu     sync.RWMutex
}

// New creates a Store rooted at dir on fs. The directory is created lazily
// on first write.
func New(fs afero.Fs, dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{fs: fs, dir: dir, logger: logger.With("component", "session")}
}

// NewOS creates a Store on the real filesystem.
func NewOS(dir string, logger *logging.Logger) *Store {
	return New(afero.NewOsFs(), dir, logger)
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// -----------------------------------------------------------------------------
// Admin token
// -----------------------------------------------------------------------------

// Token returns the stored admin token, or "" when logged out.
func (s *Store) Token() string {
	return s.get(KeyAdminToken)
}

// HasToken reports whether an admin token is stored.
func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// SetToken stores a freshly issued admin token.
func (s *Store) SetToken(token string) {
	if token == "" {
		s.ClearToken()
		return
	}
	s.set(KeyAdminToken, token)
}

// ClearToken removes the admin token.
func (s *Store) ClearToken() {
	s.remove(KeyAdminToken)
}

// -----------------------------------------------------------------------------
// Purchase form memory
// -----------------------------------------------------------------------------

// LastContact returns the contact last used in a purchase form.
func (s *Store) LastContact() string {
	return s.get(KeyLastContact)
}

// SetLastContact remembers a contact. Empty values are ignored so clearing
// a field does not forget the previous buyer.
func (s *Store) SetLastContact(contact string) {
	if strings.TrimSpace(contact) == "" {
		return
	}
	s.set(KeyLastContact, contact)
}

// LastQueryPassword returns the query password last used in a purchase form.
func (s *Store) LastQueryPassword() string {
	return s.get(KeyLastQueryPwd)
}

// SetLastQueryPassword remembers a query password. Empty values are ignored.
func (s *Store) SetLastQueryPassword(password string) {
	if password == "" {
		return
	}
	s.set(KeyLastQueryPwd, password)
}

// -----------------------------------------------------------------------------
// Order history
// -----------------------------------------------------------------------------

// History returns the recorded orders, oldest first. A missing or malformed
// history reads as empty and is left untouched on disk.
func (s *Store) History() []model.HistoryEntry {
	raw := s.get(KeyOrderHistory)
	if raw == "" {
		return nil
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.warn(errors.NewSessionError("failed to decode history", errors.ErrStorageCorrupted).WithKey(KeyOrderHistory), err)
		return nil
	}
	return entries
}

// LastHistoryEntry returns the most recent history entry.
func (s *Store) LastHistoryEntry() (model.HistoryEntry, bool) {
	entries := s.History()
	if len(entries) == 0 {
		return model.HistoryEntry{}, false
	}
	return entries[len(entries)-1], true
}

// AppendHistory records an order. Only the newest entries are kept.
func (s *Store) AppendHistory(entry model.HistoryEntry) {
	entries := append(s.History(), entry)
	if len(entries) > historyLimit {
		entries = entries[len(entries)-historyLimit:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		s.warn(errors.NewSessionError("failed to encode history", err).WithKey(KeyOrderHistory), err)
		return
	}
	s.set(KeyOrderHistory, string(data))
}

// Prefill returns the contact and query password to seed a lookup form.
// The explicitly remembered password wins over the latest history entry.
func (s *Store) Prefill() (contact, password string) {
	contact = s.LastContact()
	password = s.LastQueryPassword()

	if last, ok := s.LastHistoryEntry(); ok {
		if password == "" {
			password = last.QueryPassword
		}
		if contact == "" {
			contact = last.Contact
		}
	}
	return contact, password
}

// -----------------------------------------------------------------------------
// File access
// -----------------------------------------------------------------------------

func (s *Store) keyToPath(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *Store) get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := afero.ReadFile(s.fs, s.keyToPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn(errors.NewSessionError("failed to read key", errors.ErrStorageUnavailable).WithKey(key), err)
		}
		return ""
	}
	return string(data)
}

func (s *Store) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(key, []byte(value)); err != nil {
		s.warn(errors.NewSessionError("failed to write key", errors.ErrStorageUnavailable).WithKey(key), err)
	}
}

func (s *Store) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.keyToPath(key)); err != nil && !os.IsNotExist(err) {
		s.warn(errors.NewSessionError("failed to remove key", errors.ErrStorageUnavailable).WithKey(key), err)
	}
}

// write replaces a key atomically: temp file in the same directory, then rename.
func (s *Store) write(key string, data []byte) error {
	if err := s.fs.MkdirAll(s.dir, storageDirMode); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = s.fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	_ = s.fs.Chmod(tmpPath, storageFileMode)

	if err := s.fs.Rename(tmpPath, s.keyToPath(key)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *Store) warn(err *errors.SessionError, cause error) {
	s.logger.Warn(err.Error(), "key", err.Key, "cause", cause.Error())
}
