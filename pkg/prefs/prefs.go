// Package prefs persists user-facing view settings. Reads always have a
// safe default and writes are best-effort: a broken or missing backing
// file must never take the view down, so failures are logged and
// swallowed.
package prefs

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Store is the persisted-preference collaborator. Implementations must
// tolerate unavailable backing storage on every call.
type Store interface {
	GetBool(key string, def bool) bool
	SetBool(key string, value bool)
	GetString(key string, def string) string
	SetString(key string, value string)
}

// FileStore is the durable implementation, surviving restarts. It keeps
// preferences in a small JSON file managed through viper.
type FileStore struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
	log  zerolog.Logger
}

// NewFileStore opens (or lazily creates) the preference file at path.
// A read failure is not an error; the store just starts empty.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	s := &FileStore{
		v:    v,
		path: path,
		log:  log.With().Str("component", "prefs").Str("path", path).Logger(),
	}
	if err := v.ReadInConfig(); err != nil {
		s.log.Debug().Err(err).Msg("no readable preference file, starting empty")
	}
	return s
}

func (s *FileStore) GetBool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetBool(key)
}

func (s *FileStore) SetBool(key string, value bool) {
	s.set(key, value)
}

func (s *FileStore) GetString(key string, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetString(key)
}

func (s *FileStore) SetString(key string, value string) {
	s.set(key, value)
}

func (s *FileStore) set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to persist preference")
	}
}

// SessionStore is the in-memory implementation for transient UI state
// (expanded year groups and the like); it lives only as long as the
// process.
type SessionStore struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewSessionStore returns an empty session-scoped store.
func NewSessionStore() *SessionStore {
	return &SessionStore{values: make(map[string]interface{})}
}

func (s *SessionStore) GetBool(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(bool); ok {
		return v
	}
	return def
}

func (s *SessionStore) SetBool(key string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *SessionStore) GetString(key string, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return def
}

func (s *SessionStore) SetString(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
