package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const sessionsFile = "sessions.json"

// Session is a saved login that can be restored on the next launch.
type Session struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Homeserver  string `json:"homeserver"`
	AccessToken string `json:"access_token"`
	DeviceID    string `json:"device_id"`
}

// Store persists sessions as pretty-printed JSON in a single file under dir.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, or at the platform data
// directory when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the platform-specific data directory for session storage
func DefaultDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "gamechat")
}

func (s *Store) path() string {
	return filepath.Join(s.dir, sessionsFile)
}

// Sessions loads all saved sessions. A missing file is not an error.
func (s *Store) Sessions() ([]Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions file: %w", err)
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions file: %w", err)
	}
	return sessions, nil
}

// Save stores a session, replacing any existing one for the same user ID.
// An unreadable sessions file is treated as empty and overwritten.
func (s *Store) Save(sess Session) error {
	sessions, _ := s.Sessions()

	replaced := false
	for i := range sessions {
		if sessions[i].UserID == sess.UserID {
			sessions[i] = sess
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, sess)
	}

	return s.write(sessions)
}

// Delete removes the session for userID, if any.
func (s *Store) Delete(userID string) error {
	sessions, _ := s.Sessions()

	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.UserID != userID {
			kept = append(kept, sess)
		}
	}

	return s.write(kept)
}

// Remembered returns all saved sessions for the profile switcher. It never
// fails; any read or parse error yields an empty list.
func (s *Store) Remembered() []Session {
	sessions, err := s.Sessions()
	if err != nil {
		return nil
	}
	return sessions
}

func (s *Store) write(sessions []Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	if sessions == nil {
		sessions = []Session{}
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(), data, 0644)
}
