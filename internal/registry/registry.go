package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"askpa/internal/model"
)

// Registry owns all user records: an in-memory map keyed by user id,
// mirrored to a single JSON file. The whole file is rewritten on every
// mutation and loaded once at startup. A mutex serializes access across
// concurrent request handlers.
type Registry struct {
	mu    sync.RWMutex
	path  string
	users map[string]model.User
}

func New(path string) *Registry {
	return &Registry{
		path:  path,
		users: make(map[string]model.User),
	}
}

// Load replaces the in-memory state with the contents of the registry file.
// A missing file is not an error; the registry starts empty.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.users = make(map[string]model.User)
			return nil
		}
		return fmt.Errorf("read registry file failed: %w", err)
	}

	users := make(map[string]model.User)
	if err := json.Unmarshal(raw, &users); err != nil {
		return fmt.Errorf("decode registry file failed: %w", err)
	}
	r.users = users
	return nil
}

// Create inserts the user and rewrites the registry file.
func (r *Registry) Create(user model.User) error {
	if user.ID == "" {
		return fmt.Errorf("user id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	if err := r.save(); err != nil {
		delete(r.users, user.ID)
		return err
	}
	return nil
}

// Delete removes the user and rewrites the registry file. Deleting an
// unknown id is a no-op. Used to roll back a signup whose vector upsert
// failed.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return nil
	}
	delete(r.users, id)
	return r.save()
}

// GetByID returns the user with the given id, or nil if absent.
func (r *Registry) GetByID(id string) *model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil
	}
	user.ID = id
	return &user
}

// FindByEmail scans for a user whose email matches exactly.
func (r *Registry) FindByEmail(email string) *model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, user := range r.users {
		if user.Email == email {
			user.ID = id
			return &user
		}
	}
	return nil
}

// FindByEmailFold scans for a user whose trimmed email matches
// case-insensitively. Login uses this; append and chat resolve by exact
// email via FindByEmail.
func (r *Registry) FindByEmailFold(email string) *model.User {
	want := strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, user := range r.users {
		if strings.ToLower(strings.TrimSpace(user.Email)) == want {
			user.ID = id
			return &user
		}
	}
	return nil
}

// Count returns the number of registered users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// save rewrites the whole registry file. Callers must hold r.mu.
func (r *Registry) save() error {
	payload, err := json.Marshal(r.users)
	if err != nil {
		return fmt.Errorf("encode registry failed: %w", err)
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		return fmt.Errorf("write registry file failed: %w", err)
	}
	return nil
}
