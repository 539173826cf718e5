package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on a failed Authenticate.
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is a stored account record.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// Repository stores user accounts.
type Repository interface {
	// Lookup returns the user by username, or false when absent.
	Lookup(username string) (*User, bool)

	// Authenticate verifies credentials and returns a principal.
	Authenticate(username, password string) (*Principal, error)

	// Create adds a new user with a hashed password.
	Create(username, email, password string, role Role) (*User, error)
}

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

// SeedDefaults creates one account per role for local use.
func (r *MemoryRepository) SeedDefaults() error {
	defaults := []struct {
		username string
		password string
		role     Role
	}{
		{"admin", "admin123", RoleAdmin},
		{"editor", "editor123", RoleEditor},
		{"viewer", "viewer123", RoleViewer},
		{"guest", "guest123", RoleGuest},
	}
	for _, d := range defaults {
		if _, ok := r.Lookup(d.username); ok {
			continue
		}
		email := d.username + "@example.com"
		if _, err := r.Create(d.username, email, d.password, d.role); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the user by username.
func (r *MemoryRepository) Lookup(username string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	return u, ok
}

// Authenticate verifies credentials and returns a principal with the
// permission set derived from the stored role.
func (r *MemoryRepository) Authenticate(username, password string) (*Principal, error) {
	r.mu.RLock()
	u, ok := r.users[username]
	r.mu.RUnlock()

	if !ok || !u.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return NewPrincipal(u.ID, u.Username, u.Role), nil
}

// Create adds a new user.
func (r *MemoryRepository) Create(username, email, password string, role Role) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return nil, fmt.Errorf("user %q already exists", username)
	}

	u := &User{
		ID:           "usr_" + uuid.NewString()[:8],
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	r.users[username] = u
	return u, nil
}

// All returns every user, for listing.
func (r *MemoryRepository) All() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}
