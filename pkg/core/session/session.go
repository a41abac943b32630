// Package session gates the interactive shell behind a password.
package session

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// State of a session
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// ErrIncorrectPassword is returned by Login when the password does not match
var ErrIncorrectPassword = errors.New("the password you entered is incorrect")

// ErrNotAuthenticated is returned by Require before a successful login
var ErrNotAuthenticated = errors.New("not logged in")

// Store holds session state between commands
type Store interface {
	Get() State
	Set(State)
}

// MemoryStore keeps state for the lifetime of the process
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

func (s *MemoryStore) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *MemoryStore) Set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Gate moves a session from Unauthenticated to Authenticated on a correct
// password. A gate with no password hash is always open.
type Gate struct {
	hash  []byte
	store Store
}

// NewGate creates a gate for a bcrypt hash. An empty hash disables the gate.
func NewGate(passwordHash string, store Store) (*Gate, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid session password hash: %w", err)
		}
	}
	if store == nil {
		store = &MemoryStore{}
	}
	return &Gate{hash: []byte(passwordHash), store: store}, nil
}

// Enabled reports whether a password is required
func (g *Gate) Enabled() bool {
	return len(g.hash) > 0
}

// State returns the current state
func (g *Gate) State() State {
	if !g.Enabled() {
		return Authenticated
	}
	return g.store.Get()
}

// Login checks the password. A wrong password leaves the state unchanged.
func (g *Gate) Login(password string) error {
	if !g.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrIncorrectPassword
		}
		return fmt.Errorf("failed to check password: %w", err)
	}
	g.store.Set(Authenticated)
	return nil
}

// Logout returns the session to Unauthenticated
func (g *Gate) Logout() {
	g.store.Set(Unauthenticated)
}

// Require returns ErrNotAuthenticated unless the session is authenticated
func (g *Gate) Require() error {
	if g.State() != Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for sessionPasswordHash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
