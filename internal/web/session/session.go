// Package session stores login sessions keyed by an opaque bearer token.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Storage is the subset of the fiber storage interface used for sessions.
// Get returns nil without error when the key does not exist.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Close() error
}

// Data represents the session data structure.
type Data struct {
	EmployeeID uint      `json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store writes and reads session data.
type Store struct {
	storage Storage
	ttl     time.Duration
}

// New creates a store on storage. Sessions expire after ttl.
func New(storage Storage, ttl time.Duration) *Store {
	if storage == nil {
		panic("storage is nil")
	}

	return &Store{storage: storage, ttl: ttl}
}

// TTL returns the session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for the employee and returns its token.
func (s *Store) Create(employeeID uint) (string, error) {
	token := uuid.NewString()

	out, err := json.Marshal(Data{EmployeeID: employeeID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}

	if err = s.storage.Set(token, out, s.ttl); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}

	return token, nil
}

// Read reads the session data for the given token.
func (s *Store) Read(token string) (*Data, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrSessionNotFound
	}

	byteData, err := s.storage.Get(token)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if len(byteData) == 0 {
		return nil, ErrSessionNotFound
	}

	d := new(Data)
	if err = json.Unmarshal(byteData, d); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if d.EmployeeID == 0 {
		return nil, ErrSessionNotFound
	}

	return d, nil
}

// Delete ends the session of token.
func (s *Store) Delete(token string) error {
	return s.storage.Delete(token)
}

// Close releases the storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
