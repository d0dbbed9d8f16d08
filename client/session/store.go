package session

import (
	"encoding/json"
	"fmt"

	"github.com/mysupport/mysupport/models"
)

// State is what the app knows about the signed-in user. A non-empty Token is
// all that decides whether the app shows the authenticated view.
type State struct {
	Token string
	User  *models.User
}

// Authenticated reports whether a token is present.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Store reads and writes State through a Storage.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Load returns the persisted state. A user record that does not parse is
// treated as absent; the token alone still counts.
func (s *Store) Load() (State, error) {
	token, _, err := s.storage.Get(KeyToken)
	if err != nil {
		return State{}, err
	}

	state := State{Token: token}

	raw, ok, err := s.storage.Get(KeyUser)
	if err != nil {
		return State{}, err
	}
	if ok && raw != "" {
		var user models.User
		if json.Unmarshal([]byte(raw), &user) == nil {
			state.User = &user
		}
	}
	return state, nil
}

// Save writes both keys.
func (s *Store) Save(token string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		return err
	}
	return s.storage.Set(KeyUser, string(data))
}

// Clear removes both keys.
func (s *Store) Clear() error {
	if err := s.storage.Delete(KeyToken); err != nil {
		return err
	}
	return s.storage.Delete(KeyUser)
}

// LoadSession reads the state once at startup. Storage failures yield an
// empty state, which shows the auth gate.
func LoadSession(storage Storage) State {
	state, err := NewStore(storage).Load()
	if err != nil {
		return State{}
	}
	return state
}
