package model

import (
	"encoding/json"
	"errors"
)

// AuthTokenKey is the persisted storage key written by the auth provider.
const AuthTokenKey = "authToken"

var (
	ErrSessionMissing   = errors.New("session missing")
	ErrSessionMalformed = errors.New("session malformed")
)

type User struct {
	ID string
}

// Session is the authenticated identity read from persisted storage.
type Session struct {
	User  User
	Token string
}

type authToken struct {
	Data struct {
		User struct {
			ID string `json:"_id"`
		} `json:"user"`
		Token string `json:"token"`
	} `json:"data"`
}

// ParseSession decodes the persisted authToken value,
// {"data":{"user":{"_id":"..."},"token":"..."}}.
func ParseSession(raw string) (*Session, error) {
	if raw == "" || raw == "null" {
		return nil, ErrSessionMissing
	}

	var t authToken
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, errors.Join(ErrSessionMalformed, err)
	}
	if t.Data.User.ID == "" {
		return nil, ErrSessionMalformed
	}

	return &Session{
		User:  User{ID: t.Data.User.ID},
		Token: t.Data.Token,
	}, nil
}
