// Package session ties the credential and the History Cache into one
// explicit context object, so aggregation stays testable without simulating
// an interactive login.
package session

import (
	"github.com/phishscope/phishscope/pkg/history"
)

// Session is the lifecycle owner of the History Cache. An empty Token is a
// valid anonymous session: scanning works, stored-history retrieval does not.
type Session struct {
	UserID      string
	DisplayName string
	Token       string
	History     *history.History
}

func Start(userID, displayName, token string) *Session {
	return &Session{
		UserID:      userID,
		DisplayName: displayName,
		Token:       token,
		History:     history.New(),
	}
}

// Authenticated reports whether a bearer credential is present.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// End clears the session's history. The cache never outlives the session.
func (s *Session) End() {
	s.History.Clear()
	s.Token = ""
}
