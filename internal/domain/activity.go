package domain

import "slices"

// Activity is an extracurricular offering together with its participant roster.
// Name is the primary key across every store backend.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	// Participants holds student emails in signup order.
	Participants []string
}

// HasParticipant reports whether email is already on the roster.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// Clone returns a copy that shares no slice memory with a.
func (a Activity) Clone() Activity {
	cp := a
	cp.Participants = append([]string{}, a.Participants...)
	return cp
}
