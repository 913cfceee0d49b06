package member

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("member not found")
	ErrInvalidMember = errors.New("invalid member")
	ErrUsernameTaken = errors.New("username already exists")
)

// Member is one person in the household. The id equals the lowercased
// username and is what holdings reference as their owner.
type Member struct {
	ID        string
	Username  string
	Name      string
	Avatar    string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Defaults are seeded into an empty household.
var Defaults = []Member{
	{ID: "self", Username: "self", Name: "Self", Avatar: "👤"},
	{ID: "spouse", Username: "spouse", Name: "Spouse", Avatar: "💑"},
}
