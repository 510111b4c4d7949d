package model

import "time"

// PlayerID uniquely identifies a player
type PlayerID string

const (
	// MaxDisplayNameLength is counted in runes
	MaxDisplayNameLength = 40

	guestNamePrefix = "Guest "
)

// Player is someone who can own games. Guests have no login and expire; a
// registered player also has a RegisteredPlayer record.
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool
	CreatedAt   time.Time
}

// GuestDisplayName is the name given to a guest who did not choose one:
// "Guest " plus the first four characters of suffix
func GuestDisplayName(suffix string) string {
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return guestNamePrefix + suffix
}

// RegisteredPlayer holds login credentials. It is stored apart from Player
// so the password hash never travels with a session.
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // lower-cased, immutable
	PasswordHash string // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
