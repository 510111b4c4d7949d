package redis

import (
	"errors"
	"time"
)

// Config holds Redis connection settings and record lifetimes
type Config struct {
	// URL is a redis:// or rediss:// URL; the path selects the database
	URL string

	PoolSize     int
	MinIdleConns int

	// ConnectTimeout bounds the ping New uses to verify the server
	ConnectTimeout time.Duration

	// Guests and their games expire; registered players never do. Saving a
	// record refreshes its TTL, so an active game never expires mid-play.
	GuestPlayerTTL time.Duration
	GameTTL        time.Duration
	BoardTTL       time.Duration
}

// DefaultConfig returns defaults for a local Redis
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		ConnectTimeout: 5 * time.Second,
		GuestPlayerTTL: 24 * time.Hour,
		GameTTL:        72 * time.Hour,
		BoardTTL:       72 * time.Hour,
	}
}

// Validate rejects configs that would silently misbehave
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("redis url is required")
	}
	if c.GuestPlayerTTL < 0 || c.GameTTL < 0 || c.BoardTTL < 0 {
		return errors.New("redis ttls must not be negative")
	}
	if c.BoardTTL != 0 && c.BoardTTL < c.GameTTL {
		return errors.New("redis board ttl must not be shorter than the game ttl")
	}
	return nil
}
