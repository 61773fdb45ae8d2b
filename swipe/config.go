package swipe

import (
	"strings"
	"time"
)

// Config controls the swipe service.
type Config struct {
	// PublicURL prefixes share links: <PublicURL>/idea/<id>.
	PublicURL string

	// StoreTimeout bounds every datastore call. Default 5s.
	StoreTimeout time.Duration

	// MaxCommentBytes caps comment content. Default 5000.
	MaxCommentBytes int
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	if c.MaxCommentBytes <= 0 {
		c.MaxCommentBytes = 5000
	}
}
