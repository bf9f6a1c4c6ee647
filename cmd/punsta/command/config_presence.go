package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/punsta/punsta-world/internal/presence"
)

type PresenceConfig struct {
	EvictAfter    string `json:"evict_after"`
	MaxMessageLen int    `json:"max_message_len"`
	Color         string `json:"color"`
}

func (c *PresenceConfig) validate() error {
	el := errors.NewErrorList()

	if c.EvictAfter != "" {
		_, err := time.ParseDuration(c.EvictAfter)
		if err != nil {
			el.Add(fmt.Errorf("parsing evict_after: %w", err))
		}
	}
	if c.MaxMessageLen < 0 {
		el.Add(fmt.Errorf("max_message_len must not be negative"))
	}

	return el.Err()
}

func (c *PresenceConfig) opts() ([]presence.SynchronizerOpt, error) {
	var opts []presence.SynchronizerOpt

	if c.EvictAfter != "" {
		d, err := time.ParseDuration(c.EvictAfter)
		if err != nil {
			return nil, fmt.Errorf("parsing evict_after: %w", err)
		}
		opts = append(opts, presence.WithEvictAfter(d))
	}
	if c.MaxMessageLen > 0 {
		opts = append(opts, presence.WithMaxMessageLen(c.MaxMessageLen))
	}
	if c.Color != "" {
		opts = append(opts, presence.WithColor(c.Color))
	}

	return opts, nil
}
