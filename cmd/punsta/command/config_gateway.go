package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type GatewayConfig struct {
	Port uint16 `json:"port"`
}

func (c *GatewayConfig) validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("gateway port must be set"))
	}

	return el.Err()
}
