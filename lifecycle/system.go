package lifecycle

import (
	"context"
	"errors"

	"github.com/myLogic207/boundedbuf/config"
)

var (
	ErrInvalidSystem = errors.New("invalid subsystem, must implement SubSystem interface")
)

// SubSystem is a component whose lifetime is managed by an Initializer.
// Init receives the config registered with the system and must not block beyond startup.
type SubSystem interface {
	Init(context.Context, *config.Config) error
	Shutdown() error
}

type systemWrapper struct {
	SubSystem
	name   string
	config *config.Config
}
