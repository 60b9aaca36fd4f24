package platform

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/gesture"
	"github.com/mj1618/skipad/internal/tree"
)

// Provider bundles the device backends.
type Provider struct {
	Screen   Screen
	Events   EventSource
	Injector gesture.Injector
}

// Options configures a backend.
type Options struct {
	Device         string
	ADBPath        string
	PollInterval   time.Duration
	CacheTTL       time.Duration
	CommandTimeout time.Duration
	Walk           tree.Options
	Logger         zerolog.Logger
}

// ErrUnsupported is returned when no device backend is linked in.
var ErrUnsupported = errors.New("no device backend available; build with internal/platform/adb")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/adb/init.go for the adb registration.
var NewProviderFunc func(opts Options) (*Provider, error)

// NewProvider returns a Provider from the registered backend.
func NewProvider(opts Options) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}
