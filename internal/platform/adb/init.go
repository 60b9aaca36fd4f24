package adb

import (
	"github.com/mj1618/skipad/internal/platform"
)

func init() {
	platform.NewProviderFunc = func(opts platform.Options) (*platform.Provider, error) {
		client := NewClient(opts.ADBPath, opts.Device, opts.CommandTimeout, opts.Logger)
		screen := NewScreen(client, opts.CacheTTL, opts.Logger)
		return &platform.Provider{
			Screen:   screen,
			Events:   NewPoller(screen, opts.PollInterval, opts.Walk, opts.Logger),
			Injector: NewInjector(client, opts.Logger, screen.Invalidate),
		}, nil
	}
}
