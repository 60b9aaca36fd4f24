package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/config"
	"github.com/mj1618/skipad/internal/gesture"
	"github.com/mj1618/skipad/internal/locator"
	"github.com/mj1618/skipad/internal/logging"
	"github.com/mj1618/skipad/internal/patterns"
	"github.com/mj1618/skipad/internal/platform"
	_ "github.com/mj1618/skipad/internal/platform/adb"
	"github.com/mj1618/skipad/internal/whitelist"
)

// runtime holds the services a command works with. Commands build one with
// newRuntime and close it when done.
type runtime struct {
	cfg        *config.Config
	logger     *logging.Logger
	log        zerolog.Logger
	patterns   *patterns.Store
	whitelist  *whitelist.Store
	locator    *locator.Locator
	provider   *platform.Provider
	dispatcher *gesture.Dispatcher
}

// runtimeOptions selects what newRuntime connects.
type runtimeOptions struct {
	// device connects the device backend and the gesture dispatcher.
	device bool
}

// loadConfig reads the config file and applies the root flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, _ := flags.GetString("config")
	dataDir, _ := flags.GetString("data-dir")
	device, _ := flags.GetString("device")
	level, _ := flags.GetString("log-level")

	if path == "" {
		dir := dataDir
		if dir == "" {
			dir = config.DefaultDataDir()
		}
		path = filepath.Join(dir, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return config.Merge(cfg, &config.Config{
		Device:  device,
		DataDir: dataDir,
		Log:     config.LogConfig{Level: level},
	}), nil
}

// runtimeFromFlags builds a runtime from the config file and root flags.
func runtimeFromFlags(cmd *cobra.Command, opts runtimeOptions) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newRuntime(cfg, opts)
}

// newRuntime wires every service from cfg.
func newRuntime(cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	lg, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Console: true,
		NoColor: color.NoColor,
		File:    cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: lg, log: lg.Logger}

	vocab, err := locator.CompileVocabulary(cfg.Locator.Vocabulary)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("locator vocabulary: %w", err)
	}

	rt.patterns = patterns.New(patterns.Options{
		Path:   cfg.PatternsPath(),
		Logger: logging.Module(rt.log, "patterns"),
	})
	if err := rt.patterns.Load(); err != nil {
		// Keep running with no patterns; the text fallback still works.
		rt.log.Warn().Err(err).Str("path", cfg.PatternsPath()).Msg("pattern document not loaded")
	}

	rt.whitelist, err = whitelist.Open(cfg.WhitelistPath(), logging.Module(rt.log, "whitelist"))
	if err != nil {
		rt.Close()
		return nil, err
	}

	walk := cfg.Locator.Walk()
	rt.locator = locator.New(locator.Options{
		Patterns:              rt.patterns,
		Vocabulary:            vocab,
		FallbackOnPatternMiss: cfg.Locator.FallbackOnPatternMiss,
		Walk:                  walk,
		Logger:                logging.Module(rt.log, "locator"),
	})

	if !opts.device {
		return rt, nil
	}
	rt.provider, err = platform.NewProvider(platform.Options{
		Device:         cfg.Device,
		ADBPath:        cfg.ADBPath,
		PollInterval:   cfg.Poll.Interval(),
		CacheTTL:       cfg.Poll.CacheTTL(),
		CommandTimeout: cfg.Poll.CommandTimeout(),
		Walk:           walk,
		Logger:         logging.Module(rt.log, "device"),
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.dispatcher = gesture.New(gesture.Options{
		Injector:          rt.provider.Injector,
		Duration:          cfg.Gesture.Duration(),
		AwaitCompletion:   cfg.Gesture.AwaitCompletion,
		CompletionTimeout: cfg.Gesture.CompletionTimeout(),
		Logger:            logging.Module(rt.log, "gesture"),
	})
	return rt, nil
}

// screen returns the device screen or an error when none is connected.
func (rt *runtime) screen() (platform.Screen, error) {
	if rt.provider == nil || rt.provider.Screen == nil {
		return nil, fmt.Errorf("screen reader not available")
	}
	return rt.provider.Screen, nil
}

// Close releases the whitelist database and the log file.
func (rt *runtime) Close() {
	if rt.whitelist != nil {
		if err := rt.whitelist.Close(); err != nil {
			rt.log.Warn().Err(err).Msg("closing whitelist")
		}
	}
	rt.logger.Close()
}
