package layers

import (
	"github.com/goliatone/go-material-layers/nodetree"
	"github.com/goliatone/go-material-layers/pkg/activity"
)

// StackOption configures a Stack on construction.
type StackOption func(*stackConfig)

type stackConfig struct {
	prefs       Preferences
	logger      Logger
	pool        ImagePool
	hooks       activity.Hooks
	activityCfg activity.Config
	onRebuild   func()
	treeOpts    []nodetree.TreeOption
}

func applyStackOptions(opts []StackOption) stackConfig {
	cfg := stackConfig{
		prefs:       DefaultPreferences(),
		activityCfg: activity.Config{Enabled: true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = NewLogrusLogger()
	}
	return cfg
}

// WithPreferences overrides the default preferences.
func WithPreferences(prefs Preferences) StackOption {
	return func(cfg *stackConfig) {
		cfg.prefs = prefs
	}
}

// WithLogger sets the logger used for warnings and diagnostics.
func WithLogger(logger Logger) StackOption {
	return func(cfg *stackConfig) {
		if logger == nil {
			cfg.logger = NoopLogger()
			return
		}
		cfg.logger = logger
	}
}

// WithImagePool supplies the pool that backs paint-layer alpha storage.
func WithImagePool(pool ImagePool) StackOption {
	return func(cfg *stackConfig) {
		cfg.pool = pool
	}
}

// WithActivityHooks registers hooks notified on layer and channel changes.
func WithActivityHooks(hooks ...activity.Hook) StackOption {
	return func(cfg *stackConfig) {
		cfg.hooks = append(cfg.hooks, hooks...)
	}
}

// WithActivityConfig overrides event emission defaults.
func WithActivityConfig(config activity.Config) StackOption {
	return func(cfg *stackConfig) {
		cfg.activityCfg = config
	}
}

// WithRebuildHook registers fn to run whenever a stack graph rebuild is
// requested. Debouncing is the host's concern.
func WithRebuildHook(fn func()) StackOption {
	return func(cfg *stackConfig) {
		cfg.onRebuild = fn
	}
}

// WithTreeOptions forwards options to every node tree the stack creates.
func WithTreeOptions(opts ...nodetree.TreeOption) StackOption {
	return func(cfg *stackConfig) {
		cfg.treeOpts = append(cfg.treeOpts, opts...)
	}
}
