package batch

// Config is the settings of a batch.
type Config struct {
	// MaxSubmissions limits the amount of submissions processed in one
	// batch. Zero means no limit.
	MaxSubmissions uint

	DisableWarnings bool
}

// Option is a single setting, see Config.
type Option interface {
	Apply(cfg *Config)
}

// OptionMaxSubmissions limits the amount of submissions processed in one batch.
type OptionMaxSubmissions uint

// Apply implements Option
func (opt OptionMaxSubmissions) Apply(cfg *Config) {
	cfg.MaxSubmissions = uint(opt)
}

// OptionDisableWarnings disables logging of parser warnings.
type OptionDisableWarnings bool

// Apply implements Option
func (opt OptionDisableWarnings) Apply(cfg *Config) {
	cfg.DisableWarnings = bool(opt)
}

// Options is a set of Option-s.
type Options []Option

// Config converts Options to Config.
func (opts Options) Config() Config {
	cfg := Config{}
	for _, opt := range opts {
		opt.Apply(&cfg)
	}
	return cfg
}
