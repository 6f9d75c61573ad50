package submission

// Config is the settings of a Parser.
type Config struct {
	DisableWarnings bool
}

// Option is a single setting, see Config.
type Option interface {
	Apply(cfg *Config)
}

// OptionDisableWarnings disables logging of warnings about soft
// inconsistencies of submissions.
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
