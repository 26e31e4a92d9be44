package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	dataDir string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithDataDir overrides the configured storage path.
func WithDataDir(dir string) Option {
	return func(a *application) {
		a.dataDir = dir
	}
}
