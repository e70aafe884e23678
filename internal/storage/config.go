package storage

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	IMDb struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"imdb"`

	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`

	Notify struct {
		// At is the UTC time of day ("HH:MM") at which the daily
		// due-alert tick runs.
		At string `yaml:"at"`
	} `yaml:"notify"`

	Search struct {
		Limit int `yaml:"limit"`
	} `yaml:"search"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Path = "./marquee.db"
	cfg.IMDb.BaseURL = "https://api.imdbapi.dev"
	cfg.IMDb.TimeoutSeconds = 15
	cfg.Notify.At = "09:30"
	cfg.Search.Limit = 10
	return cfg
}
