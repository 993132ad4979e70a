package config

import "fmt"

type App struct {
	Name      string `yaml:"name" env:"APP_NAME" env-default:"powattest"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

func (a App) Validate() error {
	switch a.LogFormat {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", "json", "console", a.LogFormat)
	}
}
