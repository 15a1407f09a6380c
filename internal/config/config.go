package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the API needs to start.
type Config struct {
	AppPort     string
	DatabaseURL string
	FrontendURL string
	RabbitMQURL string
	// Clear wipes the products table and exits instead of serving.
	Clear bool
}

// Load reads configuration from the command line, the environment and an
// optional .env file in the working directory, in that order of precedence.
func Load(args []string) (Config, error) {
	return LoadFrom(".env", args)
}

// LoadFrom is Load with an explicit dotenv file path.
func LoadFrom(envFile string, args []string) (Config, error) {
	flags := pflag.NewFlagSet("productos", pflag.ContinueOnError)
	flags.Bool("clear", false, "delete every product, resync the schema and exit")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":4000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissing(err) {
			return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	if err := v.BindPFlag("clear", flags.Lookup("clear")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppPort:     normalizePort(v.GetString("APP_PORT")),
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		FrontendURL: strings.TrimSpace(v.GetString("FRONTEND_URL")),
		RabbitMQURL: strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		Clear:       v.GetBool("clear"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing required env var: DATABASE_URL")
	}
	return cfg, nil
}

func isMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// normalizePort accepts both "4000" and ":4000".
func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":4000"
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
