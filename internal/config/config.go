package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("pictora version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	OAuth   OAuthConfig   `mapstructure:"oauth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig describes the photo API endpoint.
type APIConfig struct {
	BaseURL      string `mapstructure:"base_url" validate:"required,url"`
	PerPage      int    `mapstructure:"per_page" validate:"gt=0,lte=30"`
	AvatarWidth  int    `mapstructure:"avatar_width" validate:"gt=0"`
	AvatarHeight int    `mapstructure:"avatar_height" validate:"gt=0"`
}

// OAuthConfig describes the authorization-code flow endpoints and credentials.
type OAuthConfig struct {
	ClientID     string   `mapstructure:"client_id" validate:"required"`
	ClientSecret string   `mapstructure:"client_secret" validate:"required"`
	RedirectURI  string   `mapstructure:"redirect_uri" validate:"required"`
	Scopes       []string `mapstructure:"scopes" validate:"min=1"`
	AuthorizeURL string   `mapstructure:"authorize_url" validate:"required,url"`
	TokenURL     string   `mapstructure:"token_url" validate:"required,url"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("api.base_url", "", "Base URL of the photo API")
	pflag.String("oauth.client_id", "", "OAuth client id")
	pflag.String("oauth.client_secret", "", "OAuth client secret")
	// Note: no pflag.Parse() here as it's called in main.go
}

func setDefaults() {
	// Registering empty defaults makes these keys visible to Unmarshal
	// when they arrive via environment variables only.
	viper.SetDefault("oauth.client_id", "")
	viper.SetDefault("oauth.client_secret", "")

	viper.SetDefault("api.base_url", "https://api.unsplash.com")
	viper.SetDefault("api.per_page", 10)
	viper.SetDefault("api.avatar_width", 70)
	viper.SetDefault("api.avatar_height", 70)

	viper.SetDefault("oauth.redirect_uri", "urn:ietf:wg:oauth:2.0:oob")
	viper.SetDefault("oauth.scopes", []string{"public", "read_user", "write_likes"})
	viper.SetDefault("oauth.authorize_url", "https://unsplash.com/oauth/authorize")
	viper.SetDefault("oauth.token_url", "https://unsplash.com/oauth/token")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("PICTORA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/pictora")

	// The config file is optional: credentials may arrive via flags or
	// PICTORA_* environment variables instead.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
