package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Development bool
	Tracing     bool
	Port        int
	BaseURL     string

	// File is the configuration file that was read, empty when none was.
	File string `mapstructure:"-"`

	Content  Content
	Features Features
	Render   Render
	Main     MainScenario
	Detail   DetailScenario
	Theme    Theme
}

// Content describes where documents, templates and the page shell are read from.
// Source is either a directory or an http(s) URL.
type Content struct {
	Source    string
	Data      string
	Templates string
	Shell     string
}

func (c Content) IsRemote() bool {
	return strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://")
}

type Features struct {
	DetailScenario    bool
	Analytics         bool
	MobileNavCollapse bool
}

type Render struct {
	QueryParameter string
	HeaderOffset   float64
}

type MainScenario struct {
	RequireFooter bool
}

type DetailScenario struct {
	RequireAbout  bool
	RequireFooter bool
}

type Theme struct {
	PersistAcrossReloads bool
	Database             string
	StorageKey           string
	Attribute            string
	InjectToggle         bool
	SessionTTL           time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("development", false)
	v.SetDefault("tracing", false)
	v.SetDefault("port", 8080)
	v.SetDefault("baseURL", "")

	v.SetDefault("content.source", ".")
	v.SetDefault("content.data", "data")
	v.SetDefault("content.templates", "templates")
	v.SetDefault("content.shell", "index.html")

	v.SetDefault("features.detailScenario", true)
	v.SetDefault("features.analytics", true)
	v.SetDefault("features.mobileNavCollapse", true)

	v.SetDefault("render.queryParameter", "project")
	v.SetDefault("render.headerOffset", 80)

	v.SetDefault("main.requireFooter", true)
	v.SetDefault("detail.requireAbout", true)
	v.SetDefault("detail.requireFooter", true)

	v.SetDefault("theme.persistAcrossReloads", true)
	v.SetDefault("theme.database", "folio.db")
	v.SetDefault("theme.storageKey", "portfolio-theme")
	v.SetDefault("theme.attribute", "data-theme")
	v.SetDefault("theme.injectToggle", true)
	v.SetDefault("theme.sessionTTL", 24*time.Hour)
}

// Parse parses the configuration from the given file or, when file is empty,
// from a file named "config" in the working directory. A missing default file
// is not an error: every option has a default and can be set through FOLIO_*
// environment variables.
func Parse(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("folio")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	conf := &Config{}
	err = v.Unmarshal(conf)
	if err != nil {
		return nil, err
	}

	if used := v.ConfigFileUsed(); used != "" {
		conf.File, err = filepath.Abs(used)
		if err != nil {
			return nil, err
		}
	}

	err = conf.validate()
	if err != nil {
		return nil, err
	}

	return conf, nil
}

// Default returns the configuration with every option at its default value.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	conf := &Config{}
	_ = v.Unmarshal(conf)
	return conf
}

func (c *Config) validate() error {
	var err error

	if c.Content.Source == "" {
		return errors.New("config: Content.Source is empty")
	}

	if !c.Content.IsRemote() {
		c.Content.Source, err = filepath.Abs(c.Content.Source)
		if err != nil {
			return err
		}
	} else if _, err := url.Parse(c.Content.Source); err != nil {
		return fmt.Errorf("config: Content.Source is not a valid URL: %w", err)
	}

	if c.Port < 0 {
		return errors.New("config: Port should be positive number or 0")
	}

	if c.Render.HeaderOffset < 0 {
		return errors.New("config: Render.HeaderOffset should not be negative")
	}

	if c.Render.QueryParameter == "" {
		return errors.New("config: Render.QueryParameter is empty")
	}

	if c.BaseURL != "" {
		baseURL, err := url.Parse(c.BaseURL)
		if err != nil {
			return err
		}
		baseURL.Path = ""

		if baseURL.String() != c.BaseURL {
			return fmt.Errorf("config: BaseURL should be %s", baseURL.String())
		}
	}

	if c.Theme.StorageKey == "" {
		return errors.New("config: Theme.StorageKey is empty")
	}

	if c.Theme.Attribute == "" {
		return errors.New("config: Theme.Attribute is empty")
	}

	if c.Theme.Database != "" {
		c.Theme.Database, err = filepath.Abs(c.Theme.Database)
		if err != nil {
			return err
		}
	}

	return nil
}
