package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Site     SiteConfig     `mapstructure:"site"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig describes where the catalog document comes from
type CatalogConfig struct {
	Source       string `mapstructure:"source"` // file path or http(s) URL
	ArticleLimit int    `mapstructure:"article_limit"`
	LoadTimeout  int    `mapstructure:"load_timeout"`
}

// SiteConfig holds rendering knobs of the catalog website
type SiteConfig struct {
	PublicURL        string `mapstructure:"public_url"`
	ScrollDelayMs    int    `mapstructure:"scroll_delay_ms"`
	OpenDelayMs      int    `mapstructure:"open_delay_ms"`
	CopiedMs         int    `mapstructure:"copied_ms"`
	DescriptionLimit int    `mapstructure:"description_limit"`
}

func (s SiteConfig) ScrollDelay() time.Duration {
	return time.Duration(s.ScrollDelayMs) * time.Millisecond
}

func (s SiteConfig) OpenDelay() time.Duration {
	return time.Duration(s.OpenDelayMs) * time.Millisecond
}

// ScraperConfig holds the offline scraper configuration
type ScraperConfig struct {
	BaseURL                string   `mapstructure:"base_url"`
	OutputFile             string   `mapstructure:"output_file"`
	Timeout                int      `mapstructure:"timeout"`
	MaxRetries             int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond   int      `mapstructure:"max_requests_per_second"`
	ProductDelayMs         int      `mapstructure:"product_delay_ms"`
	CategoryDelayMs        int      `mapstructure:"category_delay_ms"`
	MaxProductsPerCategory int      `mapstructure:"max_products_per_category"`
	UserAgent              string   `mapstructure:"user_agent"`
	Proxies                []string `mapstructure:"proxies"`
}

func (s ScraperConfig) ProductDelay() time.Duration {
	return time.Duration(s.ProductDelayMs) * time.Millisecond
}

func (s ScraperConfig) CategoryDelay() time.Duration {
	return time.Duration(s.CategoryDelayMs) * time.Millisecond
}

// DatabaseConfig holds the optional Postgres mirror configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds the optional page cache connection details
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	PageTTL  int    `mapstructure:"page_ttl"`
}

// LogConfig controls logrus
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Apply configures the global logrus logger.
func (l LogConfig) Apply() error {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch l.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}

// Load reads config.yaml from the given directories (the working directory when none
// are given) with environment variable overrides. A missing file is not an error:
// the defaults describe a complete setup.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "")

	v.SetDefault("catalog.source", "catalog.json")
	v.SetDefault("catalog.article_limit", 1000)
	v.SetDefault("catalog.load_timeout", 30)

	v.SetDefault("site.public_url", "")
	v.SetDefault("site.scroll_delay_ms", 500)
	v.SetDefault("site.open_delay_ms", 500)
	v.SetDefault("site.copied_ms", 2000)
	v.SetDefault("site.description_limit", 150)

	v.SetDefault("scraper.base_url", "https://www.stone-technology.info")
	v.SetDefault("scraper.output_file", "catalog.json")
	v.SetDefault("scraper.timeout", 30)
	v.SetDefault("scraper.max_retries", 0)
	v.SetDefault("scraper.max_requests_per_second", 1)
	v.SetDefault("scraper.product_delay_ms", 2000)
	v.SetDefault("scraper.category_delay_ms", 3000)
	v.SetDefault("scraper.max_products_per_category", 50)
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("scraper.proxies", []string{})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "catalog")
	v.SetDefault("database.user", "catalog_user")
	v.SetDefault("database.password", "catalog_pass")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.page_ttl", 86400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
