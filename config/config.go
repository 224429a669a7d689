package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

const (
	defaultIntervalSeconds     = 15
	defaultStake               = 100
	defaultFetchTimeoutSeconds = 20
	defaultRatePerSec          = 2
)

// Config es la configuración completa del scanner.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Feeds   FeedsConfig   `yaml:"feeds"`
	Teams   TeamsConfig   `yaml:"teams"`
	Storage StorageConfig `yaml:"storage"`
	Notify  NotifyConfig  `yaml:"notify"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig controla el comportamiento del scanner.
type ScannerConfig struct {
	IntervalSeconds     int     `yaml:"interval_seconds"`
	Stake               float64 `yaml:"stake"` // stake total por oportunidad, > 0
	FetchTimeoutSeconds int     `yaml:"fetch_timeout_seconds"`
	MinProfitPct        float64 `yaml:"min_profit_pct"`
	MaxProfitPct        float64 `yaml:"max_profit_pct"` // 0 = sin límite
}

// FeedsConfig define las dos casas que se comparan. El orden importa:
// en empate de cuotas gana primary.
type FeedsConfig struct {
	Primary   FeedConfig `yaml:"primary"`
	Secondary FeedConfig `yaml:"secondary"`
}

// FeedConfig es una fuente de partidos.
type FeedConfig struct {
	Name       string  `yaml:"name"`
	URL        string  `yaml:"url"`
	Fixture    string  `yaml:"fixture"` // JSON local usado con -dry-run
	RatePerSec float64 `yaml:"rate_per_sec"`
}

// TeamsConfig añade alias de equipos a la tabla NHL incorporada.
type TeamsConfig struct {
	Aliases map[string]string `yaml:"aliases"` // alias → nombre canónico
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para no persistir
}

// NotifyConfig activa los sinks opcionales. La consola siempre está activa.
type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Redis    RedisConfig    `yaml:"redis"`
}

// TelegramConfig: vacío = desactivado.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// RedisConfig: addr vacío = desactivado.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse interpreta un YAML ya leído, aplica overrides de entorno y defaults y valida.
func Parse(data []byte) (*Config, error) {
	// El stake se precarga para distinguir "ausente" (default) de "0" (inválido).
	cfg := Config{Scanner: ScannerConfig{Stake: defaultStake}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate comprueba los valores que no tienen default razonable.
func (c *Config) Validate() error {
	var errs []error
	if !domain.ValidStake(c.Scanner.Stake) {
		errs = append(errs, fmt.Errorf("scanner.stake must be a finite number > 0, got %v", c.Scanner.Stake))
	}
	if c.Scanner.MaxProfitPct > 0 && c.Scanner.MaxProfitPct < c.Scanner.MinProfitPct {
		errs = append(errs, fmt.Errorf("scanner.max_profit_pct (%v) below min_profit_pct (%v)",
			c.Scanner.MaxProfitPct, c.Scanner.MinProfitPct))
	}
	if c.Feeds.Primary.Name == c.Feeds.Secondary.Name {
		errs = append(errs, fmt.Errorf("feeds: primary and secondary share the name %q", c.Feeds.Primary.Name))
	}
	if c.Notify.Telegram.Token != "" && c.Notify.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("notify.telegram: token set without chat_id"))
	}
	return errors.Join(errs...)
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// FetchTimeout devuelve el límite por feed como time.Duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scanner.FetchTimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ARB_STAKE"); v != "" {
		stake, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ARB_STAKE %q: %w", v, err)
		}
		cfg.Scanner.Stake = stake
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Notify.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.Notify.Telegram.ChatID = id
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Notify.Redis.Addr = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = defaultIntervalSeconds
	}
	if cfg.Scanner.FetchTimeoutSeconds <= 0 {
		cfg.Scanner.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if cfg.Feeds.Primary.Name == "" {
		cfg.Feeds.Primary.Name = "BetMGM"
	}
	if cfg.Feeds.Secondary.Name == "" {
		cfg.Feeds.Secondary.Name = "DraftKings"
	}
	for _, f := range []*FeedConfig{&cfg.Feeds.Primary, &cfg.Feeds.Secondary} {
		if f.RatePerSec <= 0 {
			f.RatePerSec = defaultRatePerSec
		}
	}
	if cfg.Notify.Redis.Channel == "" {
		cfg.Notify.Redis.Channel = "nhlarb:events"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
