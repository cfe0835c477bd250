package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-required:"true"`
	AppURL     string `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:3000"`
	Database   `yaml:"database"`
	Redis      Redis `yaml:"redis"`
	HTTPServer `yaml:"http_server"`
	Clients    ClientsConfig `yaml:"clients"`
	Telegram   Telegram      `yaml:"telegram"`
	Games      Games         `yaml:"games"`
}

type Database struct {
	Host       string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port       int    `yaml:"port" env:"PORT" env-required:"true"`
	UsernameDB string `yaml:"username-db" env:"USERNAMEDB" env-required:"true"`
	Password   string `yaml:"password" env:"PASSWORD"`
	DBName     string `yaml:"dbname" env:"DBNAME" env-default:"padel"`
}

type Redis struct {
	Address      string        `yaml:"address" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TLS          bool          `yaml:"tls" env:"REDIS_TLS" env-default:"false"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"2s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"2s"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	Cors        []string      `yaml:"cors" env-default:"http://localhost:3000"`
	RateLimit   int           `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"60"`
}

type Client struct {
	Address      string        `yaml:"address" env-required:"true"`
	Timeout      time.Duration `yaml:"timeout" env-required:"true"`
	RetriesCount int           `yaml:"retries_count" env-required:"true"`
	Insecure     bool          `yaml:"insecure" env-default:"true"`
	AppID        uint32        `yaml:"app_id" env-default:"1"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

type Telegram struct {
	Token   string        `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env-default:"60s"`
	Debug   bool          `yaml:"debug" env-default:"false"`
}

func (t Telegram) Enabled() bool {
	return t.Token != ""
}

type Games struct {
	ListHorizon     time.Duration `yaml:"list_horizon" env-default:"336h"`
	UpcomingHorizon time.Duration `yaml:"upcoming_horizon" env-default:"1440h"`
	NotifyTimeout   time.Duration `yaml:"notify_timeout" env-default:"2s"`
	Timezone        string        `yaml:"timezone" env:"GAMES_TZ" env-default:"UTC"`
}

// Location resolves Timezone, falling back to UTC.
func (g Games) Location() *time.Location {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func MustLoad() *Config {
	configPath := flag.String("config", "", "path to config yaml file")
	flag.Parse()
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}
	if *configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", *configPath)
	}

	cfg, err := Load(*configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s - %s", *configPath, err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Database) GetDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = cfg.UsernameDB
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dsn.DBName = cfg.DBName
	dsn.ParseTime = true

	return dsn.FormatDSN()
}
