package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env           string `toml:"env"`
	LogLevel      string `toml:"log_level"`
	SnowFlakeNode int64  `toml:"snowflake_node"`

	ApiServer        ServerConfigs `toml:"api_server"`
	PrometheusServer ServerConfigs `toml:"prometheus_server"`

	Database    DatabaseConfigs    `toml:"database"`
	Redis       RedisConfigs       `toml:"redis"`
	Kafka       KafkaConfigs       `toml:"kafka"`
	Ledger      LedgerConfigs      `toml:"ledger"`
	Leaderboard LeaderboardConfigs `toml:"leaderboard"`
	Ticket      TicketConfigs      `toml:"ticket"`
	Drawing     DrawingConfigs     `toml:"drawing"`
}

type ServerConfigs struct {
	Host      string `toml:"host"`
	Port      string `toml:"port"`
	AllowCORS bool   `toml:"allow_cors"`

	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr             string `toml:"addr"`
	ActivityTopic    string `toml:"activity_topic"`
	FulfillmentTopic string `toml:"fulfillment_topic"`
	ConsumerGroup    string `toml:"consumer_group"`
}

type LedgerConfigs struct {
	// DailyEarnCap bounds the points an account can earn per calendar day
	// in the reference timezone. Excess is truncated, never carried over.
	DailyEarnCap           int64 `toml:"daily_earn_cap"`
	MaxDailySteps          int   `toml:"max_daily_steps"`
	DailyGoalSteps         int   `toml:"daily_goal_steps"`
	MaxDailyWorkoutBonuses int   `toml:"max_daily_workout_bonuses"`
	MinWorkoutMinutes      int   `toml:"min_workout_minutes"`
	StreakLength           int   `toml:"streak_length"`
	MaxBalanceRetries      int   `toml:"max_balance_retries"`
}

type LeaderboardConfigs struct {
	// Timezone fixes the calendar used by daily/weekly/monthly windows for
	// every account, regardless of where the member lives.
	Timezone        string   `toml:"timezone"`
	RefreshInterval Duration `toml:"refresh_interval"`
	StalenessBound  Duration `toml:"staleness_bound"`
	BoardSize       int      `toml:"board_size"`
}

func (l *LeaderboardConfigs) Location() *time.Location {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

type TicketConfigs struct {
	MaxPerPurchase int `toml:"max_per_purchase"`
}

type DrawingConfigs struct {
	// AdvanceInterval is how often the scheduler looks for drawings due to
	// open, close sales, or execute.
	AdvanceInterval Duration `toml:"advance_interval"`
}

// Duration parses TOML values like "15m" or "1h30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Load reads the TOML file at path on top of defaults, then applies
// environment overrides for deployment secrets.
func Load(path string) (Configs, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	if v := os.Getenv("KAFKA_ADDR"); v != "" {
		cfg.Kafka.Addr = v
	}

	return cfg, nil
}

func Default() Configs {
	return Configs{
		Env:           "local",
		LogLevel:      "info",
		SnowFlakeNode: 1,
		ApiServer: ServerConfigs{
			Host:         "localhost",
			Port:         "8080",
			DefaultLimit: 20,
			MaxLimit:     50,
		},
		PrometheusServer: ServerConfigs{
			Host: "localhost",
			Port: "9090",
		},
		Database: DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "fitstakes",
			User:     "fitstakes",
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{
			Addr:             "localhost:9092",
			ActivityTopic:    "activity",
			FulfillmentTopic: "fulfillment",
			ConsumerGroup:    "fitstakes-backend",
		},
		Ledger: LedgerConfigs{
			DailyEarnCap:           1000,
			MaxDailySteps:          20000,
			DailyGoalSteps:         10000,
			MaxDailyWorkoutBonuses: 3,
			MinWorkoutMinutes:      20,
			StreakLength:           7,
			MaxBalanceRetries:      5,
		},
		Leaderboard: LeaderboardConfigs{
			Timezone:        "UTC",
			RefreshInterval: Duration{10 * time.Minute},
			StalenessBound:  Duration{15 * time.Minute},
			BoardSize:       500,
		},
		Ticket:  TicketConfigs{MaxPerPurchase: 100},
		Drawing: DrawingConfigs{AdvanceInterval: Duration{time.Minute}},
	}
}
