package app

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/judge"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/ranking"
	"github.com/nshrhm/aoj-submission-manager/internal/store/csvfile"
)

// ErrNoProblems is returned when no problem list can be loaded.
var ErrNoProblems = errors.New("no problem list available")

type GSheetConfig struct {
	SheetID         string `toml:"sheet_id" validate:"required"`
	CredentialsPath string `toml:"credentials_path" validate:"required"`
	SheetName       string `toml:"sheet_name" validate:"required"`
	Schedule        string `toml:"schedule" validate:"required"`
	TimestampRange  string `toml:"timestamp_range"`
	// Problems limits the published per-problem tables, all problems when empty.
	Problems []string `toml:"problems"`
}

type Config struct {
	Store struct {
		DSN           string `toml:"dsn" validate:"required"`
		MigrationsDir string `toml:"migrations_dir"`
		Backup        bool   `toml:"backup"`
	} `toml:"store"`

	Problems struct {
		IDs  []string `toml:"ids"`
		File string   `toml:"file"`
	} `toml:"problems"`

	Judge struct {
		Endpoint           string  `toml:"endpoint" validate:"required,url"`
		TimeoutSeconds     int     `toml:"timeout_seconds" validate:"min=1"`
		Workers            int     `toml:"workers" validate:"min=1"`
		RequestsPerSecond  float64 `toml:"requests_per_second" validate:"min=0"`
		Burst              int     `toml:"burst" validate:"min=0"`
		InsecureSkipVerify bool    `toml:"insecure_skip_verify"`
		UserAgent          string  `toml:"user_agent"`
	} `toml:"judge"`

	Lock struct {
		RedisURL   string `toml:"redis_url"`
		Key        string `toml:"key"`
		TTLSeconds int    `toml:"ttl_seconds" validate:"min=1"`
		File       string `toml:"file"`
	} `toml:"lock"`

	Display struct {
		TimestampFormat string `toml:"timestamp_format"`
		TimeZone        string `toml:"time_zone"`
		NotSubmitted    string `toml:"not_submitted"`
	} `toml:"display"`

	Rankings struct {
		Dir      string `toml:"dir"`
		DebugLog bool   `toml:"debug_log"`
	} `toml:"rankings"`

	Download struct {
		Dir       string `toml:"dir"`
		MinScore  int    `toml:"min_score" validate:"min=0,max=100"`
		Extension string `toml:"extension"`
	} `toml:"download"`

	Metrics struct {
		PushgatewayURL string `toml:"pushgateway_url"`
		Job            string `toml:"job"`
	} `toml:"metrics"`

	Archive struct {
		MongoURI   string `toml:"mongo_uri"`
		Database   string `toml:"database"`
		Collection string `toml:"collection"`
	} `toml:"archive"`

	GSheet []GSheetConfig `toml:"gsheet" validate:"dive"`

	Bot struct {
		Token      string  `toml:"token"`
		AdminIDs   []int64 `toml:"admin_ids"`
		DefaultTop int     `toml:"default_top" validate:"min=1"`
	} `toml:"bot"`

	Server struct {
		Port           string   `toml:"port"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`

	EmojiVariants []string `toml:"emoji_variants"`
}

// DefaultConfig mirrors the layout the checker has always used: user.csv
// and prob.csv in the working directory, the public AOJ judge API.
func DefaultConfig() *Config {
	var c Config
	c.Store.DSN = "user.csv"
	c.Store.MigrationsDir = "./migrations"
	c.Store.Backup = true
	c.Problems.File = "prob.csv"
	c.Judge.Endpoint = judge.DefaultEndpoint
	c.Judge.TimeoutSeconds = 10
	c.Judge.Workers = 4
	c.Judge.RequestsPerSecond = 5
	c.Judge.Burst = 1
	c.Judge.InsecureSkipVerify = true
	c.Judge.UserAgent = "aoj-submission-manager/1.0"
	c.Lock.Key = "aoj:roster:lock"
	c.Lock.TTLSeconds = 3600
	c.Display.TimestampFormat = ranking.DefaultLayout
	c.Display.NotSubmitted = ranking.DefaultNotSubmitted
	c.Rankings.Dir = "rankings"
	c.Rankings.DebugLog = true
	c.Download.Dir = "downloads"
	c.Download.MinScore = models.MaxScore
	c.Download.Extension = ".py"
	c.Metrics.Job = "aoj_submission_manager"
	c.Archive.Database = "aoj"
	c.Archive.Collection = "rankings"
	c.Bot.DefaultTop = 10
	c.Server.Port = ":9999"
	c.EmojiVariants = []string{"🍣", "🍙", "🍵"}
	return &c
}

var envOverrides = []struct {
	name  string
	apply func(c *Config, v string)
}{
	{"AOJ_STORE_DSN", func(c *Config, v string) { c.Store.DSN = v }},
	{"AOJ_REDIS_URL", func(c *Config, v string) { c.Lock.RedisURL = v }},
	{"AOJ_MONGO_URI", func(c *Config, v string) { c.Archive.MongoURI = v }},
	{"AOJ_BOT_TOKEN", func(c *Config, v string) { c.Bot.Token = v }},
	{"AOJ_PUSHGATEWAY_URL", func(c *Config, v string) { c.Metrics.PushgatewayURL = v }},
}

// LoadConfig reads path on top of DefaultConfig. A missing file is not an
// error. Secrets from the environment (and .env) win over file values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info.Printf("Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf(
				"error reading config file %s\n> Error: %w\n> Content:\n%s",
				path,
				err,
				string(data),
			)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error.Printf("Failed to load .env: %v", err)
	}
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(config, v)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger.Debug.Printf("Loaded store config: %+v", config.Store)

	return config, nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// LoadProblems returns the inline problem ids or, when none are given,
// the first row of the problem file.
func (c *Config) LoadProblems() (models.ProblemList, error) {
	problems := models.ProblemList(c.Problems.IDs)
	if len(problems) == 0 {
		if c.Problems.File == "" {
			return nil, ErrNoProblems
		}
		var err error
		problems, err = csvfile.ReadProblemList(c.Problems.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoProblems, err)
		}
	}
	if err := problems.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProblems, err)
	}
	return problems, nil
}

func (c *Config) TimeFormat() (ranking.TimeFormat, error) {
	tf := ranking.TimeFormat{
		Layout:       c.Display.TimestampFormat,
		Location:     time.Local,
		NotSubmitted: c.Display.NotSubmitted,
	}
	if c.Display.TimeZone != "" {
		loc, err := time.LoadLocation(c.Display.TimeZone)
		if err != nil {
			return ranking.TimeFormat{}, fmt.Errorf("unknown time zone %q: %w", c.Display.TimeZone, err)
		}
		tf.Location = loc
	}
	return tf, nil
}

func (c *Config) JudgeOptions() judge.Options {
	return judge.Options{
		Endpoint:           c.Judge.Endpoint,
		Timeout:            time.Duration(c.Judge.TimeoutSeconds) * time.Second,
		RequestsPerSecond:  c.Judge.RequestsPerSecond,
		Burst:              c.Judge.Burst,
		InsecureSkipVerify: c.Judge.InsecureSkipVerify,
		UserAgent:          c.Judge.UserAgent,
	}
}
