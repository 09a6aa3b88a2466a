package focusflow

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultFocusDuration = 1500 * time.Second
	DefaultBreakDuration = 300 * time.Second
)

type Config struct {
	APIBaseURL  string
	DatabaseURL string

	//
	FocusDuration  time.Duration
	BreakDuration  time.Duration
	RequestTimeout time.Duration

	//
	RewardEligible    bool
	CoinsPerCycle     int
	CoinsPerTaskClear int
}

func LoadConfig() (Config, error) {
	if os.Getenv("FOCUSFLOW_ENV") == "production" {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}

	config := Config{
		APIBaseURL:        os.Getenv("FOCUSFLOW_API_URL"),
		DatabaseURL:       os.Getenv("FOCUSFLOW_DB_PATH"),
		FocusDuration:     DefaultFocusDuration,
		BreakDuration:     DefaultBreakDuration,
		RequestTimeout:    20 * time.Second,
		RewardEligible:    os.Getenv("FOCUSFLOW_PREMIUM") == "true",
		CoinsPerCycle:     10,
		CoinsPerTaskClear: 25,
	}

	if config.APIBaseURL == "" {
		return Config{}, fmt.Errorf("required environment variable: FOCUSFLOW_API_URL")
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = "focusflow.db"
	}

	if v := os.Getenv("FOCUSFLOW_FOCUS_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid FOCUSFLOW_FOCUS_SECONDS: %q", v)
		}
		config.FocusDuration = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("FOCUSFLOW_BREAK_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid FOCUSFLOW_BREAK_SECONDS: %q", v)
		}
		config.BreakDuration = time.Duration(secs) * time.Second
	}

	return config, nil
}
