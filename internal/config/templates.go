package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# TradeMind Journal Configuration

[journal]
# Journal owner; trades and the profile are stored under this id
user_id = "local"
# SQLite database, relative to this directory unless absolute
db_path = "trademind.db"
# Timezone used for hourly and daily analysis
timezone = "Asia/Kolkata"
# Most recent trades loaded for analysis
fetch_limit = 200
# Default dashboard window: WEEK, MONTH, 3MONTHS, 6MONTHS, 1YEAR, ALL
default_window = "ALL"
# Symbols kept in the symbol ranking
top_symbols = 10
# Weeks kept in the weekly view
recent_weeks = 12

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04"

[logging]
# debug, info, warn, error
level = "info"
# Mirror logs to stderr
console = false
# Write rotated log files
file = true
file_path = "logs/trademind.log"
max_size_mb = 50
max_backups = 5
max_age_days = 30

[cache]
# Cached trader profile, empty to keep it in memory only
profile_file = "profile.json"
# Timeout for a background profile refresh
refresh_timeout = "10s"
# Attempts per profile fetch
max_retries = 3
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, FileName+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

// TemplatePath returns where the config file lives for a directory.
func TemplatePath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, FileName+".toml")
}
