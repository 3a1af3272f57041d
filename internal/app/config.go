// Package app loads service configuration from the environment.
package app

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/claude-usage/internal/sheets"
	"github.com/emiliopalmerini/claude-usage/internal/util"
)

type Config struct {
	// DataDir defaults to the XDG data directory when unset.
	DataDir      string `envconfig:"DATA_DIR"`
	Addr         string `envconfig:"ADDR" default:":8080"`
	OTLPAddr     string `envconfig:"OTLP_ADDR" default:":4318"`
	MaxRangeDays int    `envconfig:"MAX_RANGE_DAYS" default:"90"`

	// Summary store: Turso when configured, else a local CSV sheet,
	// else none.
	TursoDatabaseURL string `envconfig:"TURSO_DATABASE_URL"`
	TursoAuthToken   string `envconfig:"TURSO_AUTH_TOKEN"`
	SheetCSVPath     string `envconfig:"SHEET_CSV_PATH"`
}

func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		dir, err := util.XDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	return &cfg, nil
}

// SummaryStore builds the configured summary row store. The returned
// close func is non-nil only when the store holds a connection. A nil
// store means no external store is configured, which is not an error.
func (c *Config) SummaryStore() (sheets.RowStore, func() error, error) {
	if c.TursoDatabaseURL != "" {
		st, err := sheets.NewLibSQLStore(c.TursoDatabaseURL, c.TursoAuthToken)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	if c.SheetCSVPath != "" {
		return sheets.NewCSVStore(c.SheetCSVPath), nil, nil
	}
	return nil, nil, nil
}
