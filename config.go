package tableview

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig.
// Nested keys are separated by a double underscore,
// for example TABLEVIEW_EXPORT__FILE_NAME sets export.file_name.
const EnvPrefix = "TABLEVIEW_"

// Config of a table view session.
type Config struct {
	PageSize        int           `koanf:"page_size"`
	PageSizeOptions []int         `koanf:"page_size_options"`
	Debounce        time.Duration `koanf:"debounce"`
	// FuzzyThreshold is the name of the minimum Ranking
	// of the global filter, see Ranking.String.
	FuzzyThreshold string         `koanf:"fuzzy_threshold"`
	Export         ExportConfig   `koanf:"export"`
	Columns        []ColumnConfig `koanf:"columns"`
}

// ExportConfig configures the spreadsheet export.
type ExportConfig struct {
	FileName  string `koanf:"file_name"`
	SheetName string `koanf:"sheet_name"`
}

// ColumnConfig is the declarative form of a Column
// that reads the Record field named ID.
type ColumnConfig struct {
	ID                  string `koanf:"id"`
	Label               string `koanf:"label"`
	Filter              string `koanf:"filter"`
	Hidden              bool   `koanf:"hidden"`
	DisableSorting      bool   `koanf:"disable_sorting"`
	DisableFiltering    bool   `koanf:"disable_filtering"`
	DisableGlobalFilter bool   `koanf:"disable_global_filter"`
}

func defaultConfigMap() map[string]any {
	return map[string]any{
		"page_size":         DefaultPageSize,
		"page_size_options": []int{10, 20, 30, 40, 50},
		"debounce":          DefaultDebounce.String(),
		"fuzzy_threshold":   RankMatches.String(),
		"export.file_name":  "filtered_data.xlsx",
		"export.sheet_name": "Filtered Data",
	}
}

// DefaultConfig returns the configuration used
// without config file and environment variables.
func DefaultConfig() *Config {
	return &Config{
		PageSize:        DefaultPageSize,
		PageSizeOptions: []int{10, 20, 30, 40, 50},
		Debounce:        DefaultDebounce,
		FuzzyThreshold:  RankMatches.String(),
		Export: ExportConfig{
			FileName:  "filtered_data.xlsx",
			SheetName: "Filtered Data",
		},
	}
}

// LoadConfig loads the configuration from defaults,
// the YAML file at path if path is not empty,
// and environment variables with EnvPrefix.
// Precedence (highest to lowest): env vars > config file > defaults
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfigMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Transform: TABLEVIEW_EXPORT__FILE_NAME -> export.file_name
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error wrapping ErrInvalidConfig
// for every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalidConfig, c.PageSize))
	}
	for _, size := range c.PageSizeOptions {
		if size <= 0 {
			errs = append(errs, fmt.Errorf("%w: page_size_options must be positive, got %d", ErrInvalidConfig, size))
		}
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce must not be negative, got %s", ErrInvalidConfig, c.Debounce))
	}
	if _, err := ParseRanking(c.FuzzyThreshold); err != nil {
		errs = append(errs, fmt.Errorf("%w: fuzzy_threshold: %w", ErrInvalidConfig, err))
	}
	if _, err := c.NewColumns(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}

// Threshold returns the parsed FuzzyThreshold
// or RankMatches if it is invalid.
func (c *Config) Threshold() Ranking {
	r, err := ParseRanking(c.FuzzyThreshold)
	if err != nil || r == RankNoMatch {
		return RankMatches
	}
	return r
}

// Column returns the Column defined by the config.
func (c *ColumnConfig) Column() (*Column, error) {
	kind, err := ParseFilterKind(c.Filter)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", c.ID, err)
	}
	return &Column{
		ID:                  c.ID,
		Label:               c.Label,
		Filter:              kind,
		Hidden:              c.Hidden,
		DisableSorting:      c.DisableSorting,
		DisableFiltering:    c.DisableFiltering,
		DisableGlobalFilter: c.DisableGlobalFilter,
	}, nil
}

// NewColumns returns the validated columns of the config.
func (c *Config) NewColumns() ([]*Column, error) {
	columns := make([]*Column, len(c.Columns))
	for i := range c.Columns {
		col, err := c.Columns[i].Column()
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	if _, err := validateColumns(columns); err != nil {
		return nil, err
	}
	return columns, nil
}

// NewFromConfig returns a ViewModel for records with the
// columns, page size and fuzzy threshold of cfg.
// The passed options are applied after the config options.
func NewFromConfig(records []Record, cfg *Config, log *zap.Logger, options ...Option) (*ViewModel, error) {
	columns, err := cfg.NewColumns()
	if err != nil {
		return nil, err
	}
	opts := append([]Option{
		WithLogger(log),
		WithPageSize(cfg.PageSize),
		WithGlobalFilterThreshold(cfg.Threshold()),
		WithTitle(cfg.Export.SheetName),
	}, options...)
	return New(records, columns, opts...)
}
