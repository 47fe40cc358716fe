package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"smartob-trader/internal/types"
)

type Config struct {
	MagicNumber     int      `yaml:"magic_number"`
	Mode            string   `yaml:"mode"`
	DataSource      string   `yaml:"data_source"`
	PollSeconds     int      `yaml:"poll_seconds"`
	TimerSeconds    int      `yaml:"timer_seconds"`
	CooldownSeconds int      `yaml:"cooldown_seconds"`
	Symbols         []string `yaml:"symbols"`
	MaxTradesPerDay int      `yaml:"max_trades_per_day"`
	DynamicRisk     *bool    `yaml:"dynamic_risk"`
	OrderBlock      struct {
		Lookback        int       `yaml:"lookback"`
		VolumeMult      float64   `yaml:"volume_mult"`
		FibLevels       []float64 `yaml:"fib_levels"`
		ProximityPoints float64   `yaml:"proximity_points"`
	} `yaml:"order_block"`
	Indicators struct {
		RSIPeriod     int     `yaml:"rsi_period"`
		RSIOverbought float64 `yaml:"rsi_overbought"`
		RSIOversold   float64 `yaml:"rsi_oversold"`
		EMAFast       int     `yaml:"ema_fast"`
		EMASlow       int     `yaml:"ema_slow"`
		ATRPeriod     int     `yaml:"atr_period"`
		ATRMult       float64 `yaml:"atr_mult"`
	} `yaml:"indicators"`
	Timeframes struct {
		Trend1 string `yaml:"trend1"`
		Trend2 string `yaml:"trend2"`
		Entry  string `yaml:"entry"`
	} `yaml:"timeframes"`
	StructureLookback int `yaml:"structure_lookback"`
	TradeLog          struct {
		Path             string `yaml:"path"`
		DeleteOnShutdown bool   `yaml:"delete_on_shutdown"`
		EODDir           string `yaml:"eod_dir"`
	} `yaml:"trade_log"`
	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`
	Calendar struct {
		MIC          string `yaml:"mic"`
		SkipHolidays bool   `yaml:"skip_holidays"`
	} `yaml:"calendar"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Paper struct {
		Equity       float64                     `yaml:"equity"`
		DataDir      string                      `yaml:"data_dir"`
		SpreadPoints float64                     `yaml:"spread_points"`
		Instruments  map[string]types.SymbolInfo `yaml:"instruments"`
	} `yaml:"paper"`
	Kite struct {
		Exchange  string  `yaml:"exchange"`
		Product   string  `yaml:"product"`
		MaxVolume float64 `yaml:"max_volume"`
	} `yaml:"kite"`
}

// DynamicRiskEnabled reports the dynamic risk toggle, on unless set false.
func (c *Config) DynamicRiskEnabled() bool {
	return c.DynamicRisk == nil || *c.DynamicRisk
}

// TrendTimeframes returns the two higher timeframes used for trend checks.
func (c *Config) TrendTimeframes() (types.Timeframe, types.Timeframe) {
	return types.Timeframe(c.Timeframes.Trend1), types.Timeframe(c.Timeframes.Trend2)
}

// EntryTimeframe returns the timeframe entries and new bars are read on.
func (c *Config) EntryTimeframe() types.Timeframe {
	return types.Timeframe(c.Timeframes.Entry)
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.DataSource != "PAPER" && c.DataSource != "KITE" {
		return fmt.Errorf("invalid data_source '%s': must be 'PAPER' or 'KITE'", c.DataSource)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	for name, v := range map[string]int{
		"poll_seconds":       c.PollSeconds,
		"timer_seconds":      c.TimerSeconds,
		"cooldown_seconds":   c.CooldownSeconds,
		"structure_lookback": c.StructureLookback,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.MaxTradesPerDay <= 0 {
		return fmt.Errorf("max_trades_per_day must be positive, got %d", c.MaxTradesPerDay)
	}
	if c.OrderBlock.Lookback < 2 {
		return fmt.Errorf("order_block.lookback must be at least 2, got %d", c.OrderBlock.Lookback)
	}
	if c.OrderBlock.VolumeMult <= 0 {
		return fmt.Errorf("order_block.volume_mult must be positive, got %.2f", c.OrderBlock.VolumeMult)
	}
	for _, lvl := range c.OrderBlock.FibLevels {
		if lvl < 0 || lvl > 100 {
			return fmt.Errorf("order_block.fib_levels must be between 0-100, got %.2f", lvl)
		}
	}
	if c.Indicators.EMAFast >= c.Indicators.EMASlow {
		return fmt.Errorf("indicators.ema_fast (%d) must be below ema_slow (%d)", c.Indicators.EMAFast, c.Indicators.EMASlow)
	}
	if c.Indicators.RSIOversold >= c.Indicators.RSIOverbought {
		return fmt.Errorf("indicators.rsi_oversold (%.1f) must be below rsi_overbought (%.1f)",
			c.Indicators.RSIOversold, c.Indicators.RSIOverbought)
	}
	if c.Indicators.ATRMult <= 0 {
		return fmt.Errorf("indicators.atr_mult must be positive, got %.2f", c.Indicators.ATRMult)
	}
	for name, tf := range map[string]string{"trend1": c.Timeframes.Trend1, "trend2": c.Timeframes.Trend2, "entry": c.Timeframes.Entry} {
		parsed, err := types.ParseTimeframe(tf)
		if err != nil {
			return fmt.Errorf("timeframes.%s: %w", name, err)
		}
		// Kite's historical API has no 4 hour interval
		if c.DataSource == "KITE" && parsed == types.H4 {
			return fmt.Errorf("timeframes.%s: H4 is not available from Kite", name)
		}
	}
	if c.DataSource == "PAPER" && c.Paper.Equity <= 0 {
		return fmt.Errorf("paper.equity must be positive, got %.2f", c.Paper.Equity)
	}
	return nil
}

// applyDefaults fills unset fields with the reference parameters.
func (c *Config) applyDefaults() {
	if c.MagicNumber == 0 {
		c.MagicNumber = 2023
	}
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.DataSource == "" {
		c.DataSource = "PAPER"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 15
	}
	if c.TimerSeconds == 0 {
		c.TimerSeconds = 3600
	}
	if c.CooldownSeconds == 0 {
		c.CooldownSeconds = 2880
	}
	if c.MaxTradesPerDay == 0 {
		c.MaxTradesPerDay = 30
	}
	if c.OrderBlock.Lookback == 0 {
		c.OrderBlock.Lookback = 50
	}
	if c.OrderBlock.VolumeMult == 0 {
		c.OrderBlock.VolumeMult = 1.5
	}
	if len(c.OrderBlock.FibLevels) == 0 {
		c.OrderBlock.FibLevels = []float64{61.8, 50.0}
	}
	if c.OrderBlock.ProximityPoints == 0 {
		c.OrderBlock.ProximityPoints = 50
	}
	ind := &c.Indicators
	if ind.RSIPeriod == 0 {
		ind.RSIPeriod = 14
	}
	if ind.RSIOverbought == 0 {
		ind.RSIOverbought = 70
	}
	if ind.RSIOversold == 0 {
		ind.RSIOversold = 30
	}
	if ind.EMAFast == 0 {
		ind.EMAFast = 50
	}
	if ind.EMASlow == 0 {
		ind.EMASlow = 200
	}
	if ind.ATRPeriod == 0 {
		ind.ATRPeriod = 14
	}
	if ind.ATRMult == 0 {
		ind.ATRMult = 2.0
	}
	if c.Timeframes.Trend1 == "" {
		c.Timeframes.Trend1 = string(types.H1)
	}
	if c.Timeframes.Trend2 == "" {
		c.Timeframes.Trend2 = string(types.M30)
	}
	if c.Timeframes.Entry == "" {
		c.Timeframes.Entry = string(types.M5)
	}
	if c.StructureLookback == 0 {
		c.StructureLookback = 50
	}
	if c.TradeLog.Path == "" {
		c.TradeLog.Path = "SmartOB_Trades.csv"
	}
	if c.TradeLog.EODDir == "" {
		c.TradeLog.EODDir = "eod"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "smartob_journal.db"
	}
	if c.Paper.SpreadPoints == 0 {
		c.Paper.SpreadPoints = 2
	}
	if c.Kite.Exchange == "" {
		c.Kite.Exchange = "NSE"
	}
	if c.Kite.Product == "" {
		c.Kite.Product = "MIS"
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, applies defaults and validates.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	// Normalize timeframe spelling so later lookups are exact
	for _, tf := range []*string{&c.Timeframes.Trend1, &c.Timeframes.Trend2, &c.Timeframes.Entry} {
		if parsed, err := types.ParseTimeframe(*tf); err == nil {
			*tf = string(parsed)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
