package strategy

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config carries the strategy parameters. All values are explicit; there are
// no package-level defaults mutated at runtime.
type Config struct {
	Symbols []string `yaml:"symbols"`
	// SdPeriod is the window for the standard deviation of closes.
	SdPeriod int `yaml:"sd_period"`
	// LookBackPeriod is the window for the trading signal's rolling high.
	LookBackPeriod int     `yaml:"look_back_period"`
	MaShortPeriod  int     `yaml:"ma_short_period"`
	MaLongPeriod   int     `yaml:"ma_long_period"`
	// TriggerDistance is the entry trigger, in standard deviations.
	TriggerDistance    float64 `yaml:"trigger_distance"`
	StopOrderDistance  float64 `yaml:"stop_order_distance"`
	LimitOrderDistance float64 `yaml:"limit_order_distance"`
	// OrderLimit caps the notional of a single entry order.
	OrderLimit float64 `yaml:"order_limit"`
	// LimitOrderPct / StopOrderPct are the pct-from-market offsets for
	// bracket exits anchored to the entry's execution price.
	LimitOrderPct float64 `yaml:"limit_order_pct"`
	StopOrderPct  float64 `yaml:"stop_order_pct"`
}

func DefaultConfig() Config {
	return Config{
		SdPeriod:           22,
		LookBackPeriod:     22,
		MaShortPeriod:      5,
		MaLongPeriod:       22,
		TriggerDistance:    3,
		StopOrderDistance:  2,
		LimitOrderDistance: 2,
		OrderLimit:         1000,
		LimitOrderPct:      0.2,
		StopOrderPct:       -0.2,
	}
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

func (c Config) Log() {
	log.Info("============================================================")
	log.Info("Strategy config:")
	log.Infof("SYMBOLS: %v", c.Symbols)
	log.Infof("SD_PERIOD: %d", c.SdPeriod)
	log.Infof("LOOK_BACK_PERIOD: %d", c.LookBackPeriod)
	log.Infof("MA_SHORT_PERIOD: %d", c.MaShortPeriod)
	log.Infof("MA_LONG_PERIOD: %d", c.MaLongPeriod)
	log.Infof("TRIGGER_DISTANCE: %f", c.TriggerDistance)
	log.Infof("STOP_ORDER_DISTANCE: %f", c.StopOrderDistance)
	log.Infof("LIMIT_ORDER_DISTANCE: %f", c.LimitOrderDistance)
	log.Infof("ORDER_LIMIT: %f", c.OrderLimit)
	log.Infof("LIMIT_ORDER_PCT: %f", c.LimitOrderPct)
	log.Infof("STOP_ORDER_PCT: %f", c.StopOrderPct)
	log.Info("============================================================")
}
