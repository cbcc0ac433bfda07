package indicators

import (
	"fmt"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// Config holds the indicator window lengths. Zero values fall back to the
// documented defaults.
type Config struct {
	SMAWindows      []int   `yaml:"sma_windows"`
	EMAWindows      []int   `yaml:"ema_windows"`
	RSIPeriod       int     `yaml:"rsi_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	StochLookback   int     `yaml:"stoch_lookback"`
	StochSmooth     int     `yaml:"stoch_smooth"`
	BollingerWindow int     `yaml:"bollinger_window"`
	BollingerK      float64 `yaml:"bollinger_k"`
	ATRPeriod       int     `yaml:"atr_period"`
	ADXPeriod       int     `yaml:"adx_period"`
	CCIWindow       int     `yaml:"cci_window"`
	MFIPeriod       int     `yaml:"mfi_period"`
}

// DefaultConfig returns the standard window set
func DefaultConfig() Config {
	return Config{
		SMAWindows:      []int{20, 50, 200},
		EMAWindows:      []int{20, 50, 200},
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		StochLookback:   14,
		StochSmooth:     3,
		BollingerWindow: 20,
		BollingerK:      2.0,
		ATRPeriod:       14,
		ADXPeriod:       14,
		CCIWindow:       20,
		MFIPeriod:       14,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if len(c.SMAWindows) == 0 {
		c.SMAWindows = d.SMAWindows
	}
	if len(c.EMAWindows) == 0 {
		c.EMAWindows = d.EMAWindows
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast <= 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.StochLookback <= 0 {
		c.StochLookback = d.StochLookback
	}
	if c.StochSmooth <= 0 {
		c.StochSmooth = d.StochSmooth
	}
	if c.BollingerWindow <= 0 {
		c.BollingerWindow = d.BollingerWindow
	}
	if c.BollingerK <= 0 {
		c.BollingerK = d.BollingerK
	}
	if c.ATRPeriod <= 0 {
		c.ATRPeriod = d.ATRPeriod
	}
	if c.ADXPeriod <= 0 {
		c.ADXPeriod = d.ADXPeriod
	}
	if c.CCIWindow <= 0 {
		c.CCIWindow = d.CCIWindow
	}
	if c.MFIPeriod <= 0 {
		c.MFIPeriod = d.MFIPeriod
	}
}

// Engine computes the technical indicator set. It is a pure function over a
// price series: deterministic for identical input, no I/O, and strictly
// causal (no value at index i depends on bars after i).
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given windows
func NewEngine(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg}
}

// Compute derives every configured indicator from the series. Each output is
// exactly as long as the input with leading warm-up positions marked invalid.
func (e *Engine) Compute(series *models.PriceSeries) (Set, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, fmt.Errorf("indicator engine: empty price series")
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("indicator engine: %w", err)
	}

	bars := series.Bars
	closes := series.Closes()
	set := make(Set)

	for _, n := range e.cfg.SMAWindows {
		set[fmt.Sprintf("SMA_%d", n)] = SMA(closes, n)
	}
	for _, n := range e.cfg.EMAWindows {
		set[fmt.Sprintf("EMA_%d", n)] = EMA(closes, n)
	}

	set[fmt.Sprintf("RSI_%d", e.cfg.RSIPeriod)] = RSI(closes, e.cfg.RSIPeriod)

	macd, signal, hist := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	set["MACD"] = macd
	set["MACD_Signal"] = signal
	set["MACD_Hist"] = hist

	stochK, stochD := Stochastic(bars, e.cfg.StochLookback, e.cfg.StochSmooth)
	set["Stoch_K"] = stochK
	set["Stoch_D"] = stochD

	upper, middle, lower := Bollinger(closes, e.cfg.BollingerWindow, e.cfg.BollingerK)
	set["BB_Upper"] = upper
	set["BB_Middle"] = middle
	set["BB_Lower"] = lower

	set[fmt.Sprintf("ATR_%d", e.cfg.ATRPeriod)] = ATR(bars, e.cfg.ATRPeriod)

	set["OBV"] = OBV(bars)
	set["ADL"] = ADLine(bars)

	set[fmt.Sprintf("ADX_%d", e.cfg.ADXPeriod)] = ADX(bars, e.cfg.ADXPeriod)
	set[fmt.Sprintf("CCI_%d", e.cfg.CCIWindow)] = CCI(bars, e.cfg.CCIWindow)
	set[fmt.Sprintf("MFI_%d", e.cfg.MFIPeriod)] = MFI(bars, e.cfg.MFIPeriod)

	return set, nil
}

// Config returns the effective window configuration
func (e *Engine) Config() Config {
	return e.cfg
}
