package indicators

import (
	"fmt"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// SignalGroup is one named group of human-readable technical readings
type SignalGroup struct {
	Name    string   `json:"name"`
	Signals []string `json:"signals"`
}

// Signals derives the report's technical summary lines from a computed set.
// Groups and lines are emitted in a fixed order; a reading whose inputs are
// still warming up is simply omitted.
func (e *Engine) Signals(set Set, series *models.PriceSeries) []SignalGroup {
	if len(series.Bars) == 0 {
		return nil
	}
	price := series.Bars[len(series.Bars)-1].Close

	groups := []SignalGroup{
		{Name: "Moving Averages", Signals: e.maSignals(set, price)},
		{Name: "RSI", Signals: e.rsiSignals(set)},
		{Name: "MACD", Signals: macdSignals(set)},
		{Name: "Bollinger Bands", Signals: bollingerSignals(set, price)},
		{Name: "Volume", Signals: volumeSignals(set)},
		{Name: "Trend", Signals: e.trendSignals(set)},
	}
	return groups
}

func (e *Engine) maSignals(set Set, price float64) []string {
	var signals []string

	shortName := fmt.Sprintf("SMA_%d", firstWindow(e.cfg.SMAWindows, 20))
	midName := fmt.Sprintf("SMA_%d", secondWindow(e.cfg.SMAWindows, 50))
	longName := fmt.Sprintf("SMA_%d", lastWindow(e.cfg.SMAWindows, 200))

	short, okShort := set.Last(shortName)
	mid, okMid := set.Last(midName)
	if okShort && okMid {
		if short > mid {
			signals = append(signals, fmt.Sprintf("%s above %s (Bullish)", shortName, midName))
		} else if short < mid {
			signals = append(signals, fmt.Sprintf("%s below %s (Bearish)", shortName, midName))
		}
	}

	if long, ok := set.Last(longName); ok {
		if price > long {
			signals = append(signals, fmt.Sprintf("Price above %s (Long-term Bullish)", longName))
		} else {
			signals = append(signals, fmt.Sprintf("Price below %s (Long-term Bearish)", longName))
		}
	}
	return signals
}

func (e *Engine) rsiSignals(set Set) []string {
	rsi, ok := set.Last(fmt.Sprintf("RSI_%d", e.cfg.RSIPeriod))
	if !ok {
		return nil
	}
	switch {
	case rsi > 70:
		return []string{fmt.Sprintf("RSI at %.1f, above 70 (Overbought)", rsi)}
	case rsi < 30:
		return []string{fmt.Sprintf("RSI at %.1f, below 30 (Oversold)", rsi)}
	}
	return nil
}

func macdSignals(set Set) []string {
	macd, okM := set.Last("MACD")
	signal, okS := set.Last("MACD_Signal")
	if !okM || !okS {
		return nil
	}
	if macd > signal {
		return []string{"MACD above Signal Line (Bullish)"}
	}
	return []string{"MACD below Signal Line (Bearish)"}
}

func bollingerSignals(set Set, price float64) []string {
	upper, okU := set.Last("BB_Upper")
	lower, okL := set.Last("BB_Lower")
	if !okU || !okL {
		return nil
	}
	switch {
	case price > upper:
		return []string{"Price above Upper Bollinger Band (Overbought)"}
	case price < lower:
		return []string{"Price below Lower Bollinger Band (Oversold)"}
	}
	return nil
}

func volumeSignals(set Set) []string {
	obv := set["OBV"]
	if len(obv) < 2 || !obv[len(obv)-1].Valid || !obv[len(obv)-2].Valid {
		return nil
	}
	if obv[len(obv)-1].Float > obv[len(obv)-2].Float {
		return []string{"OBV increasing (Bullish Volume)"}
	}
	return []string{"OBV decreasing (Bearish Volume)"}
}

func (e *Engine) trendSignals(set Set) []string {
	adx, ok := set.Last(fmt.Sprintf("ADX_%d", e.cfg.ADXPeriod))
	if !ok {
		return nil
	}
	if adx > 25 {
		return []string{fmt.Sprintf("Strong trend (ADX %.1f > 25)", adx)}
	}
	return []string{fmt.Sprintf("Weak trend (ADX %.1f < 25)", adx)}
}

func firstWindow(windows []int, fallback int) int {
	if len(windows) > 0 {
		return windows[0]
	}
	return fallback
}

func secondWindow(windows []int, fallback int) int {
	if len(windows) > 1 {
		return windows[1]
	}
	return fallback
}

func lastWindow(windows []int, fallback int) int {
	if len(windows) > 0 {
		return windows[len(windows)-1]
	}
	return fallback
}

// ChartData extracts the aligned chart payload for the report's price chart
// section: bar timestamps, closes and the subset of overlay indicators that
// render on the price axis.
func ChartData(series *models.PriceSeries, set Set, overlays []string) (timestamps []int64, closes []float64, lines map[string][]Value) {
	timestamps = make([]int64, len(series.Bars))
	closes = make([]float64, len(series.Bars))
	for i, bar := range series.Bars {
		timestamps[i] = bar.Timestamp.Unix()
		closes[i] = bar.Close
	}
	lines = make(map[string][]Value, len(overlays))
	for _, name := range overlays {
		if s, ok := set[name]; ok {
			lines[name] = s
		}
	}
	return timestamps, closes, lines
}
