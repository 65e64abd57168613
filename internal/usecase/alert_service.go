package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

// AlertService checks each market snapshot against the configured alert
// conditions: rapid price moves, watched price levels, negative funding,
// extreme fear and strong prediction signals. Level triggers carry a
// cooldown so a price oscillating around a level does not spam.
//
// Not safe for concurrent use; the daemon calls it from one goroutine.
type AlertService struct {
	cfg     *config.Config
	timeNow func() time.Time // For testing

	lastLevelTrigger map[string]time.Time
}

func NewAlertService(cfg *config.Config) *AlertService {
	return &AlertService{
		cfg:              cfg,
		timeNow:          time.Now,
		lastLevelTrigger: make(map[string]time.Time),
	}
}

// CheckAlerts returns every alert the snapshot triggers this cycle.
// A nil snapshot or disabled alerting yields none.
func (s *AlertService) CheckAlerts(market *domain.MarketSnapshot, prediction *domain.Prediction) []domain.Alert {
	if market == nil || !s.cfg.AlertsEnabled() {
		return nil
	}

	var alerts []domain.Alert
	alerts = append(alerts, s.checkPriceMove(market)...)
	alerts = append(alerts, s.checkPriceLevels(market)...)
	alerts = append(alerts, s.checkFundingRate(market)...)
	alerts = append(alerts, s.checkFearGreed(market)...)
	alerts = append(alerts, s.checkPrediction(market, prediction)...)
	return alerts
}

func (s *AlertService) checkPriceMove(market *domain.MarketSnapshot) []domain.Alert {
	lookback := time.Duration(s.cfg.Alerts.LookbackMinutes) * time.Minute
	change, ok := market.PriceChange(lookback, s.timeNow())
	if !ok {
		return nil
	}

	var alerts []domain.Alert
	if change <= -math.Abs(s.cfg.Alerts.PriceDropPct) {
		alerts = append(alerts, domain.Alert{
			Symbol:  market.Symbol,
			Level:   domain.AlertImportant,
			Message: fmt.Sprintf("Chute rapide de %.2f%% en %d min", change, s.cfg.Alerts.LookbackMinutes),
		})
	}
	if change >= math.Abs(s.cfg.Alerts.PriceSpikePct) {
		alerts = append(alerts, domain.Alert{
			Symbol:  market.Symbol,
			Level:   domain.AlertImportant,
			Message: fmt.Sprintf("Hausse rapide de %.2f%% en %d min", change, s.cfg.Alerts.LookbackMinutes),
		})
	}
	return alerts
}

func (s *AlertService) checkPriceLevels(market *domain.MarketSnapshot) []domain.Alert {
	levels, ok := s.cfg.Alerts.PriceLevels[market.Symbol]
	if !ok || market.CurrentPrice == nil {
		return nil
	}
	price := market.CurrentPrice.PriceEUR
	buffer := s.cfg.Alerts.LevelBufferEUR

	var alerts []domain.Alert
	if levels.Low != nil {
		low := *levels.Low
		switch {
		case price < low-buffer:
			if s.levelCanTrigger(market.Symbol + ":low") {
				alerts = append(alerts, domain.Alert{
					Symbol:  market.Symbol,
					Level:   domain.AlertCritical,
					Message: fmt.Sprintf("%s a cassé le niveau %.2f€ ! (maintenant %.2f€)", market.Symbol, low, price),
				})
			}
		case math.Abs(price-low) < buffer:
			if s.levelCanTrigger(market.Symbol + ":low") {
				alerts = append(alerts, domain.Alert{
					Symbol:  market.Symbol,
					Level:   domain.AlertWarning,
					Message: fmt.Sprintf("%s approche du niveau %.2f€ (actuellement %.2f€)", market.Symbol, low, price),
				})
			}
		}
	}
	if levels.High != nil {
		high := *levels.High
		switch {
		case price > high+buffer:
			if s.levelCanTrigger(market.Symbol + ":high") {
				alerts = append(alerts, domain.Alert{
					Symbol:  market.Symbol,
					Level:   domain.AlertCritical,
					Message: fmt.Sprintf("%s a franchi le niveau %.2f€ ! (maintenant %.2f€)", market.Symbol, high, price),
				})
			}
		case math.Abs(price-high) < buffer:
			if s.levelCanTrigger(market.Symbol + ":high") {
				alerts = append(alerts, domain.Alert{
					Symbol:  market.Symbol,
					Level:   domain.AlertWarning,
					Message: fmt.Sprintf("%s approche du niveau %.2f€ (actuellement %.2f€)", market.Symbol, high, price),
				})
			}
		}
	}
	return alerts
}

// levelCanTrigger consumes the cooldown for a level when it is open.
func (s *AlertService) levelCanTrigger(key string) bool {
	cooldown := time.Duration(s.cfg.Alerts.LevelCooldownMinutes) * time.Minute
	now := s.timeNow()
	if last, ok := s.lastLevelTrigger[key]; ok && now.Sub(last) < cooldown {
		return false
	}
	s.lastLevelTrigger[key] = now
	return true
}

func (s *AlertService) checkFundingRate(market *domain.MarketSnapshot) []domain.Alert {
	if market.FundingRate == nil {
		return nil
	}
	if *market.FundingRate > s.cfg.Alerts.FundingNegativePct {
		return nil
	}
	return []domain.Alert{{
		Symbol:  market.Symbol,
		Level:   domain.AlertInfo,
		Message: fmt.Sprintf("Funding négatif : %.4f%%", *market.FundingRate),
	}}
}

func (s *AlertService) checkFearGreed(market *domain.MarketSnapshot) []domain.Alert {
	if market.FearGreedIndex == nil || *market.FearGreedIndex > s.cfg.Alerts.FearGreedMax {
		return nil
	}
	return []domain.Alert{{
		Symbol:  market.Symbol,
		Level:   domain.AlertInfo,
		Message: fmt.Sprintf("Peur extrême : %d/100", *market.FearGreedIndex),
	}}
}

func (s *AlertService) checkPrediction(market *domain.MarketSnapshot, prediction *domain.Prediction) []domain.Alert {
	if prediction == nil || prediction.Confidence < 70 {
		return nil
	}
	switch {
	case prediction.Trend.Bullish():
		return []domain.Alert{{
			Symbol:  market.Symbol,
			Level:   domain.AlertInfo,
			Message: fmt.Sprintf("Signal haussier fort (%d%%)", prediction.Confidence),
		}}
	case prediction.Trend.Bearish():
		return []domain.Alert{{
			Symbol:  market.Symbol,
			Level:   domain.AlertWarning,
			Message: fmt.Sprintf("Signal baissier fort (%d%%)", prediction.Confidence),
		}}
	}
	return nil
}
