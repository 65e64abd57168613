package usecase

import "fmt"

// Commentary functions turn one indicator family into a single French
// sentence. Each returns ("", false) when its inputs are missing and
// otherwise the first matching band of its threshold table. They are
// stateless and safe to call in isolation.

// ChangeComment buckets a 24h change percentage.
func ChangeComment(change *float64) (string, bool) {
	if change == nil {
		return "", false
	}
	switch c := *change; {
	case c > 5:
		return "Forte hausse aujourd'hui !", true
	case c > 2:
		return "Hausse modérée", true
	case c > -2:
		return "Prix stable", true
	case c > -5:
		return "Baisse modérée", true
	default:
		return "Forte baisse aujourd'hui", true
	}
}

// RSIComment buckets an RSI value. Bands are contiguous and cover the
// whole [0,100] range: every value yields exactly one sentence.
func RSIComment(rsi *float64) (string, bool) {
	if rsi == nil {
		return "", false
	}
	switch r := *rsi; {
	case r >= 80:
		return "RSI en surchauffe, correction probable 🔴", true
	case r >= 70:
		return "RSI suracheté, prudence 🔴", true
	case r >= 60:
		return "RSI élevé, le marché s'échauffe", true
	case r >= 40:
		return "RSI neutre", true
	case r >= 30:
		return "RSI bas, prix attractif", true
	case r > 20:
		return "RSI survendu, rebond possible 🟢", true
	default:
		return "RSI en capitulation, le marché vend tout 🟢", true
	}
}

// VolumeComment buckets 24h traded volume.
func VolumeComment(volume float64) (string, bool) {
	if volume <= 0 {
		return "", false
	}
	switch {
	case volume > 1_000_000_000:
		return "Volume très élevé, le mouvement est confirmé", true
	case volume > 100_000_000:
		return "Pas mal d'activité sur cette crypto", true
	default:
		return "Activité normale sur cette crypto", true
	}
}

// PriceLevelComment relates the current price to support and resistance.
// Proximity threshold is 2% either side; proximity to support wins over
// proximity to resistance when both match.
func PriceLevelComment(price float64, support, resistance *float64) (string, bool) {
	if price <= 0 {
		return "", false
	}
	if support != nil && *support > 0 {
		if dist := abs(price-*support) / price * 100; dist < 2 {
			return fmt.Sprintf("Proche du support (%.2f€) 🟢", *support), true
		}
	}
	if resistance != nil && *resistance > 0 {
		if dist := abs(*resistance-price) / price * 100; dist < 2 {
			return fmt.Sprintf("Proche de la résistance (%.2f€) 🔴", *resistance), true
		}
	}
	return "", false
}

// MAComment describes the price position against the moving averages.
func MAComment(price, ma20, ma50 float64) (string, bool) {
	if price <= 0 || ma20 <= 0 {
		return "", false
	}
	if ma50 > 0 {
		if price > ma20 && ma20 > ma50 {
			return "Prix > MA20 > MA50, structure haussière", true
		}
		if price < ma20 && ma20 < ma50 {
			return "Prix < MA20 < MA50, structure baissière", true
		}
	}
	if price > ma20 {
		return "Au-dessus de la MA20", true
	}
	return "En-dessous de la MA20", true
}

// ConfidenceComment phrases a prediction confidence percentage.
func ConfidenceComment(confidence int) (string, bool) {
	if confidence <= 0 {
		return "", false
	}
	switch {
	case confidence >= 75:
		return "L'analyse est très sûre", true
	case confidence >= 60:
		return "L'analyse est plutôt sûre", true
	case confidence >= 50:
		return "L'analyse n'est pas très sûre", true
	default:
		return "L'analyse est peu sûre", true
	}
}

// FearGreedComment buckets the Fear & Greed index.
func FearGreedComment(index *int) (string, bool) {
	if index == nil {
		return "", false
	}
	switch v := *index; {
	case v < 25:
		return "Peur extrême : le marché vend massivement.", true
	case v < 45:
		return "Peur sur le marché, prudence recommandée.", true
	case v < 55:
		return "Sentiment neutre, le marché reste équilibré.", true
	case v < 75:
		return "Avidité croissante : l'optimisme domine.", true
	default:
		return "Avidité extrême : attention au retournement.", true
	}
}

// OpportunityComment phrases an opportunity score band.
func OpportunityComment(score int) (string, bool) {
	switch {
	case score >= 8:
		return "Excellente opportunité d'achat !", true
	case score >= 6:
		return "Bonne opportunité", true
	case score >= 4:
		return "Opportunité correcte", true
	case score >= 2:
		return "Opportunité très faible", true
	case score >= 0:
		return "Mauvaise opportunité", true
	default:
		return "", false
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
