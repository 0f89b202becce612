package finance

import "math"

// Score computes a CIBIL-style composite credit score on the 300-900 scale.
//
// The score starts at the 300 floor and accumulates five weighted sub-scores:
// payment history (max 210), credit utilization (max 180), history length
// (max 90), income stability (max 60), and asset coverage (max 60), minus a
// penalty for recent credit inquiries. The result is rounded and clamped to
// [300, 900].
func Score(p *Profile) int {
	score := 300.0

	score += paymentHistoryScore(p.CreditHistory)
	score += utilizationScore(p.Liabilities.MonthlyEMI, p.Income.TotalMonthlyIncome)
	score += historyLengthScore(p.CreditHistory.OldestAccountYears)
	score += stabilityScore(p.Income)
	score += assetCoverageScore(p.Assets.TotalAssets, p.Liabilities.TotalDebt)

	if p.CreditHistory.CreditInquiries > 5 {
		score -= 20
	} else if p.CreditHistory.CreditInquiries > 3 {
		score -= 10
	}

	rounded := math.Round(score)
	return int(math.Max(300, math.Min(900, rounded)))
}

// paymentHistoryScore weighs on-time payment ratio against default penalties.
// Defaults are penalized hard: 50 points per lifetime default, 80 per recent
// one. The sub-score never goes negative.
func paymentHistoryScore(h CreditHistory) float64 {
	total := h.OnTimePayments + h.LatePayments + h.MissedPayments
	var ratioScore float64
	if total > 0 {
		ratioScore = float64(h.OnTimePayments) / float64(total) * 210
	}

	penalty := float64(h.TotalDefaults)*50 + float64(h.RecentDefaults)*80
	return math.Max(0, ratioScore-penalty)
}

// utilizationScore steps down as existing EMI eats into monthly income.
// A profile with no income is treated as fully utilized.
func utilizationScore(monthlyEMI, monthlyIncome float64) float64 {
	ratio := 1.0
	if monthlyIncome > 0 {
		ratio = monthlyEMI / monthlyIncome
	}

	switch {
	case ratio < 0.3:
		return 180
	case ratio < 0.4:
		return 150
	case ratio < 0.5:
		return 100
	case ratio < 0.6:
		return 50
	default:
		return 0
	}
}

func historyLengthScore(oldestAccountYears float64) float64 {
	switch {
	case oldestAccountYears >= 10:
		return 90
	case oldestAccountYears >= 5:
		return 70
	case oldestAccountYears >= 3:
		return 50
	case oldestAccountYears >= 1:
		return 30
	default:
		return 10
	}
}

// stabilityScore maps the categorical income stability to a base score plus
// an employment-tenure bonus, capped at 60 after the bonus.
func stabilityScore(income Income) float64 {
	var base float64
	switch income.IncomeStability {
	case StabilityVeryStable:
		base = 60
	case StabilityStable:
		base = 50
	case StabilityRegular:
		base = 40
	case StabilitySeasonal:
		base = 25
	default:
		base = 10
	}

	tenure := income.TenureYears()
	if tenure >= 10 {
		base += 10
	} else if tenure >= 5 {
		base += 5
	}

	return math.Min(60, base)
}

// assetCoverageScore steps on the asset-to-debt ratio. Zero debt counts as
// a ratio of 100, landing in the top band.
func assetCoverageScore(totalAssets, totalDebt float64) float64 {
	ratio := 100.0
	if totalDebt > 0 {
		ratio = totalAssets / totalDebt
	}

	switch {
	case ratio >= 20:
		return 60
	case ratio >= 10:
		return 50
	case ratio >= 5:
		return 40
	case ratio >= 2:
		return 25
	default:
		return 10
	}
}
