package finance

import (
	"fmt"
	"math"
)

// Loan terms assumed by the evaluation: a fixed 10% annual rate amortized
// over 60 months.
const (
	annualInterestRate = 0.10
	tenureMonths       = 60
)

// Result is the full eligibility verdict returned to the caller (and, in
// the chat flow, serialized verbatim as the tool payload for the model).
type Result struct {
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
	Applicant         string         `json:"applicant,omitempty"`
	RequestedAmount   float64        `json:"requestedAmount,omitempty"`
	Eligible          bool           `json:"eligible"`
	CIBILScore        int            `json:"cibilScore,omitempty"`
	MaxEligibleAmount float64        `json:"maxEligibleAmount,omitempty"`
	MonthlyIncome     float64        `json:"monthlyIncome,omitempty"`
	CurrentEMI        float64        `json:"currentEMI,omitempty"`
	NewEMI            float64        `json:"newEMI,omitempty"`
	TotalEMI          float64        `json:"totalEMI,omitempty"`
	DebtToIncomeRatio string         `json:"debtToIncomeRatio,omitempty"`
	DisposableIncome  float64        `json:"disposableIncome,omitempty"`
	RemainingIncome   float64        `json:"remainingIncome,omitempty"`
	CollateralNeeded  bool           `json:"collateralRequired"`
	Reasons           []string       `json:"reasons,omitempty"`
	Recommendations   []string       `json:"recommendations,omitempty"`
	ProfileSummary    ProfileSummary `json:"profileSummary,omitzero"`
}

type ProfileSummary struct {
	Age         int     `json:"age"`
	Occupation  string  `json:"occupation"`
	TotalAssets float64 `json:"totalAssets"`
	TotalDebt   float64 `json:"totalDebt"`
	LandOwned   string  `json:"landOwned"`
}

// MonthlyInstallment computes the standard amortized EMI for a principal at
// the fixed rate and tenure.
func MonthlyInstallment(principal float64) float64 {
	r := annualInterestRate / 12
	pow := math.Pow(1+r, tenureMonths)
	return principal * r * pow / (pow - 1)
}

// maxLoanMultiplier maps the CIBIL score to an income multiplier bounding
// the maximum eligible principal.
func maxLoanMultiplier(score int) float64 {
	switch {
	case score >= 750:
		return 25
	case score >= 700:
		return 18
	case score >= 650:
		return 12
	case score >= 600:
		return 8
	case score >= 550:
		return 6
	default:
		return 3
	}
}

// Evaluate scores the profile and decides whether the requested loan amount
// can be approved.
//
// The decision runs a fixed sequence of checks. Hard checks flip eligibility
// off and count as critical failures; soft checks only record reasons. After
// the hard checks, three override tiers may restore eligibility for
// asset-rich applicants whose cash flow is tight. The tiers are evaluated in
// a deliberate order (700-score tier first, then 750, then the residual-
// income hard failure, and the 800 tier last, gated on no prior critical
// failure); changing that order changes verdicts for profiles that match
// more than one tier, so it is preserved as-is.
func Evaluate(p *Profile, requestedAmount float64) *Result {
	score := Score(p)

	monthlyIncome := p.Income.TotalMonthlyIncome
	currentEMI := p.Liabilities.MonthlyEMI
	disposableIncome := monthlyIncome - currentEMI - p.Expenses.TotalMonthlyExpenses

	newEMI := MonthlyInstallment(requestedAmount)
	totalEMI := currentEMI + newEMI
	debtToIncomeRatio := totalEMI / monthlyIncome * 100

	// Maximum eligible amount: the lesser of the score-tiered income
	// multiple and an affordability estimate that commits half the
	// disposable income to the new EMI, padded by 20%.
	r := annualInterestRate / 12
	safeEMI := disposableIncome * 0.5
	maxByIncome := safeEMI * tenureMonths / (1 + r*tenureMonths/2)
	maxEligible := math.Round(math.Min(monthlyIncome*maxLoanMultiplier(score), maxByIncome) * 1.2)

	eligible := true
	criticalFailures := 0
	var reasons, recommendations []string

	// CIBIL floor (hard).
	if score < 500 {
		eligible = false
		criticalFailures++
		reasons = append(reasons, fmt.Sprintf("CIBIL score (%d) is below minimum requirement of 500", score))
		recommendations = append(recommendations, "Improve payment history by clearing existing dues on time")
	} else if score < 600 {
		reasons = append(reasons, fmt.Sprintf("CIBIL score (%d) is in fair range - collateral may be required", score))
		recommendations = append(recommendations, "Consider providing collateral to improve loan terms")
	}

	// Debt-to-income ceiling (hard above 60%).
	if debtToIncomeRatio > 60 {
		eligible = false
		criticalFailures++
		reasons = append(reasons, fmt.Sprintf("Debt-to-Income ratio (%.1f%%) exceeds maximum limit of 60%%", debtToIncomeRatio))
		recommendations = append(recommendations, "Pay off existing loans to reduce EMI burden")
	} else if debtToIncomeRatio > 50 {
		reasons = append(reasons, fmt.Sprintf("Debt-to-Income ratio (%.1f%%) is high - interest rate may be higher", debtToIncomeRatio))
	}

	// Requested versus eligible amount, with 10% headroom before the hard cut.
	if requestedAmount > maxEligible*1.1 {
		eligible = false
		criticalFailures++
		reasons = append(reasons, fmt.Sprintf("Requested amount (%s) significantly exceeds maximum eligible amount (%s)",
			FormatINR(requestedAmount), FormatINR(maxEligible)))
		recommendations = append(recommendations, fmt.Sprintf("Consider applying for %s or less", FormatINR(maxEligible)))
	} else if requestedAmount > maxEligible {
		reasons = append(reasons, "Requested amount slightly above recommended limit - may require additional documentation")
	}

	// Residual disposable income after the new EMI. Not a hard failure yet;
	// the asset override tiers below get a chance to compensate first.
	remainingIncome := disposableIncome - newEMI
	minRequired := math.Max(1500, monthlyIncome*0.05)

	incomeIssue := false
	switch {
	case remainingIncome < minRequired:
		incomeIssue = true
		reasons = append(reasons, fmt.Sprintf("Limited disposable income after EMI (%s)", FormatINR(remainingIncome)))
		recommendations = append(recommendations, fmt.Sprintf("Consider reducing loan amount to %s", FormatINR(maxEligible*0.7)))
	case remainingIncome < 2500:
		reasons = append(reasons, fmt.Sprintf("Moderate disposable income after EMI (%s) - budget carefully", FormatINR(remainingIncome)))
	case remainingIncome < 4000:
		reasons = append(reasons, fmt.Sprintf("Good disposable income after EMI (%s) - manageable", FormatINR(remainingIncome)))
	default:
		reasons = append(reasons, fmt.Sprintf("Excellent disposable income after EMI (%s)", FormatINR(remainingIncome)))
	}

	// Recent defaults (hard above one).
	if p.CreditHistory.RecentDefaults > 1 {
		eligible = false
		criticalFailures++
		reasons = append(reasons, fmt.Sprintf("Multiple recent loan defaults detected (%d)", p.CreditHistory.RecentDefaults))
		recommendations = append(recommendations, "Clear all defaults and wait 6 months before reapplying")
	} else if p.CreditHistory.RecentDefaults == 1 {
		reasons = append(reasons, "One recent default detected - may require guarantor")
		recommendations = append(recommendations, "Provide a guarantor to strengthen application")
	}

	// Collateral requirement for large loans with mid-range credit.
	// Insufficiency is recorded but never flips eligibility on its own.
	collateralRequired := requestedAmount > 300000 && score < 700
	if collateralRequired {
		available := p.Assets.CollateralValue()
		if available < requestedAmount*1.2 {
			reasons = append(reasons, fmt.Sprintf("Limited collateral for loan amount (Required: %s, Available: %s)",
				FormatINR(requestedAmount*1.2), FormatINR(available)))
			recommendations = append(recommendations, "Provide additional collateral or consider a co-applicant")
		} else {
			reasons = append(reasons, fmt.Sprintf("Collateral available (%s) - good security", FormatINR(available)))
		}
	}

	// Asset-backed override tiers for strong profiles with tight cash flow
	// (seasonal income is common for rural borrowers). Evaluation order
	// matters; see the function comment.
	totalAssets := p.Assets.TotalAssets
	if score >= 700 && totalAssets > requestedAmount*2.5 && remainingIncome > 1200 {
		eligible = true
		reasons = append(reasons, fmt.Sprintf("✓ Strong credit (CIBIL: %d) and excellent asset base (₹%.1fL) support approval",
			score, totalAssets/100000))
		if incomeIssue {
			recommendations = append(recommendations, "Maintain strict budget discipline - consider seasonal income patterns")
		}
	} else if score >= 750 && totalAssets > requestedAmount*2 && remainingIncome > 1500 {
		eligible = true
		reasons = append(reasons, fmt.Sprintf("✓ Excellent credit score (CIBIL: %d) and strong assets compensate for tight cash flow", score))
	} else if incomeIssue && remainingIncome < 1200 {
		// No override applied and the residual is truly insufficient.
		eligible = false
		criticalFailures++
		recommendations = append(recommendations, "Increase income or reduce requested loan amount")
	}

	// Final tier: exceptional credit with moderate assets, only when nothing
	// critical has failed so far.
	if criticalFailures == 0 && score >= 800 && totalAssets > requestedAmount*1.5 && remainingIncome > 1000 {
		eligible = true
		reasons = append(reasons, "✓ Exceptional credit history supports approval")
	}

	if eligible {
		reasons = append(reasons, positiveFactors(score, debtToIncomeRatio, totalAssets, requestedAmount, p.Income.IncomeStability, remainingIncome, monthlyIncome)...)
	}

	return &Result{
		Success:           true,
		Applicant:         p.PersonalInfo.Name,
		RequestedAmount:   requestedAmount,
		Eligible:          eligible,
		CIBILScore:        score,
		MaxEligibleAmount: maxEligible,
		MonthlyIncome:     monthlyIncome,
		CurrentEMI:        currentEMI,
		NewEMI:            math.Round(newEMI),
		TotalEMI:          math.Round(totalEMI),
		DebtToIncomeRatio: fmt.Sprintf("%.1f", debtToIncomeRatio),
		DisposableIncome:  math.Round(disposableIncome),
		RemainingIncome:   math.Round(remainingIncome),
		CollateralNeeded:  collateralRequired,
		Reasons:           reasons,
		Recommendations:   recommendations,
		ProfileSummary: ProfileSummary{
			Age:         p.PersonalInfo.Age,
			Occupation:  p.PersonalInfo.Occupation,
			TotalAssets: totalAssets,
			TotalDebt:   p.Liabilities.TotalDebt,
			LandOwned:   fmt.Sprintf("%g acres", p.Assets.LandOwnership.Acres),
		},
	}
}

// positiveFactors collects the approval-side notes appended to an eligible
// verdict.
func positiveFactors(score int, dti, totalAssets, requested float64, stability string, remaining, income float64) []string {
	var out []string

	switch {
	case score >= 750:
		out = append(out, "✓ Excellent credit score - best interest rates available")
	case score >= 700:
		out = append(out, "✓ Very good credit score - favorable terms")
	case score >= 650:
		out = append(out, "✓ Good credit score")
	}

	if dti < 30 {
		out = append(out, "✓ Low debt burden - healthy financial position")
	} else if dti < 40 {
		out = append(out, "✓ Moderate debt burden - manageable")
	}

	if totalAssets > requested*3 {
		out = append(out, "✓ Excellent asset base - strong security")
	} else if totalAssets > requested*2 {
		out = append(out, "✓ Strong asset base - good security")
	}

	switch stability {
	case StabilityVeryStable:
		out = append(out, "✓ Very stable income - reliable repayment capacity")
	case StabilityStable:
		out = append(out, "✓ Stable income source")
	}

	if remaining > income*0.3 {
		out = append(out, "✓ Excellent disposable income - comfortable repayment")
	} else if remaining > income*0.2 {
		out = append(out, "✓ Good disposable income")
	}

	return out
}
