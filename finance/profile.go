// Package finance implements the deterministic loan-eligibility engine:
// a CIBIL-style composite credit score and a rule-based eligibility decision
// over a borrower's financial profile. Everything in this package is pure
// computation; profile loading lives in the store layer.
package finance

// Profile is a borrower's financial profile as persisted by the profile
// store. It is read-only input to Score and Evaluate and is never mutated.
type Profile struct {
	PersonalInfo  PersonalInfo  `json:"personalInfo"`
	CreditHistory CreditHistory `json:"creditHistory"`
	Income        Income        `json:"income"`
	Liabilities   Liabilities   `json:"liabilities"`
	Assets        Assets        `json:"assets"`
	Expenses      Expenses      `json:"expenses"`
}

type PersonalInfo struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Occupation string `json:"occupation"`
}

type CreditHistory struct {
	OnTimePayments     int     `json:"onTimePayments"`
	LatePayments       int     `json:"latePayments"`
	MissedPayments     int     `json:"missedPayments"`
	TotalDefaults      int     `json:"totalDefaults"`
	RecentDefaults     int     `json:"recentDefaults"`
	OldestAccountYears float64 `json:"oldestAccountYears"`
	CreditInquiries    int     `json:"creditInquiries"`
}

// Income stability categories recognized by the scorer. Anything else is
// treated as the lowest band.
const (
	StabilityVeryStable = "Very Stable"
	StabilityStable     = "Stable"
	StabilityRegular    = "Regular"
	StabilitySeasonal   = "Seasonal"
)

type Income struct {
	TotalMonthlyIncome float64 `json:"totalMonthlyIncome"`
	IncomeStability    string  `json:"incomeStability"`
	EmploymentYears    float64 `json:"employmentYears,omitempty"`
	BusinessYears      float64 `json:"businessYears,omitempty"`
}

// TenureYears returns the employment tenure used for the stability bonus.
// Self-employed profiles carry businessYears instead of employmentYears.
func (i Income) TenureYears() float64 {
	if i.EmploymentYears > 0 {
		return i.EmploymentYears
	}
	return i.BusinessYears
}

type Liabilities struct {
	MonthlyEMI float64 `json:"monthlyEMI"`
	TotalDebt  float64 `json:"totalDebt"`
}

type Assets struct {
	TotalAssets   float64    `json:"totalAssets"`
	LandOwnership ValuedLand `json:"landOwnership"`
	Property      Valued     `json:"property"`
	Gold          Valued     `json:"gold"`
}

type ValuedLand struct {
	Acres          float64 `json:"acres"`
	EstimatedValue float64 `json:"estimatedValue"`
}

type Valued struct {
	EstimatedValue float64 `json:"estimatedValue"`
}

// CollateralValue is the pledgeable portion of the asset base: land,
// property, and gold at their estimated values.
func (a Assets) CollateralValue() float64 {
	return a.LandOwnership.EstimatedValue + a.Property.EstimatedValue + a.Gold.EstimatedValue
}

type Expenses struct {
	TotalMonthlyExpenses float64 `json:"totalMonthlyExpenses"`
}
