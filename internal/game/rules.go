package game

import "fmt"

// AssetParams describes the monthly return process and trading cost of one
// risky asset class.
type AssetParams struct {
	Mu          float64 `yaml:"mu" json:"mu"`
	Sigma       float64 `yaml:"sigma" json:"sigma"`
	Spread      float64 `yaml:"spread" json:"spread"`
	CrisisShock float64 `yaml:"crisis_shock" json:"crisis_shock"`
	StartMonth  int     `yaml:"start_month" json:"start_month"`
}

// Rules is the full immutable parameter set for one session. Load it once,
// validate it once, then pass it by value; nothing mutates it afterwards.
type Rules struct {
	Months         int     `yaml:"months" json:"months"`
	Income         float64 `yaml:"income" json:"income"`
	StartCash      float64 `yaml:"start_cash" json:"start_cash"`
	StartFixedCost float64 `yaml:"start_fixed_cost" json:"start_fixed_cost"`
	StartInflation float64 `yaml:"start_inflation" json:"start_inflation"`

	BankStartMonth int     `yaml:"bank_start_month" json:"bank_start_month"`
	LoanStartMonth int     `yaml:"loan_start_month" json:"loan_start_month"`
	MaxBanks       int     `yaml:"max_banks" json:"max_banks"`
	MinTermRate    float64 `yaml:"min_term_rate" json:"min_term_rate"`
	MaxTermRate    float64 `yaml:"max_term_rate" json:"max_term_rate"`
	MinGuarantee   float64 `yaml:"min_guarantee" json:"min_guarantee"`
	MaxGuarantee   float64 `yaml:"max_guarantee" json:"max_guarantee"`
	GuaranteeNoise float64 `yaml:"guarantee_noise" json:"guarantee_noise"`
	RateDrift      float64 `yaml:"rate_drift" json:"rate_drift"`

	LoanBaseRate     float64 `yaml:"loan_base_rate" json:"loan_base_rate"`
	LoanSpreadFactor float64 `yaml:"loan_spread_factor" json:"loan_spread_factor"`
	MinLoanRate      float64 `yaml:"min_loan_rate" json:"min_loan_rate"`
	MaxLoanRate      float64 `yaml:"max_loan_rate" json:"max_loan_rate"`

	TxFee             float64 `yaml:"tx_fee" json:"tx_fee"`
	EarlyBreakPenalty float64 `yaml:"early_break_penalty" json:"early_break_penalty"`

	Assets      map[AssetKind]AssetParams `yaml:"assets" json:"assets"`
	CrisisMonth int                       `yaml:"crisis_month" json:"crisis_month"`

	TheftProbEarly   float64 `yaml:"theft_prob_early" json:"theft_prob_early"`
	TheftProbLate    float64 `yaml:"theft_prob_late" json:"theft_prob_late"`
	TheftSevMin      float64 `yaml:"theft_sev_min" json:"theft_sev_min"`
	TheftSevMax      float64 `yaml:"theft_sev_max" json:"theft_sev_max"`
	GuaranteedThefts int     `yaml:"guaranteed_thefts" json:"guaranteed_thefts"`

	BankIncidentProb float64 `yaml:"bank_incident_prob" json:"bank_incident_prob"`

	InflationStepMin float64 `yaml:"inflation_step_min" json:"inflation_step_min"`
	InflationStepMax float64 `yaml:"inflation_step_max" json:"inflation_step_max"`
	InflationFloor   float64 `yaml:"inflation_floor" json:"inflation_floor"`
	InflationCap     float64 `yaml:"inflation_cap" json:"inflation_cap"`

	LoansEnabled         bool `yaml:"loans_enabled" json:"loans_enabled"`
	BankIncidentsEnabled bool `yaml:"bank_incidents_enabled" json:"bank_incidents_enabled"`
}

// DefaultRules is the baseline 12-month game. YAML files are unmarshalled on
// top of this, so omitted keys keep their defaults.
func DefaultRules() Rules {
	return Rules{
		Months:         12,
		Income:         60_000,
		StartCash:      10_000,
		StartFixedCost: 45_000,
		StartInflation: 0.10,

		BankStartMonth: 3,
		LoanStartMonth: 5,
		MaxBanks:       6,
		MinTermRate:    0.02,
		MaxTermRate:    0.05,
		MinGuarantee:   0.50,
		MaxGuarantee:   0.95,
		GuaranteeNoise: 0.02,
		RateDrift:      0.003,

		LoanBaseRate:     0.04,
		LoanSpreadFactor: 0.10,
		MinLoanRate:      0.05,
		MaxLoanRate:      0.12,

		TxFee:             0.01,
		EarlyBreakPenalty: 0.02,

		Assets: map[AssetKind]AssetParams{
			AssetEquity: {Mu: 0.012, Sigma: 0.06, Spread: 0.02, CrisisShock: -0.20, StartMonth: 3},
			AssetGold:   {Mu: 0.008, Sigma: 0.04, Spread: 0.03, CrisisShock: 0.12, StartMonth: 5},
			AssetFX:     {Mu: 0.006, Sigma: 0.03, Spread: 0.01, CrisisShock: 0.08, StartMonth: 5},
			AssetCrypto: {Mu: 0.030, Sigma: 0.18, Spread: 0.06, CrisisShock: -0.45, StartMonth: 9},
		},
		CrisisMonth: 10,

		TheftProbEarly:   0.15,
		TheftProbLate:    0.05,
		TheftSevMin:      0.20,
		TheftSevMax:      0.60,
		GuaranteedThefts: 1,

		BankIncidentProb: 0.03,

		InflationStepMin: 0.002,
		InflationStepMax: 0.015,
		InflationFloor:   0.0,
		InflationCap:     0.25,

		LoansEnabled:         true,
		BankIncidentsEnabled: true,
	}
}

func (r Rules) Validate() error {
	if r.Months < 1 {
		return fmt.Errorf("months must be >= 1, got %d", r.Months)
	}
	if r.Income <= 0 {
		return fmt.Errorf("income must be positive")
	}
	if r.StartCash < 0 || r.StartFixedCost < 0 {
		return fmt.Errorf("start_cash and start_fixed_cost must be non-negative")
	}
	if r.BankStartMonth < 1 || r.LoanStartMonth < r.BankStartMonth {
		return fmt.Errorf("loan_start_month (%d) must be >= bank_start_month (%d) >= 1", r.LoanStartMonth, r.BankStartMonth)
	}
	if r.MaxBanks < 1 {
		return fmt.Errorf("max_banks must be >= 1")
	}
	if r.MinTermRate < 0 || r.MaxTermRate < r.MinTermRate {
		return fmt.Errorf("term rate bounds inverted: [%v, %v]", r.MinTermRate, r.MaxTermRate)
	}
	if r.MinGuarantee < 0 || r.MaxGuarantee > 1 || r.MaxGuarantee < r.MinGuarantee {
		return fmt.Errorf("guarantee bounds must satisfy 0 <= min <= max <= 1")
	}
	if r.MinLoanRate < 0 || r.MaxLoanRate < r.MinLoanRate {
		return fmt.Errorf("loan rate bounds inverted: [%v, %v]", r.MinLoanRate, r.MaxLoanRate)
	}
	if r.TxFee < 0 || r.TxFee >= 1 {
		return fmt.Errorf("tx_fee must be in [0, 1)")
	}
	if r.EarlyBreakPenalty < 0 || r.EarlyBreakPenalty >= 1 {
		return fmt.Errorf("early_break_penalty must be in [0, 1)")
	}
	for _, prob := range []struct {
		name string
		v    float64
	}{
		{"theft_prob_early", r.TheftProbEarly},
		{"theft_prob_late", r.TheftProbLate},
		{"bank_incident_prob", r.BankIncidentProb},
	} {
		if prob.v < 0 || prob.v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", prob.name, prob.v)
		}
	}
	if r.TheftSevMin < 0 || r.TheftSevMax > 1 || r.TheftSevMax < r.TheftSevMin {
		return fmt.Errorf("theft severity bounds must satisfy 0 <= min <= max <= 1")
	}
	if r.GuaranteedThefts < 0 || r.GuaranteedThefts > r.Months {
		return fmt.Errorf("guaranteed_thefts must be in [0, months]")
	}
	if r.InflationStepMin < 0 || r.InflationStepMax < r.InflationStepMin {
		return fmt.Errorf("inflation step bounds inverted")
	}
	if r.InflationCap < r.InflationFloor {
		return fmt.Errorf("inflation_cap must be >= inflation_floor")
	}
	if r.StartInflation < r.InflationFloor || r.StartInflation > r.InflationCap {
		return fmt.Errorf("start_inflation outside [floor, cap]")
	}
	for _, kind := range assetOrder {
		params, ok := r.Assets[kind]
		if !ok {
			return fmt.Errorf("missing asset params for %s", kind)
		}
		if params.Sigma < 0 {
			return fmt.Errorf("%s: sigma must be non-negative", kind)
		}
		if params.Spread < 0 || params.Spread >= 1 {
			return fmt.Errorf("%s: spread must be in [0, 1)", kind)
		}
		if params.StartMonth < 1 {
			return fmt.Errorf("%s: start_month must be >= 1", kind)
		}
	}
	return nil
}

// Stage buckets a month into the progressive unlock phases: 1 cash-only,
// 2 banking, 3 credit and hedging instruments, 4 full market.
func (r Rules) Stage(month int) int {
	full := 0
	for _, params := range r.Assets {
		if params.StartMonth > full {
			full = params.StartMonth
		}
	}
	switch {
	case month < r.BankStartMonth:
		return 1
	case month < r.LoanStartMonth:
		return 2
	case month < full:
		return 3
	default:
		return 4
	}
}

func (r Rules) StageLabel(month int) string {
	switch r.Stage(month) {
	case 1:
		return "cash only"
	case 2:
		return "banking"
	case 3:
		return "credit & hedging"
	default:
		return "full market"
	}
}

func (r Rules) loansActive(month int) bool {
	return r.LoansEnabled && month >= r.LoanStartMonth
}

func (r Rules) assetUnlocked(kind AssetKind, month int) bool {
	params, ok := r.Assets[kind]
	return ok && month >= params.StartMonth
}

func (r Rules) theftProb(month int) float64 {
	if month < r.BankStartMonth {
		return r.TheftProbEarly
	}
	return r.TheftProbLate
}
