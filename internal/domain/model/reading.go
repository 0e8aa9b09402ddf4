package model

import (
	"errors"
	"time"
)

// Reading is one source's snapshot for one user at one point in time.
// Readings are append-only: a later fetch supersedes but never replaces one.
type Reading struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Source           Source    `json:"source"`
	CapturedAt       time.Time `json:"captured_at"`
	ExternalReportID string    `json:"external_report_id"`
	Available        bool      `json:"available"`
	ErrorReason      string    `json:"error_reason,omitempty"`
	Metrics          *Metrics  `json:"metrics,omitempty"`
}

// Usable reports whether the reading can contribute to an aggregation.
func (r Reading) Usable() bool {
	return r.Available && r.Metrics.HasScore()
}

// Validate checks the availability invariant: metrics iff available,
// error reason iff unavailable.
func (r Reading) Validate() error {
	if !r.Source.Valid() {
		return ErrUnknownSource
	}
	if r.Available {
		if r.Metrics == nil {
			return errors.New("available reading without metrics")
		}
		if r.ErrorReason != "" {
			return errors.New("available reading with error reason")
		}
		return nil
	}
	if r.Metrics != nil {
		return errors.New("unavailable reading with metrics")
	}
	if r.ErrorReason == "" {
		return errors.New("unavailable reading without error reason")
	}
	return nil
}

// Metrics is the closed payload carried by an available reading.
// Extra holds source-specific data that is never interpreted.
type Metrics struct {
	// Score is the bureau score; zero means the bureau returned none.
	Score                   int            `json:"score"`
	UtilizationRate         float64        `json:"utilization_rate"`
	AccountsCount           int            `json:"accounts_count"`
	DelinquentAccountsCount int            `json:"delinquent_accounts_count"`
	InquiriesLast6Months    int            `json:"inquiries_last_6_months"`
	OldestAccountAgeMonths  int            `json:"oldest_account_age_months"`
	TotalDebt               float64        `json:"total_debt"`
	MonthlyPayments         float64        `json:"monthly_payments"`
	PublicRecords           int            `json:"public_records"`
	DerogatoryMarks         int            `json:"derogatory_marks"`
	PaymentHistory          PaymentHistory `json:"payment_history"`
	CreditMix               CreditMix      `json:"credit_mix"`
	Extra                   map[string]any `json:"additional_data,omitempty"`
}

// HasScore reports whether m is present and carries a score.
func (m *Metrics) HasScore() bool {
	return m != nil && m.Score > 0
}

// PaymentHistory summarizes on-time and late payments.
type PaymentHistory struct {
	OnTime int `json:"on_time"`
	Late30 int `json:"late_30"`
	Late60 int `json:"late_60"`
	Late90 int `json:"late_90"`
}

// CreditMix counts accounts by type.
type CreditMix struct {
	Revolving   int `json:"revolving"`
	Installment int `json:"installment"`
	Mortgage    int `json:"mortgage"`
	Open        int `json:"open"`
}
