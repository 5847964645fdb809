package job

import (
	"time"

	"github.com/google/uuid"
)

type Location string

const (
	LocationRemote Location = "REMOTE"
	LocationOffice Location = "OFFICE"
	LocationHybrid Location = "HYBRID"
)

type Type string

const (
	TypeFullTime   Type = "FULL_TIME"
	TypePartTime   Type = "PART_TIME"
	TypeContract   Type = "CONTRACT"
	TypeInternship Type = "INTERNSHIP"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyIDR Currency = "IDR"
	CurrencyINR Currency = "INR"
)

// SymbolFor returns the display symbol paired with a currency. An opening
// always stores exactly one currency/symbol pair.
func SymbolFor(c Currency) string {
	switch c {
	case CurrencyEUR:
		return "€"
	case CurrencyIDR:
		return "Rp"
	case CurrencyINR:
		return "₹"
	default:
		return "$"
	}
}

type SalaryRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Opening is a posted position. The screening and generation workflows
// only ever read it; recruiters create it.
type Opening struct {
	ID              uuid.UUID
	Title           string
	About           string
	RequiredSkills  []string
	ExperienceLevel string
	Type            Type
	SalaryRange     *SalaryRange
	Currency        Currency
	CurrencySymbol  string
	Department      string
	Location        Location
	PostedBy        uuid.UUID
	CreatedAt       time.Time
}
