package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClientStatus is the lifecycle state of a client record.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusProspect ClientStatus = "prospect"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusClosed   ClientStatus = "closed"
)

// StatusFilter narrows a client search. StatusAll (or empty) matches every status.
type StatusFilter string

const StatusAll StatusFilter = "all"

// Allows reports whether a client with status s passes the filter.
func (f StatusFilter) Allows(s ClientStatus) bool {
	if f == "" || f == StatusAll {
		return true
	}
	return ClientStatus(f) == s
}

// Client is a read-only projection of a client and its open accounts.
type Client struct {
	ID              string
	FirstName       string
	LastName        string
	FullName        string
	Email           string
	Phone           string
	Status          ClientStatus
	RiskTolerance   string
	OnboardingDate  *time.Time
	LastContactDate *time.Time
	Accounts        []Account
}

// DisplayName prefers the stored full name and falls back to "first last".
func (c Client) DisplayName() string {
	if n := strings.TrimSpace(c.FullName); n != "" {
		return n
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// OpenAccounts returns the accounts that are not flagged closed.
func (c Client) OpenAccounts() []Account {
	out := make([]Account, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		if !a.IsClosed {
			out = append(out, a)
		}
	}
	return out
}

// TotalAUM sums the market values of the open accounts.
// The result is invalid (null) when no open account reports a value.
func (c Client) TotalAUM() decimal.NullDecimal {
	var (
		sum   decimal.Decimal
		valid bool
	)
	for _, a := range c.OpenAccounts() {
		if !a.MarketValue.Valid {
			continue
		}
		sum = sum.Add(a.MarketValue.Decimal)
		valid = true
	}
	return decimal.NullDecimal{Decimal: sum, Valid: valid}
}

// TotalCostBasis sums the cost basis of the open accounts.
func (c Client) TotalCostBasis() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range c.OpenAccounts() {
		sum = sum.Add(a.CostBasis)
	}
	return sum
}

// UnrealizedGain sums value minus cost over open accounts that report a value.
func (c Client) UnrealizedGain() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range c.OpenAccounts() {
		if g, ok := a.UnrealizedGain(); ok {
			sum = sum.Add(g)
		}
	}
	return sum
}

// AccountsByValue returns the open accounts ordered by market value,
// highest first, accounts without a value last.
func (c Client) AccountsByValue() []Account {
	out := c.OpenAccounts()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ranksAbove(out[j]) })
	return out
}

// LargestOpenAccount returns the open account with the highest market value.
// Accounts without a value rank last.
func (c Client) LargestOpenAccount() (Account, bool) {
	var (
		best  Account
		found bool
	)
	for _, a := range c.OpenAccounts() {
		if !found || a.ranksAbove(best) {
			best, found = a, true
		}
	}
	return best, found
}

// Matches reports whether query is a case-insensitive substring of any
// name field, the email, the phone or an open account number.
// The durable store queries implement the same predicate in SQL.
func (c Client) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	fields := []string{
		c.FirstName,
		c.LastName,
		c.FullName,
		c.FirstName + " " + c.LastName,
		c.Email,
		c.Phone,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	for _, a := range c.OpenAccounts() {
		if a.AccountNumber != "" && strings.Contains(strings.ToLower(a.AccountNumber), q) {
			return true
		}
	}
	return false
}

// Account is a custodial account owned by a client.
type Account struct {
	ID              string
	AccountNumber   string
	Name            string
	Type            string
	Custodian       string
	MarketValue     decimal.NullDecimal
	CostBasis       decimal.Decimal
	IsClosed        bool
	InceptionDate   *time.Time
	IsBillable      bool
	IsDiscretionary bool
}

// UnrealizedGain is market value minus cost basis; ok is false when the value is unknown.
func (a Account) UnrealizedGain() (decimal.Decimal, bool) {
	if !a.MarketValue.Valid {
		return decimal.Zero, false
	}
	return a.MarketValue.Decimal.Sub(a.CostBasis), true
}

func (a Account) ranksAbove(b Account) bool {
	switch {
	case a.MarketValue.Valid && !b.MarketValue.Valid:
		return true
	case !a.MarketValue.Valid:
		return false
	default:
		return a.MarketValue.Decimal.GreaterThan(b.MarketValue.Decimal)
	}
}
