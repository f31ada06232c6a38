// Package transaction defines the transaction record and the synthetic
// traffic generator that simulates a live card feed.
package transaction

import (
	"strings"
	"time"
)

// Time-of-day periods.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
	PeriodNight     = "night"
)

// Card types.
const (
	CardDebit   = "debit"
	CardCredit  = "credit"
	CardPrepaid = "prepaid"
)

// MerchantTypes is the canonical merchant category list.
var MerchantTypes = []string{
	"grocery", "gas", "restaurant", "online", "atm",
	"pharmacy", "entertainment", "travel", "unknown",
}

// TimePeriods is the canonical time-of-day list.
var TimePeriods = []string{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}

// CardTypes is the canonical card type list.
var CardTypes = []string{CardDebit, CardCredit, CardPrepaid}

// Locations is the canonical location list the generator draws from.
// Submitted transactions may carry arbitrary free-text locations.
var Locations = []string{
	"New York, NY", "Los Angeles, CA", "Chicago, IL", "Houston, TX", "Phoenix, AZ",
	"Philadelphia, PA", "San Antonio, TX", "San Diego, CA", "Dallas, TX", "San Jose, CA",
	"Austin, TX", "Jacksonville, FL", "Fort Worth, TX", "Columbus, OH", "Charlotte, NC",
	"San Francisco, CA", "Indianapolis, IN", "Seattle, WA", "Denver, CO", "Boston, MA",
	"Unknown Location", "Foreign Country",
}

// Transaction is one financial event to be risk-assessed.
// Immutable once created.
type Transaction struct {
	ID           string    `json:"id"`
	Amount       float64   `json:"amount"`
	MerchantType string    `json:"merchant_type"`
	Location     string    `json:"location"`
	TimeOfDay    string    `json:"time_of_day"`
	CardType     string    `json:"card_type"`
	Timestamp    time.Time `json:"timestamp"`
}

// Labeled pairs a transaction with its fraud ground truth for training.
type Labeled struct {
	Transaction Transaction
	Fraud       bool
}

// HourToPeriod converts an hour of day to its time period.
func HourToPeriod(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 18:
		return PeriodAfternoon
	case hour >= 18 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// NormalizeCategory lowercases and trims a categorical field value.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
