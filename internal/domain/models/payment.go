package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the gateway operation being attempted.
type TransactionType string

const (
	TypeAuthorize TransactionType = "AUTHORIZE"
	TypePurchase  TransactionType = "PURCHASE"
	TypeCapture   TransactionType = "CAPTURE"
	TypeRefund    TransactionType = "REFUND"
	TypeCancel    TransactionType = "CANCEL"
	TypeQuery     TransactionType = "QUERY"
)

// PaymentIntent describes a single attempted operation against the provider.
// It exists only for the duration of one gateway call.
type PaymentIntent struct {
	// ExternalKey is the caller-assigned key for this payment transaction,
	// echoed back on results and persisted on the audit row.
	ExternalKey string

	// Amount and Currency are both required for the amount to be sent to the
	// provider; when either is missing the amount field is omitted, not zeroed.
	Amount   *decimal.Decimal
	Currency string

	// Installments defaults to 1 when zero.
	Installments int

	Method PaymentMethod
}

// PaymentMethod is the closed set of payment-method variants dispatched by
// the request builder's converters. Callers extending this set must add a
// matching converter; the default converter only produces a bare request.
type PaymentMethod interface {
	isPaymentMethod()
}

// CardPaymentMethod carries raw card details, optionally with a previously
// stored provider token.
type CardPaymentMethod struct {
	Number         string
	Holder         string
	ExpirationDate string // MM/YYYY, as the provider expects
	SecurityCode   string
	Brand          string
	Token          string
	SaveCard       bool
}

func (CardPaymentMethod) isPaymentMethod() {}

// TokenPaymentMethod references a card previously tokenized at the provider.
type TokenPaymentMethod struct {
	Token        string
	Brand        string
	SecurityCode string
}

func (TokenPaymentMethod) isPaymentMethod() {}

// RecurringPaymentMethod is a tokenized card flagged for merchant-initiated
// recurring charges.
type RecurringPaymentMethod struct {
	Token string
	Brand string
}

func (RecurringPaymentMethod) isPaymentMethod() {}

// Customer carries shopper data attached to a sale.
type Customer struct {
	FirstName       string
	LastName        string
	Email           string
	DateOfBirth     *time.Time
	TaxID           string // CPF/CNPJ
	BillingAddress  *Address
	ShippingAddress *Address
}

// FullName joins first and last names for the provider's single name field.
func (c Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Address is a billing or shipping address.
type Address struct {
	Street     string
	Number     string
	Complement string
	City       string
	State      string
	PostalCode string
	Country    string
}

// SplitSettlementData distributes a sale's amount across subordinate
// merchants. Amounts are in the provider's minor units.
type SplitSettlementData struct {
	Splits []SplitItem
}

// SplitItem is one subordinate merchant's share of a split settlement.
type SplitItem struct {
	MerchantID string
	Amount     int64
}

// MinorUnits converts a decimal amount to the provider's integer minor-unit
// representation (two decimal places for BRL and other supported currencies).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
