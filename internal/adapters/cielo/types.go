package cielo

import "strconv"

// Wire types for the provider's e-commerce API (JSON, API version 1).
// Field names follow the provider's PascalCase convention.

// Sale is the request and response envelope for sale creation and queries.
// Modification calls (capture and void) answer with the payment fields at the
// top level instead of a Payment envelope, so those appear here too.
type Sale struct {
	MerchantOrderID string    `json:"MerchantOrderId,omitempty"`
	Customer        *Customer `json:"Customer,omitempty"`
	Payment         *Payment  `json:"Payment,omitempty"`

	Status            *int   `json:"Status,omitempty"`
	AuthorizationCode string `json:"AuthorizationCode,omitempty"`
	ProofOfSale       string `json:"ProofOfSale,omitempty"`
	TID               string `json:"Tid,omitempty"`
	ReturnCode        string `json:"ReturnCode,omitempty"`
	ReturnMessage     string `json:"ReturnMessage,omitempty"`
}

// RawStatus renders the response status the way the classifier consumes it,
// regardless of which envelope shape the provider used.
func (s *Sale) RawStatus() string {
	if s == nil {
		return ""
	}
	if s.Payment != nil && s.Payment.Status != nil {
		return strconv.Itoa(*s.Payment.Status)
	}
	if s.Status != nil {
		return strconv.Itoa(*s.Status)
	}
	return ""
}

// Customer is the shopper section of a sale.
type Customer struct {
	Name            string   `json:"Name,omitempty"`
	Email           string   `json:"Email,omitempty"`
	BirthDate       string   `json:"Birthdate,omitempty"`
	Identity        string   `json:"Identity,omitempty"`
	IdentityType    string   `json:"IdentityType,omitempty"`
	Address         *Address `json:"Address,omitempty"`
	DeliveryAddress *Address `json:"DeliveryAddress,omitempty"`
}

// Address is a provider-side billing or delivery address.
type Address struct {
	Street     string `json:"Street,omitempty"`
	Number     string `json:"Number,omitempty"`
	Complement string `json:"Complement,omitempty"`
	ZipCode    string `json:"ZipCode,omitempty"`
	City       string `json:"City,omitempty"`
	State      string `json:"State,omitempty"`
	Country    string `json:"Country,omitempty"`
}

// Payment is the payment section of a sale. Request fields and response
// fields share the struct, as in the provider's API.
type Payment struct {
	Type          string         `json:"Type,omitempty"`
	Amount        int64          `json:"Amount,omitempty"`
	Installments  int            `json:"Installments,omitempty"`
	Capture       *bool          `json:"Capture,omitempty"`
	Recurrent     bool           `json:"Recurrent,omitempty"`
	CreditCard    *CreditCard    `json:"CreditCard,omitempty"`
	SplitPayments []SplitPayment `json:"SplitPayments,omitempty"`

	// Response-only fields. Status is a pointer so that an absent status can
	// be told apart from the provider's literal 0 ("not finished").
	PaymentID         string `json:"PaymentId,omitempty"`
	Status            *int   `json:"Status,omitempty"`
	AuthorizationCode string `json:"AuthorizationCode,omitempty"`
	ProofOfSale       string `json:"ProofOfSale,omitempty"`
	TID               string `json:"Tid,omitempty"`
	ReturnCode        string `json:"ReturnCode,omitempty"`
	ReturnMessage     string `json:"ReturnMessage,omitempty"`
}

// RawStatus renders the response status the way the classifier consumes it:
// the provider's numeric code as a string, or empty when absent.
func (p *Payment) RawStatus() string {
	if p == nil || p.Status == nil {
		return ""
	}
	return strconv.Itoa(*p.Status)
}

// CreditCard is the card section of a payment request.
type CreditCard struct {
	CardNumber     string `json:"CardNumber,omitempty"`
	Holder         string `json:"Holder,omitempty"`
	ExpirationDate string `json:"ExpirationDate,omitempty"`
	SecurityCode   string `json:"SecurityCode,omitempty"`
	Brand          string `json:"Brand,omitempty"`
	CardToken      string `json:"CardToken,omitempty"`
	SaveCard       bool   `json:"SaveCard,omitempty"`
}

// SplitPayment routes part of the sale amount to a subordinate merchant.
type SplitPayment struct {
	SubordinateMerchantID string `json:"SubordinateMerchantId"`
	Amount                int64  `json:"Amount"`
}
