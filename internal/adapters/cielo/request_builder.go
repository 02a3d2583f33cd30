package cielo

import (
	"strings"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

const (
	paymentTypeCreditCard = "CreditCard"
	birthDateLayout       = "20060102"
)

// paymentMethodConverter maps one payment-method variant onto the wire
// payment. Converters are consulted in order; the first one that supports the
// method wins.
type paymentMethodConverter interface {
	Supports(method models.PaymentMethod) bool
	Apply(payment *Payment, method models.PaymentMethod)
}

// RequestBuilder assembles provider sale requests from domain inputs. It is
// stateless and safe for concurrent use.
type RequestBuilder struct {
	converters []paymentMethodConverter
}

// NewRequestBuilder returns a builder with converters for every supported
// payment-method variant. Methods no converter claims produce a sale without
// a card section; the provider rejects it with a structured error, which is
// preferable to guessing card fields.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		converters: []paymentMethodConverter{
			cardConverter{},
			tokenConverter{},
			recurringConverter{},
		},
	}
}

// Build assembles the sale request for an authorize or purchase call.
//
// The amount is sent only when both amount and currency are present; a
// missing half omits the field rather than sending zero. Installments
// defaults to 1. Purchase differs from authorize only by requesting
// automatic capture.
func (b *RequestBuilder) Build(txType models.TransactionType, intent models.PaymentIntent, customer models.Customer, split *models.SplitSettlementData) *Sale {
	payment := &Payment{
		Type:         paymentTypeCreditCard,
		Installments: intent.Installments,
	}
	if payment.Installments == 0 {
		payment.Installments = 1
	}
	if intent.Amount != nil && intent.Currency != "" {
		payment.Amount = models.MinorUnits(*intent.Amount)
	}
	if txType == models.TypePurchase {
		capture := true
		payment.Capture = &capture
	}

	for _, converter := range b.converters {
		if converter.Supports(intent.Method) {
			converter.Apply(payment, intent.Method)
			break
		}
	}

	if split != nil {
		for _, item := range split.Splits {
			payment.SplitPayments = append(payment.SplitPayments, SplitPayment{
				SubordinateMerchantID: item.MerchantID,
				Amount:                item.Amount,
			})
		}
	}

	return &Sale{
		MerchantOrderID: intent.ExternalKey,
		Customer:        buildCustomer(customer),
		Payment:         payment,
	}
}

func buildCustomer(customer models.Customer) *Customer {
	wire := &Customer{
		Name:            customer.FullName(),
		Email:           customer.Email,
		Address:         buildAddress(customer.BillingAddress),
		DeliveryAddress: buildAddress(customer.ShippingAddress),
	}
	if customer.DateOfBirth != nil {
		wire.BirthDate = customer.DateOfBirth.Format(birthDateLayout)
	}
	if customer.TaxID != "" {
		wire.Identity = customer.TaxID
		wire.IdentityType = identityType(customer.TaxID)
	}
	return wire
}

func buildAddress(addr *models.Address) *Address {
	if addr == nil {
		return nil
	}
	return &Address{
		Street:     addr.Street,
		Number:     addr.Number,
		Complement: addr.Complement,
		ZipCode:    addr.PostalCode,
		City:       addr.City,
		State:      addr.State,
		Country:    addr.Country,
	}
}

// identityType distinguishes corporate tax ids (CNPJ, 14 digits) from
// personal ones (CPF, 11 digits) by digit count.
func identityType(taxID string) string {
	digits := 0
	for _, r := range taxID {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits > 11 {
		return "CNPJ"
	}
	return "CPF"
}

type cardConverter struct{}

func (cardConverter) Supports(method models.PaymentMethod) bool {
	_, ok := method.(models.CardPaymentMethod)
	return ok
}

func (cardConverter) Apply(payment *Payment, method models.PaymentMethod) {
	card := method.(models.CardPaymentMethod)
	payment.CreditCard = &CreditCard{
		CardNumber:     card.Number,
		Holder:         card.Holder,
		ExpirationDate: normalizeExpiration(card.ExpirationDate),
		SecurityCode:   card.SecurityCode,
		Brand:          card.Brand,
		CardToken:      card.Token,
		SaveCard:       card.SaveCard,
	}
}

type tokenConverter struct{}

func (tokenConverter) Supports(method models.PaymentMethod) bool {
	_, ok := method.(models.TokenPaymentMethod)
	return ok
}

func (tokenConverter) Apply(payment *Payment, method models.PaymentMethod) {
	token := method.(models.TokenPaymentMethod)
	payment.CreditCard = &CreditCard{
		CardToken:    token.Token,
		Brand:        token.Brand,
		SecurityCode: token.SecurityCode,
	}
}

type recurringConverter struct{}

func (recurringConverter) Supports(method models.PaymentMethod) bool {
	_, ok := method.(models.RecurringPaymentMethod)
	return ok
}

func (recurringConverter) Apply(payment *Payment, method models.PaymentMethod) {
	recurring := method.(models.RecurringPaymentMethod)
	payment.Recurrent = true
	payment.CreditCard = &CreditCard{
		CardToken: recurring.Token,
		Brand:     recurring.Brand,
	}
}

// normalizeExpiration accepts MM/YYYY or MM/YY and always sends MM/YYYY.
func normalizeExpiration(exp string) string {
	parts := strings.SplitN(exp, "/", 2)
	if len(parts) == 2 && len(parts[1]) == 2 {
		return parts[0] + "/20" + parts[1]
	}
	return exp
}
