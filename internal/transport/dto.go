package transport

import (
	"bytes"
	"strings"

	"github.com/planetaagua/storefront/internal/models"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AddressRequest is shared by create and update.
type AddressRequest struct {
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
}

type CardRequest struct {
	Brand      string `json:"brand" validate:"required"`
	LastFour   string `json:"last_four" validate:"required"`
	HolderName string `json:"holder_name"`
	ExpiryDate string `json:"expiry_date" validate:"required"`
}

// ItemInput is a cart line as the storefront sends it. Field names differ
// between screens, so the accessors resolve the alternatives.
type ItemInput struct {
	ID              uint    `json:"id"`
	ProductID       uint    `json:"product_id"`
	Title           string  `json:"title"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	UnitPrice       float64 `json:"unit_price"`
	ImageURL        string  `json:"image_url"`
}

func (i ItemInput) ProductRef() uint {
	if i.ProductID != 0 {
		return i.ProductID
	}
	return i.ID
}

func (i ItemInput) Amount() float64 {
	switch {
	case i.PriceAtPurchase != 0:
		return i.PriceAtPurchase
	case i.Price != 0:
		return i.Price
	default:
		return i.UnitPrice
	}
}

func (i ItemInput) Label() string {
	if strings.TrimSpace(i.Title) != "" {
		return i.Title
	}
	return i.Name
}

type CreateOrderRequest struct {
	Items           []ItemInput `json:"items" validate:"required,min=1"`
	Total           float64     `json:"total" validate:"required"`
	ShippingAddress string      `json:"shipping_address" validate:"required"`
}

type ProcessOrderRequest struct {
	Items         []ItemInput `json:"items" validate:"required,min=1"`
	Total         float64     `json:"total" validate:"required"`
	AddressID     uint        `json:"addressId" validate:"required"`
	PaymentMethod string      `json:"paymentMethod"`
}

type PayerInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type PreferenceRequest struct {
	Items []ItemInput `json:"items" validate:"required,min=1"`
	Payer *PayerInput `json:"payer"`
}

type PaymentRequest struct {
	Token           string      `json:"token" validate:"required"`
	Installments    int         `json:"installments"`
	PaymentMethodID string      `json:"payment_method_id" validate:"required"`
	IssuerID        string      `json:"issuer_id"`
	Payer           *PayerInput `json:"payer"`
	Items           []ItemInput `json:"items" validate:"required,min=1"`
	AddressID       uint        `json:"address_id"`
	ShippingAddress string      `json:"shipping_address"`
}

// WebhookNotification covers both the JSON body and the legacy query form
// (?type=payment&data.id=123 or ?topic=payment&id=123).
type WebhookNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID FlexibleID `json:"id"`
	} `json:"data"`
}

// FlexibleID accepts an identifier sent either as a JSON string or number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	*f = FlexibleID(bytes.Trim(bytes.TrimSpace(b), `"`))
	if *f == "null" {
		*f = ""
	}
	return nil
}

type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
