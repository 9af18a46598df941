package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name         string    `gorm:"not null"                   json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	ImageURL    string    `gorm:"column:image_url"         json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Address struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index;not null"           json:"user_id"`
	Street       string    `gorm:"not null"                 json:"street"`
	Number       string    `json:"number"`
	Complement   string    `json:"complement,omitempty"`
	Neighborhood string    `gorm:"not null"                 json:"neighborhood"`
	City         string    `gorm:"not null"                 json:"city"`
	State        string    `gorm:"not null"                 json:"state"`
	ZipCode      string    `gorm:"not null"                 json:"zip_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreditCard keeps display data only; the charge token never reaches the store.
type CreditCard struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null"           json:"user_id"`
	Brand      string    `gorm:"not null"                 json:"brand"`
	LastFour   string    `gorm:"column:last_four;size:4;not null" json:"last_four"`
	HolderName string    `json:"holder_name,omitempty"`
	ExpiryDate string    `gorm:"not null"                 json:"expiry_date"`
	CreatedAt  time.Time `json:"created_at"`
}

type Order struct {
	ID                uint        `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID            uint        `gorm:"index;not null"                    json:"user_id"`
	Total             float64     `gorm:"not null"                          json:"total"`
	ShippingAddress   string      `gorm:"not null"                          json:"shipping_address"`
	Status            string      `gorm:"not null;default:pending"          json:"status"`
	PaymentMethod     string      `json:"payment_method,omitempty"`
	PaymentID         string      `gorm:"index"                             json:"payment_id,omitempty"`
	ExternalReference string      `gorm:"index"                             json:"external_reference,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	Items             []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type OrderItem struct {
	ID              uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         uint     `gorm:"index;not null"           json:"order_id"`
	ProductID       uint     `gorm:"not null"                 json:"product_id"`
	Quantity        int      `gorm:"not null"                 json:"quantity"`
	PriceAtPurchase float64  `gorm:"not null"                 json:"price_at_purchase"`
	Product         *Product `json:"product,omitempty"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Product{}, &Address{}, &CreditCard{}, &Order{}, &OrderItem{})
}
