package models

import (
	"math"
	"time"
)

const (
	freeShippingThreshold = 100.0
	flatShippingPrice     = 10.0
	taxRate               = 0.15
)

// OrderItem is one line of an order. Name, image and price are copied from the product
// when the order is placed.
type OrderItem struct {
	ID        string  `json:"_id" gorm:"primaryKey;type:varchar(24)" bson:"_id"`
	OrderID   string  `json:"-" gorm:"type:varchar(24);index;not null" bson:"-"`
	Name      string  `json:"name" gorm:"not null" bson:"name" validate:"required"`
	Qty       int     `json:"qty" gorm:"not null" bson:"qty" validate:"required,min=1"`
	Image     string  `json:"image" gorm:"not null" bson:"image" validate:"required"`
	Price     float64 `json:"price" gorm:"not null" bson:"price" validate:"gte=0"`
	ProductID string  `json:"product" gorm:"type:varchar(24);not null" bson:"product" validate:"required"`
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Address    string `json:"address" bson:"address" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	PostalCode string `json:"postalCode" bson:"postalCode" validate:"required"`
	Country    string `json:"country" bson:"country" validate:"required"`
}

// PaymentResult is the snapshot the payment gateway reported for an order.
type PaymentResult struct {
	TransactionID string `json:"id" bson:"id"`
	Status        string `json:"status" bson:"status"`
	UpdateTime    string `json:"update_time" bson:"update_time"`
	EmailAddress  string `json:"email_address" bson:"email_address"`
}

// Customer is the public summary of the user who placed an order.
type Customer struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order represents a customer's purchase.
type Order struct {
	ID              string          `json:"_id" gorm:"primaryKey;type:varchar(24)" bson:"_id"`
	UserID          string          `json:"user" gorm:"type:varchar(24);index;not null" bson:"user" validate:"required"`
	OrderItems      []OrderItem     `json:"orderItems" gorm:"foreignKey:OrderID" bson:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_" bson:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"not null" bson:"paymentMethod" validate:"required"`
	PaymentResult   PaymentResult   `json:"paymentResult" gorm:"embedded;embeddedPrefix:payment_" bson:"paymentResult"`
	ItemsPrice      float64         `json:"itemsPrice" gorm:"not null;default:0" bson:"itemsPrice" validate:"gte=0"`
	TaxPrice        float64         `json:"taxPrice" gorm:"not null;default:0" bson:"taxPrice" validate:"gte=0"`
	ShippingPrice   float64         `json:"shippingPrice" gorm:"not null;default:0" bson:"shippingPrice" validate:"gte=0"`
	TotalPrice      float64         `json:"totalPrice" gorm:"not null;default:0" bson:"totalPrice" validate:"gte=0"`
	IsPaid          bool            `json:"isPaid" gorm:"not null;default:false" bson:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered" gorm:"not null;default:false" bson:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`

	Customer *Customer `json:"customer,omitempty" gorm:"-" bson:"-"`
}

// Validate checks the order's field rules, including every line item and the shipping address.
func (o *Order) Validate() error {
	if verrs := validateStruct(o); len(verrs) > 0 {
		return verrs
	}
	return nil
}

// ApplyPrices derives the four money fields from the order items:
// shipping is free above 100, tax is 15% of the items, total is the sum of the three.
func (o *Order) ApplyPrices() {
	items := 0.0
	for _, it := range o.OrderItems {
		items += it.Price * float64(it.Qty)
	}
	o.ItemsPrice = roundCents(items)
	if o.ItemsPrice > freeShippingThreshold {
		o.ShippingPrice = 0
	} else {
		o.ShippingPrice = flatShippingPrice
	}
	o.TaxPrice = roundCents(taxRate * o.ItemsPrice)
	o.TotalPrice = roundCents(o.ItemsPrice + o.TaxPrice + o.ShippingPrice)
}

// MarkPaid records a completed payment.
func (o *Order) MarkPaid(result PaymentResult, at time.Time) {
	o.IsPaid = true
	o.PaidAt = &at
	o.PaymentResult = result
}

// MarkDelivered records that the order reached the customer.
func (o *Order) MarkDelivered(at time.Time) {
	o.IsDelivered = true
	o.DeliveredAt = &at
}

// OwnedBy reports whether the order was placed by userID.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
