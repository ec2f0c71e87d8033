package models

import (
	"math"
	"strings"
	"time"
)

// Review is a rating left on a product by a customer.
type Review struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(24)" bson:"_id"`
	ProductID string    `json:"-" gorm:"type:varchar(24);index;not null" bson:"-"`
	UserID    string    `json:"user" gorm:"type:varchar(24);not null" bson:"user" validate:"required"`
	Name      string    `json:"name" gorm:"type:varchar(50);not null" bson:"name" validate:"required"`
	Rating    int       `json:"rating" gorm:"not null" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" gorm:"type:text;not null" bson:"comment" validate:"required"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the review's field rules.
func (r *Review) Validate() error {
	r.Comment = strings.TrimSpace(r.Comment)
	if verrs := validateStruct(r); len(verrs) > 0 {
		return verrs
	}
	return nil
}

// Product represents an item for sale in the store.
type Product struct {
	ID           string    `json:"_id" gorm:"primaryKey;type:varchar(24)" bson:"_id"`
	UserID       string    `json:"user" gorm:"type:varchar(24);index" bson:"user"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null" bson:"name" validate:"required,max=200"`
	Image        string    `json:"image" gorm:"not null" bson:"image" validate:"required"`
	Brand        string    `json:"brand" gorm:"not null" bson:"brand" validate:"required"`
	Category     string    `json:"category" gorm:"not null" bson:"category" validate:"required"`
	Description  string    `json:"description" gorm:"type:text;not null" bson:"description" validate:"required"`
	Reviews      []Review  `json:"reviews" gorm:"foreignKey:ProductID" bson:"reviews"`
	Rating       float64   `json:"rating" gorm:"not null;default:0" bson:"rating" validate:"gte=0,max=5"`
	NumReviews   int       `json:"numReviews" gorm:"not null;default:0" bson:"numReviews" validate:"gte=0"`
	Price        float64   `json:"price" gorm:"not null;default:0" bson:"price" validate:"gte=0"`
	CountInStock int       `json:"countInStock" gorm:"not null;default:0" bson:"countInStock" validate:"gte=0"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the product's field rules.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if verrs := validateStruct(p); len(verrs) > 0 {
		return verrs
	}
	return nil
}

// HasReviewFrom reports whether userID already reviewed the product.
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends r and recomputes the review count and the average rating.
func (p *Product) AddReview(r Review) {
	p.Reviews = append(p.Reviews, r)
	p.NumReviews = len(p.Reviews)
	total := 0
	for _, rv := range p.Reviews {
		total += rv.Rating
	}
	p.Rating = math.Round(float64(total)/float64(p.NumReviews)*100) / 100
}

// NewSampleProduct returns the placeholder product an admin creates before editing it.
func NewSampleProduct(userID string) *Product {
	return &Product{
		UserID:       userID,
		Name:         "Sample name",
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample category",
		Description:  "Sample description",
		Price:        0,
		CountInStock: 0,
		NumReviews:   0,
		Reviews:      []Review{},
	}
}
