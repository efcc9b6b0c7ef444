package domain

import "time"

// Item categories and conditions accepted by the marketplace.
var (
	ItemCategories = []string{"Books", "Electronics", "Furniture", "Clothing", "Others"}
	ItemConditions = []string{"New", "Like New", "Used", "Poor"}
)

type Item struct {
	ItemID      string    `json:"id" dynamodbav:"item_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Category    string    `json:"category" dynamodbav:"category"`
	Condition   string    `json:"condition" dynamodbav:"condition"`
	Images      []string  `json:"images" dynamodbav:"images"`
	SellerID    string    `json:"seller_id" dynamodbav:"seller_id"`
	IsSold      bool      `json:"is_sold" dynamodbav:"is_sold"`
	Location    string    `json:"location,omitempty" dynamodbav:"location"`
	Tags        []string  `json:"tags,omitempty" dynamodbav:"tags"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`

	// Seller is joined from the users table for responses, never persisted.
	Seller *SafeUser `json:"seller,omitempty" dynamodbav:"-"`
}

type CreateItemRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=1000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required,oneof=Books Electronics Furniture Clothing Others"`
	Condition   string   `json:"condition" validate:"required,oneof=New 'Like New' Used Poor"`
	Images      []string `json:"images" validate:"required,min=1,max=5,dive,url"`
	Location    string   `json:"location" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1,max=30"`
}

type UpdateItemRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=1000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,oneof=Books Electronics Furniture Clothing Others"`
	Condition   *string  `json:"condition" validate:"omitempty,oneof=New 'Like New' Used Poor"`
	Images      []string `json:"images" validate:"omitempty,min=1,max=5,dive,url"`
	Location    *string  `json:"location" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1,max=30"`
}

// ItemFilter narrows the public feed. Zero values mean "no constraint";
// sold items are always excluded. Seller-scoped listings bypass the filter
// and query the seller index directly.
type ItemFilter struct {
	Search    string
	Category  string
	Condition string
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
}
