package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ActiveOrderStatuses still block deletion of the products they reference.
var ActiveOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusProcessing}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Active() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

const (
	DefaultCategory = "Uncategorized"
	DefaultEmoji    = "🛒"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         Role      `gorm:"not null;default:customer" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Name        string    `gorm:"not null"                     json:"name"`
	Price       float64   `gorm:"not null;check:price >= 0"    json:"price"`
	Category    string    `gorm:"not null"                     json:"category"`
	Description string    `gorm:"not null"                     json:"description"`
	Emoji       string    `gorm:"not null"                     json:"emoji"`
	InStock     bool      `gorm:"not null"                     json:"inStock"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;index;not null"     json:"createdBy"`
	Owner       *User     `gorm:"foreignKey:CreatedBy"         json:"owner,omitempty"`
	CreatedAt   time.Time `gorm:"index"                        json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"                 json:"id"`
	CustomerID uuid.UUID   `gorm:"type:uuid;index;not null"             json:"customerId"`
	Customer   *User       `gorm:"foreignKey:CustomerID"                json:"customer,omitempty"`
	Items      []OrderItem `gorm:"foreignKey:OrderID"                   json:"items"`
	Total      float64     `gorm:"not null;check:total >= 0"            json:"total"`
	Status     OrderStatus `gorm:"type:varchar(16);index;not null"      json:"status"`
	CreatedAt  time.Time   `gorm:"index"                                json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a snapshot of the product at purchase time. ProductID is a
// plain column so finished orders survive product deletion.
type OrderItem struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"      json:"-"`
	OrderID   uuid.UUID   `gorm:"type:uuid;index;not null"  json:"-"`
	ProductID uuid.UUID   `gorm:"type:uuid;index;not null"  json:"productId"`
	Name      string      `gorm:"not null"                  json:"name"`
	Price     float64     `gorm:"not null"                  json:"price"`
	Qty       int         `gorm:"not null;check:qty >= 1"   json:"qty"`
	Emoji     string      `gorm:"not null"                  json:"emoji"`
	Product   *ProductRef `gorm:"-"                         json:"product,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

// ProductRef is the live view of an item's product, filled for admin listings.
// Deleted is set when the product no longer exists.
type ProductRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name,omitempty"`
	Deleted bool      `json:"deleted,omitempty"`
}

func (o *Order) ComputeTotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Qty)
	}
	return total
}
