package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DefaultPaymentMethod is recorded on every order; actual payment
// processing is out of scope, the shop runs on cash-on-delivery.
const DefaultPaymentMethod = "cod"

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"userId"`
	Email           string          `db:"email" json:"email"`
	Items           []OrderItem     `db:"items" json:"items"`
	ShippingAddress ShippingAddress `db:"shipping_address" json:"shippingAddress"`
	TotalAmount     int64           `db:"total_amount" json:"totalAmount"`
	Status          OrderStatus     `db:"status" json:"status"`
	PaymentMethod   string          `db:"payment_method" json:"paymentMethod"`

	// User is populated for admin views only.
	User *OrderUser `json:"user,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// OrderItem is an immutable snapshot taken at placement time. Title and
// Price are copied from the candle so later catalog edits or deletions
// do not rewrite order history.
type OrderItem struct {
	CandleID int64  `db:"candle_id" json:"candleId"`
	Title    string `db:"title" json:"title"`
	Price    int64  `db:"price" json:"price"`
	Quantity int32  `db:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Address   string `db:"address" json:"address"`
	City      string `db:"city" json:"city"`
	State     string `db:"state" json:"state"`
	ZipCode   string `db:"zip_code" json:"zipCode"`
	Phone     string `db:"phone" json:"phone"`
}

// OrderUser carries the joined identity fields admin listings show
// alongside each order.
type OrderUser struct {
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	PhoneNumber string `db:"phone_number" json:"phoneNumber"`
}

func (o *Order) CalculateTotal() {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	o.TotalAmount = total
}
