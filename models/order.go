package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order fulfillment statuses
const (
	OrderStatusPlaced         = "placed"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPacked         = "packed"
	OrderStatusShipped        = "shipped"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Escrow statuses
const (
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusDisputed = "disputed"
)

// orderStatusFlow maps each fulfillment status to the statuses a vendor may
// move it to next. Cancellation is not in the flow; it is gated separately.
var orderStatusFlow = map[string][]string{
	OrderStatusPlaced:         {OrderStatusConfirmed},
	OrderStatusConfirmed:      {OrderStatusPacked},
	OrderStatusPacked:         {OrderStatusShipped},
	OrderStatusShipped:        {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {OrderStatusCompleted},
}

// Order aggregates one customer's purchase from a single vendor. A checkout
// spanning several vendors produces one order per vendor.
type Order struct {
	gorm.Model
	OrderNumber     string      `json:"order_number" gorm:"uniqueIndex"`
	UserID          uint        `json:"user_id" gorm:"index"`
	User            User        `json:"user" gorm:"foreignKey:UserID"`
	VendorID        uint        `json:"vendor_id" gorm:"index"`
	Vendor          Vendor      `json:"vendor" gorm:"foreignKey:VendorID"`
	DeliveryAddress string      `json:"delivery_address"`
	Subtotal        float64     `json:"subtotal"`
	CouponID        *uint       `json:"coupon_id"`
	CouponCode      string      `json:"coupon_code"`
	CouponDiscount  float64     `json:"coupon_discount"`
	TotalAmount     float64     `json:"total_amount"`
	PaymentStatus   string      `json:"payment_status" gorm:"default:'pending'"`
	OrderStatus     string      `json:"order_status" gorm:"default:'placed'"`
	PaymentMethod   string      `json:"payment_method" gorm:"default:'wallet'"`
	EscrowStatus    string      `json:"escrow_status" gorm:"default:'held'"`
	Notes           string      `json:"notes"`
	DisputeReason   string      `json:"dispute_reason,omitempty"`
	DeliveredAt     *time.Time  `json:"delivered_at"`
	OrderItems      []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// NewOrderNumber returns an order number in the ORD-XXXXXXXX form.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}

// CanCancel reports whether the order is still inside the cancellable
// window: funds can only be returned before the vendor has packed it.
func (o *Order) CanCancel() bool {
	return o.OrderStatus == OrderStatusPlaced || o.OrderStatus == OrderStatusConfirmed
}

// CanComplete reports whether held funds may be deducted for this order.
func (o *Order) CanComplete() bool {
	return o.OrderStatus == OrderStatusDelivered || o.OrderStatus == OrderStatusCompleted
}

// ValidStatusTransition reports whether a vendor may move an order from one
// fulfillment status to another.
func ValidStatusTransition(from, to string) bool {
	for _, next := range orderStatusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem records one product line with a snapshot of the product at
// order time, so later catalog edits do not rewrite history.
type OrderItem struct {
	gorm.Model
	OrderID         uint    `json:"order_id" gorm:"index"`
	ProductID       uint    `json:"product_id"`
	Product         Product `json:"product"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
	ProductSnapshot string  `json:"product_snapshot"`
}

// OrderStatusHistory is an append-only trail of fulfillment status changes.
type OrderStatusHistory struct {
	gorm.Model
	OrderID   uint   `json:"order_id" gorm:"index"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
	UpdatedBy uint   `json:"updated_by"`
}
