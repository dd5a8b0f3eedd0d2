package model

import (
	"time"

	"telegram-shop-bot/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderStatusRank orders the lifecycle. Terminal statuses share the top rank
// so that no terminal state can be replaced by another.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusCompleted:  2,
	OrderStatusRejected:   2,
	OrderStatusCancelled:  2,
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRejected || s == OrderStatusCancelled
}

// CanAdvanceTo reports whether the status may move to next. Statuses advance
// strictly forward; terminal statuses are absorbing.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	cur, ok1 := orderStatusRank[s]
	nxt, ok2 := orderStatusRank[next]
	if !ok1 || !ok2 {
		return false
	}
	if s.Terminal() {
		return false
	}
	return nxt > cur
}

// Order is the persisted purchase record. Expiry and reminder flags are only
// meaningful for subscription-type services and are set when the order
// transitions to completed.
type Order struct {
	ID             string
	UserID         int64
	ServiceType    ServiceType
	ItemName       string
	Duration       string
	Price          int64 // cents
	OriginalPrice  int64 // cents
	PromoCode      string
	DiscountAmount int64 // cents
	BundleID       string
	Status         OrderStatus
	CreatedAt      time.Time

	ExpiryDate          *time.Time
	RenewalReminderSent bool
	FinalReminderSent   bool
	AutoRenew           bool
}

func NewOrder(id string, userID int64, sel Selection) (*Order, error) {
	if id == "" || userID <= 0 || sel.ServiceType == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Order{
		ID:             id,
		UserID:         userID,
		ServiceType:    sel.ServiceType,
		ItemName:       sel.ItemName,
		Duration:       sel.Duration,
		Price:          sel.Price,
		OriginalPrice:  sel.OriginalPrice,
		PromoCode:      sel.PromoCode,
		DiscountAmount: sel.OriginalPrice - sel.Price,
		BundleID:       sel.BundleID,
		Status:         OrderStatusPending,
		CreatedAt:      time.Now(),
	}, nil
}

// Advance moves the order to next or fails without mutating it.
func (o *Order) Advance(next OrderStatus) error {
	if !o.Status.CanAdvanceTo(next) {
		return domain.ErrInvalidStatusChange
	}
	o.Status = next
	return nil
}

func (o *Order) IsSubscription() bool {
	return o.ServiceType == ServiceGroup || o.ServiceType == ServiceRenewal
}
