package model

import (
	"fmt"
	"time"

	"telegram-shop-bot/internal/domain"
)

type PaymentCategory string

const (
	PaymentDomestic      PaymentCategory = "domestic"
	PaymentInternational PaymentCategory = "international"
	PaymentCrypto        PaymentCategory = "crypto"
)

// Transaction records one payment attempt. Its status mirrors the order
// lifecycle and must never move backward.
type Transaction struct {
	ID             string
	UserID         int64
	Username       string
	ServiceType    ServiceType
	Amount         int64 // cents
	OriginalAmount int64 // cents
	PaymentMethod  string
	PaymentType    PaymentCategory
	Status         OrderStatus
	PromoCode      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTransactionID derives an id from a compact timestamp plus the user id,
// unique per user per second in practice.
func NewTransactionID(userID int64, at time.Time) string {
	return fmt.Sprintf("TXN%s%d", at.Format("20060102150405"), userID)
}

func NewTransaction(id string, userID int64, username string, sel Selection, method string, category PaymentCategory) (*Transaction, error) {
	if id == "" || userID <= 0 || sel.ServiceType == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Transaction{
		ID:             id,
		UserID:         userID,
		Username:       username,
		ServiceType:    sel.ServiceType,
		Amount:         sel.Price,
		OriginalAmount: sel.OriginalPrice,
		PaymentMethod:  method,
		PaymentType:    category,
		Status:         OrderStatusPending,
		PromoCode:      sel.PromoCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (t *Transaction) Advance(next OrderStatus) error {
	if !t.Status.CanAdvanceTo(next) {
		return domain.ErrInvalidStatusChange
	}
	t.Status = next
	t.UpdatedAt = time.Now()
	return nil
}
