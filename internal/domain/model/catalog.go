package model

import (
	"time"

	"telegram-shop-bot/internal/domain"
)

type ServiceType string

const (
	ServiceVideoCall   ServiceType = "video_call"
	ServiceGroup       ServiceType = "group"
	ServicePrivateChat ServiceType = "private_chat"
	ServiceAlbum       ServiceType = "album"
	ServiceBundle      ServiceType = "bundle"
	// ServiceRenewal reuses the purchase pipeline to extend an existing
	// group subscription.
	ServiceRenewal ServiceType = "renewal"
)

type OptionType string

const (
	OptionDuration OptionType = "duration"
	OptionName     OptionType = "name"
	OptionChatType OptionType = "type"
	OptionAlbum    OptionType = "album"
)

// SelectionDepth returns how many sub-selection steps a service needs before
// its price is known. Bundles carry a fixed catalog price.
func (s ServiceType) SelectionDepth() int {
	switch s {
	case ServiceGroup, ServicePrivateChat:
		return 2
	case ServiceVideoCall, ServiceAlbum, ServiceRenewal:
		return 1
	default:
		return 0
	}
}

// ServiceOption is one selectable leaf or branch of a service. Branch options
// (for example a group name) carry no price.
type ServiceOption struct {
	ID          int64
	ServiceType ServiceType
	OptionType  OptionType
	Name        string
	Price       int64 // cents; 0 for branch options
}

type BundleItem struct {
	ID       int64
	BundleID string
	Service  ServiceType
	ItemName string
	Duration string
}

// Bundle combines multiple service items at a fixed discounted price.
type Bundle struct {
	ID                 string
	Name               string
	Description        string
	OriginalPrice      int64 // cents
	BundlePrice        int64 // cents
	DiscountPercentage int
	CreatedBy          int64
	CreatedAt          time.Time
	Active             bool
	Items              []BundleItem
}

type PromoType string

const (
	PromoPercent PromoType = "percent"
	PromoAmount  PromoType = "amount"
)

// PromoCode is a discount token with an expiry and a usage cap. The uses
// counter is incremented exactly once per successful redemption and never
// exceeds MaxUses.
type PromoCode struct {
	Code      string
	Discount  int64 // percent points, or cents for amount-type
	Type      PromoType
	Expires   time.Time
	Uses      int
	MaxUses   int
	CreatedBy int64
	CreatedAt time.Time
}

func (p *PromoCode) Expired(now time.Time) bool { return now.After(p.Expires) }
func (p *PromoCode) Exhausted() bool { return p.Uses >= p.MaxUses }
func (p *PromoCode) Redeemable(now time.Time) bool { return !p.Expired(now) && !p.Exhausted() }

func NewPromoCode(code string, discount int64, typ PromoType, expires time.Time, maxUses int, createdBy int64) (*PromoCode, error) {
	if code == "" || discount <= 0 || maxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if typ != PromoPercent && typ != PromoAmount {
		return nil, domain.ErrInvalidArgument
	}
	if typ == PromoPercent && discount > 100 {
		return nil, domain.ErrInvalidArgument
	}
	return &PromoCode{
		Code:      code,
		Discount:  discount,
		Type:      typ,
		Expires:   expires,
		MaxUses:   maxUses,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}, nil
}

// AppliedPromo links a redeemed-but-unspent promo code to a user. The most
// recently applied one is consumed on the next purchase.
type AppliedPromo struct {
	UserID    int64
	Code      string
	AppliedAt time.Time
}

// LimitedTimeOffer is an admin-created time-boxed discount announcement.
type LimitedTimeOffer struct {
	ID        string
	Name      string
	Discount  int64
	Type      PromoType
	Expires   time.Time
	CreatedBy int64
	CreatedAt time.Time
}
