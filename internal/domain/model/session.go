package model

import (
	"time"

	"telegram-shop-bot/internal/domain"
)

// FlowState is the current step of a user's in-progress purchase
// conversation.
type FlowState string

const (
	StateIdle               FlowState = "idle"
	StateSelectingService   FlowState = "selecting_service"
	StateSelectingOption    FlowState = "selecting_option"
	StatePriceConfirmed     FlowState = "price_confirmed"
	StateSelectingPayCat    FlowState = "selecting_payment_category"
	StateSelectingPayMethod FlowState = "selecting_payment_method"
	StateAwaitingProof      FlowState = "awaiting_proof"
	StateAwaitingReview     FlowState = "awaiting_review"
)

// flowNext is the legal successor table. Cancel back to idle is allowed from
// every non-terminal state and is handled separately.
var flowNext = map[FlowState][]FlowState{
	StateIdle:               {StateSelectingService},
	StateSelectingService:   {StateSelectingOption, StatePriceConfirmed},
	StateSelectingOption:    {StateSelectingOption, StatePriceConfirmed},
	StatePriceConfirmed:     {StateSelectingPayCat},
	StateSelectingPayCat:    {StateSelectingPayMethod, StateAwaitingProof},
	StateSelectingPayMethod: {StateAwaitingProof},
	StateAwaitingProof:      {StateAwaitingReview},
	StateAwaitingReview:     {StateIdle},
}

func (s FlowState) canStep(next FlowState) bool {
	for _, n := range flowNext[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Selection holds the fields accumulated while walking the purchase flow.
// Prices are cents.
type Selection struct {
	ServiceType   ServiceType `json:"service_type,omitempty"`
	ItemName      string      `json:"item_name,omitempty"`
	Duration      string      `json:"duration,omitempty"`
	Price         int64       `json:"price,omitempty"`
	OriginalPrice int64       `json:"original_price,omitempty"`
	PromoCode     string      `json:"promo_code,omitempty"`
	BundleID      string      `json:"bundle_id,omitempty"`
}

// Session is the per-user conversational state machine. All mutators are
// guarded by the successor table so that fields can only be populated by a
// legal predecessor step: a payment type implies a price, a price implies a
// service.
type Session struct {
	UserID        int64           `json:"user_id"`
	State         FlowState       `json:"state"`
	Selection     Selection       `json:"selection"`
	OptionSteps   int             `json:"option_steps"`
	PaymentType   PaymentCategory `json:"payment_type,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewSession(userID int64) *Session {
	return &Session{UserID: userID, State: StateIdle, UpdatedAt: time.Now()}
}

func (s *Session) step(next FlowState) error {
	if !s.State.canStep(next) {
		return domain.ErrInvalidTransition
	}
	s.State = next
	s.UpdatedAt = time.Now()
	return nil
}

// StartSelection enters the service menu. Re-entering clears every
// accumulated selection field so nothing carries over between unrelated
// purchase attempts. Allowed from any state: a fresh menu interaction also
// lazily clears a resolved awaiting_review session.
func (s *Session) StartSelection() {
	s.State = StateSelectingService
	s.Selection = Selection{}
	s.OptionSteps = 0
	s.PaymentType = ""
	s.PaymentMethod = ""
	s.TransactionID = ""
	s.UpdatedAt = time.Now()
}

// ChooseService records the service type and moves to option selection, or
// straight to price confirmation for bundles (fixed catalog price).
func (s *Session) ChooseService(st ServiceType, bundleID string, bundlePrice, bundleOriginal int64) error {
	if st == ServiceBundle {
		if err := s.step(StatePriceConfirmed); err != nil {
			return err
		}
		s.Selection = Selection{
			ServiceType:   st,
			BundleID:      bundleID,
			Price:         bundlePrice,
			OriginalPrice: bundleOriginal,
		}
		return nil
	}
	if err := s.step(StateSelectingOption); err != nil {
		return err
	}
	s.Selection = Selection{ServiceType: st}
	s.OptionSteps = 0
	return nil
}

// ChooseOption records one sub-selection level. The final level carries the
// leaf price and advances to price confirmation.
func (s *Session) ChooseOption(opt ServiceOption) error {
	if s.Selection.ServiceType == "" || opt.ServiceType != s.Selection.ServiceType {
		return domain.ErrInvalidArgument
	}
	last := s.OptionSteps+1 >= s.Selection.ServiceType.SelectionDepth()
	next := StateSelectingOption
	if last {
		next = StatePriceConfirmed
	}
	if err := s.step(next); err != nil {
		return err
	}
	switch opt.OptionType {
	case OptionDuration:
		s.Selection.Duration = opt.Name
	default:
		s.Selection.ItemName = opt.Name
	}
	if last {
		s.Selection.Price = opt.Price
		s.Selection.OriginalPrice = opt.Price
	}
	s.OptionSteps++
	return nil
}

// ApplyDiscount overwrites the confirmed price after promo resolution.
func (s *Session) ApplyDiscount(finalPrice int64, code string) error {
	if s.State != StatePriceConfirmed {
		return domain.ErrInvalidTransition
	}
	s.Selection.Price = finalPrice
	s.Selection.PromoCode = code
	s.UpdatedAt = time.Now()
	return nil
}

// ChoosePaymentCategory moves to method selection, except crypto which has
// no method sub-step and proceeds straight to payment details.
func (s *Session) ChoosePaymentCategory(cat PaymentCategory) error {
	if s.State == StatePriceConfirmed {
		if err := s.step(StateSelectingPayCat); err != nil {
			return err
		}
	}
	next := StateSelectingPayMethod
	method := ""
	if cat == PaymentCrypto {
		next = StateAwaitingProof
		method = string(PaymentCrypto)
	}
	if err := s.step(next); err != nil {
		return err
	}
	s.PaymentType = cat
	s.PaymentMethod = method
	return nil
}

func (s *Session) ChoosePaymentMethod(method string) error {
	if method == "" {
		return domain.ErrInvalidArgument
	}
	if err := s.step(StateAwaitingProof); err != nil {
		return err
	}
	s.PaymentMethod = method
	return nil
}

func (s *Session) SubmitProof() error {
	return s.step(StateAwaitingReview)
}

// Cancel resets to idle from any non-terminal state. It always succeeds;
// cancelling an idle session is a no-op. The transaction id is surrendered
// to the caller so the ledger entry can be left intact for abandonment
// tracking.
func (s *Session) Cancel() (abandonedTxn string) {
	abandonedTxn = s.TransactionID
	s.State = StateIdle
	s.Selection = Selection{}
	s.OptionSteps = 0
	s.PaymentType = ""
	s.PaymentMethod = ""
	s.TransactionID = ""
	s.UpdatedAt = time.Now()
	return abandonedTxn
}
