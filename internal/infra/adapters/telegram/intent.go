package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
)

// Intent is a decoded inline-button press. Callback payloads are parsed into
// typed values at the transport edge; nothing downstream ever sees raw
// callback strings.
type Intent interface{ isIntent() }

type (
	// MenuIntent returns to the main service menu.
	MenuIntent struct{}
	// ServiceIntent starts selection of one service.
	ServiceIntent struct{ Service model.ServiceType }
	// BundleListIntent shows the bundle menu.
	BundleListIntent struct{}
	// BundleIntent selects a fixed-price bundle.
	BundleIntent struct{ BundleID string }
	// OptionIntent records one sub-selection (duration, name, type, album).
	OptionIntent struct {
		OptType model.OptionType
		Name    string
	}
	// CheckoutIntent asks for the payment-category menu after the price is
	// confirmed.
	CheckoutIntent struct{}
	// PayCategoryIntent selects domestic, international or crypto.
	PayCategoryIntent struct{ Category model.PaymentCategory }
	// PayMethodIntent selects a concrete method inside a category.
	PayMethodIntent struct{ Method string }
	// PromoPromptIntent asks the user to type a promo code.
	PromoPromptIntent struct{}
	// CancelIntent abandons the current flow.
	CancelIntent struct{}
	// ApprovalIntent is an operator resolution of a submitted proof.
	ApprovalIntent struct {
		Approve       bool
		UserID        int64
		TransactionID string
	}
	// LanguageMenuIntent shows the language picker.
	LanguageMenuIntent struct{}
	// LanguageIntent sets the user's language.
	LanguageIntent struct{ Lang string }
	// HistoryIntent shows the user's purchases.
	HistoryIntent struct{}
	// OffersIntent shows active limited-time offers.
	OffersIntent struct{}
)

func (MenuIntent) isIntent()         {}
func (ServiceIntent) isIntent()      {}
func (BundleListIntent) isIntent()   {}
func (BundleIntent) isIntent()       {}
func (OptionIntent) isIntent()       {}
func (CheckoutIntent) isIntent()     {}
func (PayCategoryIntent) isIntent()  {}
func (PayMethodIntent) isIntent()    {}
func (PromoPromptIntent) isIntent()  {}
func (CancelIntent) isIntent()       {}
func (ApprovalIntent) isIntent()     {}
func (LanguageMenuIntent) isIntent() {}
func (LanguageIntent) isIntent()     {}
func (HistoryIntent) isIntent()      {}
func (OffersIntent) isIntent()       {}

var serviceNames = map[string]model.ServiceType{
	string(model.ServiceVideoCall):   model.ServiceVideoCall,
	string(model.ServiceGroup):       model.ServiceGroup,
	string(model.ServicePrivateChat): model.ServicePrivateChat,
	string(model.ServiceAlbum):       model.ServiceAlbum,
	string(model.ServiceRenewal):     model.ServiceRenewal,
}

var optionNames = map[string]model.OptionType{
	string(model.OptionDuration): model.OptionDuration,
	string(model.OptionName):     model.OptionName,
	string(model.OptionChatType): model.OptionChatType,
	string(model.OptionAlbum):    model.OptionAlbum,
}

var categoryNames = map[string]model.PaymentCategory{
	string(model.PaymentDomestic):      model.PaymentDomestic,
	string(model.PaymentInternational): model.PaymentInternational,
	string(model.PaymentCrypto):        model.PaymentCrypto,
}

// ParseCallback decodes one callback payload. Unknown or malformed payloads
// return ErrInvalidArgument so stale buttons degrade to a visible error, not
// a misrouted action.
func ParseCallback(data string) (Intent, error) {
	data = strings.TrimSpace(data)
	switch data {
	case "menu":
		return MenuIntent{}, nil
	case "bundles":
		return BundleListIntent{}, nil
	case "checkout":
		return CheckoutIntent{}, nil
	case "promo":
		return PromoPromptIntent{}, nil
	case "cancel":
		return CancelIntent{}, nil
	case "langmenu":
		return LanguageMenuIntent{}, nil
	case "history":
		return HistoryIntent{}, nil
	case "offers":
		return OffersIntent{}, nil
	}

	head, rest, ok := strings.Cut(data, ":")
	if !ok {
		return nil, fmt.Errorf("%w: callback %q", domain.ErrInvalidArgument, data)
	}
	switch head {
	case "svc":
		svc, ok := serviceNames[rest]
		if !ok {
			return nil, fmt.Errorf("%w: service %q", domain.ErrInvalidArgument, rest)
		}
		return ServiceIntent{Service: svc}, nil
	case "bundle":
		if rest == "" {
			return nil, fmt.Errorf("%w: empty bundle id", domain.ErrInvalidArgument)
		}
		return BundleIntent{BundleID: rest}, nil
	case "opt":
		kind, name, ok := strings.Cut(rest, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: option %q", domain.ErrInvalidArgument, rest)
		}
		optType, known := optionNames[kind]
		if !known {
			return nil, fmt.Errorf("%w: option type %q", domain.ErrInvalidArgument, kind)
		}
		return OptionIntent{OptType: optType, Name: name}, nil
	case "paycat":
		cat, ok := categoryNames[rest]
		if !ok {
			return nil, fmt.Errorf("%w: payment category %q", domain.ErrInvalidArgument, rest)
		}
		return PayCategoryIntent{Category: cat}, nil
	case "paymethod":
		if rest == "" {
			return nil, fmt.Errorf("%w: empty payment method", domain.ErrInvalidArgument)
		}
		return PayMethodIntent{Method: rest}, nil
	case "lang":
		if rest == "" {
			return nil, fmt.Errorf("%w: empty language", domain.ErrInvalidArgument)
		}
		return LanguageIntent{Lang: rest}, nil
	case "approve", "reject":
		uidStr, txn, ok := strings.Cut(rest, ":")
		if !ok || txn == "" {
			return nil, fmt.Errorf("%w: approval payload %q", domain.ErrInvalidArgument, rest)
		}
		uid, err := strconv.ParseInt(uidStr, 10, 64)
		if err != nil || uid <= 0 {
			return nil, fmt.Errorf("%w: approval user id %q", domain.ErrInvalidArgument, uidStr)
		}
		return ApprovalIntent{Approve: head == "approve", UserID: uid, TransactionID: txn}, nil
	}
	return nil, fmt.Errorf("%w: callback %q", domain.ErrInvalidArgument, data)
}
