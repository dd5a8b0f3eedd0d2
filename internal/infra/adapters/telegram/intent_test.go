//go:build !integration

package telegram

import (
	"errors"
	"reflect"
	"testing"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data string
		want Intent
	}{
		{"menu", MenuIntent{}},
		{"bundles", BundleListIntent{}},
		{"checkout", CheckoutIntent{}},
		{"promo", PromoPromptIntent{}},
		{"cancel", CancelIntent{}},
		{"langmenu", LanguageMenuIntent{}},
		{"history", HistoryIntent{}},
		{"offers", OffersIntent{}},
		{"svc:group", ServiceIntent{Service: model.ServiceGroup}},
		{"svc:video_call", ServiceIntent{Service: model.ServiceVideoCall}},
		{"svc:renewal", ServiceIntent{Service: model.ServiceRenewal}},
		{"bundle:bundle1", BundleIntent{BundleID: "bundle1"}},
		{"opt:duration:2 Months", OptionIntent{OptType: model.OptionDuration, Name: "2 Months"}},
		{"opt:name:Inner Circle", OptionIntent{OptType: model.OptionName, Name: "Inner Circle"}},
		{"paycat:crypto", PayCategoryIntent{Category: model.PaymentCrypto}},
		{"paymethod:PayPal", PayMethodIntent{Method: "PayPal"}},
		{"lang:hi", LanguageIntent{Lang: "hi"}},
		{"approve:1111:TXN20260101120000", ApprovalIntent{Approve: true, UserID: 1111, TransactionID: "TXN20260101120000"}},
		{"reject:1111:TXN20260101120000", ApprovalIntent{Approve: false, UserID: 1111, TransactionID: "TXN20260101120000"}},
		{"  menu  ", MenuIntent{}},
	}
	for _, c := range cases {
		t.Run(c.data, func(t *testing.T) {
			got, err := ParseCallback(c.data)
			if err != nil {
				t.Fatalf("ParseCallback(%q): %v", c.data, err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("ParseCallback(%q) = %#v, want %#v", c.data, got, c.want)
			}
		})
	}
}

func TestParseCallbackRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"unknown",
		"svc:pizza",
		"svc:",
		"bundle:",
		"opt:duration",
		"opt:duration:",
		"opt:color:Red",
		"paycat:cash",
		"paymethod:",
		"lang:",
		"approve:abc:TXN1",
		"approve:1111",
		"approve:1111:",
		"approve:-5:TXN1",
		"reject::TXN1",
	}
	for _, data := range bad {
		t.Run(data, func(t *testing.T) {
			if _, err := ParseCallback(data); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("ParseCallback(%q): err = %v, want ErrInvalidArgument", data, err)
			}
		})
	}
}
