package telegram

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"telegram-shop-bot/internal/config"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/infra/i18n"
)

func fmtUSD(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// optionOrder is the sub-selection sequence per service. The branch step
// (group name, chat type) comes before the priced duration step.
var optionOrder = map[model.ServiceType][]model.OptionType{
	model.ServiceVideoCall:   {model.OptionDuration},
	model.ServiceGroup:       {model.OptionName, model.OptionDuration},
	model.ServicePrivateChat: {model.OptionChatType, model.OptionDuration},
	model.ServiceAlbum:       {model.OptionAlbum},
	model.ServiceRenewal:     {model.OptionName},
}

func nextOptionType(s *model.Session) (model.OptionType, bool) {
	order, ok := optionOrder[s.Selection.ServiceType]
	if !ok || s.OptionSteps >= len(order) {
		return "", false
	}
	return order[s.OptionSteps], true
}

func mainMenuRows(tr *i18n.Translator) [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: tr.T("button_video_call"), Data: "svc:video_call"}, {Text: tr.T("button_group"), Data: "svc:group"}},
		{{Text: tr.T("button_private_chat"), Data: "svc:private_chat"}, {Text: tr.T("button_album"), Data: "svc:album"}},
		{{Text: tr.T("button_bundles"), Data: "bundles"}, {Text: tr.T("button_renewal"), Data: "svc:renewal"}},
		{{Text: "🔥 Offers", Data: "offers"}, {Text: "🧾 History", Data: "history"}},
		{{Text: "🌐 Language", Data: "langmenu"}},
	}
}

func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, tgID int64, intro string) error {
	tr := r.facade.TranslatorFor(ctx, tgID)
	if intro == "" {
		intro = tr.T("menu_prompt")
	}
	return r.SendButtons(ctx, tgID, intro, mainMenuRows(tr))
}

// sendOptionMenu renders the next sub-selection for the session's service,
// or the checkout prompt when the price is already confirmed.
func (r *RealTelegramBotAdapter) sendOptionMenu(ctx context.Context, s *model.Session) error {
	tr := r.facade.TranslatorFor(ctx, s.UserID)
	if s.State == model.StatePriceConfirmed {
		return r.sendCheckout(ctx, s)
	}
	optType, ok := nextOptionType(s)
	if !ok {
		return r.sendMainMenu(ctx, s.UserID, tr.T("error_generic"))
	}
	opts, err := r.facade.CatalogUC.Options(ctx, s.Selection.ServiceType, optType)
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		return r.sendMainMenu(ctx, s.UserID, tr.T("not_found"))
	}
	rows := make([][]adapter.InlineButton, 0, len(opts)+1)
	for _, o := range opts {
		label := o.Name
		if o.Price > 0 {
			label = o.Name + " — " + fmtUSD(o.Price)
		}
		rows = append(rows, []adapter.InlineButton{
			{Text: label, Data: fmt.Sprintf("opt:%s:%s", o.OptionType, o.Name)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: tr.T("button_back"), Data: "menu"}})
	return r.SendButtons(ctx, s.UserID, tr.T("choose_option"), rows)
}

func (r *RealTelegramBotAdapter) sendBundleMenu(ctx context.Context, tgID int64) error {
	tr := r.facade.TranslatorFor(ctx, tgID)
	bundles, err := r.facade.CatalogUC.Bundles(ctx)
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		return r.sendMainMenu(ctx, tgID, tr.T("not_found"))
	}
	rows := make([][]adapter.InlineButton, 0, len(bundles)+1)
	for _, b := range bundles {
		label := fmt.Sprintf("%s — %s (was %s)", b.Name, fmtUSD(b.BundlePrice), fmtUSD(b.OriginalPrice))
		rows = append(rows, []adapter.InlineButton{{Text: label, Data: "bundle:" + b.ID}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: tr.T("button_back"), Data: "menu"}})
	return r.SendButtons(ctx, tgID, tr.T("button_bundles"), rows)
}

// sendCheckout shows the confirmed price with promo and payment entry points.
func (r *RealTelegramBotAdapter) sendCheckout(ctx context.Context, s *model.Session) error {
	tr := r.facade.TranslatorFor(ctx, s.UserID)
	var text string
	if s.Selection.PromoCode != "" && s.Selection.OriginalPrice > s.Selection.Price {
		text = tr.T("price_discounted",
			float64(s.Selection.Price)/100, float64(s.Selection.OriginalPrice)/100, s.Selection.PromoCode)
	} else {
		text = tr.T("price_confirmed", float64(s.Selection.Price)/100)
	}
	rows := [][]adapter.InlineButton{
		{{Text: "💳 Pay " + fmtUSD(s.Selection.Price), Data: "checkout"}},
		{{Text: "🏷 Promo code", Data: "promo"}},
		{{Text: "✖️ Cancel", Data: "cancel"}},
	}
	return r.SendButtons(ctx, s.UserID, text, rows)
}

func (r *RealTelegramBotAdapter) sendPaymentCategoryMenu(ctx context.Context, tgID int64) error {
	tr := r.facade.TranslatorFor(ctx, tgID)
	rows := [][]adapter.InlineButton{
		{{Text: tr.T("button_domestic"), Data: "paycat:domestic"}},
		{{Text: tr.T("button_international"), Data: "paycat:international"}},
		{{Text: tr.T("button_crypto"), Data: "paycat:crypto"}},
		{{Text: "✖️ Cancel", Data: "cancel"}},
	}
	return r.SendButtons(ctx, tgID, tr.T("choose_payment_category"), rows)
}

func (r *RealTelegramBotAdapter) sendPaymentMethodMenu(ctx context.Context, tgID int64, cat model.PaymentCategory) error {
	tr := r.facade.TranslatorFor(ctx, tgID)
	var methods []config.PaymentMethod
	switch cat {
	case model.PaymentDomestic:
		methods = r.payments.Domestic
	case model.PaymentInternational:
		methods = r.payments.International
	}
	if len(methods) == 0 {
		return r.sendMainMenu(ctx, tgID, tr.T("not_found"))
	}
	rows := make([][]adapter.InlineButton, 0, len(methods)+1)
	for _, m := range methods {
		rows = append(rows, []adapter.InlineButton{{Text: m.Name, Data: "paymethod:" + m.Name}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "✖️ Cancel", Data: "cancel"}})
	return r.SendButtons(ctx, tgID, tr.T("choose_payment_method"), rows)
}

// sendPaymentInstructions delivers the pay-and-prove instructions for the
// chosen method. Crypto gets a QR code of the receive address.
func (r *RealTelegramBotAdapter) sendPaymentInstructions(ctx context.Context, s *model.Session) error {
	tr := r.facade.TranslatorFor(ctx, s.UserID)
	amount := float64(s.Selection.Price) / 100

	if s.PaymentType == model.PaymentCrypto {
		text := tr.T("crypto_instructions", amount, r.payments.Crypto.Network, r.payments.Crypto.Address)
		png, err := qrcode.Encode(r.payments.Crypto.Address, qrcode.Medium, 256)
		if err == nil {
			if err := r.SendImage(ctx, s.UserID, png, text); err == nil {
				return r.SendMessage(ctx, s.UserID, tr.T("send_proof"))
			}
		}
		// QR generation or photo delivery failed; plain text still works.
		if err := r.SendMessage(ctx, s.UserID, text); err != nil {
			return err
		}
		return r.SendMessage(ctx, s.UserID, tr.T("send_proof"))
	}

	details := ""
	for _, m := range append(append([]config.PaymentMethod{}, r.payments.Domestic...), r.payments.International...) {
		if m.Name == s.PaymentMethod {
			details = m.Details
			break
		}
	}
	if err := r.SendMessage(ctx, s.UserID, tr.T("payment_instructions", amount, details)); err != nil {
		return err
	}
	return r.SendMessage(ctx, s.UserID, tr.T("send_proof"))
}

func (r *RealTelegramBotAdapter) sendLanguageMenu(ctx context.Context, tgID int64) error {
	tr := r.facade.TranslatorFor(ctx, tgID)
	langs := r.facade.Locales.Langs()
	rows := make([][]adapter.InlineButton, 0, len(langs))
	for _, l := range langs {
		rows = append(rows, []adapter.InlineButton{{Text: languageLabel(l), Data: "lang:" + l}})
	}
	return r.SendButtons(ctx, tgID, tr.T("choose_language"), rows)
}

func languageLabel(code string) string {
	switch code {
	case "en":
		return "English"
	case "hi":
		return "हिन्दी"
	default:
		return code
	}
}
