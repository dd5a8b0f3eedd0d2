package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/application"
	"telegram-shop-bot/internal/config"
	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/infra/i18n"
	"telegram-shop-bot/internal/infra/metrics"
	red "telegram-shop-bot/internal/infra/redis"
	"telegram-shop-bot/internal/usecase"
)

// RealTelegramBotAdapter polls updates with tgbotapi and dispatches them to
// the BotFacade. Updates for the same user are serialized by a Redis lock so
// a burst of taps cannot interleave flow transitions.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	payments    *config.PaymentConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	locker      red.Locker
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	payments *config.PaymentConfig,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	locker red.Locker,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	compLog := logger.With().Str("component", "TelegramAdapter").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		payments:      payments,
		facade:        facade,
		rateLimiter:   rateLimiter,
		locker:        locker,
		log:           &compLog,
		updateWorkers: workers,
	}, nil
}

// SetFacade breaks the construction cycle: the facade's usecases need the
// adapter for outbound sends, and the adapter needs the facade for dispatch.
func (r *RealTelegramBotAdapter) SetFacade(f *application.BotFacade) { r.facade = f }

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// ---- outbound port ----

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kb := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kb)
	}

	msg := tgbotapi.NewMessage(tgID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) ForwardPhoto(ctx context.Context, toID, fromChatID int64, messageID int, caption string, rows [][]adapter.InlineButton) error {
	fwd := tgbotapi.NewForward(toID, fromChatID, messageID)
	if _, err := r.bot.Send(fwd); err != nil {
		return err
	}
	return r.SendButtons(ctx, toID, caption, rows)
}

func (r *RealTelegramBotAdapter) SendImage(ctx context.Context, tgID int64, image []byte, caption string) error {
	photo := tgbotapi.NewPhoto(tgID, tgbotapi.FileBytes{Name: "image.png", Bytes: image})
	photo.Caption = caption
	_, err := r.bot.Send(photo)
	return err
}

// ---- inbound dispatch ----

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	tgID := updateUserID(update)
	if tgID == 0 {
		return nil
	}

	// Serialize handling per user.
	if r.locker != nil {
		token, err := r.locker.TryLock(ctx, red.UserLockKey(tgID), 15*time.Second)
		if err != nil {
			if errors.Is(err, domain.ErrLockContended) {
				r.log.Warn().Int64("tg_id", tgID).Msg("dropping update, user lock contended")
				return nil
			}
			return err
		}
		defer func() { _ = r.locker.Unlock(ctx, red.UserLockKey(tgID), token) }()
	}

	if update.CallbackQuery != nil {
		metrics.IncUpdate("callback")
		return r.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	if len(update.Message.Photo) > 0 {
		metrics.IncUpdate("photo")
		return r.handlePhoto(ctx, update.Message)
	}
	if update.Message.IsCommand() {
		metrics.IncUpdate("command")
		return r.handleCommand(ctx, update.Message)
	}
	metrics.IncUpdate("text")
	return r.handleText(ctx, update.Message)
}

func updateUserID(update tgbotapi.Update) int64 {
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	return 0
}

func (r *RealTelegramBotAdapter) allowed(ctx context.Context, tgID int64, key string) bool {
	if r.rateLimiter == nil {
		return true
	}
	ok, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, key), 30, time.Minute)
	if err != nil {
		r.log.Error().Err(err).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	tgID := msg.From.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	if !r.allowed(ctx, tgID, "/"+cmd) {
		return r.SendMessage(ctx, tgID, "Rate limit exceeded. Please try again later.")
	}

	tr := r.facade.TranslatorFor(ctx, tgID)
	switch cmd {
	case "start", "menu":
		if _, err := r.facade.HandleStart(ctx, tgID, msg.From.UserName, msg.From.FirstName); err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		return r.sendMainMenu(ctx, tgID, tr.T("welcome"))

	case "cancel":
		if err := r.facade.FlowUC.Cancel(ctx, tgID); err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		return r.SendMessage(ctx, tgID, tr.T("cancelled"))

	case "promo":
		text, err := r.facade.HandlePromo(ctx, tgID, args)
		if err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		if err := r.SendMessage(ctx, tgID, text); err != nil {
			return err
		}
		return r.refreshCheckout(ctx, tgID)

	case "history":
		text, err := r.facade.HandleHistory(ctx, tgID)
		if err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		return r.SendMessage(ctx, tgID, text)

	case "offers":
		text, err := r.facade.HandleOffers(ctx, tgID)
		if err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		return r.SendMessage(ctx, tgID, text)

	case "feedback":
		text, err := r.facade.HandleFeedback(ctx, tgID, args)
		if err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		return r.SendMessage(ctx, tgID, text)

	case "language":
		return r.sendLanguageMenu(ctx, tgID)

	case "help":
		return r.SendMessage(ctx, tgID, tr.T("help"))

	// Operator commands. Authorization lives in the usecases; unauthorized
	// callers get the same refusal regardless of how they found the command.
	case "addpromo":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			p, err := r.facade.AdminUC.CreatePromo(ctx, tgID, args)
			if err != nil {
				return "", err
			}
			return "Promo " + p.Code + " created.", nil
		})
	case "addoption":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			o, err := r.facade.AdminUC.CreateServiceOption(ctx, tgID, args)
			if err != nil {
				return "", err
			}
			return "Option " + o.Name + " added.", nil
		})
	case "addbundle":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			b, err := r.facade.AdminUC.CreateBundle(ctx, tgID, args)
			if err != nil {
				return "", err
			}
			return "Bundle " + b.Name + " created.", nil
		})
	case "addoffer":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			o, err := r.facade.AdminUC.CreateOffer(ctx, tgID, args)
			if err != nil {
				return "", err
			}
			return "Offer " + o.Name + " created.", nil
		})
	case "broadcast":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			return r.facade.HandleBroadcast(ctx, tgID, args, time.Time{})
		})
	case "schedule":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			at, message, err := parseSchedule(args)
			if err != nil {
				return "", err
			}
			return r.facade.HandleBroadcast(ctx, tgID, message, at)
		})
	case "stats":
		return r.adminReply(ctx, tgID, tr, func() (string, error) {
			return r.facade.HandleStats(ctx, tgID)
		})
	}
	return r.sendMainMenu(ctx, tgID, tr.T("menu_prompt"))
}

// parseSchedule splits "2006-01-02 15:04|message".
func parseSchedule(args string) (time.Time, string, error) {
	spec, message, ok := strings.Cut(args, "|")
	if !ok || strings.TrimSpace(message) == "" {
		return time.Time{}, "", domain.ErrValidation
	}
	at, err := time.Parse("2006-01-02 15:04", strings.TrimSpace(spec))
	if err != nil {
		return time.Time{}, "", domain.ErrValidation
	}
	return at, strings.TrimSpace(message), nil
}

func (r *RealTelegramBotAdapter) adminReply(ctx context.Context, tgID int64, tr *i18n.Translator, fn func() (string, error)) error {
	text, err := fn()
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return r.SendMessage(ctx, tgID, tr.T("unauthorized"))
	case errors.Is(err, domain.ErrValidation):
		return r.SendMessage(ctx, tgID, err.Error())
	case err != nil:
		return r.SendMessage(ctx, tgID, tr.T("error_generic"))
	}
	return r.SendMessage(ctx, tgID, text)
}

// handleText routes free text. A user sitting at the price confirmation who
// types something that looks like a promo code gets it applied.
func (r *RealTelegramBotAdapter) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	tgID := msg.From.ID
	tr := r.facade.TranslatorFor(ctx, tgID)
	s, err := r.facade.FlowUC.Session(ctx, tgID)
	if err != nil {
		return err
	}
	if s.State == model.StatePriceConfirmed && msg.Text != "" {
		text, err := r.facade.HandlePromo(ctx, tgID, msg.Text)
		if err != nil {
			return r.SendMessage(ctx, tgID, tr.T("error_generic"))
		}
		if err := r.SendMessage(ctx, tgID, text); err != nil {
			return err
		}
		return r.refreshCheckout(ctx, tgID)
	}
	if s.State == model.StateAwaitingProof {
		return r.SendMessage(ctx, tgID, tr.T("send_proof"))
	}
	return r.sendMainMenu(ctx, tgID, tr.T("menu_prompt"))
}

func (r *RealTelegramBotAdapter) handlePhoto(ctx context.Context, msg *tgbotapi.Message) error {
	tgID := msg.From.ID
	tr := r.facade.TranslatorFor(ctx, tgID)
	proof := usecase.ProofRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	if _, err := r.facade.FlowUC.SubmitProof(ctx, tgID, proof); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return r.sendMainMenu(ctx, tgID, tr.T("menu_prompt"))
		}
		return r.SendMessage(ctx, tgID, tr.T("error_generic"))
	}
	return r.SendMessage(ctx, tgID, tr.T("proof_received"))
}

func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("callback without sender")
	}
	// Stop the telegram spinner when we return.
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	tgID := query.From.ID
	tr := r.facade.TranslatorFor(ctx, tgID)
	if !r.allowed(ctx, tgID, "cb") {
		return r.SendMessage(ctx, tgID, "Rate limit exceeded. Please try again later.")
	}

	intent, err := ParseCallback(query.Data)
	if err != nil {
		r.log.Warn().Str("data", query.Data).Int64("tg_id", tgID).Msg("unknown callback payload")
		return r.SendMessage(ctx, tgID, tr.T("error_generic"))
	}
	return r.dispatch(ctx, tgID, query.From.UserName, intent)
}

func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, tgID int64, username string, intent Intent) error {
	tr := r.facade.TranslatorFor(ctx, tgID)
	fail := func(err error) error {
		if errors.Is(err, domain.ErrNotFound) {
			return r.sendMainMenu(ctx, tgID, tr.T("not_found"))
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			return r.sendMainMenu(ctx, tgID, tr.T("menu_prompt"))
		}
		return r.SendMessage(ctx, tgID, tr.T("error_generic"))
	}

	switch it := intent.(type) {
	case MenuIntent:
		if _, err := r.facade.FlowUC.StartFlow(ctx, tgID); err != nil {
			return fail(err)
		}
		return r.sendMainMenu(ctx, tgID, "")

	case ServiceIntent:
		s, err := r.facade.FlowUC.SelectService(ctx, tgID, it.Service, "")
		if err != nil {
			return fail(err)
		}
		return r.sendOptionMenu(ctx, s)

	case BundleListIntent:
		return r.sendBundleMenu(ctx, tgID)

	case BundleIntent:
		s, err := r.facade.FlowUC.SelectService(ctx, tgID, model.ServiceBundle, it.BundleID)
		if err != nil {
			return fail(err)
		}
		if b, err := r.facade.CatalogUC.Bundle(ctx, it.BundleID); err == nil {
			var sb strings.Builder
			sb.WriteString(tr.T("bundle_confirmed", b.Name))
			for _, item := range b.Items {
				sb.WriteString("\n• " + item.ItemName)
				if item.Duration != "" {
					sb.WriteString(" (" + item.Duration + ")")
				}
			}
			if err := r.SendMessage(ctx, tgID, sb.String()); err != nil {
				return err
			}
		}
		return r.sendCheckout(ctx, s)

	case OptionIntent:
		s, err := r.facade.FlowUC.SelectOption(ctx, tgID, it.OptType, it.Name)
		if err != nil {
			return fail(err)
		}
		return r.sendOptionMenu(ctx, s)

	case CheckoutIntent:
		return r.sendPaymentCategoryMenu(ctx, tgID)

	case PayCategoryIntent:
		s, err := r.facade.FlowUC.SelectPaymentCategory(ctx, tgID, username, it.Category)
		if err != nil {
			return fail(err)
		}
		if s.State == model.StateAwaitingProof {
			return r.sendPaymentInstructions(ctx, s)
		}
		return r.sendPaymentMethodMenu(ctx, tgID, it.Category)

	case PayMethodIntent:
		s, err := r.facade.FlowUC.SelectPaymentMethod(ctx, tgID, username, it.Method)
		if err != nil {
			return fail(err)
		}
		return r.sendPaymentInstructions(ctx, s)

	case PromoPromptIntent:
		return r.SendMessage(ctx, tgID, tr.T("promo_prompt"))

	case CancelIntent:
		if err := r.facade.FlowUC.Cancel(ctx, tgID); err != nil {
			return fail(err)
		}
		return r.SendMessage(ctx, tgID, tr.T("cancelled"))

	case ApprovalIntent:
		text, err := r.facade.HandleApproval(ctx, tgID, it.UserID, it.TransactionID, it.Approve)
		if errors.Is(err, domain.ErrUnauthorized) {
			return r.SendMessage(ctx, tgID, tr.T("unauthorized"))
		}
		if err != nil {
			return fail(err)
		}
		return r.SendMessage(ctx, tgID, text)

	case LanguageMenuIntent:
		return r.sendLanguageMenu(ctx, tgID)

	case LanguageIntent:
		text, err := r.facade.HandleLanguage(ctx, tgID, it.Lang)
		if err != nil {
			return fail(err)
		}
		if err := r.SendMessage(ctx, tgID, text); err != nil {
			return err
		}
		return r.sendMainMenu(ctx, tgID, "")

	case HistoryIntent:
		text, err := r.facade.HandleHistory(ctx, tgID)
		if err != nil {
			return fail(err)
		}
		return r.SendMessage(ctx, tgID, text)

	case OffersIntent:
		text, err := r.facade.HandleOffers(ctx, tgID)
		if err != nil {
			return fail(err)
		}
		return r.SendMessage(ctx, tgID, text)
	}
	return nil
}

// refreshCheckout re-renders the checkout card after a promo changes the
// price; outside price confirmation it does nothing.
func (r *RealTelegramBotAdapter) refreshCheckout(ctx context.Context, tgID int64) error {
	s, err := r.facade.FlowUC.RefreshPrice(ctx, tgID)
	if err != nil || s.State != model.StatePriceConfirmed {
		return nil
	}
	return r.sendCheckout(ctx, s)
}
