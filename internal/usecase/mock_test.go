//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/domain/ports/repository"
	"telegram-shop-bot/internal/infra/i18n"
)

// =============================
// Adapters
// =============================

// ---- Mock TelegramBotAdapter ----

type sentMessage struct {
	To   int64
	Text string
	Rows [][]adapter.InlineButton
}

type MockTelegramBot struct {
	mu       sync.Mutex
	Sent     []sentMessage
	Buttons  []sentMessage
	Forwards []sentMessage
	Images   []sentMessage

	SendMessageFunc func(ctx context.Context, telegramID int64, text string) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, telegramID int64, text string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, telegramID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{To: telegramID, Text: text})
	return nil
}

func (m *MockTelegramBot) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Buttons = append(m.Buttons, sentMessage{To: telegramID, Text: text, Rows: rows})
	return nil
}

func (m *MockTelegramBot) ForwardPhoto(ctx context.Context, toID, fromChatID int64, messageID int, caption string, rows [][]adapter.InlineButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Forwards = append(m.Forwards, sentMessage{To: toID, Text: caption})
	return nil
}

func (m *MockTelegramBot) SendImage(ctx context.Context, telegramID int64, image []byte, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Images = append(m.Images, sentMessage{To: telegramID, Text: caption})
	return nil
}

// ButtonsTo returns the button menus delivered to one recipient, in order.
func (m *MockTelegramBot) ButtonsTo(id int64) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.Buttons {
		if s.To == id {
			out = append(out, s)
		}
	}
	return out
}

// SentTo returns the texts delivered to one recipient, in order.
func (m *MockTelegramBot) SentTo(id int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if s.To == id {
			out = append(out, s.Text)
		}
	}
	return out
}

// =============================
// Repositories
// =============================

// ---- Mock SessionRepository ----

type MockSessionRepo struct {
	mu    sync.Mutex
	store map[int64]*model.Session

	SetFunc func(ctx context.Context, s *model.Session) error
}

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{store: make(map[int64]*model.Session)}
}

var _ repository.SessionRepository = (*MockSessionRepo)(nil)

func (m *MockSessionRepo) Get(ctx context.Context, tgID int64) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepo) Set(ctx context.Context, s *model.Session) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.UserID] = &cp
	return nil
}

func (m *MockSessionRepo) Clear(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, tgID)
	return nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	store map[int64]*model.User

	ListAllFunc func(ctx context.Context, tx repository.Tx) ([]*model.User, error)
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[int64]*model.User)}
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) UpdateLanguage(ctx context.Context, tx repository.Tx, tgID int64, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Language = lang
	return nil
}

func (m *MockUserRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.store))
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu    sync.Mutex
	store map[string]*model.Order
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{store: make(map[string]*model.Order)}
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) FindLatestByUserAndStatus(ctx context.Context, tx repository.Tx, userID int64, status model.OrderStatus) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Order
	for _, o := range m.store {
		if o.UserID != userID || o.Status != status {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockOrderRepo) FindCompletedSubscription(ctx context.Context, tx repository.Tx, userID int64, itemName string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Order
	for _, o := range m.store {
		if o.UserID != userID || o.ServiceType != model.ServiceGroup ||
			o.Status != model.OrderStatusCompleted || o.ItemName != itemName {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockOrderRepo) UpdateStatusForward(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !from.CanAdvanceTo(to) || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *MockOrderRepo) SetExpiry(ctx context.Context, tx repository.Tx, id string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	e := expiry
	o.ExpiryDate = &e
	o.RenewalReminderSent = false
	o.FinalReminderSent = false
	return nil
}

func (m *MockOrderRepo) MarkReminderSent(ctx context.Context, tx repository.Tx, id string, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	switch kind {
	case "renewal":
		o.RenewalReminderSent = true
	case "final":
		o.FinalReminderSent = true
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockOrderRepo) ListActiveSubscriptions(ctx context.Context, tx repository.Tx) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*model.Order
	for _, o := range m.store {
		if o.Status == model.OrderStatusCompleted && o.ExpiryDate != nil && o.ExpiryDate.After(now) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock TransactionRepository ----

type MockTransactionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Transaction
}

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{store: make(map[string]*model.Transaction)}
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func (m *MockTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MockTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepo) UpdateStatusForward(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !from.CanAdvanceTo(to) || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockTransactionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for _, t := range m.store {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock PendingPaymentRepository ----

type MockPendingRepo struct {
	mu    sync.Mutex
	store map[string]*model.PendingPayment
}

func NewMockPendingRepo() *MockPendingRepo {
	return &MockPendingRepo{store: make(map[string]*model.PendingPayment)}
}

var _ repository.PendingPaymentRepository = (*MockPendingRepo)(nil)

func (m *MockPendingRepo) Save(ctx context.Context, tx repository.Tx, p *model.PendingPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// First write wins, matching the ON CONFLICT DO NOTHING upsert.
	if _, ok := m.store[p.TransactionID]; ok {
		return nil
	}
	cp := *p
	m.store[p.TransactionID] = &cp
	return nil
}

func (m *MockPendingRepo) Find(ctx context.Context, tx repository.Tx, transactionID string) (*model.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPendingRepo) UpdateFlags(ctx context.Context, tx repository.Tx, p *model.PendingPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.TransactionID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Reminder1Sent = p.Reminder1Sent
	cur.Reminder2Sent = p.Reminder2Sent
	cur.Reminder3Sent = p.Reminder3Sent
	cur.Confirmed = p.Confirmed
	return nil
}

func (m *MockPendingRepo) Delete(ctx context.Context, tx repository.Tx, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, transactionID)
	return nil
}

func (m *MockPendingRepo) ListUnconfirmed(ctx context.Context, tx repository.Tx) ([]*model.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingPayment
	for _, p := range m.store {
		if !p.Confirmed {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPendingRepo) Has(transactionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[transactionID]
	return ok
}

// ---- Mock PromoRepository ----

type MockPromoRepo struct {
	mu      sync.Mutex
	codes   map[string]*model.PromoCode
	applied map[int64][]model.AppliedPromo
}

func NewMockPromoRepo() *MockPromoRepo {
	return &MockPromoRepo{
		codes:   make(map[string]*model.PromoCode),
		applied: make(map[int64][]model.AppliedPromo),
	}
}

var _ repository.PromoRepository = (*MockPromoRepo)(nil)

func (m *MockPromoRepo) Save(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.codes[p.Code] = &cp
	return nil
}

func (m *MockPromoRepo) Find(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.codes[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPromoRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.PromoCode, 0, len(m.codes))
	for _, p := range m.codes {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockPromoRepo) Redeem(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.codes[code]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Uses >= p.MaxUses {
		return false, nil
	}
	p.Uses++
	return true, nil
}

func (m *MockPromoRepo) ApplyToUser(ctx context.Context, tx repository.Tx, userID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied[userID] = append(m.applied[userID], model.AppliedPromo{
		UserID: userID, Code: code, AppliedAt: time.Now(),
	})
	return nil
}

func (m *MockPromoRepo) LatestForUser(ctx context.Context, tx repository.Tx, userID int64) (*model.AppliedPromo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.applied[userID]
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	cp := list[len(list)-1]
	return &cp, nil
}

func (m *MockPromoRepo) RemoveFromUser(ctx context.Context, tx repository.Tx, userID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []model.AppliedPromo
	for _, a := range m.applied[userID] {
		if a.Code != code {
			kept = append(kept, a)
		}
	}
	m.applied[userID] = kept
	return nil
}

func (m *MockPromoRepo) Uses(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.codes[code]; ok {
		return p.Uses
	}
	return 0
}

// ---- Mock CatalogRepository ----

type MockCatalogRepo struct {
	mu      sync.Mutex
	options []*model.ServiceOption
	bundles map[string]*model.Bundle
	offers  []*model.LimitedTimeOffer
	nextID  int64
}

func NewMockCatalogRepo() *MockCatalogRepo {
	return &MockCatalogRepo{bundles: make(map[string]*model.Bundle)}
}

var _ repository.CatalogRepository = (*MockCatalogRepo)(nil)

func (m *MockCatalogRepo) ListOptions(ctx context.Context, tx repository.Tx, service model.ServiceType, optType model.OptionType) ([]*model.ServiceOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ServiceOption
	for _, o := range m.options {
		if o.ServiceType == service && o.OptionType == optType {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCatalogRepo) FindOption(ctx context.Context, tx repository.Tx, service model.ServiceType, optType model.OptionType, name string) (*model.ServiceOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.options {
		if o.ServiceType == service && o.OptionType == optType && o.Name == name {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCatalogRepo) AddOption(ctx context.Context, tx repository.Tx, o *model.ServiceOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *o
	cp.ID = m.nextID
	m.options = append(m.options, &cp)
	o.ID = m.nextID
	return nil
}

func (m *MockCatalogRepo) CountOptions(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.options), nil
}

func (m *MockCatalogRepo) ListBundles(ctx context.Context, tx repository.Tx) ([]*model.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Bundle
	for _, b := range m.bundles {
		if b.Active {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCatalogRepo) FindBundle(ctx context.Context, tx repository.Tx, id string) (*model.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bundles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockCatalogRepo) SaveBundle(ctx context.Context, tx repository.Tx, b *model.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bundles[b.ID] = &cp
	return nil
}

func (m *MockCatalogRepo) SaveOffer(ctx context.Context, tx repository.Tx, o *model.LimitedTimeOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.offers = append(m.offers, &cp)
	return nil
}

func (m *MockCatalogRepo) ListActiveOffers(ctx context.Context, tx repository.Tx) ([]*model.LimitedTimeOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*model.LimitedTimeOffer
	for _, o := range m.offers {
		if o.Expires.After(now) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock TaskRepository ----

type MockTaskRepo struct {
	mu    sync.Mutex
	store map[string]*model.ScheduledTask
}

func NewMockTaskRepo() *MockTaskRepo {
	return &MockTaskRepo{store: make(map[string]*model.ScheduledTask)}
}

var _ repository.TaskRepository = (*MockTaskRepo)(nil)

func (m *MockTaskRepo) Save(ctx context.Context, tx repository.Tx, t *model.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MockTaskRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ScheduledTask
	for _, t := range m.store {
		if t.Due(now) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTaskRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

func (m *MockTaskRepo) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	return ok
}

// ---- Mock FeedbackRepository ----

type MockFeedbackRepo struct {
	mu    sync.Mutex
	store []model.Feedback
}

func NewMockFeedbackRepo() *MockFeedbackRepo {
	return &MockFeedbackRepo{}
}

var _ repository.FeedbackRepository = (*MockFeedbackRepo)(nil)

func (m *MockFeedbackRepo) Save(ctx context.Context, tx repository.Tx, userID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = append(m.store, model.Feedback{
		ID: int64(len(m.store) + 1), UserID: userID, Text: text, CreatedAt: time.Now(),
	})
	return nil
}

func (m *MockFeedbackRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Feedback
	for i := range m.store {
		if m.store[i].UserID == userID {
			cp := m.store[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately with NoTX unless a test overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger so test output stays clean.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// newTestBundle builds a self-contained translation bundle from an in-memory
// filesystem, covering the keys the usecases format into.
func newTestBundle() *i18n.Bundle {
	testFS := fstest.MapFS{
		"locales/en.yaml": {
			Data: []byte(`payment_reminder_1: "Reminder 1: %s for $%.2f"
payment_reminder_2: "Reminder 2: %s for $%.2f"
payment_reminder_3: "Reminder 3: %s for $%.2f"
renewal_reminder: "Your %s subscription expires on %s"
final_reminder: "Last day! %s expires on %s"
payment_approved: "Payment approved"
payment_rejected: "Payment rejected"
bundle_confirmed: "Bundle %s unlocked"
subscription_until: "%s active until %s"
service_confirmed: "%s confirmed"
`),
		},
	}
	b, err := i18n.NewBundle(testFS, "en")
	if err != nil {
		panic(err)
	}
	return b
}

// stubBroadcast satisfies BroadcastUseCase without a worker pool.
type stubBroadcast struct {
	mu       sync.Mutex
	Messages []string
	Fail     bool
}

func (s *stubBroadcast) Broadcast(ctx context.Context, message string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return 0, 0, context.DeadlineExceeded
	}
	s.Messages = append(s.Messages, message)
	return 3, 0, nil
}
