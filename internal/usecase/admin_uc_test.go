//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/usecase"
)

type adminFixture struct {
	catalog  *MockCatalogRepo
	promos   *MockPromoRepo
	tasks    *MockTaskRepo
	feedback *MockFeedbackRepo
	orders   *MockOrderRepo
	uc       usecase.AdminUseCase
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		catalog:  NewMockCatalogRepo(),
		promos:   NewMockPromoRepo(),
		tasks:    NewMockTaskRepo(),
		feedback: NewMockFeedbackRepo(),
		orders:   NewMockOrderRepo(),
	}
	f.uc = usecase.NewAdminUseCase(
		f.catalog, f.promos, f.tasks, f.feedback, f.orders,
		[]int64{testOperator}, newTestLogger(),
	)
	return f
}

func TestAdmin_CreatePromo(t *testing.T) {
	ctx := context.Background()

	t.Run("percent promo from a valid form", func(t *testing.T) {
		f := newAdminFixture(t)
		promo, err := f.uc.CreatePromo(ctx, testOperator, "welcome10|10|percent|2027-12-31|100")
		if err != nil {
			t.Fatalf("CreatePromo: %v", err)
		}
		if promo.Code != "WELCOME10" {
			t.Errorf("code = %q, want uppercased WELCOME10", promo.Code)
		}
		if promo.Type != model.PromoPercent || promo.Discount != 10 || promo.MaxUses != 100 {
			t.Errorf("promo = %+v", promo)
		}
		if _, err := f.promos.Find(ctx, nil, "WELCOME10"); err != nil {
			t.Errorf("promo not persisted: %v", err)
		}
	})

	t.Run("amount promo converts dollars to cents", func(t *testing.T) {
		f := newAdminFixture(t)
		promo, err := f.uc.CreatePromo(ctx, testOperator, "FIVE|5|amount|2027-12-31|10")
		if err != nil {
			t.Fatalf("CreatePromo: %v", err)
		}
		if promo.Discount != 500 {
			t.Errorf("discount = %d cents, want 500", promo.Discount)
		}
	})

	t.Run("malformed forms report the expected format", func(t *testing.T) {
		f := newAdminFixture(t)
		bad := []string{
			"TOO|FEW|FIELDS",
			"CODE|ten|percent|2027-12-31|100",
			"CODE|10|percent|soon|100",
			"CODE|10|percent|2027-12-31|many",
			"CODE|150|percent|2027-12-31|100",
			"CODE||percent|2027-12-31|100",
		}
		for _, form := range bad {
			if _, err := f.uc.CreatePromo(ctx, testOperator, form); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("form %q: err = %v, want ErrValidation", form, err)
			}
		}
	})

	t.Run("non-operator is refused", func(t *testing.T) {
		f := newAdminFixture(t)
		_, err := f.uc.CreatePromo(ctx, 12345, "CODE|10|percent|2027-12-31|100")
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
	})
}

func TestAdmin_CreateServiceOption(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	opt, err := f.uc.CreateServiceOption(ctx, testOperator, "album|album|New Collection|25.50")
	if err != nil {
		t.Fatalf("CreateServiceOption: %v", err)
	}
	if opt.Price != 2550 {
		t.Errorf("price = %d cents, want 2550", opt.Price)
	}
	found, err := f.catalog.FindOption(ctx, nil, model.ServiceAlbum, model.OptionAlbum, "New Collection")
	if err != nil {
		t.Fatalf("option not persisted: %v", err)
	}
	if found.ID == 0 {
		t.Error("persisted option should carry its assigned id")
	}

	if _, err := f.uc.CreateServiceOption(ctx, testOperator, "album|album|Bad|-5"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative price: err = %v, want ErrValidation", err)
	}
}

func TestAdmin_CreateBundle(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	b, err := f.uc.CreateBundle(ctx, testOperator,
		"Starter|Great value|50|40|group:Inner Circle:2 Months;album:Photo Collection")
	if err != nil {
		t.Fatalf("CreateBundle: %v", err)
	}
	if b.OriginalPrice != 5000 || b.BundlePrice != 4000 {
		t.Errorf("prices = %d/%d, want 5000/4000", b.OriginalPrice, b.BundlePrice)
	}
	if b.DiscountPercentage != 20 {
		t.Errorf("discount = %d%%, want 20", b.DiscountPercentage)
	}
	if len(b.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(b.Items))
	}
	if b.Items[0].Duration != "2 Months" || b.Items[1].Duration != "" {
		t.Errorf("items = %+v", b.Items)
	}
	if !b.Active {
		t.Error("new bundle must be active")
	}
	if _, err := f.catalog.FindBundle(ctx, nil, b.ID); err != nil {
		t.Errorf("bundle not persisted: %v", err)
	}

	t.Run("bundle price above original is refused", func(t *testing.T) {
		_, err := f.uc.CreateBundle(ctx, testOperator, "Bad|desc|40|50|group:Inner Circle")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})
}

func TestAdmin_CreateOffer(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	offer, err := f.uc.CreateOffer(ctx, testOperator, "Summer Sale|20|percent|2027-08-01")
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if offer.Discount != 20 || offer.Type != model.PromoPercent {
		t.Errorf("offer = %+v", offer)
	}
	active, err := f.uc.ListActiveOffers(ctx)
	if err != nil {
		t.Fatalf("ListActiveOffers: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Summer Sale" {
		t.Errorf("active offers = %+v", active)
	}
}

func TestAdmin_ScheduleBroadcast(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	at := time.Now().Add(2 * time.Hour)
	task, err := f.uc.ScheduleBroadcast(ctx, testOperator, "Maintenance tonight", at)
	if err != nil {
		t.Fatalf("ScheduleBroadcast: %v", err)
	}
	if !f.tasks.Has(task.ID) {
		t.Error("task not persisted")
	}
	if task.Due(time.Now()) {
		t.Error("future task must not be due yet")
	}
	if !task.Due(at.Add(time.Second)) {
		t.Error("task must be due after its scheduled time")
	}

	if _, err := f.uc.ScheduleBroadcast(ctx, testOperator, "", at); err == nil {
		t.Error("empty message must be rejected")
	}
}

func TestAdmin_FeedbackAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	if err := f.uc.SaveFeedback(ctx, testUser, "love the bot"); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}
	got, _ := f.feedback.ListByUser(ctx, nil, testUser)
	if len(got) != 1 || got[0].Text != "love the bot" {
		t.Errorf("feedback = %+v", got)
	}

	o, _ := model.NewOrder("order-1", testUser, model.Selection{
		ServiceType: model.ServiceAlbum, ItemName: "Photo Collection", Price: 2500, OriginalPrice: 2500,
	})
	f.orders.Save(ctx, nil, o)
	history, err := f.uc.PurchaseHistory(ctx, testUser)
	if err != nil {
		t.Fatalf("PurchaseHistory: %v", err)
	}
	if len(history) != 1 || history[0].ItemName != "Photo Collection" {
		t.Errorf("history = %+v", history)
	}
}
