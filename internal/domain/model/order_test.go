//go:build !integration

package model_test

import (
	"errors"
	"testing"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
)

func TestOrderStatusOrdering(t *testing.T) {
	t.Run("statuses only move forward", func(t *testing.T) {
		allowed := []struct{ from, to model.OrderStatus }{
			{model.OrderStatusPending, model.OrderStatusProcessing},
			{model.OrderStatusPending, model.OrderStatusCompleted},
			{model.OrderStatusPending, model.OrderStatusCancelled},
			{model.OrderStatusProcessing, model.OrderStatusCompleted},
			{model.OrderStatusProcessing, model.OrderStatusRejected},
			{model.OrderStatusProcessing, model.OrderStatusCancelled},
		}
		for _, c := range allowed {
			if !c.from.CanAdvanceTo(c.to) {
				t.Errorf("%s -> %s should be allowed", c.from, c.to)
			}
		}
	})

	t.Run("backward and terminal moves are refused", func(t *testing.T) {
		refused := []struct{ from, to model.OrderStatus }{
			{model.OrderStatusProcessing, model.OrderStatusPending},
			{model.OrderStatusCompleted, model.OrderStatusPending},
			{model.OrderStatusCompleted, model.OrderStatusRejected},
			{model.OrderStatusRejected, model.OrderStatusCompleted},
			{model.OrderStatusCancelled, model.OrderStatusProcessing},
			{model.OrderStatusPending, model.OrderStatusPending},
		}
		for _, c := range refused {
			if c.from.CanAdvanceTo(c.to) {
				t.Errorf("%s -> %s must be refused", c.from, c.to)
			}
		}
	})

	t.Run("unknown status never advances", func(t *testing.T) {
		if model.OrderStatus("bogus").CanAdvanceTo(model.OrderStatusCompleted) {
			t.Error("unknown status must not advance")
		}
		if model.OrderStatusPending.CanAdvanceTo(model.OrderStatus("bogus")) {
			t.Error("advancing into an unknown status must be refused")
		}
	})
}

func TestOrderAdvance(t *testing.T) {
	o, err := model.NewOrder("order-1", 1111, model.Selection{
		ServiceType: model.ServiceGroup, ItemName: "Inner Circle", Duration: "2 Months",
		Price: 1800, OriginalPrice: 2000,
	})
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if o.Status != model.OrderStatusPending {
		t.Fatalf("new order status = %s, want pending", o.Status)
	}
	if o.DiscountAmount != 200 {
		t.Errorf("discount = %d, want 200", o.DiscountAmount)
	}

	if err := o.Advance(model.OrderStatusProcessing); err != nil {
		t.Fatalf("Advance to processing: %v", err)
	}
	if err := o.Advance(model.OrderStatusCompleted); err != nil {
		t.Fatalf("Advance to completed: %v", err)
	}
	if err := o.Advance(model.OrderStatusRejected); !errors.Is(err, domain.ErrInvalidStatusChange) {
		t.Errorf("err = %v, terminal order must refuse further moves", err)
	}
	if o.Status != model.OrderStatusCompleted {
		t.Errorf("failed advance mutated the order: %s", o.Status)
	}
}

func TestNewOrderValidation(t *testing.T) {
	cases := []struct {
		name string
		id   string
		user int64
		sel  model.Selection
	}{
		{"empty id", "", 1, model.Selection{ServiceType: model.ServiceGroup}},
		{"zero user", "o1", 0, model.Selection{ServiceType: model.ServiceGroup}},
		{"missing service", "o1", 1, model.Selection{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := model.NewOrder(c.id, c.user, c.sel); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
