package repository

import (
	"context"

	"telegram-shop-bot/internal/domain/model"
)

// -----------------------------
// Catalog: service options, bundles, limited-time offers
// -----------------------------

type CatalogRepository interface {
	ListOptions(ctx context.Context, tx Tx, service model.ServiceType, optType model.OptionType) ([]*model.ServiceOption, error)
	FindOption(ctx context.Context, tx Tx, service model.ServiceType, optType model.OptionType, name string) (*model.ServiceOption, error)
	AddOption(ctx context.Context, tx Tx, o *model.ServiceOption) error
	CountOptions(ctx context.Context, tx Tx) (int, error)

	ListBundles(ctx context.Context, tx Tx) ([]*model.Bundle, error)
	FindBundle(ctx context.Context, tx Tx, id string) (*model.Bundle, error)
	SaveBundle(ctx context.Context, tx Tx, b *model.Bundle) error

	SaveOffer(ctx context.Context, tx Tx, o *model.LimitedTimeOffer) error
	ListActiveOffers(ctx context.Context, tx Tx) ([]*model.LimitedTimeOffer, error)
}
