package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/repository"
)

// CatalogUseCase is the read side of the catalog, used for menu rendering.
type CatalogUseCase interface {
	Options(ctx context.Context, svc model.ServiceType, optType model.OptionType) ([]*model.ServiceOption, error)
	Bundles(ctx context.Context) ([]*model.Bundle, error)
	Bundle(ctx context.Context, id string) (*model.Bundle, error)
}

type catalogUC struct {
	catalog repository.CatalogRepository
	log     *zerolog.Logger
}

func NewCatalogUseCase(catalog repository.CatalogRepository, logger *zerolog.Logger) *catalogUC {
	return &catalogUC{catalog: catalog, log: logger}
}

func (u *catalogUC) Options(ctx context.Context, svc model.ServiceType, optType model.OptionType) ([]*model.ServiceOption, error) {
	return u.catalog.ListOptions(ctx, repository.NoTX, svc, optType)
}

func (u *catalogUC) Bundles(ctx context.Context) ([]*model.Bundle, error) {
	return u.catalog.ListBundles(ctx, repository.NoTX)
}

func (u *catalogUC) Bundle(ctx context.Context, id string) (*model.Bundle, error) {
	return u.catalog.FindBundle(ctx, repository.NoTX, id)
}
