package services

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/dto"
)

// CatalogReaderSvc defines read operations over series, items and presales.
type CatalogReaderSvc interface {
	GetSeries(ctx context.Context, seriesID string) (*domain.Series, error)
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
	GetPresale(ctx context.Context, presaleID string) (*domain.PreSale, error)
}

// CatalogWriterSvc defines admin-only catalog creation.
type CatalogWriterSvc interface {
	CreateSeries(ctx context.Context, adminID string, req dto.CreateSeriesRequest) (*domain.Series, error)
	CreatePresale(ctx context.Context, adminID string, req dto.CreatePresaleRequest) (*domain.PreSale, error)
}

// CatalogSvcFacade combines catalog read and write operations.
type CatalogSvcFacade interface {
	CatalogReaderSvc
	CatalogWriterSvc
}
