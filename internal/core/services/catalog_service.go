package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/google/uuid"
)

type catalogService struct {
	BaseService
	executor *Executor
	reader   portsrepo.Reader
}

// NewCatalogService creates the catalog service.
func NewCatalogService(executor *Executor, reader portsrepo.Reader, opts ...Option) portssvc.CatalogSvcFacade {
	return &catalogService{
		BaseService: newBaseService(opts),
		executor:    executor,
		reader:      reader,
	}
}

var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

func (s *catalogService) GetSeries(ctx context.Context, seriesID string) (*domain.Series, error) {
	series, err := s.reader.GetSeries(ctx, seriesID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("series " + seriesID)
	}
	return series, err
}

func (s *catalogService) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.reader.GetItem(ctx, itemID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("item " + itemID)
	}
	return item, err
}

func (s *catalogService) GetPresale(ctx context.Context, presaleID string) (*domain.PreSale, error) {
	presale, err := s.reader.GetPresale(ctx, presaleID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("presale " + presaleID)
	}
	return presale, err
}

// requireAdmin loads adminID inside tx and refuses non-admins.
func (s *catalogService) requireAdmin(ctx context.Context, tx portsrepo.Tx, adminID string) error {
	acc, err := tx.FindAccount(ctx, adminID)
	if err != nil {
		return err
	}
	if !s.IsAdmin(acc) {
		return fmt.Errorf("%w: catalog changes require an admin", apperrors.ErrForbidden)
	}
	return nil
}

func (s *catalogService) CreateSeries(ctx context.Context, adminID string, req dto.CreateSeriesRequest) (*domain.Series, error) {
	price, err := utils.ToNano(req.Price)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("%w: invalid series price %s", apperrors.ErrValidation, req.Price)
	}
	if req.TotalSupply <= 0 || req.RoyaltyPercent < 0 || req.RoyaltyPercent > 100 {
		return nil, fmt.Errorf("%w: supply must be positive and royalty within [0, 100]", apperrors.ErrValidation)
	}

	series, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.Series, error) {
		if err := s.requireAdmin(ctx, tx, adminID); err != nil {
			return nil, err
		}
		now := s.Now()
		series := domain.Series{
			SeriesID:       uuid.NewString(),
			CollectionID:   req.CollectionID,
			Name:           req.Name,
			TotalSupply:    req.TotalSupply,
			Price:          price,
			RoyaltyPercent: req.RoyaltyPercent,
			IsActive:       true,
			AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := tx.SaveSeries(ctx, series); err != nil {
			return nil, err
		}
		return &series, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create series", slog.String("name", req.Name))
		return nil, err
	}
	s.LogInfo(ctx, "Series created", slog.String("series_id", series.SeriesID), slog.Int("total_supply", series.TotalSupply))
	return series, nil
}

// CreatePresale opens a raffle over part of a series' unminted supply.
func (s *catalogService) CreatePresale(ctx context.Context, adminID string, req dto.CreatePresaleRequest) (*domain.PreSale, error) {
	price, err := utils.ToNano(req.Price)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("%w: invalid ticket price %s", apperrors.ErrValidation, req.Price)
	}
	if req.TotalSupply <= 0 || req.MaxPerUser <= 0 {
		return nil, fmt.Errorf("%w: supply and per-user limit must be positive", apperrors.ErrValidation)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end date must follow start date", apperrors.ErrValidation)
	}

	presale, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.PreSale, error) {
		if err := s.requireAdmin(ctx, tx, adminID); err != nil {
			return nil, err
		}
		series, err := tx.FindSeries(ctx, req.SeriesID)
		if err != nil {
			return nil, err
		}
		if left := series.TotalSupply - series.MintedCount; req.TotalSupply > left {
			return nil, fmt.Errorf("%w: presale supply %d exceeds %d unminted", apperrors.ErrValidation, req.TotalSupply, left)
		}
		now := s.Now()
		presale := domain.PreSale{
			PresaleID:   uuid.NewString(),
			SeriesID:    series.SeriesID,
			Price:       price,
			TotalSupply: req.TotalSupply,
			MaxPerUser:  req.MaxPerUser,
			StartDate:   req.StartDate.UTC(),
			EndDate:     req.EndDate.UTC(),
			Status:      domain.PresaleOpen,
			AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := tx.SavePresale(ctx, presale); err != nil {
			return nil, err
		}
		return &presale, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create presale", slog.String("series_id", req.SeriesID))
		return nil, err
	}
	s.LogInfo(ctx, "Presale created", slog.String("presale_id", presale.PresaleID), slog.String("series_id", presale.SeriesID))
	return presale, nil
}
