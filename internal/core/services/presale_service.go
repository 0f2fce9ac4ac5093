package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/platform/random"
	"github.com/google/uuid"
)

// presaleService runs raffle pledges and draws.
type presaleService struct {
	BaseService
	executor *Executor
}

// NewPresaleService creates a presale service running its operations through executor.
func NewPresaleService(executor *Executor, opts ...Option) portssvc.PresaleSvcFacade {
	return &presaleService{
		BaseService: newBaseService(opts),
		executor:    executor,
	}
}

var _ portssvc.PresaleSvcFacade = (*presaleService)(nil)

// Pledge locks ticketCount × price from the account until the draw.
func (s *presaleService) Pledge(ctx context.Context, presaleID, accountID string, ticketCount int) (*domain.PresalePledge, error) {
	if ticketCount <= 0 {
		return nil, fmt.Errorf("%w: ticket count must be positive", apperrors.ErrValidation)
	}
	pledge, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.PresalePledge, error) {
		now := s.Now()
		presale, err := tx.FindPresaleForUpdate(ctx, presaleID)
		if err != nil {
			return nil, err
		}
		if !presale.AcceptsPledges(now) {
			return nil, fmt.Errorf("%w: presale %s is not accepting pledges", apperrors.ErrInvalidState, presaleID)
		}
		pledged, err := tx.SumPledged(ctx, presaleID, accountID)
		if err != nil {
			return nil, err
		}
		if pledged+ticketCount > presale.MaxPerUser {
			return nil, fmt.Errorf("%w: %d tickets already pledged, limit is %d", apperrors.ErrValidation, pledged, presale.MaxPerUser)
		}
		cost := int64(ticketCount) * presale.Price
		if _, err := tx.AdjustBalance(ctx, accountID, -cost, now); err != nil {
			return nil, err
		}

		pledge := domain.PresalePledge{
			PledgeID:     uuid.NewString(),
			PresaleID:    presaleID,
			AccountID:    accountID,
			AmountLocked: ticketCount,
			Status:       domain.PledgePending,
			AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := tx.SavePledge(ctx, pledge); err != nil {
			return nil, err
		}
		entry := domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			AccountID:     accountID,
			Type:          domain.EntryPresaleLock,
			Amount:        -cost,
			Status:        domain.EntryCompleted,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
			return nil, err
		}
		return &pledge, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Pledge failed", slog.String("presale_id", presaleID))
		return nil, err
	}

	s.LogInfo(ctx, "Presale pledge locked", slog.String("presale_id", presaleID), slog.Int("tickets", ticketCount))
	return pledge, nil
}

type drawOutcome struct {
	result      domain.DrawResult
	externalIDs map[string]string // account id -> external id
}

// Draw resolves every pending pledge in one unit of work. Tickets are shuffled
// with Fisher–Yates and the first winLimit win, so chances are proportional to
// tickets held. Every win mints a random free number; losses are refunded.
func (s *presaleService) Draw(ctx context.Context, presaleID, adminID string) (*domain.DrawResult, error) {
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (drawOutcome, error) {
		now := s.Now()
		admin, err := tx.FindAccount(ctx, adminID)
		if err != nil {
			return drawOutcome{}, err
		}
		if !s.IsAdmin(admin) {
			return drawOutcome{}, fmt.Errorf("%w: draw requires an admin", apperrors.ErrForbidden)
		}
		presale, err := tx.FindPresaleForUpdate(ctx, presaleID)
		if err != nil {
			return drawOutcome{}, err
		}
		if presale.Status == domain.PresaleDrawn {
			return drawOutcome{}, fmt.Errorf("%w: presale %s was already drawn", apperrors.ErrConflict, presaleID)
		}
		if now.Before(presale.EndDate) {
			return drawOutcome{}, fmt.Errorf("%w: presale %s ends at %s", apperrors.ErrInvalidState, presaleID, presale.EndDate)
		}
		series, err := tx.FindSeries(ctx, presale.SeriesID)
		if err != nil {
			return drawOutcome{}, err
		}
		pledges, err := tx.ListPendingPledges(ctx, presaleID)
		if err != nil {
			return drawOutcome{}, err
		}
		taken, err := tx.ListMintNumbers(ctx, series.SeriesID)
		if err != nil {
			return drawOutcome{}, err
		}
		available := series.AvailableMintNumbers(taken)

		// One ticket per locked unit, each naming its pledge.
		var pool []int
		for i, p := range pledges {
			for range p.AmountLocked {
				pool = append(pool, i)
			}
		}
		winLimit := min(presale.Remaining(), len(available), len(pool))
		random.Shuffle(s.rng, pool)
		wins := make([]int, len(pledges))
		for _, idx := range pool[:winLimit] {
			wins[idx]++
		}
		random.Shuffle(s.rng, available)

		out := drawOutcome{
			result:      domain.DrawResult{PresaleID: presaleID, WinLimit: winLimit, Tickets: len(pool)},
			externalIDs: map[string]string{},
		}
		outcomes := make([]domain.PledgeOutcome, len(pledges))
		for i, pledge := range pledges {
			outcomes[i] = domain.PledgeOutcome{PledgeID: pledge.PledgeID, AccountID: pledge.AccountID, Wins: wins[i]}
			outcomes[i].Losses = pledge.AmountLocked - wins[i]
			outcomes[i].Refund = int64(outcomes[i].Losses) * presale.Price
		}

		// Refunds lock accounts, so they run in account id order and before any series write.
		byAccount := make([]int, len(pledges))
		for i := range byAccount {
			byAccount[i] = i
		}
		slices.SortStableFunc(byAccount, func(a, b int) int {
			return strings.Compare(pledges[a].AccountID, pledges[b].AccountID)
		})
		for _, i := range byAccount {
			if outcomes[i].Refund > 0 {
				if err := refundLosses(ctx, tx, pledges[i], outcomes[i].Refund, now); err != nil {
					return drawOutcome{}, err
				}
			}
		}

		next := 0
		for i := range pledges {
			pledge := pledges[i]
			outcome := outcomes[i]

			for range wins[i] {
				item, err := s.awardTicket(ctx, tx, series, presale, pledge.AccountID, available[next], now)
				if err != nil {
					return drawOutcome{}, err
				}
				next++
				outcome.MintNumbers = append(outcome.MintNumbers, item.MintNumber)
			}

			pledge.Wins = wins[i]
			pledge.Status = domain.PledgeLost
			if pledge.Wins > 0 {
				pledge.Status = domain.PledgeWon
			}
			pledge.LastUpdatedAt = now
			if err := tx.UpdatePledge(ctx, pledge); err != nil {
				return drawOutcome{}, err
			}
			outcome.Status = pledge.Status
			out.result.Outcomes = append(out.result.Outcomes, outcome)

			if _, seen := out.externalIDs[pledge.AccountID]; !seen {
				acc, err := tx.FindAccount(ctx, pledge.AccountID)
				if err != nil {
					return drawOutcome{}, err
				}
				out.externalIDs[pledge.AccountID] = acc.ExternalID
			}
		}

		presale.SoldCount += winLimit
		presale.Status = domain.PresaleDrawn
		presale.LastUpdatedAt = now
		if err := tx.UpdatePresale(ctx, *presale); err != nil {
			return drawOutcome{}, err
		}
		return out, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Presale draw failed", slog.String("presale_id", presaleID))
		return nil, err
	}

	s.LogInfo(ctx, "Presale drawn",
		slog.String("presale_id", presaleID),
		slog.Int("tickets", out.result.Tickets),
		slog.Int("winners", out.result.WinLimit))
	for _, o := range out.result.Outcomes {
		s.notify(ctx, out.externalIDs[o.AccountID], external.KindPresaleResult, map[string]any{
			"presaleID":   presaleID,
			"wins":        o.Wins,
			"losses":      o.Losses,
			"refund":      o.Refund,
			"mintNumbers": o.MintNumbers,
		})
	}
	s.emit(ctx, external.EventPresaleDrawn, map[string]any{"presaleID": presaleID, "winners": out.result.WinLimit})
	return &out.result, nil
}

// awardTicket mints number to the winner and records the presale order. The ticket
// price was already debited at pledge time, so no balance moves here.
func (s *presaleService) awardTicket(ctx context.Context, tx portsrepo.Tx, series *domain.Series, presale *domain.PreSale, accountID string, number int, now time.Time) (domain.Item, error) {
	item, err := mintItem(ctx, tx, series, accountID, number, now)
	if err != nil {
		return domain.Item{}, err
	}
	order := domain.Order{
		OrderID:   uuid.NewString(),
		ItemID:    item.ItemID,
		SeriesID:  series.SeriesID,
		BuyerID:   accountID,
		Price:     presale.Price,
		Type:      domain.OrderPresale,
		CreatedAt: now,
	}
	if err := tx.SaveOrder(ctx, order); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func refundLosses(ctx context.Context, tx portsrepo.Tx, pledge domain.PresalePledge, refund int64, now time.Time) error {
	if _, err := tx.AdjustBalance(ctx, pledge.AccountID, refund, now); err != nil {
		return err
	}
	return tx.SaveLedgerEntry(ctx, domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		AccountID:     pledge.AccountID,
		Type:          domain.EntryRefund,
		Amount:        refund,
		Status:        domain.EntryCompleted,
		CreatedAt:     now,
		LastUpdatedAt: now,
	})
}
