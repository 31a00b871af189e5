package loader

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/worker"
)

// ErrInvalidAccountID marks a malformed account id from the request path.
// Handlers map it to a client error, not a server failure.
var ErrInvalidAccountID = errors.New("invalid account ID")

// ErrAccountNotFound marks a lookup of an account the worker does not know.
var ErrAccountNotFound = errors.New("account not found")

const (
	accountTradesLimit    = 50
	accountSnapshotsLimit = 100
)

// AccountDetailView is the view model for one account's detail page.
type AccountDetailView struct {
	Account   *worker.Account       `json:"account"`
	Trades    []worker.AccountTrade `json:"trades"`
	Snapshots []worker.Snapshot     `json:"snapshots"`
	Metrics   AccountMetricsView    `json:"metrics"`
}

// AccountMetricsView is derived from the account's aggregate counters.
type AccountMetricsView struct {
	TotalTrades     int     `json:"totalTrades"`
	WinningTrades   int     `json:"winningTrades"`
	LosingTrades    int     `json:"losingTrades"`
	WinRate         float64 `json:"winRate"` // percentage 0-100
	TotalProfitLoss float64 `json:"totalProfitLoss"`
}

// AccountLoader loads one worker account's detail page and runs its
// toggle/delete actions.
type AccountLoader struct {
	client worker.ClientInterface
	logger *zap.Logger
}

// NewAccountLoader creates a new AccountLoader.
func NewAccountLoader(client worker.ClientInterface, logger *zap.Logger) *AccountLoader {
	return &AccountLoader{client: client, logger: logger}
}

// ParseAccountID validates the raw path segment.
func ParseAccountID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidAccountID
	}
	return id, nil
}

// Load fetches the account, its trades and its snapshots concurrently.
// Unlike the page loaders this one reports failure to the caller: the
// handler distinguishes not-found and validation from server errors.
func (l *AccountLoader) Load(ctx context.Context, rawID string) (*AccountDetailView, error) {
	id, err := ParseAccountID(rawID)
	if err != nil {
		return nil, err
	}

	var (
		account   *worker.Account
		trades    []worker.AccountTrade
		snapshots []worker.Snapshot

		accountErr, tradesErr, snapshotsErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		account, accountErr = l.client.GetAccount(ctx, id)
	}()
	go func() {
		defer wg.Done()
		trades, tradesErr = l.client.AccountTrades(ctx, id, accountTradesLimit)
	}()
	go func() {
		defer wg.Done()
		snapshots, snapshotsErr = l.client.AccountSnapshots(ctx, id, accountSnapshotsLimit)
	}()
	wg.Wait()

	if err := firstError(accountErr, tradesErr, snapshotsErr); err != nil {
		l.logger.Error("Failed to load account", zap.Int64("account_id", id), zap.Error(err))
		return nil, err
	}

	if account == nil {
		return nil, ErrAccountNotFound
	}

	totalTrades := int(account.TotalTrades.Float())
	winning := int(account.WinningTrades.Float())
	losing := int(account.LosingTrades.Float())

	var winRate float64
	if totalTrades > 0 {
		winRate = float64(winning) / float64(totalTrades) * 100
	}

	if trades == nil {
		trades = []worker.AccountTrade{}
	}
	if snapshots == nil {
		snapshots = []worker.Snapshot{}
	}

	return &AccountDetailView{
		Account:   account,
		Trades:    trades,
		Snapshots: snapshots,
		Metrics: AccountMetricsView{
			TotalTrades:     totalTrades,
			WinningTrades:   winning,
			LosingTrades:    losing,
			WinRate:         winRate,
			TotalProfitLoss: account.TotalProfitLoss.Float(),
		},
	}, nil
}

// Toggle flips the account between active and paused.
func (l *AccountLoader) Toggle(ctx context.Context, rawID string) error {
	id, err := ParseAccountID(rawID)
	if err != nil {
		return err
	}
	if _, err := l.client.ToggleAccount(ctx, id); err != nil {
		l.logger.Error("Failed to toggle account", zap.Int64("account_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes the account and its history.
func (l *AccountLoader) Delete(ctx context.Context, rawID string) error {
	id, err := ParseAccountID(rawID)
	if err != nil {
		return err
	}
	if err := l.client.DeleteAccount(ctx, id); err != nil {
		l.logger.Error("Failed to delete account", zap.Int64("account_id", id), zap.Error(err))
		return err
	}
	return nil
}
