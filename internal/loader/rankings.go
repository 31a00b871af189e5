package loader

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/worker"
)

// snapshotComparisonLimit is how many snapshots per account the comparison
// chart plots.
const snapshotComparisonLimit = 50

// RankingsView is the view model for the rankings page.
type RankingsView struct {
	Rankings      []worker.RankingEntry `json:"rankings"`
	Accounts      []worker.Account      `json:"accounts"`
	SnapshotsData []AccountSnapshots    `json:"snapshotsData"`
	Error         string                `json:"error,omitempty"`
}

// AccountSnapshots is the snapshot series of one account for the
// comparison chart.
type AccountSnapshots struct {
	AccountID   int64             `json:"accountId"`
	AccountName string            `json:"accountName"`
	Strategy    string            `json:"strategy"`
	IsActive    bool              `json:"isActive"`
	Snapshots   []worker.Snapshot `json:"snapshots"`
}

// RankingsLoader loads the account leaderboard page.
type RankingsLoader struct {
	client worker.ClientInterface
	logger *zap.Logger
}

// NewRankingsLoader creates a new RankingsLoader.
func NewRankingsLoader(client worker.ClientInterface, logger *zap.Logger) *RankingsLoader {
	return &RankingsLoader{client: client, logger: logger}
}

// Load fetches rankings and accounts concurrently, then the snapshot series
// of every account for the comparison chart. A failed snapshot fetch drops
// that one account from the chart instead of failing the page.
func (l *RankingsLoader) Load(ctx context.Context) RankingsView {
	var (
		rankings []worker.RankingEntry
		accounts []worker.Account

		rankingsErr, accountsErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rankings, rankingsErr = l.client.Rankings(ctx)
	}()
	go func() {
		defer wg.Done()
		accounts, accountsErr = l.client.ListAccounts(ctx)
	}()
	wg.Wait()

	if err := firstError(rankingsErr, accountsErr); err != nil {
		l.logger.Error("Failed to load rankings", zap.Error(err))
		return RankingsView{
			Rankings:      []worker.RankingEntry{},
			Accounts:      []worker.Account{},
			SnapshotsData: []AccountSnapshots{},
			Error:         err.Error(),
		}
	}

	allSnapshots := make([][]worker.Snapshot, len(accounts))
	wg.Add(len(accounts))
	for i, acc := range accounts {
		go func(i int, id int64) {
			defer wg.Done()
			snapshots, err := l.client.AccountSnapshots(ctx, id, snapshotComparisonLimit)
			if err != nil {
				l.logger.Warn("Failed to load snapshots for account", zap.Int64("account_id", id), zap.Error(err))
				return
			}
			allSnapshots[i] = snapshots
		}(i, acc.ID)
	}
	wg.Wait()

	view := RankingsView{
		Rankings:      rankings,
		Accounts:      accounts,
		SnapshotsData: make([]AccountSnapshots, 0, len(accounts)),
	}
	for i, acc := range accounts {
		if len(allSnapshots[i]) == 0 {
			continue
		}
		view.SnapshotsData = append(view.SnapshotsData, AccountSnapshots{
			AccountID:   acc.ID,
			AccountName: acc.AccountName,
			Strategy:    acc.Strategy,
			IsActive:    acc.IsActive,
			Snapshots:   allSnapshots[i],
		})
	}

	return view
}
