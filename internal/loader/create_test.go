package loader

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/worker"
)

func TestCreateAccountFormLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		client := &fakeWorker{
			strategiesFn: func(ctx context.Context) ([]worker.Strategy, error) {
				return []worker.Strategy{{Value: "momentum", Label: "Momentum"}}, nil
			},
			timeframesFn: func(ctx context.Context) ([]worker.Timeframe, error) {
				return []worker.Timeframe{{Value: "1d", Label: "1 Day"}}, nil
			},
		}

		view := NewCreateAccountLoader(client, zap.NewNop()).Load(ctx)

		assert.Empty(t, view.Error)
		assert.Len(t, view.Strategies, 1)
		assert.Len(t, view.Timeframes, 1)
	})

	t.Run("FallsBackToBuiltinTimeframes", func(t *testing.T) {
		client := &fakeWorker{
			strategiesFn: func(ctx context.Context) ([]worker.Strategy, error) {
				return nil, errBoom
			},
		}

		view := NewCreateAccountLoader(client, zap.NewNop()).Load(ctx)

		assert.NotEmpty(t, view.Error)
		assert.Empty(t, view.Strategies)
		require.Len(t, view.Timeframes, 5)
		assert.Equal(t, "1d", view.Timeframes[3].Value)
	})
}

func validForm() url.Values {
	return url.Values{
		"account_name":          {"my-account"},
		"strategy":              {"momentum"},
		"timeframe":             {"4h"},
		"initial_balance":       {"10000"},
		"is_active":             {"on"},
		"position_size_percent": {"25"},
		"stop_loss_percent":     {"5"},
	}
}

func TestSubmitCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("NormalizesPercentages", func(t *testing.T) {
		var captured *worker.CreateAccountRequest
		client := &fakeWorker{
			createFn: func(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error) {
				captured = req
				return &worker.Account{ID: 1, AccountName: req.AccountName}, nil
			},
		}
		loader := NewCreateAccountLoader(client, zap.NewNop())

		form := validForm()
		form.Set("take_profit_percent", "12")

		account, err := loader.Submit(ctx, form)

		require.NoError(t, err)
		assert.Equal(t, int64(1), account.ID)
		require.NotNil(t, captured)
		assert.Equal(t, "my-account", captured.AccountName)
		assert.Equal(t, "4h", captured.Timeframe)
		assert.True(t, captured.IsActive)
		assert.InDelta(t, 0.25, captured.PositionSizePercent, 1e-9)
		assert.InDelta(t, 0.05, captured.StopLossPercent, 1e-9)
		require.NotNil(t, captured.TakeProfitPercent)
		assert.InDelta(t, 0.12, *captured.TakeProfitPercent, 1e-9)
		assert.Nil(t, captured.TrailingStopPercent)
		assert.Nil(t, captured.RequiredConvergence)
	})

	t.Run("OptionalFieldsStayNil", func(t *testing.T) {
		var captured *worker.CreateAccountRequest
		client := &fakeWorker{
			createFn: func(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error) {
				captured = req
				return &worker.Account{}, nil
			},
		}
		loader := NewCreateAccountLoader(client, zap.NewNop())

		_, err := loader.Submit(ctx, validForm())

		require.NoError(t, err)
		assert.Nil(t, captured.TakeProfitPercent)
		assert.False(t, captured.TrailingStop)
	})

	t.Run("DefaultsTimeframe", func(t *testing.T) {
		var captured *worker.CreateAccountRequest
		client := &fakeWorker{
			createFn: func(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error) {
				captured = req
				return &worker.Account{}, nil
			},
		}
		loader := NewCreateAccountLoader(client, zap.NewNop())

		form := validForm()
		form.Del("timeframe")

		_, err := loader.Submit(ctx, form)

		require.NoError(t, err)
		assert.Equal(t, "1d", captured.Timeframe)
	})

	t.Run("ConvergentStrategyNeedsConvergence", func(t *testing.T) {
		loader := NewCreateAccountLoader(&fakeWorker{}, zap.NewNop())

		form := validForm()
		form.Set("strategy", "convergent")

		_, err := loader.Submit(ctx, form)
		assert.ErrorIs(t, err, ErrInvalidForm)

		form.Set("required_convergence", "3")
		var captured *worker.CreateAccountRequest
		client := &fakeWorker{
			createFn: func(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error) {
				captured = req
				return &worker.Account{}, nil
			},
		}
		_, err = NewCreateAccountLoader(client, zap.NewNop()).Submit(ctx, form)
		require.NoError(t, err)
		require.NotNil(t, captured.RequiredConvergence)
		assert.Equal(t, 3, *captured.RequiredConvergence)
	})

	t.Run("Validation", func(t *testing.T) {
		loader := NewCreateAccountLoader(&fakeWorker{}, zap.NewNop())

		testCases := []struct {
			name   string
			mutate func(url.Values)
		}{
			{"MissingName", func(f url.Values) { f.Del("account_name") }},
			{"MissingStrategy", func(f url.Values) { f.Del("strategy") }},
			{"BadBalance", func(f url.Values) { f.Set("initial_balance", "zero") }},
			{"NegativeBalance", func(f url.Values) { f.Set("initial_balance", "-5") }},
			{"MissingPositionSize", func(f url.Values) { f.Del("position_size_percent") }},
			{"BadStopLoss", func(f url.Values) { f.Set("stop_loss_percent", "five") }},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				form := validForm()
				tc.mutate(form)

				_, err := loader.Submit(ctx, form)

				assert.ErrorIs(t, err, ErrInvalidForm)
			})
		}
	})

	t.Run("WorkerFailurePropagates", func(t *testing.T) {
		client := &fakeWorker{
			createFn: func(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error) {
				return nil, errBoom
			},
		}
		loader := NewCreateAccountLoader(client, zap.NewNop())

		_, err := loader.Submit(ctx, validForm())

		assert.ErrorIs(t, err, errBoom)
	})
}
