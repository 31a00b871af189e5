package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/worker"
)

// ErrInvalidForm marks malformed account-creation form data. Handlers map
// it to a client error, not a server failure.
var ErrInvalidForm = errors.New("invalid form data")

// CreateAccountFormView is the view model for the account creation page.
type CreateAccountFormView struct {
	Strategies []worker.Strategy  `json:"strategies"`
	Timeframes []worker.Timeframe `json:"timeframes"`
	Error      string             `json:"error,omitempty"`
}

// CreateAccountLoader loads the account creation form and handles its
// submission.
type CreateAccountLoader struct {
	client worker.ClientInterface
	logger *zap.Logger
}

// NewCreateAccountLoader creates a new CreateAccountLoader.
func NewCreateAccountLoader(client worker.ClientInterface, logger *zap.Logger) *CreateAccountLoader {
	return &CreateAccountLoader{client: client, logger: logger}
}

// Load fetches the strategy and timeframe catalogs concurrently. When the
// worker is unreachable the form still renders with a built-in timeframe
// list, so account creation stays discoverable.
func (l *CreateAccountLoader) Load(ctx context.Context) CreateAccountFormView {
	var (
		strategies []worker.Strategy
		timeframes []worker.Timeframe

		strategiesErr, timeframesErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		strategies, strategiesErr = l.client.Strategies(ctx)
	}()
	go func() {
		defer wg.Done()
		timeframes, timeframesErr = l.client.Timeframes(ctx)
	}()
	wg.Wait()

	if err := firstError(strategiesErr, timeframesErr); err != nil {
		l.logger.Error("Failed to load account form data", zap.Error(err))
		return CreateAccountFormView{
			Strategies: []worker.Strategy{},
			Timeframes: fallbackTimeframes(),
			Error:      err.Error(),
		}
	}

	return CreateAccountFormView{Strategies: strategies, Timeframes: timeframes}
}

// Submit validates the form, converts the 0-100 percentage inputs into the
// 0-1 fractions the worker stores, and creates the account.
func (l *CreateAccountLoader) Submit(ctx context.Context, form url.Values) (*worker.Account, error) {
	req, err := parseCreateAccountForm(form)
	if err != nil {
		return nil, err
	}

	account, err := l.client.CreateAccount(ctx, req)
	if err != nil {
		l.logger.Error("Failed to create account", zap.String("name", req.AccountName), zap.Error(err))
		return nil, err
	}
	return account, nil
}

func parseCreateAccountForm(form url.Values) (*worker.CreateAccountRequest, error) {
	name := form.Get("account_name")
	if name == "" {
		return nil, fmt.Errorf("%w: account_name is required", ErrInvalidForm)
	}

	strategy := form.Get("strategy")
	if strategy == "" {
		return nil, fmt.Errorf("%w: strategy is required", ErrInvalidForm)
	}

	timeframe := form.Get("timeframe")
	if timeframe == "" {
		timeframe = "1d"
	}

	initialBalance, err := strconv.ParseFloat(form.Get("initial_balance"), 64)
	if err != nil || initialBalance <= 0 {
		return nil, fmt.Errorf("%w: initial_balance must be a positive number", ErrInvalidForm)
	}

	positionSize, err := formPercent(form, "position_size_percent")
	if err != nil {
		return nil, err
	}
	if positionSize == nil {
		return nil, fmt.Errorf("%w: position_size_percent is required", ErrInvalidForm)
	}

	stopLoss, err := formPercent(form, "stop_loss_percent")
	if err != nil {
		return nil, err
	}
	if stopLoss == nil {
		return nil, fmt.Errorf("%w: stop_loss_percent is required", ErrInvalidForm)
	}

	takeProfit, err := formPercent(form, "take_profit_percent")
	if err != nil {
		return nil, err
	}

	trailingStopPercent, err := formPercent(form, "trailing_stop_percent")
	if err != nil {
		return nil, err
	}

	req := &worker.CreateAccountRequest{
		AccountName:         name,
		Strategy:            strategy,
		Timeframe:           timeframe,
		InitialBalance:      initialBalance,
		IsActive:            form.Get("is_active") == "on",
		PositionSizePercent: *positionSize,
		StopLossPercent:     *stopLoss,
		TakeProfitPercent:   takeProfit,
		TrailingStop:        form.Get("trailing_stop") == "on",
		TrailingStopPercent: trailingStopPercent,
	}

	if strategy == "convergent" {
		convergence, err := strconv.Atoi(form.Get("required_convergence"))
		if err != nil {
			return nil, fmt.Errorf("%w: required_convergence must be an integer", ErrInvalidForm)
		}
		req.RequiredConvergence = &convergence
	}

	return req, nil
}

// formPercent reads a 0-100 percentage field and returns it as a 0-1
// fraction, or nil when the field is absent.
func formPercent(form url.Values, key string) (*float64, error) {
	raw := form.Get(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidForm, key)
	}
	fraction := value / 100
	return &fraction, nil
}

func fallbackTimeframes() []worker.Timeframe {
	return []worker.Timeframe{
		{Value: "15m", Label: "15 Minutes", Description: "Very short-term (high frequency)"},
		{Value: "1h", Label: "1 Hour", Description: "Short-term intraday"},
		{Value: "4h", Label: "4 Hours", Description: "Medium-term intraday"},
		{Value: "1d", Label: "1 Day", Description: "Daily (default)"},
		{Value: "1w", Label: "1 Week", Description: "Weekly (swing trading)"},
	}
}
