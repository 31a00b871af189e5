package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tradincode-dashboard-go/internal/config"
)

// ClientInterface defines the interface for the worker API client.
// Loaders depend on this so tests can swap in a fake.
type ClientInterface interface {
	Health(ctx context.Context) (*HealthStatus, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*Account, error)
	UpdateAccount(ctx context.Context, id int64, req *CreateAccountRequest) (*Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	ToggleAccount(ctx context.Context, id int64) (*Account, error)
	AccountTrades(ctx context.Context, id int64, limit int) ([]AccountTrade, error)
	AccountSnapshots(ctx context.Context, id int64, limit int) ([]Snapshot, error)
	Rankings(ctx context.Context) ([]RankingEntry, error)
	Strategies(ctx context.Context) ([]Strategy, error)
	Timeframes(ctx context.Context) ([]Timeframe, error)
}

// Client is a thin client for the worker REST API that computes indicators
// and runs the multi-account ranking simulation. It does no retrying and
// sets no request deadline of its own: transient failures surface directly
// to the caller, which degrades the page instead of crashing it.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new worker API client.
func NewClient(cfg *config.Worker, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest executes one request against the worker API. Non-2xx responses
// become errors carrying the best available message: the `error` or
// `message` field when the body is JSON, the status line otherwise.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing worker API request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("worker API request failed: %w", err)
	}

	if resp.IsError() {
		return nil, c.responseError(resp)
	}

	return resp, nil
}

func (c *Client) responseError(resp *resty.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil {
		if payload.Error != "" {
			return errors.New(payload.Error)
		}
		if payload.Message != "" {
			return errors.New(payload.Message)
		}
	}
	return fmt.Errorf("%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
}

// Health checks worker connectivity.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req := c.client.R().SetContext(ctx).SetResult(&HealthStatus{})
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", req)
	if err != nil {
		return nil, fmt.Errorf("failed to check worker health: %w", err)
	}
	return resp.Result().(*HealthStatus), nil
}

// ListAccounts fetches all paper trading accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	req := c.client.R().SetContext(ctx).SetResult(&accounts)
	if _, err := c.doRequest(ctx, http.MethodGet, "/accounts", req); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount fetches a single account. A 204 response means the account
// does not exist and yields (nil, nil).
func (c *Client) GetAccount(ctx context.Context, id int64) (*Account, error) {
	req := c.client.R().SetContext(ctx).SetResult(&Account{})
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	return resp.Result().(*Account), nil
}

// CreateAccount creates a new account on the worker.
func (c *Client) CreateAccount(ctx context.Context, reqBody *CreateAccountRequest) (*Account, error) {
	req := c.client.R().SetContext(ctx).SetBody(reqBody).SetResult(&Account{})
	resp, err := c.doRequest(ctx, http.MethodPost, "/accounts", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	c.logger.Info("Created worker account", zap.String("name", reqBody.AccountName))
	return resp.Result().(*Account), nil
}

// UpdateAccount replaces an account's settings.
func (c *Client) UpdateAccount(ctx context.Context, id int64, reqBody *CreateAccountRequest) (*Account, error) {
	req := c.client.R().SetContext(ctx).SetBody(reqBody).SetResult(&Account{})
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/accounts/%d", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to update account %d: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	return resp.Result().(*Account), nil
}

// DeleteAccount removes an account and its history.
func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	req := c.client.R().SetContext(ctx)
	if _, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%d", id), req); err != nil {
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
	return nil
}

// ToggleAccount flips an account between active and paused.
func (c *Client) ToggleAccount(ctx context.Context, id int64) (*Account, error) {
	req := c.client.R().SetContext(ctx).SetResult(&Account{})
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/accounts/%d/toggle", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle account %d: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	return resp.Result().(*Account), nil
}

// AccountTrades fetches the most recent trades of one account.
func (c *Client) AccountTrades(ctx context.Context, id int64, limit int) ([]AccountTrade, error) {
	var trades []AccountTrade
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&trades)
	if _, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d/trades", id), req); err != nil {
		return nil, fmt.Errorf("failed to get trades for account %d: %w", id, err)
	}
	return trades, nil
}

// AccountSnapshots fetches the portfolio value series of one account.
func (c *Client) AccountSnapshots(ctx context.Context, id int64, limit int) ([]Snapshot, error) {
	var snapshots []Snapshot
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&snapshots)
	if _, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d/snapshots", id), req); err != nil {
		return nil, fmt.Errorf("failed to get snapshots for account %d: %w", id, err)
	}
	return snapshots, nil
}

// Rankings fetches the account leaderboard.
func (c *Client) Rankings(ctx context.Context) ([]RankingEntry, error) {
	var rankings []RankingEntry
	req := c.client.R().SetContext(ctx).SetResult(&rankings)
	if _, err := c.doRequest(ctx, http.MethodGet, "/rankings", req); err != nil {
		return nil, fmt.Errorf("failed to get rankings: %w", err)
	}
	return rankings, nil
}

// Strategies fetches the strategies the worker can run.
func (c *Client) Strategies(ctx context.Context) ([]Strategy, error) {
	var strategies []Strategy
	req := c.client.R().SetContext(ctx).SetResult(&strategies)
	if _, err := c.doRequest(ctx, http.MethodGet, "/strategies", req); err != nil {
		return nil, fmt.Errorf("failed to get strategies: %w", err)
	}
	return strategies, nil
}

// Timeframes fetches the candle timeframes accounts can trade on.
func (c *Client) Timeframes(ctx context.Context) ([]Timeframe, error) {
	var timeframes []Timeframe
	req := c.client.R().SetContext(ctx).SetResult(&timeframes)
	if _, err := c.doRequest(ctx, http.MethodGet, "/timeframes", req); err != nil {
		return nil, fmt.Errorf("failed to get timeframes: %w", err)
	}
	return timeframes, nil
}
