// Package plaidfeed fetches bank-feed transactions through the Plaid API and
// maps them into the service's record shape.
package plaidfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/common"
	"github.com/accountant-ai/backend/internal/domain"
)

// Config holds Plaid credentials read once at startup.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
}

// Enabled reports whether credentials are configured at all.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.Secret != ""
}

// Client wraps the Plaid API for transaction fetching. It is only
// constructed when credentials are present.
type Client struct {
	client *plaid.APIClient
	retry  common.RetryOptions
	log    zerolog.Logger
}

// NewClient creates a Plaid client.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("plaidfeed: client ID and secret are required")
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "", "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("plaidfeed: invalid environment %q (sandbox or production)", cfg.Environment)
	}

	return &Client{
		client: plaid.NewAPIClient(configuration),
		retry:  common.DefaultRetryOptions(),
		log:    log,
	}, nil
}

// FetchTransactions pulls the last 30 days of transactions for an access
// token and maps them to the internal record shape.
func (c *Client) FetchTransactions(ctx context.Context, accessToken string) ([]domain.Transaction, error) {
	if accessToken == "" {
		return nil, common.Validationf("plaid access token is required")
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	var fetched []plaid.Transaction
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewTransactionsGetRequest(
			accessToken,
			startDate.Format("2006-01-02"),
			endDate.Format("2006-01-02"),
		)

		resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return fmt.Errorf("%w: plaid transactions: %w", common.ErrUnavailable, err)
		}
		fetched = resp.GetTransactions()
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}

	c.log.Info().Int("count", len(fetched)).Msg("Fetched transactions from Plaid")

	out := make([]domain.Transaction, 0, len(fetched))
	for _, pt := range fetched {
		out = append(out, mapTransaction(pt))
	}
	return out, nil
}

// mapTransaction converts one Plaid wire record. Plaid reports debits as
// positive amounts, so the sign flips to our negative-is-money-out
// convention.
func mapTransaction(pt plaid.Transaction) domain.Transaction {
	date, err := time.Parse("2006-01-02", pt.GetDate())
	if err != nil {
		date = time.Now()
	}

	channel := domain.ChannelOther
	switch pt.GetPaymentChannel() {
	case "in store":
		channel = domain.ChannelInStore
	case "online":
		channel = domain.ChannelOnline
	}

	return domain.Transaction{
		TransactionID:  pt.GetTransactionId(),
		Date:           date,
		Name:           pt.GetName(),
		MerchantName:   pt.GetMerchantName(),
		Amount:         -pt.GetAmount(),
		Category:       pt.GetCategory(),
		PaymentChannel: channel,
		Source:         domain.SourceBankFeed,
	}
}
