package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
	"atlas-core-wave-layer/internal/infrastructure/wave"
	"atlas-core-wave-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Transaction directions accepted from callers.
const (
	DirectionDeposit    = "deposit"
	DirectionWithdrawal = "withdrawal"
)

// DeriveExternalID builds a stable idempotency identifier from
// caller-supplied fields, so a retried request maps to the same upstream
// transaction.
func DeriveExternalID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return parts[0] + "-" + hex.EncodeToString(sum[:8])
}

// TransactionService translates generic money transactions into Wave GraphQL calls.
type TransactionService struct {
	exec   ports.GraphQLExecutor
	cfg    *config.Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(exec ports.GraphQLExecutor, cfg *config.Config, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		exec:   exec,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// CreateTransactionInput is a validated create-transaction request body.
type CreateTransactionInput struct {
	BusinessKey domain.BusinessKey
	Date        string
	Description string
	Amount      float64
	Direction   string
	AccountID   string
	ExternalID  string
}

// CreateTransaction records a money transaction against the business's anchor
// account, with one ledger line against the given account (defaulting to the
// configured line-item account). A deposit increases the line account's
// balance; a withdrawal decreases it.
func (s *TransactionService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (domain.Transaction, error) {
	bc, err := s.cfg.Business(in.BusinessKey)
	if err != nil {
		return domain.Transaction{}, err
	}
	if in.Date == "" {
		in.Date = s.now().UTC().Format(dateLayout)
	}
	if in.AccountID == "" {
		in.AccountID = bc.LineItemAccountID
	}

	amount := decimal.NewFromFloat(in.Amount).StringFixed(2)
	direction := "DEPOSIT"
	balance := "INCREASE"
	if in.Direction == DirectionWithdrawal {
		direction = "WITHDRAWAL"
		balance = "DECREASE"
	}
	externalID := in.ExternalID
	if externalID == "" {
		externalID = DeriveExternalID("txn", in.BusinessKey.String(), in.Date, in.Description, amount, in.Direction)
	}

	input := map[string]any{
		"businessId":  bc.BusinessID,
		"externalId":  externalID,
		"date":        in.Date,
		"description": in.Description,
		"anchor": map[string]any{
			"accountId": bc.AnchorAccountID,
			"amount":    amount,
			"direction": direction,
		},
		"lineItems": []map[string]any{{
			"accountId": in.AccountID,
			"amount":    amount,
			"balance":   balance,
		}},
	}

	var data wave.MoneyTransactionCreateData
	if err := s.exec.Execute(ctx, wave.MutationMoneyTransactionCreate, map[string]any{"input": input}, &data); err != nil {
		return domain.Transaction{}, err
	}
	result := data.MoneyTransactionCreate
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return domain.Transaction{}, &UpstreamError{Op: "moneyTransactionCreate", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	if result.Transaction == nil {
		return domain.Transaction{}, wave.ErrMissingData
	}

	s.logger.Info().
		Str("businessKey", in.BusinessKey.String()).
		Str("transactionId", result.Transaction.ID).
		Str("amount", amount).
		Str("direction", in.Direction).
		Msg("Created money transaction")

	return domain.Transaction{
		ID:          result.Transaction.ID,
		ExternalID:  &externalID,
		Date:        in.Date,
		Description: in.Description,
		Amount:      amount,
		Direction:   in.Direction,
	}, nil
}
