package application

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-core-wave-layer/internal/domain"
)

func newTransactionService(t *testing.T, exec *fakeExecutor) *TransactionService {
	s := NewTransactionService(exec, testConfig(t), zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func transactionCreated(id string) map[string]any {
	return map[string]any{
		"moneyTransactionCreate": map[string]any{
			"didSucceed":  true,
			"transaction": map[string]any{"id": id},
		},
	}
}

func TestDeriveExternalID_Stable(t *testing.T) {
	a := DeriveExternalID("txn", "bakery", "2024-06-01", "rent", "500.00", "withdrawal")
	b := DeriveExternalID("txn", "bakery", "2024-06-01", "rent", "500.00", "withdrawal")
	c := DeriveExternalID("txn", "bakery", "2024-06-02", "rent", "500.00", "withdrawal")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "txn-")
}

func TestCreateTransaction_Withdrawal(t *testing.T) {
	exec := newFakeExecutor(t, transactionCreated("txn-1"))
	s := newTransactionService(t, exec)

	txn, err := s.CreateTransaction(context.Background(), CreateTransactionInput{
		BusinessKey: domain.BusinessBakery,
		Description: "Flour order",
		Amount:      125.5,
		Direction:   DirectionWithdrawal,
	})
	require.NoError(t, err)
	assert.Equal(t, "txn-1", txn.ID)
	assert.Equal(t, "125.50", txn.Amount)
	assert.Equal(t, "2024-06-01", txn.Date)

	input := exec.calls[0].variables["input"].(map[string]any)
	anchor := input["anchor"].(map[string]any)
	assert.Equal(t, "WITHDRAWAL", anchor["direction"])
	lines := input["lineItems"].([]map[string]any)
	assert.Equal(t, "DECREASE", lines[0]["balance"])
	assert.Equal(t, "line-bakery", lines[0]["accountId"])
}

func TestCreateTransaction_DepositWithExplicitFields(t *testing.T) {
	exec := newFakeExecutor(t, transactionCreated("txn-2"))
	s := newTransactionService(t, exec)

	txn, err := s.CreateTransaction(context.Background(), CreateTransactionInput{
		BusinessKey: domain.BusinessCatering,
		Date:        "2024-05-20",
		Description: "Catering deposit",
		Amount:      300,
		Direction:   DirectionDeposit,
		AccountID:   "acct-custom",
		ExternalID:  "ext-42",
	})
	require.NoError(t, err)
	require.NotNil(t, txn.ExternalID)
	assert.Equal(t, "ext-42", *txn.ExternalID)

	input := exec.calls[0].variables["input"].(map[string]any)
	assert.Equal(t, "ext-42", input["externalId"])
	assert.Equal(t, "2024-05-20", input["date"])
	lines := input["lineItems"].([]map[string]any)
	assert.Equal(t, "acct-custom", lines[0]["accountId"])
	assert.Equal(t, "INCREASE", lines[0]["balance"])
}

func TestCreateTransaction_UpstreamRejection(t *testing.T) {
	exec := newFakeExecutor(t, map[string]any{
		"moneyTransactionCreate": map[string]any{
			"didSucceed":  false,
			"inputErrors": []map[string]any{{"message": "account is archived"}},
		},
	})
	s := newTransactionService(t, exec)

	_, err := s.CreateTransaction(context.Background(), CreateTransactionInput{
		BusinessKey: domain.BusinessBakery,
		Description: "x",
		Amount:      1,
		Direction:   DirectionDeposit,
	})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, []string{"account is archived"}, upstream.Messages)
}
