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

func fixedNow() time.Time {
	return time.Date(2024, 1, 28, 15, 4, 5, 0, time.UTC)
}

func newInvoiceService(t *testing.T, exec *fakeExecutor) *InvoiceService {
	s := NewInvoiceService(exec, testConfig(t), zerolog.Nop())
	s.now = fixedNow
	return s
}

func TestApplyDefaults_Dates(t *testing.T) {
	cfg := testConfig(t)
	bc, err := cfg.Business(domain.BusinessBakery)
	require.NoError(t, err)

	in := CreateInvoiceInput{
		BusinessKey: domain.BusinessBakery,
		CustomerID:  "cust-1",
		Items:       []InvoiceItemInput{{UnitPrice: 10}},
	}
	out, err := in.ApplyDefaults(fixedNow(), bc)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-28", out.InvoiceDate)
	// Due date crosses the month boundary.
	assert.Equal(t, "2024-02-04", out.DueDate)
	assert.Equal(t, "USD", out.Currency)
	assert.Equal(t, float64(1), out.Items[0].Quantity)
	assert.Equal(t, "product-bakery", out.Items[0].ProductID)
}

func TestApplyDefaults_YearBoundary(t *testing.T) {
	cfg := testConfig(t)
	bc, err := cfg.Business(domain.BusinessBakery)
	require.NoError(t, err)

	in := CreateInvoiceInput{InvoiceDate: "2024-12-28", Items: []InvoiceItemInput{}}
	out, err := in.ApplyDefaults(fixedNow(), bc)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-04", out.DueDate)
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := testConfig(t)
	bc, _ := cfg.Business(domain.BusinessBakery)

	in := CreateInvoiceInput{
		InvoiceDate: "2024-03-01",
		DueDate:     "2024-03-15",
		Currency:    "CAD",
		Items:       []InvoiceItemInput{{ProductID: "p-9", Quantity: 3, UnitPrice: 5}},
	}
	out, err := in.ApplyDefaults(fixedNow(), bc)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", out.InvoiceDate)
	assert.Equal(t, "2024-03-15", out.DueDate)
	assert.Equal(t, "CAD", out.Currency)
	assert.Equal(t, "p-9", out.Items[0].ProductID)
	assert.Equal(t, float64(3), out.Items[0].Quantity)
}

func TestCreateInvoice_ItemsMapOneToOne(t *testing.T) {
	exec := newFakeExecutor(t, map[string]any{
		"invoiceCreate": map[string]any{
			"didSucceed": true,
			"invoice":    invoiceNode("inv-1", "2024-12", "DRAFT", "61.00", "61.00"),
		},
	})
	s := newInvoiceService(t, exec)

	_, err := s.CreateInvoice(context.Background(), CreateInvoiceInput{
		BusinessKey: domain.BusinessBakery,
		CustomerID:  "cust-1",
		Items: []InvoiceItemInput{
			{ProductID: "p-1", Quantity: 2, UnitPrice: 10.5},
			{UnitPrice: 25},
			{ProductID: "p-3", Quantity: 1, UnitPrice: 15, Description: "delivery"},
		},
	})
	require.NoError(t, err)
	require.Len(t, exec.calls, 1)

	input := exec.calls[0].variables["input"].(map[string]any)
	assert.Equal(t, "biz-bakery", input["businessId"])
	items := input["items"].([]map[string]any)
	require.Len(t, items, 3)

	assert.Equal(t, "p-1", items[0]["productId"])
	assert.Equal(t, "2", items[0]["quantity"])
	assert.Equal(t, "10.50", items[0]["unitPrice"])

	// Omitted quantity defaults to 1, omitted product to the generic product.
	assert.Equal(t, "product-bakery", items[1]["productId"])
	assert.Equal(t, "1", items[1]["quantity"])
	assert.Equal(t, "25.00", items[1]["unitPrice"])

	assert.Equal(t, "delivery", items[2]["description"])
}

func TestCreateInvoice_UpstreamRejectionKeepsAllMessages(t *testing.T) {
	exec := newFakeExecutor(t, map[string]any{
		"invoiceCreate": map[string]any{
			"didSucceed": false,
			"inputErrors": []map[string]any{
				{"message": "customer does not exist", "code": "NOT_FOUND"},
				{"message": "currency not enabled", "code": "INVALID"},
			},
		},
	})
	s := newInvoiceService(t, exec)

	_, err := s.CreateInvoice(context.Background(), CreateInvoiceInput{
		BusinessKey: domain.BusinessBakery,
		CustomerID:  "cust-x",
		Items:       []InvoiceItemInput{{UnitPrice: 10}},
	})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "invoiceCreate", upstream.Op)
	assert.Equal(t, []string{"customer does not exist", "currency not enabled"}, upstream.Messages)
}

func TestApproveInvoice(t *testing.T) {
	exec := newFakeExecutor(t, map[string]any{
		"invoiceApprove": map[string]any{
			"didSucceed": true,
			"invoice":    invoiceNode("inv-1", "2024-12", "SAVED", "61.00", "61.00"),
		},
	})
	s := newInvoiceService(t, exec)

	invoice, err := s.ApproveInvoice(context.Background(), domain.BusinessCatering, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "SAVED", invoice.Status)

	input := exec.calls[0].variables["input"].(map[string]any)
	assert.Equal(t, "inv-1", input["invoiceId"])
}

func TestListInvoices_FlattensNodes(t *testing.T) {
	exec := newFakeExecutor(t, invoicesPage(1,
		invoiceNode("inv-1", "1001", "PAID", "100.00", "0.00"),
		invoiceNode("inv-2", "1002", "SENT", "50.00", "50.00"),
	))
	s := newInvoiceService(t, exec)

	list, err := s.ListInvoices(context.Background(), ListInvoicesInput{BusinessKey: domain.BusinessBakery})
	require.NoError(t, err)
	require.Len(t, list.Invoices, 2)
	assert.Equal(t, "inv-1", list.Invoices[0].ID)
	assert.Equal(t, "100.00", *list.Invoices[0].Total)
	assert.Equal(t, 2, list.TotalCount)

	// Defaults applied to paging.
	assert.Equal(t, 1, exec.calls[0].variables["page"])
	assert.Equal(t, 20, exec.calls[0].variables["pageSize"])
}

func TestAddPayment_ThreeCallSequence(t *testing.T) {
	exec := newFakeExecutor(t,
		invoicesPage(1, invoiceNode("inv-1", "1001", "SENT", "100.00", "100.00")),
		map[string]any{
			"moneyTransactionCreate": map[string]any{
				"didSucceed":  true,
				"transaction": map[string]any{"id": "txn-9"},
			},
		},
		invoicesPage(1, invoiceNode("inv-1", "1001", "PAID", "100.00", "0.00")),
	)
	s := newInvoiceService(t, exec)

	result, err := s.AddPayment(context.Background(), AddPaymentInput{
		BusinessKey:   domain.BusinessBakery,
		InvoiceNumber: "1001",
		Amount:        100,
	})
	require.NoError(t, err)
	require.Len(t, exec.calls, 3)

	assert.Equal(t, "txn-9", result.TransactionID)
	assert.Equal(t, "PAID", result.Invoice.Status)
	assert.Equal(t, "0.00", *result.Invoice.AmountDue)

	input := exec.calls[1].variables["input"].(map[string]any)
	anchor := input["anchor"].(map[string]any)
	assert.Equal(t, "anchor-bakery", anchor["accountId"])
	assert.Equal(t, "DEPOSIT", anchor["direction"])
	assert.Equal(t, "100.00", anchor["amount"])
	lines := input["lineItems"].([]map[string]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "line-bakery", lines[0]["accountId"])
	assert.Equal(t, "INCREASE", lines[0]["balance"])
	assert.NotEmpty(t, input["externalId"])
	// Method defaults into the transaction description.
	assert.Contains(t, input["description"], "bank_transfer")
	assert.Equal(t, "2024-01-28", input["date"])
}

func TestAddPayment_InvoiceNotFound(t *testing.T) {
	exec := newFakeExecutor(t, invoicesPage(1))
	s := newInvoiceService(t, exec)

	_, err := s.AddPayment(context.Background(), AddPaymentInput{
		BusinessKey:   domain.BusinessBakery,
		InvoiceNumber: "9999",
		Amount:        10,
	})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.Len(t, exec.calls, 1)
}

func TestAddPayment_RefetchFailureNamesTransaction(t *testing.T) {
	exec := newFakeExecutor(t,
		invoicesPage(1, invoiceNode("inv-1", "1001", "SENT", "100.00", "100.00")),
		map[string]any{
			"moneyTransactionCreate": map[string]any{
				"didSucceed":  true,
				"transaction": map[string]any{"id": "txn-9"},
			},
		},
		context.DeadlineExceeded,
	)
	s := newInvoiceService(t, exec)

	_, err := s.AddPayment(context.Background(), AddPaymentInput{
		BusinessKey:   domain.BusinessBakery,
		InvoiceNumber: "1001",
		Amount:        100,
	})
	require.Error(t, err)
	// The mutation already took effect; the error has to say so.
	assert.Contains(t, err.Error(), "txn-9")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, exec.calls, 3)
}

func TestAddPayment_UnknownBusinessKey(t *testing.T) {
	s := newInvoiceService(t, newFakeExecutor(t))
	_, err := s.AddPayment(context.Background(), AddPaymentInput{BusinessKey: "florist"})
	assert.ErrorIs(t, err, domain.ErrUnknownBusinessKey)
}
