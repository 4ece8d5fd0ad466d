package application

import (
	"context"
	"fmt"
	"time"

	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
	"atlas-core-wave-layer/internal/infrastructure/wave"
	"atlas-core-wave-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is applied when a create-invoice request omits currency.
	DefaultCurrency = "USD"

	// DefaultDueDays is added to the invoice date when dueDate is omitted.
	DefaultDueDays = 7

	dateLayout = "2006-01-02"
)

// PaymentMethods is the closed set of accepted payment method values.
var PaymentMethods = []string{"bank_transfer", "cash", "cheque", "credit_card", "other"}

// DefaultPaymentMethod is applied when an add-payment request omits method.
const DefaultPaymentMethod = "bank_transfer"

// InvoiceService translates invoice operations into Wave GraphQL calls.
type InvoiceService struct {
	exec   ports.GraphQLExecutor
	cfg    *config.Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(exec ports.GraphQLExecutor, cfg *config.Config, logger zerolog.Logger) *InvoiceService {
	return &InvoiceService{
		exec:   exec,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// InvoiceItemInput is one validated invoice line. Quantity zero means the
// caller omitted it; ProductID empty means the business's generic product.
type InvoiceItemInput struct {
	ProductID   string
	Description string
	Quantity    float64
	UnitPrice   float64
}

// CreateInvoiceInput is a validated create-invoice request body.
type CreateInvoiceInput struct {
	BusinessKey   domain.BusinessKey
	CustomerID    string
	Items         []InvoiceItemInput
	InvoiceDate   string
	DueDate       string
	Currency      string
	InvoiceNumber string
	Memo          string
}

// ApplyDefaults fills omitted fields as a pure function of the validated
// input plus the given time: invoice date defaults to the current UTC date,
// due date to invoice date plus seven days, currency to USD, item quantity
// to 1, and item product to the business's generic product.
func (in CreateInvoiceInput) ApplyDefaults(now time.Time, bc config.BusinessConfig) (CreateInvoiceInput, error) {
	out := in
	if out.InvoiceDate == "" {
		out.InvoiceDate = now.UTC().Format(dateLayout)
	}
	if out.DueDate == "" {
		invoiceDate, err := time.Parse(dateLayout, out.InvoiceDate)
		if err != nil {
			return CreateInvoiceInput{}, fmt.Errorf("invalid invoiceDate %q: %w", out.InvoiceDate, err)
		}
		out.DueDate = invoiceDate.AddDate(0, 0, DefaultDueDays).Format(dateLayout)
	}
	if out.Currency == "" {
		out.Currency = DefaultCurrency
	}
	out.Items = make([]InvoiceItemInput, len(in.Items))
	for i, item := range in.Items {
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.ProductID == "" {
			item.ProductID = bc.DefaultProductID
		}
		out.Items[i] = item
	}
	return out, nil
}

// BuildMutationItems converts the defaulted items into invoiceCreate input
// maps, one per validated item.
func BuildMutationItems(items []InvoiceItemInput) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m := map[string]any{
			"productId": item.ProductID,
			"quantity":  decimal.NewFromFloat(item.Quantity).String(),
			"unitPrice": decimal.NewFromFloat(item.UnitPrice).StringFixed(2),
		}
		if item.Description != "" {
			m["description"] = item.Description
		}
		out = append(out, m)
	}
	return out
}

// CreateInvoice creates a draft invoice for the business.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (domain.Invoice, error) {
	bc, err := s.cfg.Business(in.BusinessKey)
	if err != nil {
		return domain.Invoice{}, err
	}
	in, err = in.ApplyDefaults(s.now(), bc)
	if err != nil {
		return domain.Invoice{}, err
	}

	input := map[string]any{
		"businessId":  bc.BusinessID,
		"customerId":  in.CustomerID,
		"items":       BuildMutationItems(in.Items),
		"invoiceDate": in.InvoiceDate,
		"dueDate":     in.DueDate,
		"currency":    in.Currency,
	}
	if in.InvoiceNumber != "" {
		input["invoiceNumber"] = in.InvoiceNumber
	}
	if in.Memo != "" {
		input["memo"] = in.Memo
	}

	var data wave.InvoiceCreateData
	if err := s.exec.Execute(ctx, wave.MutationInvoiceCreate, map[string]any{"input": input}, &data); err != nil {
		return domain.Invoice{}, err
	}
	result := data.InvoiceCreate
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return domain.Invoice{}, &UpstreamError{Op: "invoiceCreate", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	if result.Invoice == nil {
		return domain.Invoice{}, wave.ErrMissingData
	}

	s.logger.Info().
		Str("businessKey", in.BusinessKey.String()).
		Str("invoiceId", result.Invoice.ID).
		Msg("Created invoice")
	return result.Invoice.Flatten(), nil
}

// ApproveInvoice moves a draft invoice to approved.
func (s *InvoiceService) ApproveInvoice(ctx context.Context, key domain.BusinessKey, invoiceID string) (domain.Invoice, error) {
	if _, err := s.cfg.Business(key); err != nil {
		return domain.Invoice{}, err
	}

	var data wave.InvoiceApproveData
	vars := map[string]any{"input": map[string]any{"invoiceId": invoiceID}}
	if err := s.exec.Execute(ctx, wave.MutationInvoiceApprove, vars, &data); err != nil {
		return domain.Invoice{}, err
	}
	result := data.InvoiceApprove
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return domain.Invoice{}, &UpstreamError{Op: "invoiceApprove", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	if result.Invoice == nil {
		return domain.Invoice{}, wave.ErrMissingData
	}

	s.logger.Info().
		Str("businessKey", key.String()).
		Str("invoiceId", invoiceID).
		Msg("Approved invoice")
	return result.Invoice.Flatten(), nil
}

// ListInvoicesInput is a validated list-invoices request body.
type ListInvoicesInput struct {
	BusinessKey domain.BusinessKey
	Page        int
	PageSize    int
	Status      string
	CustomerID  string
}

// InvoiceList is one page of flattened invoices.
type InvoiceList struct {
	Invoices   []domain.Invoice `json:"invoices"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	TotalCount int              `json:"totalCount"`
}

// ListInvoices returns one page of the business's invoices.
func (s *InvoiceService) ListInvoices(ctx context.Context, in ListInvoicesInput) (InvoiceList, error) {
	bc, err := s.cfg.Business(in.BusinessKey)
	if err != nil {
		return InvoiceList{}, err
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PageSize == 0 {
		in.PageSize = 20
	}

	vars := map[string]any{
		"businessId": bc.BusinessID,
		"page":       in.Page,
		"pageSize":   in.PageSize,
		"status":     nil,
		"customerId": nil,
	}
	if in.Status != "" {
		vars["status"] = in.Status
	}
	if in.CustomerID != "" {
		vars["customerId"] = in.CustomerID
	}

	var data wave.BusinessInvoicesData
	if err := s.exec.Execute(ctx, wave.QueryInvoices, vars, &data); err != nil {
		return InvoiceList{}, err
	}
	if data.Business == nil {
		return InvoiceList{}, ErrBusinessNotFound
	}

	conn := data.Business.Invoices
	list := InvoiceList{
		Invoices:   make([]domain.Invoice, 0, len(conn.Edges)),
		Page:       conn.PageInfo.CurrentPage,
		TotalPages: conn.PageInfo.TotalPages,
		TotalCount: conn.PageInfo.TotalCount,
	}
	for _, edge := range conn.Edges {
		list.Invoices = append(list.Invoices, edge.Node.Flatten())
	}
	return list, nil
}

// AddPaymentInput is a validated add-payment request body.
type AddPaymentInput struct {
	BusinessKey   domain.BusinessKey
	InvoiceNumber string
	Amount        float64
	Method        string
	Date          string
	Memo          string
}

// PaymentResult carries the created transaction and the invoice's updated totals.
type PaymentResult struct {
	TransactionID string
	Invoice       domain.Invoice
}

// AddPayment records a payment against an invoice: look up the invoice by
// number, create a money transaction against the anchor account, then re-fetch
// the invoice for updated totals. The sequence has no transactional guarantee;
// when the re-fetch fails the mutation has already taken effect and the error
// says so.
func (s *InvoiceService) AddPayment(ctx context.Context, in AddPaymentInput) (PaymentResult, error) {
	bc, err := s.cfg.Business(in.BusinessKey)
	if err != nil {
		return PaymentResult{}, err
	}
	if in.Method == "" {
		in.Method = DefaultPaymentMethod
	}
	if in.Date == "" {
		in.Date = s.now().UTC().Format(dateLayout)
	}

	_, err = s.findInvoiceByNumber(ctx, bc.BusinessID, in.InvoiceNumber)
	if err != nil {
		return PaymentResult{}, err
	}

	amount := decimal.NewFromFloat(in.Amount).StringFixed(2)
	description := fmt.Sprintf("Payment (%s) for invoice %s", in.Method, in.InvoiceNumber)
	if in.Memo != "" {
		description += ": " + in.Memo
	}
	input := map[string]any{
		"businessId": bc.BusinessID,
		"externalId": DeriveExternalID("payment", in.InvoiceNumber, in.Date, amount),
		"date":       in.Date,
		"description": description,
		"anchor": map[string]any{
			"accountId": bc.AnchorAccountID,
			"amount":    amount,
			"direction": "DEPOSIT",
		},
		"lineItems": []map[string]any{{
			"accountId": bc.LineItemAccountID,
			"amount":    amount,
			"balance":   "INCREASE",
		}},
	}

	var data wave.MoneyTransactionCreateData
	if err := s.exec.Execute(ctx, wave.MutationMoneyTransactionCreate, map[string]any{"input": input}, &data); err != nil {
		return PaymentResult{}, err
	}
	result := data.MoneyTransactionCreate
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return PaymentResult{}, &UpstreamError{Op: "moneyTransactionCreate", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	transactionID := ""
	if result.Transaction != nil {
		transactionID = result.Transaction.ID
	}

	s.logger.Info().
		Str("businessKey", in.BusinessKey.String()).
		Str("invoiceNumber", in.InvoiceNumber).
		Str("transactionId", transactionID).
		Str("amount", amount).
		Msg("Recorded payment")

	updated, err := s.findInvoiceByNumber(ctx, bc.BusinessID, in.InvoiceNumber)
	if err != nil {
		// The payment already took effect; surface that in the error rather
		// than masking the inconsistency window.
		return PaymentResult{}, fmt.Errorf("payment recorded as transaction %s but refetching invoice %s failed: %w",
			transactionID, in.InvoiceNumber, err)
	}
	return PaymentResult{TransactionID: transactionID, Invoice: updated}, nil
}

func (s *InvoiceService) findInvoiceByNumber(ctx context.Context, businessID, invoiceNumber string) (domain.Invoice, error) {
	vars := map[string]any{
		"businessId":    businessID,
		"invoiceNumber": invoiceNumber,
	}
	var data wave.BusinessInvoicesData
	if err := s.exec.Execute(ctx, wave.QueryInvoiceByNumber, vars, &data); err != nil {
		return domain.Invoice{}, err
	}
	if data.Business == nil {
		return domain.Invoice{}, ErrBusinessNotFound
	}
	edges := data.Business.Invoices.Edges
	if len(edges) == 0 {
		return domain.Invoice{}, ErrInvoiceNotFound
	}
	return edges[0].Node.Flatten(), nil
}
