package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"atlas-core-wave-layer/internal/application"
	"atlas-core-wave-layer/internal/domain"
)

// Request bodies and their validation. Checks run in a fixed order and
// short-circuit on the first failure: businessKey membership, then required
// fields with explicit predicates (strict > 0 for amounts, prices and
// quantities; >= 0 only for unit prices on update; strings non-empty after
// trimming), then element-wise collection checks naming the offending index.
// Validation never mutates the request; defaults are applied later in the
// application layer.

var errInvalidBusinessKey = errors.New("Invalid or missing businessKey")

func parseBusinessKey(s string) (domain.BusinessKey, error) {
	key, err := domain.ParseBusinessKey(strings.TrimSpace(s))
	if err != nil {
		return "", errInvalidBusinessKey
	}
	return key, nil
}

func validDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("%s must be a YYYY-MM-DD date", field)
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

type invoiceItemRequest struct {
	ProductID   string   `json:"productId"`
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
}

type createInvoiceRequest struct {
	BusinessKey   string               `json:"businessKey"`
	CustomerID    string               `json:"customerId"`
	Items         []invoiceItemRequest `json:"items"`
	InvoiceDate   string               `json:"invoiceDate"`
	DueDate       string               `json:"dueDate"`
	Currency      string               `json:"currency"`
	InvoiceNumber string               `json:"invoiceNumber"`
	Memo          string               `json:"memo"`
}

func (r createInvoiceRequest) Validate() (application.CreateInvoiceInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.CreateInvoiceInput{}, err
	}
	if blank(r.CustomerID) {
		return application.CreateInvoiceInput{}, errors.New("customerId is required")
	}
	if len(r.Items) == 0 {
		return application.CreateInvoiceInput{}, errors.New("items must be a non-empty array")
	}
	for i, item := range r.Items {
		if item.UnitPrice == nil || *item.UnitPrice <= 0 {
			return application.CreateInvoiceInput{}, fmt.Errorf("items[%d]: unitPrice must be a positive number", i)
		}
		if item.Quantity != nil && *item.Quantity <= 0 {
			return application.CreateInvoiceInput{}, fmt.Errorf("items[%d]: quantity must be a positive number", i)
		}
	}
	if err := validDate("invoiceDate", r.InvoiceDate); err != nil {
		return application.CreateInvoiceInput{}, err
	}
	if err := validDate("dueDate", r.DueDate); err != nil {
		return application.CreateInvoiceInput{}, err
	}

	in := application.CreateInvoiceInput{
		BusinessKey:   key,
		CustomerID:    strings.TrimSpace(r.CustomerID),
		Items:         make([]application.InvoiceItemInput, 0, len(r.Items)),
		InvoiceDate:   r.InvoiceDate,
		DueDate:       r.DueDate,
		Currency:      strings.TrimSpace(r.Currency),
		InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
		Memo:          r.Memo,
	}
	for _, item := range r.Items {
		converted := application.InvoiceItemInput{
			ProductID:   strings.TrimSpace(item.ProductID),
			Description: item.Description,
			UnitPrice:   *item.UnitPrice,
		}
		if item.Quantity != nil {
			converted.Quantity = *item.Quantity
		}
		in.Items = append(in.Items, converted)
	}
	return in, nil
}

type approveInvoiceRequest struct {
	BusinessKey string `json:"businessKey"`
	InvoiceID   string `json:"invoiceId"`
}

func (r approveInvoiceRequest) Validate() (domain.BusinessKey, string, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return "", "", err
	}
	if blank(r.InvoiceID) {
		return "", "", errors.New("invoiceId is required")
	}
	return key, strings.TrimSpace(r.InvoiceID), nil
}

type addPaymentRequest struct {
	BusinessKey   string   `json:"businessKey"`
	InvoiceNumber string   `json:"invoiceNumber"`
	Amount        *float64 `json:"amount"`
	Method        string   `json:"method"`
	Date          string   `json:"date"`
	Memo          string   `json:"memo"`
}

func (r addPaymentRequest) Validate() (application.AddPaymentInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.AddPaymentInput{}, err
	}
	if blank(r.InvoiceNumber) {
		return application.AddPaymentInput{}, errors.New("invoiceNumber is required")
	}
	if r.Amount == nil || *r.Amount <= 0 {
		return application.AddPaymentInput{}, errors.New("amount must be a positive number")
	}
	if r.Method != "" {
		valid := false
		for _, m := range application.PaymentMethods {
			if r.Method == m {
				valid = true
				break
			}
		}
		if !valid {
			return application.AddPaymentInput{}, fmt.Errorf("method must be one of %s", strings.Join(application.PaymentMethods, ", "))
		}
	}
	if err := validDate("date", r.Date); err != nil {
		return application.AddPaymentInput{}, err
	}
	return application.AddPaymentInput{
		BusinessKey:   key,
		InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
		Amount:        *r.Amount,
		Method:        r.Method,
		Date:          r.Date,
		Memo:          r.Memo,
	}, nil
}

type listInvoicesRequest struct {
	BusinessKey string `json:"businessKey"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
	Status      string `json:"status"`
	CustomerID  string `json:"customerId"`
}

func (r listInvoicesRequest) Validate() (application.ListInvoicesInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.ListInvoicesInput{}, err
	}
	if err := validPaging(r.Page, r.PageSize); err != nil {
		return application.ListInvoicesInput{}, err
	}
	return application.ListInvoicesInput{
		BusinessKey: key,
		Page:        r.Page,
		PageSize:    r.PageSize,
		Status:      strings.TrimSpace(r.Status),
		CustomerID:  strings.TrimSpace(r.CustomerID),
	}, nil
}

type listRequest struct {
	BusinessKey string `json:"businessKey"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
}

func (r listRequest) Validate() (domain.BusinessKey, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return "", err
	}
	if err := validPaging(r.Page, r.PageSize); err != nil {
		return "", err
	}
	return key, nil
}

func validPaging(page, pageSize int) error {
	if page < 0 {
		return errors.New("page must be a positive number")
	}
	if pageSize < 0 || pageSize > 200 {
		return errors.New("pageSize must be between 1 and 200")
	}
	return nil
}

type createProductRequest struct {
	BusinessKey     string   `json:"businessKey"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	UnitPrice       *float64 `json:"unitPrice"`
	IncomeAccountID string   `json:"incomeAccountId"`
}

func (r createProductRequest) Validate() (application.CreateProductInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.CreateProductInput{}, err
	}
	if blank(r.Name) {
		return application.CreateProductInput{}, errors.New("name is required")
	}
	if r.UnitPrice == nil || *r.UnitPrice <= 0 {
		return application.CreateProductInput{}, errors.New("unitPrice must be a positive number")
	}
	return application.CreateProductInput{
		BusinessKey:     key,
		Name:            strings.TrimSpace(r.Name),
		Description:     r.Description,
		UnitPrice:       *r.UnitPrice,
		IncomeAccountID: strings.TrimSpace(r.IncomeAccountID),
	}, nil
}

type updateProductRequest struct {
	BusinessKey string   `json:"businessKey"`
	ProductID   string   `json:"productId"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	UnitPrice   *float64 `json:"unitPrice"`
}

func (r updateProductRequest) Validate() (application.UpdateProductInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.UpdateProductInput{}, err
	}
	if blank(r.ProductID) {
		return application.UpdateProductInput{}, errors.New("productId is required")
	}
	if r.Name == nil && r.Description == nil && r.UnitPrice == nil {
		return application.UpdateProductInput{}, errors.New("at least one of name, description, unitPrice is required")
	}
	if r.Name != nil && blank(*r.Name) {
		return application.UpdateProductInput{}, errors.New("name must be a non-empty string")
	}
	// Unit price may be zero on update, unlike create.
	if r.UnitPrice != nil && *r.UnitPrice < 0 {
		return application.UpdateProductInput{}, errors.New("unitPrice must be zero or greater")
	}
	return application.UpdateProductInput{
		BusinessKey: key,
		ProductID:   strings.TrimSpace(r.ProductID),
		Name:        r.Name,
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
	}, nil
}

type ensureCustomerRequest struct {
	BusinessKey string `json:"businessKey"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func (r ensureCustomerRequest) Validate() (application.EnsureCustomerInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.EnsureCustomerInput{}, err
	}
	if blank(r.Name) {
		return application.EnsureCustomerInput{}, errors.New("name is required")
	}
	return application.EnsureCustomerInput{
		BusinessKey: key,
		Name:        strings.TrimSpace(r.Name),
		Email:       strings.TrimSpace(r.Email),
		Phone:       strings.TrimSpace(r.Phone),
	}, nil
}

type createTransactionRequest struct {
	BusinessKey string   `json:"businessKey"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Direction   string   `json:"direction"`
	AccountID   string   `json:"accountId"`
	ExternalID  string   `json:"externalId"`
}

func (r createTransactionRequest) Validate() (application.CreateTransactionInput, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return application.CreateTransactionInput{}, err
	}
	if blank(r.Description) {
		return application.CreateTransactionInput{}, errors.New("description is required")
	}
	if r.Amount == nil || *r.Amount <= 0 {
		return application.CreateTransactionInput{}, errors.New("amount must be a positive number")
	}
	if r.Direction != application.DirectionDeposit && r.Direction != application.DirectionWithdrawal {
		return application.CreateTransactionInput{}, fmt.Errorf("direction must be %q or %q",
			application.DirectionDeposit, application.DirectionWithdrawal)
	}
	if err := validDate("date", r.Date); err != nil {
		return application.CreateTransactionInput{}, err
	}
	return application.CreateTransactionInput{
		BusinessKey: key,
		Date:        r.Date,
		Description: strings.TrimSpace(r.Description),
		Amount:      *r.Amount,
		Direction:   r.Direction,
		AccountID:   strings.TrimSpace(r.AccountID),
		ExternalID:  strings.TrimSpace(r.ExternalID),
	}, nil
}

type monthlySummaryRequest struct {
	BusinessKey string `json:"businessKey"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
}

func (r monthlySummaryRequest) Validate() (domain.BusinessKey, error) {
	key, err := parseBusinessKey(r.BusinessKey)
	if err != nil {
		return "", err
	}
	if r.Year < 2000 || r.Year > 2100 {
		return "", errors.New("year must be between 2000 and 2100")
	}
	if r.Month < 1 || r.Month > 12 {
		return "", errors.New("month must be between 1 and 12")
	}
	return key, nil
}
