package application

import (
	"context"
	"strings"

	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
	"atlas-core-wave-layer/internal/infrastructure/wave"
	"atlas-core-wave-layer/internal/ports"

	"github.com/rs/zerolog"
)

const customerPageSize = 100

// CustomerService translates customer operations into Wave GraphQL calls.
type CustomerService struct {
	exec   ports.GraphQLExecutor
	cfg    *config.Config
	logger zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(exec ports.GraphQLExecutor, cfg *config.Config, logger zerolog.Logger) *CustomerService {
	return &CustomerService{exec: exec, cfg: cfg, logger: logger}
}

// CustomerList is one page of flattened customers.
type CustomerList struct {
	Customers  []domain.Customer `json:"customers"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	TotalCount int               `json:"totalCount"`
}

// ListCustomers returns one page of the business's customers.
func (s *CustomerService) ListCustomers(ctx context.Context, key domain.BusinessKey, page, pageSize int) (CustomerList, error) {
	bc, err := s.cfg.Business(key)
	if err != nil {
		return CustomerList{}, err
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 50
	}

	conn, err := s.fetchPage(ctx, bc.BusinessID, page, pageSize)
	if err != nil {
		return CustomerList{}, err
	}
	list := CustomerList{
		Customers:  make([]domain.Customer, 0, len(conn.Edges)),
		Page:       conn.PageInfo.CurrentPage,
		TotalPages: conn.PageInfo.TotalPages,
		TotalCount: conn.PageInfo.TotalCount,
	}
	for _, edge := range conn.Edges {
		list.Customers = append(list.Customers, edge.Node.Flatten())
	}
	return list, nil
}

// EnsureCustomerInput is a validated ensure-customer request body.
type EnsureCustomerInput struct {
	BusinessKey domain.BusinessKey
	Name        string
	Email       string
	Phone       string
}

// EnsureCustomerResult carries the matched or created customer.
type EnsureCustomerResult struct {
	Customer domain.Customer
	Created  bool
}

// EnsureCustomer returns an existing customer matching the name
// (case-insensitive) or creates one. The lookup walks every page before
// deciding the customer is absent.
func (s *CustomerService) EnsureCustomer(ctx context.Context, in EnsureCustomerInput) (EnsureCustomerResult, error) {
	bc, err := s.cfg.Business(in.BusinessKey)
	if err != nil {
		return EnsureCustomerResult{}, err
	}

	wanted := strings.ToLower(strings.TrimSpace(in.Name))
	for page := 1; ; page++ {
		conn, err := s.fetchPage(ctx, bc.BusinessID, page, customerPageSize)
		if err != nil {
			return EnsureCustomerResult{}, err
		}
		for _, edge := range conn.Edges {
			if strings.ToLower(strings.TrimSpace(edge.Node.Name)) == wanted {
				return EnsureCustomerResult{Customer: edge.Node.Flatten()}, nil
			}
		}
		if page >= conn.PageInfo.TotalPages {
			break
		}
	}

	input := map[string]any{
		"businessId": bc.BusinessID,
		"name":       strings.TrimSpace(in.Name),
	}
	if in.Email != "" {
		input["email"] = in.Email
	}
	if in.Phone != "" {
		input["phone"] = in.Phone
	}

	var data wave.CustomerCreateData
	if err := s.exec.Execute(ctx, wave.MutationCustomerCreate, map[string]any{"input": input}, &data); err != nil {
		return EnsureCustomerResult{}, err
	}
	result := data.CustomerCreate
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return EnsureCustomerResult{}, &UpstreamError{Op: "customerCreate", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	if result.Customer == nil {
		return EnsureCustomerResult{}, wave.ErrMissingData
	}

	s.logger.Info().
		Str("businessKey", in.BusinessKey.String()).
		Str("customerId", result.Customer.ID).
		Str("name", in.Name).
		Msg("Created customer")
	return EnsureCustomerResult{Customer: result.Customer.Flatten(), Created: true}, nil
}

func (s *CustomerService) fetchPage(ctx context.Context, businessID string, page, pageSize int) (wave.CustomerConnection, error) {
	vars := map[string]any{
		"businessId": businessID,
		"page":       page,
		"pageSize":   pageSize,
	}
	var data wave.BusinessCustomersData
	if err := s.exec.Execute(ctx, wave.QueryCustomers, vars, &data); err != nil {
		return wave.CustomerConnection{}, err
	}
	if data.Business == nil {
		return wave.CustomerConnection{}, ErrBusinessNotFound
	}
	return data.Business.Customers, nil
}
