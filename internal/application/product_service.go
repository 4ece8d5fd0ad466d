package application

import (
	"context"

	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
	"atlas-core-wave-layer/internal/infrastructure/wave"
	"atlas-core-wave-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductService translates product catalog operations into Wave GraphQL calls.
type ProductService struct {
	exec   ports.GraphQLExecutor
	cfg    *config.Config
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(exec ports.GraphQLExecutor, cfg *config.Config, logger zerolog.Logger) *ProductService {
	return &ProductService{exec: exec, cfg: cfg, logger: logger}
}

// ProductList is one page of flattened products.
type ProductList struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	TotalCount int              `json:"totalCount"`
}

// ListProducts returns one page of the business's products.
func (s *ProductService) ListProducts(ctx context.Context, key domain.BusinessKey, page, pageSize int) (ProductList, error) {
	bc, err := s.cfg.Business(key)
	if err != nil {
		return ProductList{}, err
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 50
	}

	vars := map[string]any{
		"businessId": bc.BusinessID,
		"page":       page,
		"pageSize":   pageSize,
	}
	var data wave.BusinessProductsData
	if err := s.exec.Execute(ctx, wave.QueryProducts, vars, &data); err != nil {
		return ProductList{}, err
	}
	if data.Business == nil {
		return ProductList{}, ErrBusinessNotFound
	}

	conn := data.Business.Products
	list := ProductList{
		Products:   make([]domain.Product, 0, len(conn.Edges)),
		Page:       conn.PageInfo.CurrentPage,
		TotalPages: conn.PageInfo.TotalPages,
		TotalCount: conn.PageInfo.TotalCount,
	}
	for _, edge := range conn.Edges {
		list.Products = append(list.Products, edge.Node.Flatten())
	}
	return list, nil
}

// CreateProductInput is a validated create-product request body.
type CreateProductInput struct {
	BusinessKey     domain.BusinessKey
	Name            string
	Description     string
	UnitPrice       float64
	IncomeAccountID string
}

// CreateProduct creates a sellable product; the income account defaults to
// the business's configured sales account.
func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	bc, err := s.cfg.Business(in.BusinessKey)
	if err != nil {
		return domain.Product{}, err
	}
	if in.IncomeAccountID == "" {
		in.IncomeAccountID = bc.IncomeAccountID
	}

	input := map[string]any{
		"businessId":      bc.BusinessID,
		"name":            in.Name,
		"unitPrice":       decimal.NewFromFloat(in.UnitPrice).StringFixed(2),
		"incomeAccountId": in.IncomeAccountID,
	}
	if in.Description != "" {
		input["description"] = in.Description
	}

	var data wave.ProductCreateData
	if err := s.exec.Execute(ctx, wave.MutationProductCreate, map[string]any{"input": input}, &data); err != nil {
		return domain.Product{}, err
	}
	result := data.ProductCreate
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return domain.Product{}, &UpstreamError{Op: "productCreate", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	if result.Product == nil {
		return domain.Product{}, wave.ErrMissingData
	}

	s.logger.Info().
		Str("businessKey", in.BusinessKey.String()).
		Str("productId", result.Product.ID).
		Str("name", in.Name).
		Msg("Created product")
	return result.Product.Flatten(), nil
}

// UpdateProductInput is a validated update-product request body. Nil fields
// are left unchanged upstream; a zero unit price is allowed on update.
type UpdateProductInput struct {
	BusinessKey domain.BusinessKey
	ProductID   string
	Name        *string
	Description *string
	UnitPrice   *float64
}

// UpdateProduct patches an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, in UpdateProductInput) (domain.Product, error) {
	if _, err := s.cfg.Business(in.BusinessKey); err != nil {
		return domain.Product{}, err
	}

	input := map[string]any{"id": in.ProductID}
	if in.Name != nil {
		input["name"] = *in.Name
	}
	if in.Description != nil {
		input["description"] = *in.Description
	}
	if in.UnitPrice != nil {
		input["unitPrice"] = decimal.NewFromFloat(*in.UnitPrice).StringFixed(2)
	}

	var data wave.ProductPatchData
	if err := s.exec.Execute(ctx, wave.MutationProductPatch, map[string]any{"input": input}, &data); err != nil {
		return domain.Product{}, err
	}
	result := data.ProductPatch
	if !result.DidSucceed || len(result.InputErrors) > 0 {
		return domain.Product{}, &UpstreamError{Op: "productPatch", Messages: wave.InputErrorMessages(result.InputErrors)}
	}
	if result.Product == nil {
		return domain.Product{}, wave.ErrMissingData
	}

	s.logger.Info().
		Str("businessKey", in.BusinessKey.String()).
		Str("productId", in.ProductID).
		Msg("Updated product")
	return result.Product.Flatten(), nil
}
