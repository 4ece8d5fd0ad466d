package wave

import "atlas-core-wave-layer/internal/domain"

// Wire types mirroring the slice of Wave's GraphQL schema this service reads,
// plus the shared flattening into domain projections. Handlers never reshape
// upstream payloads themselves; every endpoint goes through these mappers so
// near-duplicate flattening logic cannot drift apart.

// InputError is Wave's field-level validation failure, returned alongside a
// didSucceed flag rather than as an HTTP-level error.
type InputError struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Path    []string `json:"path"`
}

// InputErrorMessages collects every upstream message, in order.
func InputErrorMessages(errs []InputError) []string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return messages
}

type MoneyNode struct {
	Value string `json:"value"`
}

type CurrencyNode struct {
	Code string `json:"code"`
}

type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InvoiceItemNode struct {
	Product     *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"product"`
	Description *string    `json:"description"`
	Quantity    *string    `json:"quantity"`
	UnitPrice   *string    `json:"unitPrice"`
	Subtotal    *MoneyNode `json:"subtotal"`
}

type InvoiceNode struct {
	ID            string            `json:"id"`
	InvoiceNumber *string           `json:"invoiceNumber"`
	Status        string            `json:"status"`
	Customer      *CustomerRef      `json:"customer"`
	InvoiceDate   *string           `json:"invoiceDate"`
	DueDate       *string           `json:"dueDate"`
	Currency      *CurrencyNode     `json:"currency"`
	Total         *MoneyNode        `json:"total"`
	AmountDue     *MoneyNode        `json:"amountDue"`
	AmountPaid    *MoneyNode        `json:"amountPaid"`
	ViewURL       *string           `json:"viewUrl"`
	PDFURL        *string           `json:"pdfUrl"`
	Memo          *string           `json:"memo"`
	Items         []InvoiceItemNode `json:"items"`
}

type ProductNode struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UnitPrice   *string `json:"unitPrice"`
	IsSold      bool    `json:"isSold"`
	IsBought    bool    `json:"isBought"`
}

type CustomerNode struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type PageInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
}

type InvoiceConnection struct {
	PageInfo PageInfo `json:"pageInfo"`
	Edges    []struct {
		Node InvoiceNode `json:"node"`
	} `json:"edges"`
}

type ProductConnection struct {
	PageInfo PageInfo `json:"pageInfo"`
	Edges    []struct {
		Node ProductNode `json:"node"`
	} `json:"edges"`
}

type CustomerConnection struct {
	PageInfo PageInfo `json:"pageInfo"`
	Edges    []struct {
		Node CustomerNode `json:"node"`
	} `json:"edges"`
}

// Data payload wrappers, one per operation.

type BusinessInvoicesData struct {
	Business *struct {
		ID       string            `json:"id"`
		Invoices InvoiceConnection `json:"invoices"`
	} `json:"business"`
}

type BusinessProductsData struct {
	Business *struct {
		ID       string            `json:"id"`
		Products ProductConnection `json:"products"`
	} `json:"business"`
}

type BusinessCustomersData struct {
	Business *struct {
		ID        string             `json:"id"`
		Customers CustomerConnection `json:"customers"`
	} `json:"business"`
}

type InvoiceMutationResult struct {
	DidSucceed  bool         `json:"didSucceed"`
	InputErrors []InputError `json:"inputErrors"`
	Invoice     *InvoiceNode `json:"invoice"`
}

type InvoiceCreateData struct {
	InvoiceCreate InvoiceMutationResult `json:"invoiceCreate"`
}

type InvoiceApproveData struct {
	InvoiceApprove InvoiceMutationResult `json:"invoiceApprove"`
}

type MoneyTransactionCreateData struct {
	MoneyTransactionCreate struct {
		DidSucceed  bool         `json:"didSucceed"`
		InputErrors []InputError `json:"inputErrors"`
		Transaction *struct {
			ID string `json:"id"`
		} `json:"transaction"`
	} `json:"moneyTransactionCreate"`
}

type ProductMutationResult struct {
	DidSucceed  bool         `json:"didSucceed"`
	InputErrors []InputError `json:"inputErrors"`
	Product     *ProductNode `json:"product"`
}

type ProductCreateData struct {
	ProductCreate ProductMutationResult `json:"productCreate"`
}

type ProductPatchData struct {
	ProductPatch ProductMutationResult `json:"productPatch"`
}

type CustomerCreateData struct {
	CustomerCreate struct {
		DidSucceed  bool          `json:"didSucceed"`
		InputErrors []InputError  `json:"inputErrors"`
		Customer    *CustomerNode `json:"customer"`
	} `json:"customerCreate"`
}

// Flatten maps an invoice node into the caller-facing projection.
func (n *InvoiceNode) Flatten() domain.Invoice {
	inv := domain.Invoice{
		ID:            n.ID,
		InvoiceNumber: n.InvoiceNumber,
		Status:        n.Status,
		InvoiceDate:   n.InvoiceDate,
		DueDate:       n.DueDate,
		ViewURL:       n.ViewURL,
		PDFURL:        n.PDFURL,
		Memo:          n.Memo,
		Items:         make([]domain.InvoiceItem, 0, len(n.Items)),
	}
	if n.Customer != nil {
		inv.CustomerID = &n.Customer.ID
		inv.CustomerName = &n.Customer.Name
	}
	if n.Currency != nil {
		inv.Currency = &n.Currency.Code
	}
	if n.Total != nil {
		inv.Total = &n.Total.Value
	}
	if n.AmountDue != nil {
		inv.AmountDue = &n.AmountDue.Value
	}
	if n.AmountPaid != nil {
		inv.AmountPaid = &n.AmountPaid.Value
	}
	for _, item := range n.Items {
		flat := domain.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
		if item.Product != nil {
			flat.ProductID = &item.Product.ID
			flat.ProductName = &item.Product.Name
		}
		if item.Subtotal != nil {
			flat.Subtotal = &item.Subtotal.Value
		}
		inv.Items = append(inv.Items, flat)
	}
	return inv
}

// Flatten maps a product node into the caller-facing projection.
func (n *ProductNode) Flatten() domain.Product {
	return domain.Product{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		UnitPrice:   n.UnitPrice,
		IsSold:      n.IsSold,
		IsBought:    n.IsBought,
	}
}

// Flatten maps a customer node into the caller-facing projection.
func (n *CustomerNode) Flatten() domain.Customer {
	return domain.Customer{
		ID:    n.ID,
		Name:  n.Name,
		Email: n.Email,
		Phone: n.Phone,
	}
}
