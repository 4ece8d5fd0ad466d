package domain

// Projections of Wave's GraphQL result types into the flattened shapes this
// service returns to callers. Optional upstream fields are pointers so the
// JSON encoder renders them as null rather than omitting the key; every
// response field is always present.

// Invoice is the flattened view of a Wave invoice node.
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber *string       `json:"invoiceNumber"`
	Status        string        `json:"status"`
	CustomerID    *string       `json:"customerId"`
	CustomerName  *string       `json:"customerName"`
	InvoiceDate   *string       `json:"invoiceDate"`
	DueDate       *string       `json:"dueDate"`
	Currency      *string       `json:"currency"`
	Total         *string       `json:"total"`
	AmountDue     *string       `json:"amountDue"`
	AmountPaid    *string       `json:"amountPaid"`
	ViewURL       *string       `json:"viewUrl"`
	PDFURL        *string       `json:"pdfUrl"`
	Memo          *string       `json:"memo"`
	Items         []InvoiceItem `json:"items"`
}

// InvoiceItem is one invoice line.
type InvoiceItem struct {
	ProductID   *string `json:"productId"`
	ProductName *string `json:"productName"`
	Description *string `json:"description"`
	Quantity    *string `json:"quantity"`
	UnitPrice   *string `json:"unitPrice"`
	Subtotal    *string `json:"subtotal"`
}

// Product is the flattened view of a Wave product node.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UnitPrice   *string `json:"unitPrice"`
	IsSold      bool    `json:"isSold"`
	IsBought    bool    `json:"isBought"`
}

// Customer is the flattened view of a Wave customer node.
type Customer struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Transaction is the flattened view of a created money transaction.
type Transaction struct {
	ID          string  `json:"id"`
	ExternalID  *string `json:"externalId"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Direction   string  `json:"direction"`
}

// MonthlySummary aggregates one month of invoices for a business.
type MonthlySummary struct {
	BusinessKey      string         `json:"businessKey"`
	Year             int            `json:"year"`
	Month            int            `json:"month"`
	InvoiceCount     int            `json:"invoiceCount"`
	TotalInvoiced    float64        `json:"totalInvoiced"`
	TotalPaid        float64        `json:"totalPaid"`
	TotalOutstanding float64        `json:"totalOutstanding"`
	StatusCounts     map[string]int `json:"statusCounts"`
}
