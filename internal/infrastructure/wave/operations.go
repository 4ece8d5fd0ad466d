package wave

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation documents are constants of this package; nothing else in the repo
// builds query text. Each document is parsed once at init so a malformed
// operation fails process startup instead of a production request.

func mustParse(name, doc string) string {
	if _, err := parser.ParseQuery(&ast.Source{Name: name, Input: doc}); err != nil {
		panic(fmt.Sprintf("invalid GraphQL document %s: %v", name, err))
	}
	return doc
}

const invoiceSelection = `
      id
      invoiceNumber
      status
      customer { id name }
      invoiceDate
      dueDate
      currency { code }
      total { value }
      amountDue { value }
      amountPaid { value }
      viewUrl
      pdfUrl
      memo
      items {
        product { id name }
        description
        quantity
        unitPrice
        subtotal { value }
      }`

var QueryInvoices = mustParse("invoices", `
query ListInvoices($businessId: ID!, $page: Int!, $pageSize: Int!, $status: InvoiceStatus, $customerId: ID) {
  business(id: $businessId) {
    id
    invoices(page: $page, pageSize: $pageSize, status: $status, customerId: $customerId) {
      pageInfo { currentPage totalPages totalCount }
      edges { node {`+invoiceSelection+`
      } }
    }
  }
}`)

var QueryInvoicesByDateRange = mustParse("invoicesByDateRange", `
query ListInvoicesByDateRange($businessId: ID!, $page: Int!, $pageSize: Int!, $invoiceDateStart: Date!, $invoiceDateEnd: Date!) {
  business(id: $businessId) {
    id
    invoices(page: $page, pageSize: $pageSize, invoiceDateStart: $invoiceDateStart, invoiceDateEnd: $invoiceDateEnd) {
      pageInfo { currentPage totalPages totalCount }
      edges { node {`+invoiceSelection+`
      } }
    }
  }
}`)

var QueryInvoiceByNumber = mustParse("invoiceByNumber", `
query FindInvoiceByNumber($businessId: ID!, $invoiceNumber: String!) {
  business(id: $businessId) {
    id
    invoices(invoiceNumber: $invoiceNumber, page: 1, pageSize: 1) {
      edges { node {`+invoiceSelection+`
      } }
    }
  }
}`)

var MutationInvoiceCreate = mustParse("invoiceCreate", `
mutation CreateInvoice($input: InvoiceCreateInput!) {
  invoiceCreate(input: $input) {
    didSucceed
    inputErrors { message code path }
    invoice {`+invoiceSelection+`
    }
  }
}`)

var MutationInvoiceApprove = mustParse("invoiceApprove", `
mutation ApproveInvoice($input: InvoiceApproveInput!) {
  invoiceApprove(input: $input) {
    didSucceed
    inputErrors { message code path }
    invoice {`+invoiceSelection+`
    }
  }
}`)

var MutationMoneyTransactionCreate = mustParse("moneyTransactionCreate", `
mutation CreateMoneyTransaction($input: MoneyTransactionCreateInput!) {
  moneyTransactionCreate(input: $input) {
    didSucceed
    inputErrors { message code path }
    transaction { id }
  }
}`)

var QueryProducts = mustParse("products", `
query ListProducts($businessId: ID!, $page: Int!, $pageSize: Int!) {
  business(id: $businessId) {
    id
    products(page: $page, pageSize: $pageSize) {
      pageInfo { currentPage totalPages totalCount }
      edges { node { id name description unitPrice isSold isBought } }
    }
  }
}`)

var MutationProductCreate = mustParse("productCreate", `
mutation CreateProduct($input: ProductCreateInput!) {
  productCreate(input: $input) {
    didSucceed
    inputErrors { message code path }
    product { id name description unitPrice isSold isBought }
  }
}`)

var MutationProductPatch = mustParse("productPatch", `
mutation PatchProduct($input: ProductPatchInput!) {
  productPatch(input: $input) {
    didSucceed
    inputErrors { message code path }
    product { id name description unitPrice isSold isBought }
  }
}`)

var QueryCustomers = mustParse("customers", `
query ListCustomers($businessId: ID!, $page: Int!, $pageSize: Int!) {
  business(id: $businessId) {
    id
    customers(page: $page, pageSize: $pageSize) {
      pageInfo { currentPage totalPages totalCount }
      edges { node { id name email phone } }
    }
  }
}`)

var MutationCustomerCreate = mustParse("customerCreate", `
mutation CreateCustomer($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    didSucceed
    inputErrors { message code path }
    customer { id name email phone }
  }
}`)
