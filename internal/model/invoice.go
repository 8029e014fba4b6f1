package model

import (
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/cfdi-reader/internal/decimal"
)

// DisplayDateLayout is the DD/MM/YYYY form used in summaries
const DisplayDateLayout = "02/01/2006"

// GeneralData holds the invoice-level attributes of the Comprobante
type GeneralData struct {
	Date  time.Time
	Folio string
}

// Display returns the invoice date as DD/MM/YYYY
func (g GeneralData) Display() string {
	return g.Date.Format(DisplayDateLayout)
}

// Receptor is the invoice recipient
type Receptor struct {
	Name  string `json:"name" yaml:"name"`
	TaxID string `json:"taxId" yaml:"taxId"`
}

// Concept is one invoice line item with its derived amounts
type Concept struct {
	Code        string          `json:"code" yaml:"code"`
	Description string          `json:"description" yaml:"description"`
	Quantity    int64           `json:"quantity" yaml:"quantity"`
	UnitValue   string          `json:"unitValue" yaml:"unitValue"`
	Subtotal    decimal.Decimal `json:"subtotal" yaml:"subtotal"`
	Tax         decimal.Decimal `json:"tax" yaml:"tax"`
	Retention   decimal.Decimal `json:"retention" yaml:"retention"`
	Total       decimal.Decimal `json:"total" yaml:"total"`
}

// NewConcept builds a line item and computes tax, retention and total from the subtotal
func NewConcept(code, description string, quantity int64, unitValue string, subtotal decimal.Decimal) Concept {
	c := Concept{
		Code:        code,
		Description: description,
		Quantity:    quantity,
		UnitValue:   unitValue,
		Subtotal:    subtotal,
	}
	c.Calculate()
	return c
}

// Calculate derives Tax, Retention and Total from Subtotal
func (c *Concept) Calculate() {
	c.Tax = money.CalculateTax(c.Subtotal)
	c.Retention = money.CalculateRetention(c.Subtotal)
	c.Total = money.CalculateLineTotal(c.Subtotal, c.Tax, c.Retention)
}

// AddendaInfo holds identifiers recovered from a vendor addenda.
// A nil slice means the label was not found at all.
type AddendaInfo struct {
	OrderNumber        []string `json:"orderNumber" yaml:"orderNumber"`
	DeliveryNoteNumber []string `json:"deliveryNoteNumber" yaml:"deliveryNoteNumber"`
}

// Empty reports whether neither identifier was recovered
func (a *AddendaInfo) Empty() bool {
	return a == nil || (len(a.OrderNumber) == 0 && len(a.DeliveryNoteNumber) == 0)
}

// InvoiceSummary is the record returned to consumers of the reader
type InvoiceSummary struct {
	Date               string    `json:"date" yaml:"date"`
	Folio              string    `json:"folio" yaml:"folio"`
	ReceptorName       string    `json:"receptorName" yaml:"receptorName"`
	ReceptorTaxID      string    `json:"receptorTaxId" yaml:"receptorTaxId"`
	LineItems          []Concept `json:"lineItems" yaml:"lineItems"`
	OrderNumber        []string  `json:"orderNumber" yaml:"orderNumber"`
	DeliveryNoteNumber []string  `json:"deliveryNoteNumber" yaml:"deliveryNoteNumber"`
}

// NewInvoiceSummary composes a summary from the extracted parts; addenda may be nil
func NewInvoiceSummary(general GeneralData, receptor Receptor, concepts []Concept, addenda *AddendaInfo) *InvoiceSummary {
	if concepts == nil {
		concepts = []Concept{}
	}

	summary := &InvoiceSummary{
		Date:          general.Display(),
		Folio:         general.Folio,
		ReceptorName:  receptor.Name,
		ReceptorTaxID: receptor.TaxID,
		LineItems:     concepts,
	}
	if addenda != nil {
		summary.OrderNumber = addenda.OrderNumber
		summary.DeliveryNoteNumber = addenda.DeliveryNoteNumber
	}
	return summary
}

// GrandTotal sums line totals in document order
func (s *InvoiceSummary) GrandTotal() decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(s.LineItems))
	for _, item := range s.LineItems {
		totals = append(totals, item.Total)
	}
	return money.Sum(totals)
}
