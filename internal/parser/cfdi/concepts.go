package cfdi

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	money "github.com/rezonia/cfdi-reader/internal/decimal"
	"github.com/rezonia/cfdi-reader/internal/model"
)

// ExtractConcepts returns the invoice line items in document order.
// An invoice without a Conceptos block has no line items.
func ExtractConcepts(d *Document) ([]model.Concept, error) {
	concepts := []model.Concept{}

	block := childElement(d.Root(), Namespace, "Conceptos")
	if block == nil {
		return concepts, nil
	}

	for i, el := range descendantElements(block, Namespace, "Concepto") {
		line := i + 1

		rawImporte := el.SelectAttrValue("Importe", "")
		if rawImporte == "" {
			return nil, model.NewExtractionError("Importe", line, "missing line amount", nil)
		}
		subtotal, err := money.FromString(strings.TrimSpace(rawImporte))
		if err != nil {
			return nil, model.NewExtractionError("Importe", line, "invalid line amount "+rawImporte, err)
		}

		rawCantidad := el.SelectAttrValue("Cantidad", "")
		quantity, ok := parseQuantity(rawCantidad)
		if !ok && rawCantidad != "" {
			d.logger.Warn("Invalid quantity, using 0",
				zap.String("path", d.Path),
				zap.Int("line", line),
				zap.String("cantidad", rawCantidad))
		}

		concepts = append(concepts, model.NewConcept(
			el.SelectAttrValue("NoIdentificacion", ""),
			el.SelectAttrValue("Descripcion", ""),
			quantity,
			el.SelectAttrValue("ValorUnitario", ""),
			subtotal,
		))
	}

	d.logger.Debug("Extracted line items", zap.String("path", d.Path), zap.Int("count", len(concepts)))
	return concepts, nil
}

// parseQuantity truncates a decimal quantity toward zero; anything that is
// not a finite number in int64 range yields 0
func parseQuantity(raw string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
