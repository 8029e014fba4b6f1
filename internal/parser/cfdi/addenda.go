package cfdi

import (
	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/addenda"
)

// ExtractAddenda runs the registered vendor parsers over the Addenda block and
// returns the first non-nil result. It returns nil when there is no Addenda,
// no known vendor block, or nothing could be recovered.
func ExtractAddenda(d *Document, registry *addenda.Registry) *model.AddendaInfo {
	block := childElement(d.Root(), Namespace, "Addenda")
	if block == nil {
		return nil
	}
	if registry == nil {
		registry = addenda.NewRegistry()
	}

	for _, p := range registry.Parsers() {
		loc := p.Location()

		container := findDescendant(block, loc.Namespace, loc.Container)
		if container == nil {
			continue
		}

		text := ""
		if el := childElement(container, loc.Namespace, loc.Element); el != nil {
			text = el.SelectAttrValue(loc.Attr, "")
		}

		if info := p.Parse(text); info != nil {
			d.logger.Debug("Recovered addenda identifiers",
				zap.String("path", d.Path),
				zap.String("vendor", p.Vendor()),
				zap.Strings("order_number", info.OrderNumber),
				zap.Strings("delivery_note_number", info.DeliveryNoteNumber))
			return info
		}
	}

	return nil
}
