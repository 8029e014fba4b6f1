package cfdi

import (
	"time"

	"github.com/rezonia/cfdi-reader/internal/model"
)

// DateLayout is the fixed layout of the Comprobante Fecha attribute
const DateLayout = "2006-01-02T15:04:05"

// ExtractGeneral reads the invoice date and folio from the Comprobante
func ExtractGeneral(d *Document) (model.GeneralData, error) {
	root := d.Root()

	raw := root.SelectAttrValue("Fecha", "")
	if raw == "" {
		return model.GeneralData{}, model.NewExtractionError("Fecha", 0, "missing invoice date", nil)
	}

	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		return model.GeneralData{}, model.NewExtractionError("Fecha", 0, "invalid invoice date "+raw, err)
	}

	return model.GeneralData{
		Date:  date,
		Folio: root.SelectAttrValue("Folio", ""),
	}, nil
}
