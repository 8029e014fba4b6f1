package cfdi

import (
	"github.com/rezonia/cfdi-reader/internal/model"
)

// ExtractReceptor reads the recipient's name and RFC. A CFDI always has one
// Receptor, so a missing element is reported as a LookupError.
func ExtractReceptor(d *Document) (model.Receptor, error) {
	el := childElement(d.Root(), Namespace, "Receptor")
	if el == nil {
		return model.Receptor{}, model.NewLookupError(Namespace, "Receptor")
	}

	return model.Receptor{
		Name:  el.SelectAttrValue("Nombre", ""),
		TaxID: el.SelectAttrValue("Rfc", ""),
	}, nil
}
