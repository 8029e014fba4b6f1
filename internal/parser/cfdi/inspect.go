package cfdi

import (
	"io"

	"github.com/beevik/etree"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/addenda"
)

// Info describes a document without extracting it
type Info struct {
	Root           string   `json:"root"`
	Namespace      string   `json:"namespace,omitempty"`
	Version        string   `json:"version,omitempty"`
	IsCFDI4        bool     `json:"isCfdi4"`
	ConceptCount   int      `json:"conceptCount"`
	AddendaVendors []string `json:"addendaVendors,omitempty"`
}

// Inspect reports the root element of any well-formed XML document and, for
// CFDI 4.0 documents, the number of line items and which known vendor addenda
// blocks are present. The file extension is not checked.
func Inspect(name string, r io.Reader, registry *addenda.Registry) (*Info, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, model.NewParseError(name, "malformed XML", err)
	}
	if err := checkWellFormed(doc); err != nil {
		return nil, model.NewParseError(name, "malformed XML", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(name, "no root element found", nil)
	}

	info := &Info{
		Root:      root.Tag,
		Namespace: root.NamespaceURI(),
		Version:   root.SelectAttrValue("Version", ""),
	}
	info.IsCFDI4 = info.Root == RootTag && info.Namespace == Namespace
	if !info.IsCFDI4 {
		return info, nil
	}

	if block := childElement(root, Namespace, "Conceptos"); block != nil {
		info.ConceptCount = len(descendantElements(block, Namespace, "Concepto"))
	}

	if registry == nil {
		registry = addenda.NewRegistry()
	}
	if block := childElement(root, Namespace, "Addenda"); block != nil {
		for _, p := range registry.Parsers() {
			loc := p.Location()
			if findDescendant(block, loc.Namespace, loc.Container) != nil {
				info.AddendaVendors = append(info.AddendaVendors, p.Vendor())
			}
		}
	}

	return info, nil
}
