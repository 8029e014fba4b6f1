// Package cfdi loads CFDI 4.0 invoice documents and extracts their fields.
package cfdi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/model"
)

// CFDI 4.0 markers
const (
	Namespace = "http://www.sat.gob.mx/cfd/4"
	RootTag   = "Comprobante"

	FileExtension = ".xml"
)

// Document is a parsed CFDI 4.0 invoice. It is read-only once loaded.
type Document struct {
	Path   string
	doc    *etree.Document
	root   *etree.Element
	logger *zap.Logger
}

// Option configures document loading
type Option func(*Document)

// WithLogger sets the logger used by the extractors
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Root returns the Comprobante element
func (d *Document) Root() *etree.Element {
	return d.root
}

// Load reads and validates the invoice at path
func Load(path string, opts ...Option) (*Document, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, model.NewParseError(path, "failed to open file", err)
	}
	defer f.Close()

	return decode(path, f, opts)
}

// Decode reads and validates an invoice from r; name is the logical file name
func Decode(name string, r io.Reader, opts ...Option) (*Document, error) {
	if err := checkExtension(name); err != nil {
		return nil, err
	}
	return decode(name, r, opts)
}

func checkExtension(name string) error {
	if !strings.HasSuffix(name, FileExtension) {
		return model.NewFormatError(name, "not an XML file")
	}
	return nil
}

func decode(name string, r io.Reader, opts []Option) (*Document, error) {
	d := &Document{
		Path:   name,
		doc:    etree.NewDocument(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if _, err := d.doc.ReadFrom(r); err != nil {
		return nil, model.NewParseError(name, "malformed XML", err)
	}
	if err := checkWellFormed(d.doc); err != nil {
		return nil, model.NewParseError(name, "malformed XML", err)
	}

	root := d.doc.Root()
	if root == nil {
		return nil, model.NewParseError(name, "no root element found", nil)
	}

	if root.Tag != RootTag || root.NamespaceURI() != Namespace {
		return nil, model.NewValidationError("root", qualifiedName(root), "cfdi4", "not a valid invoice document")
	}

	d.root = root
	d.logger.Debug("Loaded invoice document", zap.String("path", name))
	return d, nil
}

// checkWellFormed rejects what the etree reader lets through: more than one
// top-level element, text outside the root element and unbound element prefixes
func checkWellFormed(doc *etree.Document) error {
	elements := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			elements++
			if elements > 1 {
				return fmt.Errorf("junk after document element: <%s>", t.FullTag())
			}
		case *etree.CharData:
			if !t.IsWhitespace() {
				return errors.New("text outside the document element")
			}
		}
	}

	if root := doc.Root(); root != nil {
		return checkPrefixes(root)
	}
	return nil
}

func checkPrefixes(e *etree.Element) error {
	if e.Space != "" && e.Space != "xml" && e.NamespaceURI() == "" {
		return fmt.Errorf("unbound prefix: <%s>", e.FullTag())
	}
	for _, child := range e.ChildElements() {
		if err := checkPrefixes(child); err != nil {
			return err
		}
	}
	return nil
}

func qualifiedName(e *etree.Element) string {
	if ns := e.NamespaceURI(); ns != "" {
		return "{" + ns + "}" + e.Tag
	}
	return e.Tag
}

// childElement returns the first direct child with the given namespace and local name
func childElement(parent *etree.Element, namespace, local string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == local && child.NamespaceURI() == namespace {
			return child
		}
	}
	return nil
}

// descendantElements returns all matching elements below parent in document order
func descendantElements(parent *etree.Element, namespace, local string) []*etree.Element {
	var found []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == local && child.NamespaceURI() == namespace {
			found = append(found, child)
		}
		found = append(found, descendantElements(child, namespace, local)...)
	}
	return found
}

// findDescendant returns the first matching element below parent
func findDescendant(parent *etree.Element, namespace, local string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == local && child.NamespaceURI() == namespace {
			return child
		}
		if found := findDescendant(child, namespace, local); found != nil {
			return found
		}
	}
	return nil
}
