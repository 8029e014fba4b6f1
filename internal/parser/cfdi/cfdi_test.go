package cfdi_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/addenda"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
)

func TestLoad_Valid(t *testing.T) {
	doc, err := cfdi.Load(testFile("cfdi_full.xml"))
	require.NoError(t, err)
	require.NotNil(t, doc.Root())
	assert.Equal(t, "Comprobante", doc.Root().Tag)
	assert.Equal(t, cfdi.Namespace, doc.Root().NamespaceURI())
}

func TestLoad_DefaultNamespace(t *testing.T) {
	_, err := cfdi.Load(testFile("cfdi_minimal.xml"))
	require.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		kind string
	}{
		{"wrong extension with valid content", testFile("cfdi_full.txt"), model.KindFormat},
		{"uppercase extension", testFile("CFDI.XML"), model.KindFormat},
		{"missing file with wrong extension", "does-not-exist.pdf", model.KindFormat},
		{"missing file", testFile("does-not-exist.xml"), model.KindParse},
		{"malformed XML", testFile("malformed.xml"), model.KindParse},
		{"CFDI 3.3 namespace", testFile("cfdi_v33.xml"), model.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := cfdi.Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Equal(t, tt.kind, model.Kind(err), "error: %v", err)
		})
	}
}

func TestLoad_FormatErrorMessage(t *testing.T) {
	_, err := cfdi.Load(testFile("cfdi_full.txt"))

	var formatErr *model.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Error(), "not an XML file")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.xml", "")
	_, err := cfdi.Load(path)

	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLoad_NotWellFormed(t *testing.T) {
	const comprobante = `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Folio="1" Fecha="2024-01-15T10:30:00"><cfdi:Receptor Rfc="X" Nombre="Y"/></cfdi:Comprobante>`

	tests := []struct {
		name    string
		content string
		message string
	}{
		{"second root element", comprobante + "<other/>", "junk after document element"},
		{"text after root", comprobante + "garbage", "text outside the document element"},
		{"text before root", "garbage" + comprobante, "text outside the document element"},
		{"unbound root prefix", `<x:Comprobante Fecha="2024-01-15T10:30:00"/>`, "unbound prefix"},
		{"unbound child prefix", `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4"><y:Receptor/></cfdi:Comprobante>`, "unbound prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := cfdi.Load(writeTemp(t, "invoice.xml", tt.content))
			assert.Nil(t, doc)

			var parseErr *model.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, parseErr.Error(), tt.message)
		})
	}

	t.Run("trailing whitespace and comments", func(t *testing.T) {
		_, err := cfdi.Load(writeTemp(t, "invoice.xml", comprobante+"\n  <!-- firmado -->\n"))
		assert.NoError(t, err)
	})
}

func TestLoad_WrongRoot(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong local name", `<cfdi:Factura xmlns:cfdi="http://www.sat.gob.mx/cfd/4"/>`},
		{"no namespace", `<Comprobante Fecha="2024-01-15T10:30:00"/>`},
		{"other namespace", `<x:Comprobante xmlns:x="http://example.com/cfd/4"/>`},
		{"unrelated document", `<Invoice><InvoiceNo>1</InvoiceNo></Invoice>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cfdi.Load(writeTemp(t, "invoice.xml", tt.content))

			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Error(), "not a valid invoice document")
		})
	}
}

func TestDecode(t *testing.T) {
	content, err := os.ReadFile(testFile("cfdi_full.xml"))
	require.NoError(t, err)

	doc, err := cfdi.Decode("upload.xml", strings.NewReader(string(content)))
	require.NoError(t, err)
	assert.Equal(t, "upload.xml", doc.Path)

	_, err = cfdi.Decode("upload.json", strings.NewReader(string(content)))
	assert.Equal(t, model.KindFormat, model.Kind(err))
}

func TestExtractGeneral(t *testing.T) {
	doc := mustLoad(t, "cfdi_full.xml")

	general, err := cfdi.ExtractGeneral(doc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), general.Date)
	assert.Equal(t, "15/01/2024", general.Display())
	assert.Equal(t, "1024", general.Folio)
}

func TestExtractGeneral_MissingFolio(t *testing.T) {
	doc := mustLoad(t, "cfdi_minimal.xml")

	general, err := cfdi.ExtractGeneral(doc)
	require.NoError(t, err)
	assert.Equal(t, "", general.Folio)
	assert.Equal(t, "31/12/2023", general.Display())
}

func TestExtractGeneral_InvalidDate(t *testing.T) {
	tests := []struct {
		name  string
		fecha string
	}{
		{"day first", `Fecha="15/01/2024"`},
		{"date only", `Fecha="2024-01-15"`},
		{"with timezone", `Fecha="2024-01-15T10:30:00Z"`},
		{"impossible date", `Fecha="2024-02-30T10:30:00"`},
		{"missing", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" ` + tt.fecha + `/>`
			doc, err := cfdi.Load(writeTemp(t, "invoice.xml", content))
			require.NoError(t, err)

			_, err = cfdi.ExtractGeneral(doc)
			var extractionErr *model.ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, "Fecha", extractionErr.Field)
		})
	}
}

func TestExtractGeneral_BadFechaFixture(t *testing.T) {
	doc := mustLoad(t, "cfdi_bad_fecha.xml")

	_, err := cfdi.ExtractGeneral(doc)
	assert.Equal(t, model.KindExtraction, model.Kind(err))
}

func TestExtractReceptor(t *testing.T) {
	doc := mustLoad(t, "cfdi_full.xml")

	receptor, err := cfdi.ExtractReceptor(doc)
	require.NoError(t, err)
	assert.Equal(t, "UNIVERSIDAD ROBOTICA ESPAÑOLA", receptor.Name)
	assert.Equal(t, "URE180429TM6", receptor.TaxID)
}

func TestExtractReceptor_MissingAttributes(t *testing.T) {
	doc := mustLoad(t, "cfdi_minimal.xml")

	receptor, err := cfdi.ExtractReceptor(doc)
	require.NoError(t, err)
	assert.Equal(t, "", receptor.Name)
	assert.Equal(t, "", receptor.TaxID)
}

func TestExtractReceptor_Missing(t *testing.T) {
	doc := mustLoad(t, "cfdi_no_receptor.xml")

	_, err := cfdi.ExtractReceptor(doc)
	var lookupErr *model.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "Receptor", lookupErr.Element)
}

func TestExtractReceptor_WrongNamespace(t *testing.T) {
	content := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:old="http://www.sat.gob.mx/cfd/3">
		<old:Receptor Nombre="X" Rfc="Y"/>
	</cfdi:Comprobante>`
	doc, err := cfdi.Load(writeTemp(t, "invoice.xml", content))
	require.NoError(t, err)

	_, err = cfdi.ExtractReceptor(doc)
	assert.Equal(t, model.KindLookup, model.Kind(err))
}

func TestExtractConcepts(t *testing.T) {
	doc := mustLoad(t, "cfdi_full.xml")

	concepts, err := cfdi.ExtractConcepts(doc)
	require.NoError(t, err)
	require.Len(t, concepts, 3)

	// Document order is preserved
	assert.Equal(t, "TOR-001", concepts[0].Code)
	assert.Equal(t, "SRV-010", concepts[1].Code)
	assert.Equal(t, "", concepts[2].Code)

	first := concepts[0]
	assert.Equal(t, "TORNILLO HEXAGONAL 1/4", first.Description)
	assert.Equal(t, int64(10), first.Quantity)
	assert.Equal(t, "12.500000", first.UnitValue)
	assert.True(t, first.Subtotal.Equal(decimal.RequireFromString("125.00")))
	assert.True(t, first.Tax.Equal(decimal.RequireFromString("20")))
	assert.True(t, first.Retention.Equal(decimal.RequireFromString("1.5625")))
	assert.True(t, first.Total.Equal(decimal.RequireFromString("143.4375")))

	second := concepts[1]
	assert.Equal(t, int64(2), second.Quantity, "quantity is truncated, not rounded")
	assert.Equal(t, "727.269091", second.UnitValue)
	assert.True(t, second.Tax.Equal(decimal.RequireFromString("319.9984")), "got %s", second.Tax)
	assert.True(t, second.Retention.Equal(decimal.RequireFromString("24.999875")), "got %s", second.Retention)
	assert.True(t, second.Total.Equal(decimal.RequireFromString("2294.988525")), "got %s", second.Total)

	third := concepts[2]
	assert.Equal(t, int64(0), third.Quantity, "unparsable quantity falls back to 0")
	assert.Equal(t, "AJUSTE", third.Description)
	assert.True(t, third.Total.Equal(decimal.RequireFromString("0.11475")), "got %s", third.Total)
}

func TestExtractConcepts_Invariant(t *testing.T) {
	doc := mustLoad(t, "cfdi_full.xml")

	concepts, err := cfdi.ExtractConcepts(doc)
	require.NoError(t, err)

	taxRate := decimal.RequireFromString("0.16")
	retentionRate := decimal.RequireFromString("0.0125")
	for _, c := range concepts {
		assert.True(t, c.Tax.Equal(c.Subtotal.Mul(taxRate)))
		assert.True(t, c.Retention.Equal(c.Subtotal.Mul(retentionRate)))
		assert.True(t, c.Total.Equal(c.Subtotal.Add(c.Tax).Sub(c.Retention)))
	}
}

func TestExtractConcepts_Quantity(t *testing.T) {
	tests := []struct {
		name     string
		attr     string
		expected int64
	}{
		{"integer", `Cantidad="3"`, 3},
		{"fraction truncated", `Cantidad="3.999"`, 3},
		{"negative truncated toward zero", `Cantidad="-1.5"`, -1},
		{"padded", `Cantidad=" 4.0 "`, 4},
		{"exponent", `Cantidad="1e2"`, 100},
		{"missing", ``, 0},
		{"text", `Cantidad="uno"`, 0},
		{"nan", `Cantidad="NaN"`, 0},
		{"infinite", `Cantidad="1e400"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4">
				<cfdi:Conceptos><cfdi:Concepto Importe="1" ` + tt.attr + `/></cfdi:Conceptos>
			</cfdi:Comprobante>`
			doc, err := cfdi.Load(writeTemp(t, "invoice.xml", content))
			require.NoError(t, err)

			concepts, err := cfdi.ExtractConcepts(doc)
			require.NoError(t, err)
			require.Len(t, concepts, 1)
			assert.Equal(t, tt.expected, concepts[0].Quantity)
		})
	}
}

func TestExtractConcepts_NoConceptosBlock(t *testing.T) {
	doc := mustLoad(t, "cfdi_bad_fecha.xml")

	concepts, err := cfdi.ExtractConcepts(doc)
	require.NoError(t, err)
	require.NotNil(t, concepts)
	assert.Empty(t, concepts)
}

func TestExtractConcepts_EmptyConceptosBlock(t *testing.T) {
	doc := mustLoad(t, "cfdi_empty_conceptos.xml")

	concepts, err := cfdi.ExtractConcepts(doc)
	require.NoError(t, err)
	require.NotNil(t, concepts)
	assert.Empty(t, concepts)
}

func TestExtractConcepts_BadImporte(t *testing.T) {
	doc := mustLoad(t, "cfdi_bad_importe.xml")

	_, err := cfdi.ExtractConcepts(doc)
	var extractionErr *model.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "Importe", extractionErr.Field)
	assert.Equal(t, 2, extractionErr.Line)
}

func TestExtractConcepts_MissingImporte(t *testing.T) {
	content := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4">
		<cfdi:Conceptos><cfdi:Concepto Cantidad="1"/></cfdi:Conceptos>
	</cfdi:Comprobante>`
	doc, err := cfdi.Load(writeTemp(t, "invoice.xml", content))
	require.NoError(t, err)

	_, err = cfdi.ExtractConcepts(doc)
	assert.Equal(t, model.KindExtraction, model.Kind(err))
}

func TestExtractConcepts_ManyLines(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4"><cfdi:Conceptos>`)
	for i := 0; i < 500; i++ {
		b.WriteString(`<cfdi:Concepto Cantidad="1" Importe="0.10"/>`)
	}
	b.WriteString(`</cfdi:Conceptos></cfdi:Comprobante>`)

	doc, err := cfdi.Load(writeTemp(t, "invoice.xml", b.String()))
	require.NoError(t, err)

	concepts, err := cfdi.ExtractConcepts(doc)
	require.NoError(t, err)
	require.Len(t, concepts, 500)

	sum := decimal.Zero
	for _, c := range concepts {
		sum = sum.Add(c.Total)
	}
	// 500 * 0.11475
	assert.True(t, sum.Equal(decimal.RequireFromString("57.375")), "got %s", sum)
}

func TestExtractAddenda(t *testing.T) {
	doc := mustLoad(t, "cfdi_full.xml")

	info := cfdi.ExtractAddenda(doc, addenda.NewRegistry())
	require.NotNil(t, info)
	assert.Equal(t, []string{"4500012345"}, info.OrderNumber)
	assert.Equal(t, []string{"7"}, info.DeliveryNoteNumber)
}

func TestExtractAddenda_OrderOnly(t *testing.T) {
	doc, err := cfdi.Load(writeTemp(t, "invoice.xml", withAddenda(
		`<pac4gf:addendaInformativa xmlns:pac4gf="http://www.4gfactura.com/">
			<pac4gf:informativa text="PEDIDO: NO.1234567890"/>
		</pac4gf:addendaInformativa>`)))
	require.NoError(t, err)

	info := cfdi.ExtractAddenda(doc, nil)
	require.NotNil(t, info)
	assert.Equal(t, []string{"1234567890"}, info.OrderNumber)
	assert.Nil(t, info.DeliveryNoteNumber)
}

func TestExtractAddenda_Absent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no addenda", ""},
		{"empty addenda", "<cfdi:Addenda/>"},
		{"other vendor", withAddendaBody(`<x:info xmlns:x="http://example.com/"><x:informativa text="NO. PEDIDO: 1234567890"/></x:info>`)},
		{"container without informativa", withAddendaBody(`<pac4gf:addendaInformativa xmlns:pac4gf="http://www.4gfactura.com/"/>`)},
		{"informativa without text", withAddendaBody(`<pac4gf:addendaInformativa xmlns:pac4gf="http://www.4gfactura.com/"><pac4gf:informativa/></pac4gf:addendaInformativa>`)},
		{"no identifiers", withAddendaBody(`<pac4gf:addendaInformativa xmlns:pac4gf="http://www.4gfactura.com/"><pac4gf:informativa text="Gracias por su compra"/></pac4gf:addendaInformativa>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4">` + tt.content + `</cfdi:Comprobante>`
			doc, err := cfdi.Load(writeTemp(t, "invoice.xml", content))
			require.NoError(t, err)
			assert.Nil(t, cfdi.ExtractAddenda(doc, addenda.NewRegistry()))
		})
	}
}

func TestExtractAddenda_NestedContainer(t *testing.T) {
	doc, err := cfdi.Load(writeTemp(t, "invoice.xml", withAddenda(
		`<wrapper><pac4gf:addendaInformativa xmlns:pac4gf="http://www.4gfactura.com/">
			<pac4gf:informativa text="NO. REMISIÓN: 3"/>
		</pac4gf:addendaInformativa></wrapper>`)))
	require.NoError(t, err)

	info := cfdi.ExtractAddenda(doc, nil)
	require.NotNil(t, info)
	assert.Nil(t, info.OrderNumber)
	assert.Equal(t, []string{"3"}, info.DeliveryNoteNumber)
}

func TestExtractAddenda_CustomParser(t *testing.T) {
	doc, err := cfdi.Load(writeTemp(t, "invoice.xml", withAddenda(
		`<acme:pedido xmlns:acme="http://acme.example/"><acme:dato valor="OC-42"/></acme:pedido>`)))
	require.NoError(t, err)

	registry := addenda.NewRegistry()
	registry.RegisterParser(&acmeParser{})

	info := cfdi.ExtractAddenda(doc, registry)
	require.NotNil(t, info)
	assert.Equal(t, []string{"OC-42"}, info.OrderNumber)
}

type acmeParser struct{}

func (p *acmeParser) Vendor() string { return "acme" }

func (p *acmeParser) Location() addenda.Location {
	return addenda.Location{Namespace: "http://acme.example/", Container: "pedido", Element: "dato", Attr: "valor"}
}

func (p *acmeParser) Parse(text string) *model.AddendaInfo {
	if text == "" {
		return nil
	}
	return &model.AddendaInfo{OrderNumber: []string{text}}
}

// Helpers

func testFile(name string) string {
	return filepath.Join("testdata", name)
}

func mustLoad(t *testing.T, name string) *cfdi.Document {
	t.Helper()
	doc, err := cfdi.Load(testFile(name))
	require.NoError(t, err, "failed to load test file: %s", name)
	return doc
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func withAddendaBody(body string) string {
	return "<cfdi:Addenda>" + body + "</cfdi:Addenda>"
}

func withAddenda(body string) string {
	return `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Fecha="2024-01-15T10:30:00">` +
		withAddendaBody(body) + `</cfdi:Comprobante>`
}
