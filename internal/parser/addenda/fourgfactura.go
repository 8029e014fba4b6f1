package addenda

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rezonia/cfdi-reader/internal/model"
)

// 4gfactura addenda markers
const (
	FourGFacturaNamespace = "http://www.4gfactura.com/"
	FourGFacturaVendor    = "4gfactura"

	fragmentSeparator = "NO."
	orderLabel        = "PEDIDO:"
	deliveryNoteLabel = "REMISIÓN:"
)

var (
	digitRun      = regexp.MustCompile(`[0-9]+`)
	leadingDigits = regexp.MustCompile(`^\s*[0-9]`)
)

// FourGFacturaParser reads order and delivery-note numbers from the
// addendaInformativa/informativa text written by 4gfactura, e.g.
//
//	NO. PEDIDO: 4500012345 NO. REMISIÓN: 7
type FourGFacturaParser struct{}

// NewFourGFacturaParser creates a new 4gfactura parser
func NewFourGFacturaParser() *FourGFacturaParser {
	return &FourGFacturaParser{}
}

// Vendor returns the vendor name
func (p *FourGFacturaParser) Vendor() string {
	return FourGFacturaVendor
}

// Location returns where 4gfactura stores its text
func (p *FourGFacturaParser) Location() Location {
	return Location{
		Namespace: FourGFacturaNamespace,
		Container: "addendaInformativa",
		Element:   "informativa",
		Attr:      "text",
	}
}

// Parse splits text on "NO." and scans the first fragment carrying each label.
// Order numbers are 10-digit runs, delivery notes 1 or 2 digit runs.
func (p *FourGFacturaParser) Parse(text string) *model.AddendaInfo {
	fragments := strings.Split(norm.NFC.String(text), fragmentSeparator)

	info := &model.AddendaInfo{
		OrderNumber:        labelledRuns(fragments, orderLabel, 10, 10),
		DeliveryNoteNumber: labelledRuns(fragments, deliveryNoteLabel, 1, 2),
	}
	if info.Empty() {
		return nil
	}
	return info
}

// labelledRuns returns nil when no fragment has the label. When the labelled
// fragment holds no matching run and the next fragment starts with digits, the
// value is taken from there ("PEDIDO: NO.1234567890").
func labelledRuns(fragments []string, label string, minLen, maxLen int) []string {
	for i, fragment := range fragments {
		if !strings.Contains(fragment, label) {
			continue
		}
		runs := digitRuns(fragment, minLen, maxLen)
		if len(runs) == 0 && i+1 < len(fragments) && leadingDigits.MatchString(fragments[i+1]) {
			runs = digitRuns(fragments[i+1], minLen, maxLen)
		}
		return runs
	}
	return nil
}

// digitRuns returns maximal digit runs whose length is within [minLen, maxLen]
func digitRuns(s string, minLen, maxLen int) []string {
	runs := []string{}
	for _, run := range digitRun.FindAllString(s, -1) {
		if len(run) >= minLen && len(run) <= maxLen {
			runs = append(runs, run)
		}
	}
	return runs
}
