package gdocs

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

// Fixed letterhead of the equipment history record.
const (
	sectionHeading = "Section 7 Equipment Management"
	companyName    = "DME PRO"
	companyAddress = "126 W. Beech ST. Fallbrook CA 92028"
	companyPhone   = "PH:(760)879-1071 Fax:(760)437-5254"
	recordTitle    = "EQUIPMENT HISTORY RECORD"
	footerText     = "\n\nCopyright© 1997-2009 The Compliance Team, Inc. ALL RIGHTS RESERVED"
)

// Column positions the device/model and serial/manufacturer lines are padded to.
const (
	deviceColumnWidth = 45
	serialColumnWidth = 40
	minPadding        = 3
)

// tableHeaders are the first-row labels of the 9x8 maintenance table.
var tableHeaders = []string{
	"Date &\nInit's", "Clean", "Inspection", "Preventive\nMaintenance",
	"Repair\nHaz/Recall", "Return to Stock (S)or Mfr.\n(M)",
	"Patient/Facility\nName", "Pick-up\nDate",
}

// columnWidths are the fixed table column widths in points.
var columnWidths = []float64{60, 40, 50, 80, 60, 80, 70, 48}

// Maintenance table shape.
const (
	tableRows    = 9
	tableColumns = 8
)

// styledSpan is a half-open [Start, End) range within the composed body text
// and the styling to apply to it. Offsets are UTF-16 code units, the index
// space of the Docs API. Spans are computed while the body is composed, so
// styling never depends on searching the rendered document for anchor
// substrings.
type styledSpan struct {
	Start, End int
	Bold       bool
	Underline  bool
	FontSize   float64 // points; zero leaves the size unchanged
	Center     bool    // paragraph alignment, applied to [Start, End+1)
}

// utf16Len is the length of s in UTF-16 code units.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// bodyBuilder accumulates the document text while recording styled spans.
// pos tracks the length written so far in UTF-16 code units.
type bodyBuilder struct {
	sb    strings.Builder
	pos   int
	spans []styledSpan
}

func (b *bodyBuilder) write(s string) {
	b.sb.WriteString(s)
	b.pos += utf16Len(s)
}

func (b *bodyBuilder) writeStyled(s string, span styledSpan) {
	span.Start = b.pos
	b.write(s)
	span.End = b.pos
	b.spans = append(b.spans, span)
}

// ComposeBody builds the document body text for the extracted fields and the
// styled spans to apply to it. Span offsets are UTF-16 code units relative to
// the start of the body; the document inserts the body at index 1, so a span
// [s, e) styles document range [s+1, e+1).
func ComposeBody(fields pipeline.ExtractedFields) (string, []styledSpan) {
	deviceLine := "Device: " + fields.Device
	modelLine := "Model: " + fields.Model
	serialLine := "Serial Number: " + fields.Serial
	manufacturerLine := "Manufacturer: " + fields.Manufacturer

	var b bodyBuilder

	b.write(sectionHeading + "\n\n")
	b.writeStyled(companyName, styledSpan{Bold: true, FontSize: 18, Center: true})
	b.write("\n" + companyAddress + "\n" + companyPhone + "\n\n")
	b.write(recordTitle + "\n\n")

	b.writeStyled("Device:", styledSpan{Bold: true, Underline: true})
	b.write(deviceLine[len("Device:"):])
	b.write(padding(utf8.RuneCountInString(deviceLine), deviceColumnWidth))
	b.writeStyled("Model:", styledSpan{Bold: true, Underline: true})
	b.write(modelLine[len("Model:"):] + "\n\n")

	b.writeStyled("Serial Number:", styledSpan{Bold: true, Underline: true})
	b.write(serialLine[len("Serial Number:"):])
	b.write(padding(utf8.RuneCountInString(serialLine), serialColumnWidth))
	b.writeStyled("Manufacturer:", styledSpan{Bold: true, Underline: true})
	b.write(manufacturerLine[len("Manufacturer:"):] + "\n\n")

	return b.sb.String(), b.spans
}

// padding aligns the second column: at least minPadding spaces, more when the
// first column is shorter than width. lineLen is a rune count, not bytes.
func padding(lineLen, width int) string {
	n := width - lineLen
	if n < minPadding {
		n = minPadding
	}
	return strings.Repeat(" ", n)
}

// DocTitle names the document after the device and its serial number.
func DocTitle(fields pipeline.ExtractedFields) string {
	return fmt.Sprintf("%s - %s", fields.Device, fields.Serial)
}

// DocURL is the canonical edit URL for a document ID.
func DocURL(docID string) string {
	return "https://docs.google.com/document/d/" + docID + "/edit"
}
