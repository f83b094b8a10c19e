// Package report serializes the filtered record list for reporting: one
// spreadsheet exporter and one tabular PDF exporter. Pure data transforms
// with none of the card pipeline's rendering-fidelity concerns.
package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/gatepass/gatepass/internal/badge"
	"github.com/gatepass/gatepass/internal/domain"
)

// ListColumns is the fixed export column set, in order.
var ListColumns = []string{
	"ID", "Badge Number", "First Name", "Last Name", "Email", "Role",
	"Club", "Country", "Gender", "Status", "Zone Code", "Date of Birth",
	"Submitted",
}

func listRow(r domain.AccreditationRecord) []string {
	dob := ""
	if r.DateOfBirth != nil {
		dob = r.DateOfBirth.Format("2006-01-02")
	}
	return []string{
		r.ID, r.BadgeNumber, r.FirstName, r.LastName, r.Email, r.Role,
		r.Club, badge.CountryName(r.Nationality), r.Gender, string(r.Status),
		r.ZoneCode, dob, r.CreatedAt.Format(time.RFC3339),
	}
}

// An xlsx file is a zip of XML parts. The writer below emits the minimal
// part set a spreadsheet application needs, with all cell text inline, so
// no shared-string table is required.

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`

const workbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Accreditations" sheetId="1" r:id="rId1"/></sheets>
</workbook>`

const workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`

// WriteXLSX serializes the record list as a single-sheet spreadsheet: one
// header row, one row per record.
func WriteXLSX(records []domain.AccreditationRecord) ([]byte, error) {
	var sheet bytes.Buffer
	sheet.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sheet.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)

	writeRow(&sheet, 1, ListColumns)
	for i, r := range records {
		writeRow(&sheet, i+2, listRow(r))
	}
	sheet.WriteString(`</sheetData></worksheet>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"xl/workbook.xml", workbookXML},
		{"xl/_rels/workbook.xml.rels", workbookRelsXML},
		{"xl/worksheets/sheet1.xml", sheet.String()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, errors.Wrap(err, "xlsx part failed")
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, errors.Wrap(err, "xlsx write failed")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "xlsx close failed")
	}
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, rowNum int, cells []string) {
	fmt.Fprintf(buf, `<row r="%d">`, rowNum)
	for i, cell := range cells {
		fmt.Fprintf(buf, `<c r="%s%d" t="inlineStr"><is><t>%s</t></is></c>`,
			columnRef(i), rowNum, escapeXML(cell))
	}
	buf.WriteString(`</row>`)
}

// columnRef converts a zero-based column index to spreadsheet letters.
func columnRef(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s)) //nolint:errcheck // bytes.Buffer never errors
	return buf.String()
}
