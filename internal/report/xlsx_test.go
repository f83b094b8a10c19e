package report

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gatepass/gatepass/internal/domain"
)

func sampleRecords() []domain.AccreditationRecord {
	dob := time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)
	return []domain.AccreditationRecord{
		{
			ID:          "rec-1",
			FirstName:   "Ann",
			LastName:    "Svensson",
			Email:       "ann@example.com",
			Role:        "Athlete",
			Club:        "Stockholm SK",
			Nationality: "SE",
			Gender:      "F",
			Status:      domain.StatusApproved,
			BadgeNumber: "ATH-001",
			ZoneCode:    "A,B",
			DateOfBirth: &dob,
			CreatedAt:   time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:        "rec-2",
			FirstName: "Bo <&> Berg",
			LastName:  "O'Neil",
			Status:    domain.StatusPending,
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	payload, err := WriteXLSX(sampleRecords())
	if err != nil {
		t.Fatalf("write xlsx failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("output is not a zip container: %v", err)
	}

	parts := map[string]bool{}
	var sheet string
	for _, f := range zr.File {
		parts[f.Name] = true
		if f.Name == "xl/worksheets/sheet1.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open sheet: %v", err)
			}
			raw, _ := io.ReadAll(rc)
			rc.Close()
			sheet = string(raw)
		}
	}

	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "xl/workbook.xml", "xl/_rels/workbook.xml.rels", "xl/worksheets/sheet1.xml"} {
		if !parts[name] {
			t.Fatalf("missing package part %s", name)
		}
	}

	for _, want := range []string{"Badge Number", "Ann", "Svensson", "ATH-001"} {
		if !strings.Contains(sheet, want) {
			t.Fatalf("sheet missing %q", want)
		}
	}
	// Markup in cell values must be escaped, not emitted raw.
	if strings.Contains(sheet, "<&>") {
		t.Fatalf("unescaped cell content in sheet")
	}
	if !strings.Contains(sheet, "Bo &lt;&amp;&gt; Berg") {
		t.Fatalf("expected escaped cell content, sheet: %.200s", sheet)
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	payload, err := WriteXLSX(nil)
	if err != nil {
		t.Fatalf("write xlsx failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("output is not a zip container: %v", err)
	}
	// Header row still present.
	for _, f := range zr.File {
		if f.Name == "xl/worksheets/sheet1.xml" {
			rc, _ := f.Open()
			raw, _ := io.ReadAll(rc)
			rc.Close()
			if !strings.Contains(string(raw), "First Name") {
				t.Fatalf("expected header row in empty export")
			}
		}
	}
}

func TestColumnRef(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 12: "M", 25: "Z", 26: "AA"}
	for i, want := range cases {
		if got := columnRef(i); got != want {
			t.Fatalf("columnRef(%d): expected %s got %s", i, want, got)
		}
	}
}
