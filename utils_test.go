package gatepass

import (
	"testing"
)

func TestVerifyReferencePrecedence(t *testing.T) {
	cases := []struct {
		name          string
		accreditation string
		badge         string
		id            string
		expect        string
	}{
		{"accreditation id wins", "ACC-2026-DEADBEEF", "ATH-001", "rec-1", "ACC-2026-DEADBEEF"},
		{"badge number next", "", "ATH-001", "rec-1", "ATH-001"},
		{"record id last", "", "", "rec-1", "rec-1"},
	}

	for _, tc := range cases {
		got := VerifyReference(tc.accreditation, tc.badge, tc.id)
		if got != tc.expect {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.expect, got)
		}
	}
}

func TestVerifyURL(t *testing.T) {
	got := VerifyURL("https://accred.example.com", "ACC-2026-DEADBEEF")
	want := "https://accred.example.com/verify/ACC-2026-DEADBEEF"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}

	got = VerifyURL("https://accred.example.com", "A B/C")
	want = "https://accred.example.com/verify/A%20B%2FC"
	if got != want {
		t.Fatalf("expected escaped reference, got %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename(`Ann/Marie O'Neil<1>`)
	for _, c := range `/\<>:"|?*` {
		for _, r := range got {
			if r == c {
				t.Fatalf("sanitized name still contains %q: %s", c, got)
			}
		}
	}
}

func TestParseSizeKey(t *testing.T) {
	if ParseSizeKey("a4") != SizeA4 {
		t.Fatalf("expected a4 to parse")
	}
	if ParseSizeKey("") != SizeA6 {
		t.Fatalf("expected empty size to default to a6")
	}
	if ParseSizeKey("letter") != SizeA6 {
		t.Fatalf("expected unknown size to default to a6")
	}
}
