package domain

import (
	"testing"
	"time"
)

func TestIssueTypeClassification(t *testing.T) {
	key := "0x12345678"
	expires := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		cfg  LicenseConfig
		want IssueType
	}{
		{"plain ignores key and expires", LicenseConfig{Encode: false, LicenseKey: &key, Expires: &expires}, IssuePlain},
		{"encoded bare", LicenseConfig{Encode: true}, IssueEncoded},
		{"encoded with key", LicenseConfig{Encode: true, LicenseKey: &key}, IssueEncodedLK},
		{"encoded with expires", LicenseConfig{Encode: true, Expires: &expires}, IssueEncodedExp},
		{"encoded with both", LicenseConfig{Encode: true, LicenseKey: &key, Expires: &expires}, IssueEncodedExpLK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.IssueType(); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
			// Pure function: repeated evaluation agrees.
			if got := tc.cfg.IssueType(); got != tc.want {
				t.Errorf("Expected stable classification, got %s", got)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	expires := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if !(IssuedLicense{}).IsPermanent() {
		t.Errorf("Expected record without expires to be permanent")
	}
	if (IssuedLicense{Expires: &expires}).IsPermanent() {
		t.Errorf("Expected record with expires to not be permanent")
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2026, 3, 1, 2, 30, 0, 0, loc) // 2026-02-28 21:30 UTC

	got := DateOf(ts)
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
