package domain

import (
	"testing"
)

func TestDownloadable(t *testing.T) {
	cases := []struct {
		enabled, isActive, want bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, tc := range cases {
		s := Script{Enabled: tc.enabled, IsActive: tc.isActive}
		if got := s.Downloadable(); got != tc.want {
			t.Errorf("enabled=%v is_active=%v: expected %v, got %v", tc.enabled, tc.isActive, tc.want, got)
		}
	}
}

func TestAllowsIssue(t *testing.T) {
	s := Script{
		AllowIssuePlain:        true,
		AllowIssueEncoded:      false,
		AllowIssueEncodedLK:    true,
		AllowIssueEncodedExp:   false,
		AllowIssueEncodedLKExp: true,
	}

	cases := []struct {
		issueType IssueType
		want      bool
	}{
		{IssuePlain, true},
		{IssueEncoded, false},
		{IssueEncodedLK, true},
		{IssueEncodedExp, false},
		{IssueEncodedExpLK, true},
		{IssueType("BOGUS"), false},
	}
	for _, tc := range cases {
		if got := s.AllowsIssue(tc.issueType); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.issueType, tc.want, got)
		}
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in, want Page
	}{
		{Page{}, Page{Limit: DefaultPageLimit}},
		{Page{Limit: -5, Offset: -1}, Page{Limit: DefaultPageLimit}},
		{Page{Limit: 5000}, Page{Limit: MaxPageLimit}},
		{Page{Limit: 10, Offset: 20}, Page{Limit: 10, Offset: 20}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Errorf("%+v: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
}
