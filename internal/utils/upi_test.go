package utils

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildUPIPayURI(t *testing.T) {
	uri, err := BuildUPIPayURI("giver@okbank", "Asha", 300, "ride share")
	if err != nil {
		t.Fatalf("BuildUPIPayURI: %v", err)
	}
	if !strings.HasPrefix(uri, "upi://pay?") {
		t.Fatalf("uri = %q, want upi://pay? prefix", uri)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("parse uri: %v", err)
	}
	q := parsed.Query()
	if q.Get("pa") != "giver@okbank" {
		t.Errorf("pa = %q", q.Get("pa"))
	}
	if q.Get("am") != "300.00" {
		t.Errorf("am = %q, want 300.00", q.Get("am"))
	}
	if q.Get("cu") != DefaultCurrency {
		t.Errorf("cu = %q, want %s", q.Get("cu"), DefaultCurrency)
	}
	if q.Get("tn") != "ride share" {
		t.Errorf("tn = %q", q.Get("tn"))
	}
}

func TestBuildUPIPayURIErrors(t *testing.T) {
	if _, err := BuildUPIPayURI("", "Asha", 100, ""); err == nil {
		t.Error("expected error for empty payee")
	}
	if _, err := BuildUPIPayURI("giver@okbank", "Asha", -1, ""); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestIsValidUPIID(t *testing.T) {
	valid := []string{"asha@okbank", "a.b-c_d@upi", "user123@YBL"}
	for _, id := range valid {
		if !IsValidUPIID(id) {
			t.Errorf("IsValidUPIID(%q) = false, want true", id)
		}
	}

	invalid := []string{"", "asha", "@okbank", "asha@", "asha@ok bank", "a@b@c", "as ha@upi"}
	for _, id := range invalid {
		if IsValidUPIID(id) {
			t.Errorf("IsValidUPIID(%q) = true, want false", id)
		}
	}
}
