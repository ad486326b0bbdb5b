package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildUPIPayURI builds a upi://pay deep link for the giver's stored payment
// address. The string is rendered as a QR code by the client; nothing is
// charged through the platform.
func BuildUPIPayURI(payeeUPIID, payeeName string, amount float64, note string) (string, error) {
	if strings.TrimSpace(payeeUPIID) == "" {
		return "", fmt.Errorf("payee upi id is empty")
	}
	if amount < 0 {
		return "", fmt.Errorf("amount must not be negative")
	}

	params := url.Values{}
	params.Set("pa", payeeUPIID)
	if payeeName != "" {
		params.Set("pn", payeeName)
	}
	if amount > 0 {
		params.Set("am", fmt.Sprintf("%.2f", amount))
	}
	params.Set("cu", DefaultCurrency)
	if note != "" {
		params.Set("tn", note)
	}

	return "upi://pay?" + params.Encode(), nil
}

// IsValidUPIID checks the conventional handle@psp shape of a UPI address.
func IsValidUPIID(upiID string) bool {
	parts := strings.Split(upiID, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	for _, r := range parts[0] {
		if !isUPIHandleRune(r) {
			return false
		}
	}
	for _, r := range parts[1] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func isUPIHandleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}
