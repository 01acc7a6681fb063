package catalog

import (
	"strings"

	"github.com/varejo/backend/internal/domain/shared"
)

// MinBarcodeDigits is the minimum number of digits for a viable trade item
// code (EAN-8 is the shortest barcode we accept; internal codes longer than
// 14 digits pass through unchanged).
const MinBarcodeDigits = 8

// ErrBarcodeTooShort is returned when a normalized code has fewer digits
// than the minimum viable barcode length.
var ErrBarcodeTooShort = shared.NewDomainError("BARCODE_TOO_SHORT", "Barcode must have at least 8 digits")

// NormalizeBarcode canonicalizes a trade item code: every non-digit character
// is stripped and the remaining digits must reach the minimum length.
// Normalizing an already-normalized code is a no-op.
func NormalizeBarcode(raw string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	if len(digits) < MinBarcodeDigits {
		return "", ErrBarcodeTooShort
	}
	return digits, nil
}
