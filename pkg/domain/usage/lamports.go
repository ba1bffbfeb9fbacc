package usage

import (
	"fmt"
	"strconv"
	"strings"
)

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000

// SolToLamports converts a decimal SOL amount expressed as a string into
// lamports without going through binary floating point. Accepts at most
// nine fractional digits.
func SolToLamports(amount string) (int64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount %q", amount)
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 9 {
		return 0, fmt.Errorf("amount %q has more than 9 decimal places", amount)
	}
	frac += strings.Repeat("0", 9-len(frac))

	wholePart, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	fracPart := int64(0)
	if frac != "" {
		fracPart, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
	}
	if wholePart > (1<<63-1)/LamportsPerSol {
		return 0, fmt.Errorf("amount %q overflows lamports", amount)
	}
	return wholePart*LamportsPerSol + fracPart, nil
}

// LamportsToSol renders lamports as a decimal SOL string with trailing
// zeros trimmed.
func LamportsToSol(lamports int64) string {
	sign := ""
	if lamports < 0 {
		sign = "-"
		lamports = -lamports
	}
	whole := lamports / LamportsPerSol
	frac := lamports % LamportsPerSol
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}
	s := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%s%d.%s", sign, whole, s)
}
