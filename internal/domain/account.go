package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidParameter reports generator input that cannot produce a sequence.
var ErrInvalidParameter = errors.New("invalid parameter")

// Account is a single identity to provision: the full address used as the
// unique key upstream, plus the credential it will be created with.
// Immutable once generated; consumed read-only downstream.
type Account struct {
	// Address is the full mail address (localpart@domain).
	Address string

	// Password is the credential the account is created with.
	Password string
}

// GenerateSequence produces the ordered account list for one batch run.
//
// Local parts are base plus a zero-padded sequential index starting at 1.
// The pad width is max(2, digits(count)) so lexical ordering of generated
// names matches numeric ordering regardless of count magnitude
// (count=100 -> abc001..abc100, count=5 -> abc01..abc05).
//
// Deterministic: identical inputs yield an identical sequence, so a
// partially-completed batch can be re-derived and re-run; duplicates
// resolve upstream as idempotent successes.
func GenerateSequence(base, domain, password string, count int) ([]Account, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: base name is empty", ErrInvalidParameter)
	}
	if !strings.Contains(domain, ".") {
		return nil, fmt.Errorf("%w: domain %q has no separator", ErrInvalidParameter, domain)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count %d, want >= 1", ErrInvalidParameter, count)
	}

	width := len(strconv.Itoa(count))
	if width < 2 {
		width = 2
	}

	accounts := make([]Account, 0, count)
	for i := 1; i <= count; i++ {
		accounts = append(accounts, Account{
			Address:  fmt.Sprintf("%s%0*d@%s", base, width, i, domain),
			Password: password,
		})
	}
	return accounts, nil
}
