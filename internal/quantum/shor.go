// Package quantum is the illustrative Shor's-algorithm demonstration: it
// factors a small composite derived from a user's UID and PIN to show how
// thin those secrets are against period finding. Pure demo material - it
// has no bearing on settlement correctness and touches no bank state. The
// quantum phase-estimation step is replaced by its classical equivalent,
// which is honest at these magnitudes.
package quantum

import (
	"math/rand"
	"strconv"

	"upi/pkg/errors"
)

// maxPeriodSearch bounds the classical period scan.
const maxPeriodSearch = 100

// attempts bounds how many random bases the factoring loop tries.
const attempts = 5

// FindPeriod returns the smallest r with a^r = 1 (mod n), or 0 when no
// period at most maxPeriodSearch exists.
func FindPeriod(a, n uint64) uint64 {
	if gcd(a, n) != 1 {
		return 0
	}
	acc := uint64(1)
	for r := uint64(1); r <= maxPeriodSearch; r++ {
		acc = acc * a % n
		if acc == 1 {
			return r
		}
	}
	return 0
}

// Factor runs the Shor factoring loop: random base, gcd shortcut, period
// finding, then gcd(a^(r/2) +/- 1, n). Returns the two factors, or (n, 1)
// when n resists the bounded search (prime, or just unlucky bases).
func Factor(n uint64) (uint64, uint64) {
	if n < 2 {
		return n, 1
	}
	if n%2 == 0 {
		return 2, n / 2
	}

	for i := 0; i < attempts; i++ {
		a := 2 + uint64(rand.Int63n(int64(n-2)))
		if d := gcd(a, n); d > 1 {
			return d, n / d
		}

		r := FindPeriod(a, n)
		if r == 0 || r%2 != 0 {
			continue
		}

		half := powMod(a, r/2, n)
		if f := gcd(half-1+n, n); f > 1 && f < n {
			return f, n / f
		}
		if f := gcd(half+1, n); f > 1 && f < n {
			return f, n / f
		}
	}
	return n, 1
}

// CompositeFromCredentials derives the demo composite to factor: the UID's
// trailing four hex digits plus the numeric PIN.
func CompositeFromCredentials(uid, pin string) (uint64, error) {
	if len(uid) < 4 {
		return 0, errors.Wrap(errors.ErrInvalidMerchantID, "uid too short")
	}
	uidPart, err := strconv.ParseUint(uid[len(uid)-4:], 16, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse uid suffix")
	}
	pinPart, err := strconv.ParseUint(pin, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse pin")
	}
	return uidPart + pinPart, nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func powMod(base, exp, mod uint64) uint64 {
	result := uint64(1)
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = result * base % mod
		}
		base = base * base % mod
		exp >>= 1
	}
	return result
}
