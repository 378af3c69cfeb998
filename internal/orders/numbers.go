package orders

import (
	"context"
	"crypto/rand"
	"fmt"

	pkgerrors "github.com/vendorhub/vendorhub-backend/pkg/errors"
)

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxUnbiasedByte is the largest multiple of len(orderNumberCharset) that fits
// in a byte. Bytes at or above it are rejected so every charset index is
// equally likely.
const maxUnbiasedByte = 256 - 256%len(orderNumberCharset)

// generateOrderNumber draws length characters uniformly from A-Z0-9.
func generateOrderNumber(length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading randomness: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, orderNumberCharset[int(b)%len(orderNumberCharset)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// allocateOrderNumber generates candidates until one passes the existence
// check, giving up after maxAttempts. The unique index on order_number is the
// final arbiter; this loop only shrinks the collision window.
func allocateOrderNumber(ctx context.Context, repo Repository, length, maxAttempts int) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := generateOrderNumber(length)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		exists, err := repo.OrderNumberExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique order number")
}
