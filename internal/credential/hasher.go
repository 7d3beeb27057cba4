// Package credential hashes and verifies passwords with Argon2id.
//
// Encoded hashes are self-describing PHC strings:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt_b64>$<key_b64>
//
// so verification reads its parameters from the stored value. Argon2id is CPU
// and memory heavy (64 MiB per call), so the number of concurrent computations
// is bounded by a weighted semaphore; callers wait on their request context.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// Fixed cost parameters. Not externally tunable.
const (
	MemoryKiB   uint32 = 64 * 1024
	Iterations  uint32 = 3
	Parallelism uint8  = 4
	SaltLength         = 16
	KeyLength   uint32 = 32
)

const argon2Version = 19

// Hasher produces and checks encoded Argon2id hashes.
type Hasher struct {
	sem *semaphore.Weighted
}

// NewHasher bounds concurrent hash computations to concurrency (at least 1).
func NewHasher(concurrency int) *Hasher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Hasher{sem: semaphore.NewWeighted(int64(concurrency))}
}

// ConcurrencyFromEnv reads HASH_CONCURRENCY, defaulting to the number of CPUs.
func ConcurrencyFromEnv() int {
	if v := os.Getenv("HASH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// Hash returns a freshly salted encoded hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, Iterations, MemoryKiB, Parallelism, KeyLength)
	h.sem.Release(1)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, MemoryKiB, Iterations, Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encoded. A malformed or out-of-bounds
// hash is simply not verified. The only error is a context failure while
// waiting for a hashing slot.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	p, salt, expected, ok := decode(encoded)
	if !ok {
		return false, nil
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), salt, p.iterations, p.memoryKiB, p.parallelism, uint32(len(expected))) // #nosec G115 -- bounded by decode
	h.sem.Release(1)

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

type params struct {
	memoryKiB   uint32
	iterations  uint32
	parallelism uint8
}

// decode parses an encoded hash. Parameters larger than twice the fixed costs
// are rejected so a tampered row cannot make verification arbitrarily expensive.
func decode(encoded string) (params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params{}, nil, nil, false
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return params{}, nil, nil, false
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return params{}, nil, nil, false
	}
	if mem == 0 || it == 0 || par == 0 {
		return params{}, nil, nil, false
	}
	if mem > MemoryKiB*2 || it > Iterations*2 || par > uint32(Parallelism)*2 {
		return params{}, nil, nil, false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return params{}, nil, nil, false
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return params{}, nil, nil, false
	}

	return params{memoryKiB: mem, iterations: it, parallelism: uint8(par)}, salt, key, true
}
