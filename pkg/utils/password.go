package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength = 16
	keyLength  = 32
)

var ErrInvalidHash = errors.New("invalid hash format")

// Argon2Params controls the cost of Hash. The parameters are encoded
// into every hash so verification keeps working after they change.
type Argon2Params struct {
	Time        uint32
	Memory      uint32 // KiB
	Parallelism uint8
}

// DefaultArgon2Params is the production cost: 64 MiB, 3 passes, 2 lanes.
var DefaultArgon2Params = Argon2Params{Time: 3, Memory: 64 * 1024, Parallelism: 2}

// Hash returns $argon2id$v=19$m=<memory>,t=<time>,p=<lanes>$salt$hash
func (p Argon2Params) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify checks password against a hash produced by any Argon2Params; the
// receiver is unused beyond satisfying the hasher interface.
func (p Argon2Params) Verify(password, hashedPassword string) (bool, error) {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrInvalidHash
	}

	var params Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Parallelism); err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	computedHash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(computedHash, hash) == 1, nil
}
