package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash signals a string that is not a PHC-formatted Argon2id hash.
var ErrInvalidHash = errors.New("invalid argon2id hash")

var b64 = base64.RawStdEncoding

// Params are the Argon2id cost settings written into every hash.
type Params struct {
	MemoryKB   uint32
	Iterations uint32
	Threads    uint8
	SaltLen    uint32
	KeyLen     uint32
}

// ParamsFromConfig clamps configured costs into a range argon2 accepts.
func ParamsFromConfig(cfg config.PasswordConfig) Params {
	return Params{
		MemoryKB:   uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		Iterations: uint32(clamp(cfg.ArgonTime, 1, 10)),
		Threads:    uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:    uint32(clamp(cfg.ArgonSaltLen, 8, 64)),
		KeyLen:     uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

// Hash derives a key from password with a fresh salt and encodes it as
// $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (p Params) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKB, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKB, p.Iterations, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// NeedsRehash reports whether encoded was produced with cheaper settings
// than p, or cannot be read at all.
func (p Params) NeedsRehash(encoded string) bool {
	h, err := parseHash(encoded)
	if err != nil {
		return true
	}
	return h.params.MemoryKB < p.MemoryKB || h.params.Iterations < p.Iterations || h.params.KeyLen < p.KeyLen
}

// Verify recomputes the key with the settings stored in encoded and
// compares in constant time. A malformed hash is an error, a mismatch is not.
func Verify(password, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), h.salt, h.params.Iterations, h.params.MemoryKB, h.params.Threads, h.params.KeyLen)
	return subtle.ConstantTimeCompare(h.key, key) == 1, nil
}

// CheckHash validates the encoding without deriving a key.
func CheckHash(encoded string) error {
	_, err := parseHash(encoded)
	return err
}

type parsedHash struct {
	params Params
	salt   []byte
	key    []byte
}

func parseHash(encoded string) (parsedHash, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return parsedHash{}, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return parsedHash{}, ErrInvalidHash
	}

	var h parsedHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.params.MemoryKB, &h.params.Iterations, &h.params.Threads); err != nil {
		return parsedHash{}, ErrInvalidHash
	}
	if h.params.MemoryKB == 0 || h.params.Iterations == 0 || h.params.Threads == 0 {
		return parsedHash{}, ErrInvalidHash
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil || len(h.salt) == 0 {
		return parsedHash{}, ErrInvalidHash
	}
	if h.key, err = b64.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return parsedHash{}, ErrInvalidHash
	}
	h.params.SaltLen = uint32(len(h.salt))
	h.params.KeyLen = uint32(len(h.key))
	return h, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// EqualStrings compares two secrets without leaking where they differ.
func EqualStrings(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
