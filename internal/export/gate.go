package export

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

var (
	ErrInvalidPasscodeHash         = errors.New("invalid passcode hash format")
	ErrIncompatiblePasscodeVersion = errors.New("incompatible passcode hash version")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// CreatePasscodeHash derives an argon2id hash for the export passcode. It is
// used by the hash generation helper, not by the running service.
func CreatePasscodeHash(passcode string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(passcode), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Format is $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

// Gate protects on-demand spreadsheet downloads behind a shared passcode.
type Gate struct {
	hash string
}

// NewGate wraps the stored argon2id hash of the passcode.
func NewGate(hash string) *Gate {
	return &Gate{hash: hash}
}

// Verify checks the supplied passcode against the stored hash. A wrong
// passcode reports booking.ErrPermission; a malformed stored hash reports a
// configuration error instead.
func (g *Gate) Verify(passcode string) error {
	parts := strings.Split(g.hash, "$")
	if len(parts) != 6 {
		return ErrInvalidPasscodeHash
	}

	if parts[1] != "argon2id" {
		return ErrInvalidPasscodeHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return err
	}
	if version != argon2.Version {
		return ErrIncompatiblePasscodeVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return err
	}
	params.SaltLength = uint32(len(salt))

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return err
	}
	params.KeyLength = uint32(len(decodedHash))

	comparisonHash := argon2.IDKey([]byte(passcode), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}

	return booking.ErrPermission
}
