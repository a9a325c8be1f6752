// Package credential decrypts the provider credentials stored in tenant model
// bindings. The cipher itself lives in the fernet library; this package only
// adapts it to the Decrypter interface the model client manager consumes.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// Decrypter turns a stored ciphertext into the plaintext provider credential.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// DecrypterFunc adapts a function to the Decrypter interface.
type DecrypterFunc func(ciphertext string) (string, error)

// Decrypt implements Decrypter.
func (f DecrypterFunc) Decrypt(ciphertext string) (string, error) { return f(ciphertext) }

// ErrInvalidToken is returned when a token fails verification.
var ErrInvalidToken = errors.New("invalid credential token")

// Fernet decrypts Fernet tokens. Tokens never expire.
type Fernet struct {
	keys []*fernet.Key
}

// NewFernet parses one or more base64 url-safe encoded Fernet keys. The first
// key is the primary; the rest are accepted for rotation.
func NewFernet(keys ...string) (*Fernet, error) {
	if len(keys) == 0 {
		return nil, errors.New("fernet key must be provided")
	}
	parsed, err := fernet.DecodeKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("decode fernet key: %w", err)
	}
	return &Fernet{keys: parsed}, nil
}

// Decrypt implements Decrypter.
func (f *Fernet) Decrypt(ciphertext string) (string, error) {
	// ttl 0 disables the age check
	msg := fernet.VerifyAndDecrypt([]byte(ciphertext), time.Duration(0), f.keys)
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}

// Encrypt produces a token with the primary key. Used by the administrative
// boundary and tests.
func (f *Fernet) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), f.keys[0])
	if err != nil {
		return "", err
	}
	return string(tok), nil
}
