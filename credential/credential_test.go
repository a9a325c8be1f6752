package credential

import (
	"errors"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	require.NoError(t, k.Generate())
	return k.Encode()
}

func TestFernet_RoundTrip(t *testing.T) {
	f, err := NewFernet(newKey(t))
	require.NoError(t, err)

	tok, err := f.Encrypt("sk-secret")
	require.NoError(t, err)
	assert.NotContains(t, tok, "sk-secret")

	plain, err := f.Decrypt(tok)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", plain)
}

func TestFernet_WrongKey(t *testing.T) {
	a, err := NewFernet(newKey(t))
	require.NoError(t, err)
	b, err := NewFernet(newKey(t))
	require.NoError(t, err)

	tok, err := a.Encrypt("sk-secret")
	require.NoError(t, err)

	_, err = b.Decrypt(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = b.Decrypt("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFernet_KeyRotation(t *testing.T) {
	oldKey, newK := newKey(t), newKey(t)
	old, err := NewFernet(oldKey)
	require.NoError(t, err)
	tok, err := old.Encrypt("sk-old")
	require.NoError(t, err)

	rotated, err := NewFernet(newK, oldKey)
	require.NoError(t, err)
	plain, err := rotated.Decrypt(tok)
	require.NoError(t, err)
	assert.Equal(t, "sk-old", plain)
}

func TestNewFernet_Invalid(t *testing.T) {
	_, err := NewFernet()
	assert.Error(t, err)
	_, err = NewFernet("not-a-key")
	assert.Error(t, err)
}

func TestDecrypterFunc(t *testing.T) {
	var d Decrypter = DecrypterFunc(func(c string) (string, error) {
		if c == "bad" {
			return "", errors.New("nope")
		}
		return "plain:" + c, nil
	})

	out, err := d.Decrypt("x")
	require.NoError(t, err)
	assert.Equal(t, "plain:x", out)
	_, err = d.Decrypt("bad")
	assert.Error(t, err)
}
