/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	key, err := Create()
	require.NoError(t, err)

	require.NotEmpty(t, key.ID)
	require.Equal(t, ED25519Type, key.Type)
	require.Len(t, key.PublicKey, ed25519.PublicKeySize)
	require.True(t, key.CanSign())
}

func TestNewDirectKey(t *testing.T) {
	_, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		key, err := NewDirectKey("key-1", privKey)
		require.NoError(t, err)

		require.Equal(t, "key-1", key.ID)
		require.EqualValues(t, privKey.Public().(ed25519.PublicKey), key.PublicKey)
		require.True(t, key.CanSign())
	})

	t.Run("generated ID", func(t *testing.T) {
		key, err := NewDirectKey("", privKey)
		require.NoError(t, err)
		require.NotEmpty(t, key.ID)
	})

	t.Run("bad private key length", func(t *testing.T) {
		_, err := NewDirectKey("key-1", []byte("too short"))
		require.Error(t, err)
	})
}

func TestNewSignerBackedKey(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	t.Run("with explicit public key", func(t *testing.T) {
		key, err := NewSignerBackedKey("key-1", pubKey, &stubSigner{privKey: privKey})
		require.NoError(t, err)

		require.True(t, key.CanSign())

		msg := []byte("test message")

		signature, err := key.Sign(msg)
		require.NoError(t, err)
		require.True(t, key.Verify(msg, signature))
	})

	t.Run("public key exported from signer", func(t *testing.T) {
		key, err := NewSignerBackedKey("key-1", nil, &stubExportingSigner{
			stubSigner: stubSigner{privKey: privKey},
			pubKey:     pubKey,
		})
		require.NoError(t, err)
		require.EqualValues(t, pubKey, key.PublicKey)
	})

	t.Run("no public key and signer cannot export one", func(t *testing.T) {
		_, err := NewSignerBackedKey("key-1", nil, &stubSigner{privKey: privKey})
		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot export")
	})

	t.Run("nil signer", func(t *testing.T) {
		_, err := NewSignerBackedKey("key-1", pubKey, nil)
		require.Error(t, err)
	})

	t.Run("delegate failure", func(t *testing.T) {
		key, err := NewSignerBackedKey("key-1", pubKey, &stubSigner{err: errors.New("vault is sealed")})
		require.NoError(t, err)

		_, err = key.Sign([]byte("msg"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "vault is sealed")
	})
}

func TestNewPublicKey(t *testing.T) {
	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		key, err := NewPublicKey("key-1", pubKey)
		require.NoError(t, err)
		require.False(t, key.CanSign())
	})

	t.Run("bad public key length", func(t *testing.T) {
		_, err := NewPublicKey("key-1", []byte("too short"))
		require.Error(t, err)
	})
}

func TestKey_Sign(t *testing.T) {
	t.Run("direct key", func(t *testing.T) {
		key, err := Create()
		require.NoError(t, err)

		msg := []byte("test message")

		signature, err := key.Sign(msg)
		require.NoError(t, err)
		require.True(t, key.Verify(msg, signature))
		require.False(t, key.Verify([]byte("other message"), signature))
	})

	t.Run("public-only key", func(t *testing.T) {
		pubKey, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		key, err := NewPublicKey("key-1", pubKey)
		require.NoError(t, err)

		_, err = key.Sign([]byte("msg"))
		require.ErrorIs(t, err, ErrNoSigningMaterial)
	})
}

func TestKey_Verify_MalformedInput(t *testing.T) {
	key, err := Create()
	require.NoError(t, err)

	require.False(t, key.Verify([]byte("msg"), nil))
	require.False(t, key.Verify([]byte("msg"), []byte("not a signature")))

	badKey := &Key{PublicKey: []byte("short")}
	require.False(t, badKey.Verify([]byte("msg"), make([]byte, ed25519.SignatureSize)))
}

func TestKey_ToPublicKey(t *testing.T) {
	key, err := Create()
	require.NoError(t, err)

	key.Metadata = map[string]interface{}{"purpose": "assertion"}

	msg := []byte("test message")

	signature, err := key.Sign(msg)
	require.NoError(t, err)

	pubOnly := key.ToPublicKey()

	require.Equal(t, key.ID, pubOnly.ID)
	require.Equal(t, key.Type, pubOnly.Type)
	require.Equal(t, key.Metadata, pubOnly.Metadata)
	require.False(t, pubOnly.CanSign())
	require.True(t, pubOnly.Verify(msg, signature))

	_, err = pubOnly.Sign(msg)
	require.ErrorIs(t, err, ErrNoSigningMaterial)

	// downgrading again is a no-op
	require.False(t, pubOnly.ToPublicKey().CanSign())

	// the copy owns its public key bytes
	pubOnly.PublicKey[0] ^= 0xFF
	require.True(t, key.Verify(msg, signature))
}

type stubSigner struct {
	privKey ed25519.PrivateKey
	err     error
}

func (s *stubSigner) Sign(data []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	return ed25519.Sign(s.privKey, data), nil
}

type stubExportingSigner struct {
	stubSigner

	pubKey []byte
}

func (s *stubExportingSigner) PublicKeyBytes() ([]byte, error) {
	return s.pubKey, nil
}
