/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package websigner

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/attestify/vc-framework-go/pkg/kms"
)

func TestRemoteSigner_Sign(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		server, keyURL := newTestServer(t, privKey, pubKey, 0)
		defer server.Close()

		signer := New(keyURL, http.DefaultClient)

		msg := []byte("test message")

		sig, err := signer.Sign(msg)
		require.NoError(t, err)
		require.True(t, ed25519.Verify(pubKey, msg, sig))
	})

	t.Run("transient server failures are retried", func(t *testing.T) {
		server, keyURL := newTestServer(t, privKey, pubKey, 2)
		defer server.Close()

		signer := New(keyURL, http.DefaultClient,
			WithMaxRetries(3), WithInitialBackoff(time.Millisecond))

		msg := []byte("test message")

		sig, err := signer.Sign(msg)
		require.NoError(t, err)
		require.True(t, ed25519.Verify(pubKey, msg, sig))
	})

	t.Run("retries exhausted", func(t *testing.T) {
		server, keyURL := newTestServer(t, privKey, pubKey, 10)
		defer server.Close()

		signer := New(keyURL, http.DefaultClient,
			WithMaxRetries(1), WithInitialBackoff(time.Millisecond))

		_, err := signer.Sign([]byte("test message"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "posting Sign failed")
	})

	t.Run("client error is not retried", func(t *testing.T) {
		var calls int32

		router := mux.NewRouter()
		router.HandleFunc("/keys/{keyID}/sign", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)

			encodeErr := json.NewEncoder(w).Encode(&errMessage{Error: "unknown key"})
			require.NoError(t, encodeErr)
		}).Methods(http.MethodPost)

		server := httptest.NewServer(router)
		defer server.Close()

		signer := New(server.URL+"/keys/key-1", http.DefaultClient,
			WithMaxRetries(3), WithInitialBackoff(time.Millisecond))

		_, err := signer.Sign([]byte("test message"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown key")
		require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("transport error", func(t *testing.T) {
		signer := New("http://localhost:1", http.DefaultClient,
			WithMaxRetries(1), WithInitialBackoff(time.Millisecond))

		_, err := signer.Sign([]byte("test message"))
		require.Error(t, err)
	})
}

func TestRemoteSigner_PublicKeyBytes(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	server, keyURL := newTestServer(t, privKey, pubKey, 0)
	defer server.Close()

	signer := New(keyURL, http.DefaultClient)

	got, err := signer.PublicKeyBytes()
	require.NoError(t, err)
	require.EqualValues(t, pubKey, got)
}

func TestRemoteSigner_WithHeaders(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var gotAuthorization string

	router := mux.NewRouter()
	router.HandleFunc("/keys/{keyID}/sign", func(w http.ResponseWriter, r *http.Request) {
		gotAuthorization = r.Header.Get("Authorization")

		var req signReq

		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		encodeErr := json.NewEncoder(w).Encode(&signResp{Signature: ed25519.Sign(privKey, req.Message)})
		require.NoError(t, encodeErr)
	}).Methods(http.MethodPost)

	server := httptest.NewServer(router)
	defer server.Close()

	signer := New(server.URL+"/keys/key-1", http.DefaultClient,
		WithHeaders(func(req *http.Request) (*http.Header, error) {
			return &http.Header{"Authorization": []string{"Bearer token-1"}}, nil
		}))

	msg := []byte("test message")

	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	require.True(t, ed25519.Verify(pubKey, msg, sig))
	require.Equal(t, "Bearer token-1", gotAuthorization)
}

func TestRemoteSigner_BacksSignerBackedKey(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	server, keyURL := newTestServer(t, privKey, pubKey, 0)
	defer server.Close()

	key, err := kms.NewSignerBackedKey("remote-key", nil, New(keyURL, http.DefaultClient))
	require.NoError(t, err)
	require.EqualValues(t, pubKey, key.PublicKey)

	msg := []byte("test message")

	sig, err := key.Sign(msg)
	require.NoError(t, err)
	require.True(t, key.Verify(msg, sig))
}

// newTestServer starts a remote signing service for a single Ed25519 key.
// The first failures sign requests are answered with a 500 status.
func newTestServer(t *testing.T, privKey ed25519.PrivateKey, pubKey ed25519.PublicKey,
	failures int32) (*httptest.Server, string) {
	t.Helper()

	var calls int32

	router := mux.NewRouter()

	router.HandleFunc("/keys/{keyID}/sign", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= failures {
			w.WriteHeader(http.StatusInternalServerError)

			encodeErr := json.NewEncoder(w).Encode(&errMessage{Error: "downstream HSM timeout"})
			require.NoError(t, encodeErr)

			return
		}

		var req signReq

		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		encodeErr := json.NewEncoder(w).Encode(&signResp{Signature: ed25519.Sign(privKey, req.Message)})
		require.NoError(t, encodeErr)
	}).Methods(http.MethodPost)

	router.HandleFunc("/keys/{keyID}", func(w http.ResponseWriter, r *http.Request) {
		encodeErr := json.NewEncoder(w).Encode(&exportKeyResp{PublicKey: pubKey})
		require.NoError(t, encodeErr)
	}).Methods(http.MethodGet)

	server := httptest.NewServer(router)

	return server, server.URL + "/keys/key-1"
}
