/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package websigner provides a kms.Signer backed by a remote signing service
// over HTTP, e.g. a vault or an HSM gateway. Transient failures (transport
// errors, 5xx responses) are retried with exponential backoff; client errors
// are not retried.
package websigner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/attestify/vc-framework-go/pkg/common/log"
)

// ContentType is the remote signer http content-type.
const ContentType = "application/json"

var logger = log.New("vc-framework/kms/websigner")

// HTTPClient interface for the http client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type errMessage struct {
	Error string `json:"errMessage"`
}

type signReq struct {
	Message []byte `json:"message"`
}

type signResp struct {
	Signature []byte `json:"signature"`
}

type exportKeyResp struct {
	PublicKey []byte `json:"public_key"`
}

// Opts configures a RemoteSigner.
type Opts struct {
	maxRetries  uint64
	initialWait time.Duration
	headersFunc func(req *http.Request) (*http.Header, error)
}

// Opt is a RemoteSigner option.
type Opt func(*Opts)

// WithMaxRetries sets the number of retries for transient failures.
func WithMaxRetries(retries uint64) Opt {
	return func(o *Opts) {
		o.maxRetries = retries
	}
}

// WithInitialBackoff sets the initial backoff interval between retries.
func WithInitialBackoff(wait time.Duration) Opt {
	return func(o *Opts) {
		o.initialWait = wait
	}
}

// WithHeaders sets an optional function adding authorization headers to requests.
func WithHeaders(headersFunc func(req *http.Request) (*http.Header, error)) Opt {
	return func(o *Opts) {
		o.headersFunc = headersFunc
	}
}

// RemoteSigner signs messages by calling a remote signing service.
// It implements kms.Signer and kms.PublicKeyExporter.
type RemoteSigner struct {
	httpClient HTTPClient
	keyURL     string
	opts       *Opts
}

// New creates a RemoteSigner for the key at keyURL.
func New(keyURL string, httpClient HTTPClient, opts ...Opt) *RemoteSigner {
	sOpts := &Opts{
		maxRetries:  3,
		initialWait: 50 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(sOpts)
	}

	return &RemoteSigner{httpClient: httpClient, keyURL: keyURL, opts: sOpts}
}

// Sign posts msg to the remote service's sign endpoint and returns the signature.
func (r *RemoteSigner) Sign(msg []byte) ([]byte, error) {
	destination := r.keyURL + "/sign"

	reqBytes, err := json.Marshal(&signReq{Message: msg})
	if err != nil {
		return nil, errors.Wrap(err, "marshal sign request")
	}

	start := time.Now()

	var httpResp signResp

	err = r.retry(func() error {
		return r.post(destination, reqBytes, &httpResp)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "posting Sign failed [%s]", destination)
	}

	logger.Debugf("call of remote Sign http request duration: %s", time.Since(start))

	return httpResp.Signature, nil
}

// PublicKeyBytes fetches the raw public key bytes of the remote key.
func (r *RemoteSigner) PublicKeyBytes() ([]byte, error) {
	httpReq, err := http.NewRequest(http.MethodGet, r.keyURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build export public key request")
	}

	var httpResp exportKeyResp

	err = r.retry(func() error {
		return r.do(httpReq, &httpResp)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting public key failed [%s]", r.keyURL)
	}

	return httpResp.PublicKey, nil
}

func (r *RemoteSigner) retry(operation func() error) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = r.opts.initialWait

	return backoff.Retry(operation, backoff.WithMaxRetries(expBackoff, r.opts.maxRetries))
}

func (r *RemoteSigner) post(destination string, body []byte, respObj interface{}) error {
	httpReq, err := http.NewRequest(http.MethodPost, destination, bytes.NewBuffer(body))
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "build request"))
	}

	httpReq.Header.Set("Content-Type", ContentType)

	return r.do(httpReq, respObj)
}

func (r *RemoteSigner) do(httpReq *http.Request, respObj interface{}) error {
	if r.opts.headersFunc != nil {
		httpHeaders, err := r.opts.headersFunc(httpReq)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "add optional request headers"))
		}

		if httpHeaders != nil {
			httpHeaders.Set("Content-Type", ContentType)
			httpReq.Header = httpHeaders.Clone()
		}
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		// transport errors are retried
		return err
	}

	defer closeResponseBody(resp.Body, "do")

	if err := checkError(resp); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return err
		}

		return backoff.Permanent(err)
	}

	return json.NewDecoder(resp.Body).Decode(respObj)
}

func checkError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errAPI errMessage

	if err := json.NewDecoder(resp.Body).Decode(&errAPI); err != nil {
		return fmt.Errorf("remote signer returned status %d", resp.StatusCode)
	}

	return errors.New(errAPI.Error)
}

func closeResponseBody(respBody io.Closer, action string) {
	err := respBody.Close()
	if err != nil {
		logger.Errorf("Failed to close response body for '%s' REST call: %s", action, err.Error())
	}
}
