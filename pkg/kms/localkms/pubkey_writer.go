/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package localkms

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/protobuf/proto"
	ed25519pb "github.com/google/tink/go/proto/ed25519_go_proto"
	tinkpb "github.com/google/tink/go/proto/tink_go_proto"
)

const ed25519VerifierTypeURL = "type.googleapis.com/google.crypto.tink.Ed25519PublicKey"

// PubKeyWriter writes the raw bytes of a public keyset's primary key.
// Only Ed25519 public keysets are supported.
type PubKeyWriter struct {
	w io.Writer
}

// NewWriter creates a new PubKeyWriter instance.
func NewWriter(w io.Writer) *PubKeyWriter {
	return &PubKeyWriter{w: w}
}

// Write writes the public keyset to the underlying w.Writer.
func (p *PubKeyWriter) Write(ks *tinkpb.Keyset) error {
	return write(p.w, ks)
}

// WriteEncrypted writes the encrypted keyset to the underlying w.Writer.
func (p *PubKeyWriter) WriteEncrypted(_ *tinkpb.EncryptedKeyset) error {
	return errors.New("write encrypted function not supported")
}

func write(w io.Writer, msg *tinkpb.Keyset) error {
	ks := msg.Key
	primaryKID := msg.PrimaryKeyId

	for _, key := range ks {
		if key.KeyId != primaryKID || key.Status != tinkpb.KeyStatusType_ENABLED {
			continue
		}

		if key.KeyData.TypeUrl != ed25519VerifierTypeURL {
			return fmt.Errorf("key type not supported for writing raw key bytes: %s", key.KeyData.TypeUrl)
		}

		pubKeyProto := new(ed25519pb.Ed25519PublicKey)

		err := proto.Unmarshal(key.KeyData.Value, pubKeyProto)
		if err != nil {
			return fmt.Errorf("unmarshal ed25519 public key proto: %w", err)
		}

		_, err = w.Write(pubKeyProto.KeyValue)

		return err
	}

	return errors.New("key not written")
}
