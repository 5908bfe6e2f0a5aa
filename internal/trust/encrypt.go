// Copyright 2026 The HostGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trust

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const encryptInfo = "hostgrid response v1"

// EncryptedMessage is a payload sealed to a recipient's public key: an
// ephemeral ECDH exchange feeding HKDF-SHA256 into AES-256-GCM. The nonce is
// prepended to the ciphertext.
type EncryptedMessage struct {
	Encrypted    bool   `json:"encrypted"`
	EphemeralKey string `json:"ephemeral_key"`
	Ciphertext   string `json:"ciphertext"`
}

// Encrypt seals plaintext so only the holder of the recipient key can open it.
func Encrypt(recipient *ecdsa.PublicKey, plaintext []byte) (*EncryptedMessage, error) {
	ephemeral, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	key, err := deriveKey(ephemeral, recipient)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)

	ephDER, err := x509.MarshalPKIXPublicKey(&ephemeral.PublicKey)
	if err != nil {
		return nil, err
	}

	return &EncryptedMessage{
		Encrypted:    true,
		EphemeralKey: base64.StdEncoding.EncodeToString(ephDER),
		Ciphertext:   base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// Decrypt opens a sealed message with the recipient's private key.
func Decrypt(key *ecdsa.PrivateKey, msg *EncryptedMessage) ([]byte, error) {
	ephDER, err := base64.StdEncoding.DecodeString(msg.EphemeralKey)
	if err != nil {
		return nil, fmt.Errorf("decode ephemeral key: %w", err)
	}
	pub, err := x509.ParsePKIXPublicKey(ephDER)
	if err != nil {
		return nil, fmt.Errorf("parse ephemeral key: %w", err)
	}
	ephemeral, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("parse ephemeral key: unsupported type %T", pub)
	}

	sealed, err := base64.StdEncoding.DecodeString(msg.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	derived, err := deriveKey(key, ephemeral)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// deriveKey runs ECDH between a local private key and a remote public key,
// then expands the shared secret with HKDF-SHA256. The exchange is symmetric:
// ECDH(ephemeral, recipient) == ECDH(recipient, ephemeral).
func deriveKey(local *ecdsa.PrivateKey, remote *ecdsa.PublicKey) ([]byte, error) {
	localECDH, err := local.ECDH()
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}
	remoteECDH, err := remote.ECDH()
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}
	shared, err := localECDH.ECDH(remoteECDH)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	kdf := hkdf.New(sha256.New, shared, nil, []byte(encryptInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}
