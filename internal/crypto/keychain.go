// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	saltLen       = 16
	authSecretLen = 16
	keyLen        = 16
	nonceLen      = 12
	tagLen        = 16
	// headerLen is salt ‖ record size (uint32) ‖ key id length (uint8).
	headerLen = saltLen + 4 + 1

	// DefaultRecordSize is the record size used when encrypting.
	DefaultRecordSize = 4096

	delimiterRecord = 0x01
	delimiterLast   = 0x02
)

var (
	keyInfo   = []byte("WebPush: info\x00")
	cekInfo   = []byte("Content-Encoding: aes128gcm\x00")
	nonceInfo = []byte("Content-Encoding: nonce\x00")
)

// pushKeyChain is the private implementation of [PushKeyChain].
type pushKeyChain struct {
	curve ecdh.Curve
	rand  io.Reader
}

// NewPushKeyChain constructs a [PushKeyChain] over P-256 and the OS CSPRNG.
func NewPushKeyChain() PushKeyChain {
	return &pushKeyChain{curve: ecdh.P256(), rand: rand.Reader}
}

// GenerateSubscriptionKeys implements [PushKeyChain].
func (k *pushKeyChain) GenerateSubscriptionKeys() (SubscriptionKeys, error) {
	priv, err := k.curve.GenerateKey(k.rand)
	if err != nil {
		return SubscriptionKeys{}, fmt.Errorf("generate p256 key: %w", err)
	}

	auth := make([]byte, authSecretLen)
	if _, err = io.ReadFull(k.rand, auth); err != nil {
		return SubscriptionKeys{}, fmt.Errorf("generate auth secret: %w", err)
	}

	return SubscriptionKeys{
		PrivateKey: priv.Bytes(),
		PublicKey:  priv.PublicKey().Bytes(),
		AuthSecret: auth,
	}, nil
}

// Decrypt implements [PushKeyChain]. body is
//
//	salt (16) ‖ rs (4) ‖ idlen (1) ‖ keyid = sender public key ‖ records
//
// where every record but the last is exactly rs bytes long.
func (k *pushKeyChain) Decrypt(body, privateKey, authSecret []byte) ([]byte, error) {
	if len(authSecret) != authSecretLen {
		return nil, fmt.Errorf("%w: auth secret must be %d bytes", ErrInvalidKey, authSecretLen)
	}
	priv, err := k.curve.NewPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(body) < headerLen {
		return nil, fmt.Errorf("%w: header truncated", ErrMalformedMessage)
	}
	salt := body[:saltLen]
	rs := int(binary.BigEndian.Uint32(body[saltLen : saltLen+4]))
	idLen := int(body[saltLen+4])
	if rs <= tagLen+1 {
		return nil, fmt.Errorf("%w: record size %d", ErrMalformedMessage, rs)
	}
	if len(body) < headerLen+idLen {
		return nil, fmt.Errorf("%w: key id truncated", ErrMalformedMessage)
	}

	senderPub, err := k.curve.NewPublicKey(body[headerLen : headerLen+idLen])
	if err != nil {
		return nil, fmt.Errorf("%w: sender key: %w", ErrMalformedMessage, err)
	}
	shared, err := priv.ECDH(senderPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptFailed, err)
	}

	gcm, baseNonce, err := deriveContentKeys(shared, authSecret, salt, priv.PublicKey().Bytes(), senderPub.Bytes())
	if err != nil {
		return nil, err
	}

	payload := body[headerLen+idLen:]
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrMalformedMessage)
	}

	var plaintext []byte
	for seq := uint64(0); len(payload) > 0; seq++ {
		n := min(rs, len(payload))
		record, err := gcm.Open(nil, recordNonce(baseNonce, seq), payload[:n], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrDecryptFailed, seq, err)
		}
		payload = payload[n:]

		data, last, err := unpad(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", seq, err)
		}
		if last != (len(payload) == 0) {
			return nil, fmt.Errorf("%w: record %d delimiter", ErrInvalidPadding, seq)
		}
		plaintext = append(plaintext, data...)
	}
	return plaintext, nil
}

// Encrypt produces an aes128gcm body for the subscription identified by
// receiverPublic and authSecret, as an application server would. The
// plaintext is sent in a single record.
func Encrypt(plaintext, receiverPublic, authSecret []byte) ([]byte, error) {
	curve := ecdh.P256()
	receiver, err := curve.NewPublicKey(receiverPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(authSecret) != authSecretLen {
		return nil, fmt.Errorf("%w: auth secret must be %d bytes", ErrInvalidKey, authSecretLen)
	}

	sender, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate sender key: %w", err)
	}
	shared, err := sender.ECDH(receiver)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err = io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	senderPub := sender.PublicKey().Bytes()
	gcm, baseNonce, err := deriveContentKeys(shared, authSecret, salt, receiverPublic, senderPub)
	if err != nil {
		return nil, err
	}

	rs := max(DefaultRecordSize, len(plaintext)+1+tagLen)
	record := append(append([]byte{}, plaintext...), delimiterLast)

	out := make([]byte, 0, headerLen+len(senderPub)+len(record)+tagLen)
	out = append(out, salt...)
	out = binary.BigEndian.AppendUint32(out, uint32(rs))
	out = append(out, byte(len(senderPub)))
	out = append(out, senderPub...)
	return gcm.Seal(out, recordNonce(baseNonce, 0), record, nil), nil
}

// deriveContentKeys runs the RFC 8291 key schedule.
func deriveContentKeys(shared, authSecret, salt, receiverPub, senderPub []byte) (cipher.AEAD, []byte, error) {
	info := make([]byte, 0, len(keyInfo)+len(receiverPub)+len(senderPub))
	info = append(info, keyInfo...)
	info = append(info, receiverPub...)
	info = append(info, senderPub...)

	ikm, err := expand(hkdf.Extract(sha256.New, shared, authSecret), info, 32)
	if err != nil {
		return nil, nil, err
	}

	prk := hkdf.Extract(sha256.New, ikm, salt)
	cek, err := expand(prk, cekInfo, keyLen)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := expand(prk, nonceInfo, nonceLen)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nonce, nil
}

func expand(prk, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

// recordNonce XORs the record sequence number into the low bytes of base.
func recordNonce(base []byte, seq uint64) []byte {
	nonce := make([]byte, nonceLen)
	copy(nonce, base)
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], seq)
	for i := range s {
		nonce[nonceLen-8+i] ^= s[i]
	}
	return nonce
}

// unpad strips trailing zero padding and the delimiter octet.
func unpad(record []byte) ([]byte, bool, error) {
	i := len(record) - 1
	for i >= 0 && record[i] == 0 {
		i--
	}
	if i < 0 {
		return nil, false, ErrInvalidPadding
	}
	switch record[i] {
	case delimiterLast:
		return record[:i], true, nil
	case delimiterRecord:
		return record[:i], false, nil
	default:
		return nil, false, fmt.Errorf("%w: delimiter 0x%02x", ErrInvalidPadding, record[i])
	}
}

func encodeKey(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeKey parses a base64url key, with or without padding.
func DecodeKey(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return b, nil
}
