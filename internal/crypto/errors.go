package crypto

import "errors"

var (
	ErrInvalidKey       = errors.New("invalid key material")
	ErrMalformedMessage = errors.New("malformed aes128gcm message")
	ErrDecryptFailed    = errors.New("push message decryption failed")
	ErrInvalidPadding   = errors.New("invalid record padding")
)
