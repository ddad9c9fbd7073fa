package crypto

import "github.com/MKhiriev/go-fit-offline/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_mock.go -package=mock

// PushKeyChain отвечает за ключи push-подписки на стороне устройства.
// Он не знает ничего о сети или базе данных.
//
// Схема работы (RFC 8291, aes128gcm):
//
//	Keys        = GenerateSubscriptionKeys()                  (при подписке)
//	Subscription.Keys = Keys.Encoded()                        (уходит на сервер)
//	Plaintext   = Decrypt(body, Keys.PrivateKey, Keys.AuthSecret) (на каждый push)
type PushKeyChain interface {
	// GenerateSubscriptionKeys создаёт новую пару P-256 и 16-байтовый auth secret.
	// Приватный ключ никогда не покидает устройство.
	GenerateSubscriptionKeys() (SubscriptionKeys, error)

	// Decrypt расшифровывает тело push-сообщения в формате aes128gcm.
	// privateKey — сырой скаляр P-256, authSecret — 16 байт.
	Decrypt(body, privateKey, authSecret []byte) ([]byte, error)
}

// SubscriptionKeys is the key material of one push subscription.
type SubscriptionKeys struct {
	// PrivateKey is the raw P-256 scalar.
	PrivateKey []byte
	// PublicKey is the uncompressed P-256 point shared as "p256dh".
	PublicKey []byte
	// AuthSecret is shared as "auth".
	AuthSecret []byte
}

// Encoded returns the public half in the form push services expect.
func (k SubscriptionKeys) Encoded() models.PushKeys {
	return models.PushKeys{
		P256dh: encodeKey(k.PublicKey),
		Auth:   encodeKey(k.AuthSecret),
	}
}
