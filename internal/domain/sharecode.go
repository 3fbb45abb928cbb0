package domain

import "encoding/base64"

// Share codes are a reversible encoding of the event id, not a secret.
var shareCodec = base64.URLEncoding.WithPadding(base64.NoPadding)

// EncodeShareCode derives the opaque code a recipient types to receive a share.
func EncodeShareCode(eventID string) string {
	return shareCodec.EncodeToString([]byte(eventID))
}

// DecodeShareCode recovers the event id from a share code.
func DecodeShareCode(code string) (string, error) {
	b, err := shareCodec.DecodeString(code)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
