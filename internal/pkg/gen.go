package pkg

import (
	"crypto/sha1" //nolint: gosec // required by RFC 6455
	"encoding/base64"

	"github.com/google/uuid"
)

// websocketGUID is the magic string from RFC 6455 section 1.3.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// GenerateNewSessionID returns a random session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateAcceptKey computes Sec-WebSocket-Accept for a client key.
func GenerateAcceptKey(key string) string {
	hash := sha1.Sum([]byte(key + websocketGUID)) //nolint: gosec // required by RFC 6455
	return base64.StdEncoding.EncodeToString(hash[:])
}
