package pkg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// roomIDBytes of entropy give a 6-character hex room code.
const roomIDBytes = 3

// GenerateRoomID - returns a short lowercase hex room code. Uniqueness
// against live rooms is the caller's job.
func GenerateRoomID() string {
	buf := make([]byte, roomIDBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("failed to read random bytes: %w", err))
	}

	return hex.EncodeToString(buf)
}

// GeneratePlayerToken - returns the credential a player re-authenticates
// with after a reconnect.
func GeneratePlayerToken() string {
	return uuid.NewString()
}
