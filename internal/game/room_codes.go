package game

import (
	"math/rand"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// GenerateRoomCode draws 6-character codes from the 36-symbol alphabet until
// one does not collide with a live room. Uniqueness only holds among rooms
// currently in the registry, not across all time.
func GenerateRoomCode(rng *rand.Rand, inUse func(string) bool) string {
	for {
		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
		}
		roomCode := string(code)

		if !inUse(roomCode) {
			return roomCode
		}
	}
}

// ValidateRoomCode checks the shape of a client-supplied code.
func ValidateRoomCode(code string) error {
	if len(code) != codeLength {
		return newError(CodeInvalidInput, "Room code must be exactly 6 characters")
	}

	for _, ch := range strings.ToUpper(code) {
		if !strings.ContainsRune(codeAlphabet, ch) {
			return newError(CodeInvalidInput, "Room code must contain only letters A-Z and digits 0-9")
		}
	}

	return nil
}

// NormalizeRoomCode upper-cases a client-supplied code for lookup.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
