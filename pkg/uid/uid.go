package uid

import "github.com/google/uuid"

// maxRequestIDLength bounds request ids accepted from clients.
const maxRequestIDLength = 64

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// RequestID returns incoming when it is a usable request id, or a fresh one.
func RequestID(incoming string) string {
	if incoming == "" || len(incoming) > maxRequestIDLength {
		return New()
	}
	for _, c := range incoming {
		if c < 0x21 || c > 0x7e {
			return New()
		}
	}
	return incoming
}
