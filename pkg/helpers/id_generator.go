package helpers

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates various types of IDs. It draws from the locked
// package-level math/rand source, so one generator may be shared across
// concurrent request handlers.
type IDGenerator struct{}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GenerateUUID generates a UUID v4
func (g *IDGenerator) GenerateUUID() string {
	return uuid.New().String()
}

// GenerateTransactionID generates a transaction ID (VARCHAR format)
// Format: TRX-YYYYMMDD-XXXXXX (e.g., TRX-20260830-A1B2C3)
func (g *IDGenerator) GenerateTransactionID() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	// Generate 6 character random alphanumeric suffix
	suffix := g.randomAlphanumeric(6)

	return fmt.Sprintf("TRX-%s-%s", dateStr, suffix)
}

// GenerateCode generates a random code (for user codes, etc.)
func (g *IDGenerator) GenerateCode(length int) string {
	return g.randomAlphanumeric(length)
}

// randomAlphanumeric generates a random alphanumeric string
func (g *IDGenerator) randomAlphanumeric(length int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = chars[rand.Intn(len(chars))]
	}
	return string(result)
}
