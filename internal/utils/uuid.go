package utils

import "github.com/google/uuid"

// UUIDGenerator produces shipment identifiers. UUIDv7 is preferred because
// ids are time-ordered, which keeps index pages dense; it falls back to a
// random UUIDv4 if v7 generation fails.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
