package utils

import "github.com/google/uuid"

// UUIDGenerator produces identifiers for queued mutations and page clients.
// Version 7 UUIDs are time ordered, so ids sort in creation order.
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
