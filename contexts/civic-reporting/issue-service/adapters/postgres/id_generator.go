package postgresadapter

import (
	"context"

	"github.com/google/uuid"

	"civicpulse/contexts/civic-reporting/issue-service/ports"
)

// UUIDGenerator issues UUIDv4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) { return uuid.NewString(), nil }

var _ ports.IDGenerator = UUIDGenerator{}
