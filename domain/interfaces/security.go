package interfaces

import (
	"context"

	"site_uitest/domain/entities"
)

// ActionGuard vets primitives before they reach the live site
type ActionGuard interface {
	// Check returns an error when the action must not run
	Check(ctx context.Context, action entities.Action) error

	// RiskLevel classifies an action as low, medium or high
	RiskLevel(action entities.Action) string
}
