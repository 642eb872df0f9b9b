package domain

import "context"

// HealthUsecase reports the reachability of the server's dependencies.
type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}
