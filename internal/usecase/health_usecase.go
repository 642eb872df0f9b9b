package usecase

import (
	"context"

	"tarabaho-web/internal/domain"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

type healthUsecase struct {
	probes map[string]Probe
}

func NewHealthUsecase(probes map[string]Probe) domain.HealthUsecase {
	return &healthUsecase{probes: probes}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
	}
	for name, probe := range u.probes {
		if err := probe(ctx); err != nil {
			status[name] = "unavailable"
			status["status"] = "degraded"
			continue
		}
		status[name] = "ok"
	}
	return status
}
