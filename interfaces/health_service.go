package interfaces

import (
	"context"

	"github.com/mezonai/token/service"
)

type HealthService interface {
	Check(ctx context.Context) (*service.HealthCheckResponse, error)
}
