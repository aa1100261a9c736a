package service

import (
	"context"
	"time"

	"github.com/mezonai/token/ledger"
)

const (
	StatusServing    = "SERVING"
	StatusNotServing = "NOT_SERVING"
)

type HealthCheckResponse struct {
	Status       string `json:"status"`
	Timestamp    uint64 `json:"timestamp"`
	Uptime       uint64 `json:"uptime"`
	HolderCount  int    `json:"holder_count"`
	TotalSupply  string `json:"total_supply"`
	Version      string `json:"version"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type HealthService struct {
	ledger    *ledger.Ledger
	version   string
	startedAt time.Time
}

func NewHealthService(ld *ledger.Ledger, version string) *HealthService {
	return &HealthService{ledger: ld, version: version, startedAt: time.Now()}
}

// Check reports NOT_SERVING when the ledger no longer adds up to its total supply.
func (hs *HealthService) Check(ctx context.Context) (*HealthCheckResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &HealthCheckResponse{
		Status:    StatusServing,
		Timestamp: uint64(now.Unix()),
		Uptime:    uint64(now.Sub(hs.startedAt).Seconds()),
		Version:   hs.version,
	}
	if hs.ledger == nil {
		resp.Status = StatusNotServing
		resp.ErrorMessage = "ledger is not available"
		return resp, nil
	}

	resp.HolderCount = hs.ledger.HolderCount()
	resp.TotalSupply = hs.ledger.TotalSupply().Dec()
	if err := hs.ledger.Audit(); err != nil {
		resp.Status = StatusNotServing
		resp.ErrorMessage = err.Error()
	}
	return resp, nil
}
