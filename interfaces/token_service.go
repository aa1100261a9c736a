package interfaces

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/service"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/types"
)

// TokenService is what the network surface needs from the token service
type TokenService interface {
	SubmitTransfer(ctx context.Context, tx *transaction.Transfer) (*types.TransferRecord, error)
	BalanceOf(holder types.Address) *uint256.Int
	TotalSupply() *uint256.Int
	CurrentNonce(holder types.Address) (uint64, error)
	TokenInfo() service.TokenInfo
}
