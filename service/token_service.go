package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/ledger"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/monitoring"
	"github.com/mezonai/token/store"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/types"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidNonce     = errors.New("invalid nonce")
)

// NonceError reports the nonce the sender has to use next.
type NonceError struct {
	Sender   types.Address
	Expected uint64
	Got      uint64
}

func (e *NonceError) Error() string {
	return fmt.Sprintf("invalid nonce for %s: expected %d, got %d", e.Sender, e.Expected, e.Got)
}

func (e *NonceError) Is(target error) bool {
	return target == ErrInvalidNonce
}

// TokenInfo is the static token metadata
type TokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// TokenService authenticates signed transfers and hands them to the ledger with the
// signer as caller.
type TokenService struct {
	mu         sync.Mutex
	ledger     *ledger.Ledger
	nonceStore store.NonceStore
	info       TokenInfo
}

func NewTokenService(ld *ledger.Ledger, nonceStore store.NonceStore, info TokenInfo) *TokenService {
	return &TokenService{ledger: ld, nonceStore: nonceStore, info: info}
}

// SubmitTransfer verifies tx and applies it. The sender's nonce must be exactly one
// above the last accepted one; it advances for every correctly signed request, even
// when the ledger then rejects the transfer, so a rejected request cannot be replayed.
func (s *TokenService) SubmitTransfer(ctx context.Context, tx *transaction.Transfer) (*types.TransferRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transfer", transaction.ErrMalformed)
	}
	if err := tx.Validate(); err != nil {
		monitoring.RecordRejectedTransfer(monitoring.TransferRejectedUnknown)
		return nil, err
	}
	if !tx.Verify() {
		monitoring.RecordRejectedTransfer(monitoring.TransferInvalidSignature)
		return nil, ErrInvalidSignature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.nonceStore.Get(tx.Sender)
	if err != nil {
		monitoring.RecordRejectedTransfer(monitoring.TransferStorageFailure)
		return nil, err
	}
	if tx.Nonce != current+1 {
		monitoring.RecordRejectedTransfer(monitoring.TransferInvalidNonce)
		return nil, &NonceError{Sender: tx.Sender, Expected: current + 1, Got: tx.Nonce}
	}
	if err := s.nonceStore.Set(tx.Sender, tx.Nonce); err != nil {
		monitoring.RecordRejectedTransfer(monitoring.TransferStorageFailure)
		return nil, err
	}

	record, err := s.ledger.Transfer(tx.Sender, tx.Recipient, tx.Amount)
	if err != nil {
		return nil, err
	}
	logx.Info("TOKEN SERVICE", fmt.Sprintf("Accepted transfer %s nonce %d", record, tx.Nonce))
	return record, nil
}

func (s *TokenService) BalanceOf(holder types.Address) *uint256.Int {
	return s.ledger.BalanceOf(holder)
}

func (s *TokenService) TotalSupply() *uint256.Int {
	return s.ledger.TotalSupply()
}

// CurrentNonce returns the last accepted nonce; the next transfer must use CurrentNonce+1.
func (s *TokenService) CurrentNonce(holder types.Address) (uint64, error) {
	return s.nonceStore.Get(holder)
}

func (s *TokenService) TokenInfo() TokenInfo {
	return s.info
}
