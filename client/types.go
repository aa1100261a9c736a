package client

import (
	"github.com/holiman/uint256"
	"github.com/mezonai/token/utils"
)

type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}

type Balance struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	Decimals uint8  `json:"decimals"`
}

// Amount parses the decimal balance returned by the node
func (b *Balance) Amount() (*uint256.Int, error) {
	return utils.ParseAmount(b.Balance)
}

type TransferResult struct {
	Ok        bool   `json:"ok"`
	TxHash    string `json:"tx_hash"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type Health struct {
	Status       string `json:"status"`
	Timestamp    uint64 `json:"timestamp"`
	Uptime       uint64 `json:"uptime"`
	HolderCount  int    `json:"holder_count"`
	TotalSupply  string `json:"total_supply"`
	Version      string `json:"version"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type transferParams struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type addressParams struct {
	Address string `json:"address"`
	Tag     string `json:"tag,omitempty"`
}

type nonceResult struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
	Tag     string `json:"tag"`
}
