package dto

import "time"

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type NonceResponse struct {
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

type WalletInfo struct {
	Kind    string `json:"kind"`
	Network string `json:"network"`
}

type WalletConnectionInfo struct {
	Address        string     `json:"address"`
	Kind           string     `json:"kind"`
	Network        string     `json:"network"`
	Verified       bool       `json:"verified"`
	IsActive       bool       `json:"is_active"`
	Current        bool       `json:"current"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}

type SessionStateResponse struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	Kind      string `json:"kind,omitempty"`
}
