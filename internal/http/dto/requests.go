package dto

type NonceRequest struct {
	Kind    string `json:"kind"` // phantom / metamask
	Address string `json:"address"`
}

type ConnectRequest struct {
	DeviceID  string `json:"device_id"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

type AutoConnectRequest struct {
	DeviceID string `json:"device_id"`
	Grant    string `json:"grant"`
}

type AccountChangedRequest struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
}
