package response

type MfaSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          []byte `json:"qr_code"`
}

type MfaStatusResponse struct {
	Enabled bool `json:"enabled"`
}
