package response

type CredentialSummary struct {
	CredentialId string `json:"credential_id"`
	SignCount    uint32 `json:"sign_count"`
	AAGUID       string `json:"aaguid"`
	BackupState  bool   `json:"backup_state"`
}

type CredentialLoginResult struct {
	UserId uint    `json:"user_id"`
	Tokens *Tokens `json:"tokens,omitempty"`
}
