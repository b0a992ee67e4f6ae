package request

type CredentialLoginBegin struct {
	// Username is optional: when empty the flow is discoverable and the
	// authenticator picks among locally stored credentials.
	Username string `json:"username"`
}
