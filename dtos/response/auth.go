package response

type RegisterResponse struct {
	UserId   uint   `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResponse struct {
	UserId      uint    `json:"user_id"`
	MfaRequired bool    `json:"mfa_required"`
	Tokens      *Tokens `json:"tokens,omitempty"`
}
