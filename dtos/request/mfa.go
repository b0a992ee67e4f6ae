package request

type MfaCodeRequest struct {
	Code string `json:"code" validate:"required,totp_code"`
}

type MfaLoginRequest struct {
	UserId uint   `json:"user_id" validate:"required"`
	Code   string `json:"code" validate:"required,totp_code"`
}
