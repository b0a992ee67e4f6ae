package request

type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,password"`
	CaptchaToken string `json:"captcha_token" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenReq struct {
	RefreshToken string `json:"refresh_token"`
}
