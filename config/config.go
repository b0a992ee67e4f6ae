package config

var Conf Config

type Config struct {
	Application Application `yaml:"application" json:"application"`
}

type Application struct {
	DisplayName string     `yaml:"display-name" json:"display_name"`
	Server      Server     `yaml:"server" json:"server"`
	Datasource  Datasource `yaml:"datasource" json:"datasource"`
	Migration   string     `yaml:"migration"`
	Security    Security   `yaml:"security" json:"security"`
	Redis       Redis      `yaml:"redis" json:"redis"`
	WebAuthn    WebAuthn   `yaml:"webauthn" json:"webauthn"`
	Challenge   Challenge  `yaml:"challenge" json:"challenge"`
	Totp        Totp       `yaml:"totp" json:"totp"`
	Captcha     Captcha    `yaml:"captcha" json:"captcha"`
	Kafka       Kafka      `yaml:"kafka" json:"kafka"`
}

type Server struct {
	ContextPath string `yaml:"context-path" json:"context_path"`
	ApiVersion  string `yaml:"api-version" json:"api_version"`
	Port        string `yaml:"port"`
}

type Datasource struct {
	PrimaryURL            string `yaml:"primary-url" json:"primary_url"`
	MaxIdleConnections    int    `yaml:"max-idle-connections" json:"max_idle_connections"`
	MaxOpenConnections    int    `yaml:"max-open-connections" json:"max_open_connections"`
	ConnectionMaxLifetime int    `yaml:"connection-max-lifetime" json:"connection_max_lifetime"`
}

type Security struct {
	Secret                              string `yaml:"secret" json:"-"`
	Issuer                              string `yaml:"issuer" json:"issuer"`
	TokenValidityInSeconds              int    `yaml:"token-validity-in-seconds" json:"token_validity_in_seconds"`
	TokenValidityInSecondsForRememberMe int    `yaml:"token-validity-in-seconds-for-remember-me" json:"token_validity_in_seconds_for_remember_me"`
}

type Redis struct {
	Host string `yaml:"address" json:"address"`
}

type WebAuthn struct {
	RpDisplayName string `yaml:"rp-display-name" json:"rp_display_name"`
	RpOrigin      string `yaml:"rp-origin" json:"rp_origin"`
	RpID          string `yaml:"rp-id" json:"rp_id"`
}

// Challenge configures the challenge ledger. Backend is "redis" for shared
// multi-instance deployments or "memory" for a single instance.
type Challenge struct {
	Backend    string `yaml:"backend" json:"backend"`
	TTLSeconds int    `yaml:"ttl-seconds" json:"ttl_seconds"`
}

type Totp struct {
	// SkewSteps is the number of adjacent 30-second windows accepted on
	// either side of the current one.
	SkewSteps uint `yaml:"skew-steps" json:"skew_steps"`
}

type Captcha struct {
	SecretKey      string `yaml:"secret-key" json:"-"`
	VerifyURL      string `yaml:"verify-url" json:"verify_url"`
	TimeoutSeconds int    `yaml:"timeout-seconds" json:"timeout_seconds"`
	// FailOpen lets registration proceed when the verifier is unreachable.
	// Must stay false in production.
	FailOpen bool `yaml:"fail-open" json:"fail_open"`
	// AllowUnverifiedDev skips captcha verification entirely when no secret
	// key is configured. Development convenience, never a silent default.
	AllowUnverifiedDev bool `yaml:"allow-unverified-dev" json:"allow_unverified_dev"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Brokers []string `yaml:"brokers" json:"brokers"`
}
