package models

type Configuration struct {
	App       AppConfiguration       `mapstructure:"app"       validate:"required"`
	Database  DatabaseConfiguration  `mapstructure:"database"  validate:"required"`
	Cache     CacheConfiguration     `mapstructure:"cache"     validate:"required"`
	Events    EventsConfiguration    `mapstructure:"events"    validate:"required"`
	Notifier  NotifierConfiguration  `mapstructure:"notifier"  validate:"required"`
	Activity  ActivityConfiguration  `mapstructure:"activity"  validate:"required"`
	Telemetry TelemetryConfiguration `mapstructure:"telemetry"`
}

type AppConfiguration struct {
	Profile           string   `mapstructure:"profile"             validate:"oneof=default web worker"`
	Port              int      `mapstructure:"port"                validate:"gte=80,lte=65535"`
	BasePath          string   `mapstructure:"base_path"           validate:"omitempty,startswith=/"`
	WebURL            string   `mapstructure:"web_url"             validate:"required,http_url"`
	AllowedOrigins    []string `mapstructure:"allowed_origins"`
	TrustedProxies    []string `mapstructure:"trusted_proxies"`
	LogLevel          string   `mapstructure:"log_level"           validate:"oneof=debug info warn error fatal panic"`
	Locale            string   `mapstructure:"locale"              validate:"oneof=en"`
	JWTSecret         string   `mapstructure:"jwt_secret"          validate:"required"`
	CSRFSecret        string   `mapstructure:"csrf_secret"         validate:"required,min=32"`
	SessionCookie     string   `mapstructure:"session_cookie"      validate:"required"`
	SecureCookies     bool     `mapstructure:"secure_cookies"`
	ResetTokenExpiry  int      `mapstructure:"reset_token_expiry"  validate:"gte=1,lte=1440"`
	ResetThrottle     int      `mapstructure:"reset_throttle"      validate:"gte=0,lte=3600"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute" validate:"gte=1,lte=600"`
	CleanupInterval   int      `mapstructure:"cleanup_interval"    validate:"gte=1,lte=1440"`
}

type DatabaseConfiguration struct {
	Type     string `mapstructure:"type"     validate:"required,oneof=postgres sqlite"`
	Host     string `mapstructure:"host"     validate:"required_if=Type postgres"`
	Port     int32  `mapstructure:"port"     validate:"omitempty,gte=80,lte=65535"`
	User     string `mapstructure:"user"     validate:"required_if=Type postgres"`
	Password string `mapstructure:"password" validate:"required_if=Type postgres"`
	Name     string `mapstructure:"name"     validate:"required_if=Type postgres"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"     validate:"required_if=Type sqlite"`
}

type CacheConfiguration struct {
	Type   string                    `mapstructure:"type"   validate:"required,oneof=redis valkey memory"`
	Redis  *ServerCacheConfiguration `mapstructure:"redis"  validate:"required_if=Type redis"`
	Valkey *ServerCacheConfiguration `mapstructure:"valkey" validate:"required_if=Type valkey"`
}

// ServerCacheConfiguration addresses a Redis or Valkey deployment.
type ServerCacheConfiguration struct {
	Hosts         []string `mapstructure:"hosts"           validate:"required,min=1"`
	Password      string   `mapstructure:"password"`
	TLSEnabled    bool     `mapstructure:"tls_enabled"`
	TLSServerName string   `mapstructure:"tls_server_name"`
}

type EventsConfiguration struct {
	Type      string                 `mapstructure:"type"      validate:"required,oneof=memory jetstream"`
	Topic     string                 `mapstructure:"topic"     validate:"required"`
	Jetstream *JetStreamEventsConfig `mapstructure:"jetstream" validate:"required_if=Type jetstream"`
}

type JetStreamEventsConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port string `mapstructure:"port" validate:"required"`
}

type MailerConfiguration struct {
	Host          string `mapstructure:"host"            validate:"required"`
	Port          int    `mapstructure:"port"            validate:"required"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Sender        string `mapstructure:"sender"          validate:"required"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	SkipVerifyTLS bool   `mapstructure:"skip_verify_tls"`
}

type NotifierConfiguration struct {
	Type       string                           `mapstructure:"type"       validate:"required,oneof=smtp filesystem"`
	SMTP       *MailerConfiguration             `mapstructure:"smtp"       validate:"required_if=Type smtp"`
	Filesystem *FilesystemNotifierConfiguration `mapstructure:"filesystem" validate:"required_if=Type filesystem"`
}

type FilesystemNotifierConfiguration struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type ActivityConfiguration struct {
	Type       string                           `mapstructure:"type"       validate:"required,oneof=filesystem"`
	Filesystem *FilesystemActivityConfiguration `mapstructure:"filesystem" validate:"required_if=Type filesystem"`
}

type FilesystemActivityConfiguration struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type TelemetryConfiguration struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"     validate:"required_if=Enabled true"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// BrokerConfig groups the settings the password broker needs, so the broker
// does not depend on the whole application configuration.
type BrokerConfig struct {
	WebURL           string
	BasePath         string
	ResetTokenExpiry int
	ResetThrottle    int
}

// GetBrokerConfig extracts password broker configuration from AppConfiguration.
func (c *AppConfiguration) GetBrokerConfig() BrokerConfig {
	return BrokerConfig{
		WebURL:           c.WebURL,
		BasePath:         c.BasePath,
		ResetTokenExpiry: c.ResetTokenExpiry,
		ResetThrottle:    c.ResetThrottle,
	}
}
