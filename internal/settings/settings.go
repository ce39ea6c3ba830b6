// Package settings resolves Argus settings modules.
//
// A settings module is either a root module, which starts from empty settings,
// or a module layered on a named base. Loading a module applies its base chain
// from the root down and then the module itself, so a module sees every value
// its bases assigned and may replace any of them.
package settings

import (
	"fmt"
	"strings"
)

// Redacted is the placeholder shown instead of secret values.
const Redacted = "********"

// Settings is the resolved configuration of an Argus deployment. Field names in
// JSON and YAML keep the upper-case names the rest of Argus uses.
type Settings struct {
	Module string `json:"SETTINGS_MODULE" yaml:"SETTINGS_MODULE"`

	Debug        bool     `json:"DEBUG" yaml:"DEBUG"`
	SecretKey    string   `json:"SECRET_KEY" yaml:"SECRET_KEY" validate:"required_if=Debug false"`
	AllowedHosts []string `json:"ALLOWED_HOSTS" yaml:"ALLOWED_HOSTS"`
	TimeZone     string   `json:"TIME_ZONE" yaml:"TIME_ZONE" validate:"required"`

	Database     DatabaseSettings     `json:"DATABASE" yaml:"DATABASE"`
	ChannelLayer ChannelLayerSettings `json:"CHANNEL_LAYER" yaml:"CHANNEL_LAYER"`
	Email        EmailSettings        `json:"EMAIL" yaml:"EMAIL"`

	DefaultFromEmail  string   `json:"DEFAULT_FROM_EMAIL" yaml:"DEFAULT_FROM_EMAIL" validate:"omitempty,email"`
	SMSGatewayAddress string   `json:"SMS_GATEWAY_ADDRESS" yaml:"SMS_GATEWAY_ADDRESS" validate:"omitempty,email"`
	SendNotifications bool     `json:"SEND_NOTIFICATIONS" yaml:"SEND_NOTIFICATIONS"`
	MediaPlugins      []string `json:"MEDIA_PLUGINS" yaml:"MEDIA_PLUGINS"`

	FrontendURL        string   `json:"FRONTEND_URL" yaml:"FRONTEND_URL" validate:"omitempty,url"`
	CookieDomain       string   `json:"COOKIE_DOMAIN" yaml:"COOKIE_DOMAIN"`
	CORSAllowedOrigins []string `json:"CORS_ALLOWED_ORIGINS" yaml:"CORS_ALLOWED_ORIGINS" validate:"dive,url"`

	Logging LoggingSettings `json:"LOGGING" yaml:"LOGGING"`
}

// DatabaseSettings is the DATABASE block. Only PostgreSQL is supported.
type DatabaseSettings struct {
	Engine   string `json:"ENGINE" yaml:"ENGINE" validate:"oneof=postgresql"`
	Name     string `json:"NAME" yaml:"NAME" validate:"required"`
	User     string `json:"USER" yaml:"USER"`
	Password string `json:"PASSWORD" yaml:"PASSWORD"`
	Host     string `json:"HOST" yaml:"HOST" validate:"required"`
	Port     int    `json:"PORT" yaml:"PORT" validate:"gte=0,lte=65535"`
	SSLMode  string `json:"SSLMODE" yaml:"SSLMODE" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// dsnValue single-quotes v for a key=value connection string.
func dsnValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// DSN returns the PostgreSQL key=value connection string. Every string value
// is quoted, so spaces, quotes and backslashes survive.
func (d DatabaseSettings) DSN() string {
	parts := []string{
		"host=" + dsnValue(d.Host),
		fmt.Sprintf("port=%d", d.Port),
		"dbname=" + dsnValue(d.Name),
	}
	if d.User != "" {
		parts = append(parts, "user="+dsnValue(d.User))
	}
	if d.Password != "" {
		parts = append(parts, "password="+dsnValue(d.Password))
	}
	if d.SSLMode != "" {
		parts = append(parts, "sslmode="+d.SSLMode)
	}
	return strings.Join(parts, " ")
}

// Channel layer backends.
const (
	ChannelLayerRedis    = "redis"
	ChannelLayerInMemory = "inmemory"
)

// ChannelLayerSettings is the CHANNEL_LAYER block used for websocket fan-out.
type ChannelLayerSettings struct {
	Backend string `json:"BACKEND" yaml:"BACKEND" validate:"oneof=redis inmemory"`
	Host    string `json:"HOST" yaml:"HOST" validate:"required_if=Backend redis"`
	Port    int    `json:"PORT" yaml:"PORT" validate:"gte=0,lte=65535"`
	DB      int    `json:"DB" yaml:"DB" validate:"gte=0"`
}

// Address returns host:port.
func (c ChannelLayerSettings) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// E-mail backends.
const (
	EmailBackendSMTP    = "smtp"
	EmailBackendSES     = "ses"
	EmailBackendConsole = "console"
)

// EmailSettings is the EMAIL block: which backend sends mail and how to reach it.
type EmailSettings struct {
	Backend   string `json:"BACKEND" yaml:"BACKEND" validate:"oneof=smtp ses console"`
	Host      string `json:"HOST" yaml:"HOST" validate:"required_if=Backend smtp"`
	Port      int    `json:"PORT" yaml:"PORT" validate:"gte=0,lte=65535"`
	User      string `json:"USER" yaml:"USER"`
	Password  string `json:"PASSWORD" yaml:"PASSWORD"`
	UseTLS    bool   `json:"USE_TLS" yaml:"USE_TLS"`
	AWSRegion string `json:"AWS_REGION" yaml:"AWS_REGION" validate:"required_if=Backend ses"`
}

// Address returns host:port.
func (e EmailSettings) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// LoggingSettings is the LOGGING block.
type LoggingSettings struct {
	Level  string `json:"LEVEL" yaml:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `json:"FORMAT" yaml:"FORMAT" validate:"oneof=console json"`
}

// Clone returns a deep copy. nil slices stay nil.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := *s
	out.AllowedHosts = cloneStrings(s.AllowedHosts)
	out.MediaPlugins = cloneStrings(s.MediaPlugins)
	out.CORSAllowedOrigins = cloneStrings(s.CORSAllowedOrigins)
	return &out
}

// Redacted returns a clone with secret values masked.
func (s *Settings) Redacted() *Settings {
	out := s.Clone()
	if out.SecretKey != "" {
		out.SecretKey = Redacted
	}
	if out.Database.Password != "" {
		out.Database.Password = Redacted
	}
	if out.Email.Password != "" {
		out.Email.Password = Redacted
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
