// backend-go/internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	App    AppConfig
	Report ReportConfig
	Graph  GraphConfig
	Drive  DriveConfig
	S3     S3Config
	GCS    GCSConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	LogLevel    string
	MaxUploadMB int
}

// ReportConfig selects the optional behaviors of the monthly close.
type ReportConfig struct {
	StatusFlags      bool
	Inclusion        string
	DegeneratePolicy string
}

// GraphConfig is the Azure AD application used for OneDrive access.
type GraphConfig struct {
	TenantID      string
	ClientID      string
	ClientSecret  string
	AuthorityHost string
	Scopes        []string
	BaseURL       string
}

// Authority is the tenant's login endpoint, as handed to the browser picker.
func (g GraphConfig) Authority() string {
	return strings.TrimRight(g.AuthorityHost, "/") + "/" + g.TenantID
}

// Enabled reports whether the code exchange can run.
func (g GraphConfig) Enabled() bool {
	return g.TenantID != "" && g.ClientID != "" && g.ClientSecret != ""
}

type DriveConfig struct {
	CredentialsJSON string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads the configuration once per process from the environment and an
// optional .env file.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = newConfig(viper.GetViper())
	})

	return instance
}

func newConfig(v *viper.Viper) *Config {
	// Set default values
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 60)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 120)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_MAX_UPLOAD_MB", 32)
	v.SetDefault("REPORT_STATUS_FLAGS", true)
	v.SetDefault("REPORT_INCLUSION", "any_sale")
	v.SetDefault("REPORT_DEGENERATE_POLICY", "rank_d")
	v.SetDefault("AZURE_AUTHORITY_HOST", "https://login.microsoftonline.com")
	v.SetDefault("AZURE_SCOPES", []string{"Files.Read.All", "offline_access"})
	v.SetDefault("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0/me/drive")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		App: AppConfig{
			LogLevel:    v.GetString("LOG_LEVEL"),
			MaxUploadMB: v.GetInt("APP_MAX_UPLOAD_MB"),
		},
		Report: ReportConfig{
			StatusFlags:      v.GetBool("REPORT_STATUS_FLAGS"),
			Inclusion:        v.GetString("REPORT_INCLUSION"),
			DegeneratePolicy: v.GetString("REPORT_DEGENERATE_POLICY"),
		},
		Graph: GraphConfig{
			TenantID:      v.GetString("AZURE_TENANT_ID"),
			ClientID:      v.GetString("AZURE_CLIENT_ID"),
			ClientSecret:  v.GetString("AZURE_CLIENT_SECRET"),
			AuthorityHost: v.GetString("AZURE_AUTHORITY_HOST"),
			Scopes:        splitList(v.GetStringSlice("AZURE_SCOPES")),
			BaseURL:       v.GetString("GRAPH_BASE_URL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		},
		S3: S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		GCS: GCSConfig{
			Bucket: v.GetString("GCS_BUCKET"),
		},
	}
}

// splitList accepts both space and comma separated environment lists.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
