package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/randalmurphal/tidynote/storage"
)

// Configuration keys.
const (
	KeyAPIURL        = "api_url"
	KeyAPIKey        = "api_key"
	KeyModel         = "model"
	KeyMaxTokens     = "max_tokens"
	KeyMaxRetries    = "max_retries"
	KeyTimeout       = "timeout"
	KeyStorageDriver = "storage_driver"
	KeyStoragePath   = "storage_path"
	KeyStorageDSN    = "storage_dsn"
	KeyStorageKey    = "storage_key"
	KeyCompressAbove = "compress_above"
	KeyS3Bucket      = "s3_bucket"
	KeyS3Region      = "s3_region"
	KeyS3Endpoint    = "s3_endpoint"
	KeyS3PathStyle   = "s3_path_style"
	KeyWebhookURL    = "webhook_url"
	KeyListenAddr    = "listen_addr"
	KeyServerToken   = "server_token_hash"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
)

// Keys lists every recognised configuration key in display order.
var Keys = []string{
	KeyAPIURL, KeyAPIKey, KeyModel, KeyMaxTokens, KeyMaxRetries, KeyTimeout,
	KeyStorageDriver, KeyStoragePath, KeyStorageDSN, KeyStorageKey, KeyCompressAbove,
	KeyS3Bucket, KeyS3Region, KeyS3Endpoint, KeyS3PathStyle,
	KeyWebhookURL, KeyListenAddr, KeyServerToken, KeyLogLevel, KeyLogFormat,
}

// Defaults holds the built-in value of each key that has one.
var Defaults = map[string]string{
	KeyAPIURL:        "https://api.siliconflow.cn/v1/chat/completions",
	KeyModel:         "Qwen/Qwen3-8B",
	KeyMaxTokens:     "1024",
	KeyMaxRetries:    "3",
	KeyTimeout:       "60s",
	KeyStorageDriver: string(storage.DriverFile),
	KeyStoragePath:   "~/.local/share/tidynote",
	KeyStorageKey:    "ai_organizer_saved_items",
	KeyCompressAbove: "65536",
	KeyS3Region:      "us-east-1",
	KeyListenAddr:    "127.0.0.1:8080",
	KeyLogLevel:      "info",
	KeyLogFormat:     "text",
}

// Application file locations.
const (
	EnvPrefix       = "TIDYNOTE_"
	GlobalConfigDir = "tidynote"
	LocalConfigName = ".tidynote.yaml"
)

// DefaultResolverConfig returns the resolver configuration for tidynote.
// configFile may be empty.
func DefaultResolverConfig(configFile string) ResolverConfig {
	defaults := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		defaults[k] = v
	}
	return ResolverConfig{
		EnvPrefix:       EnvPrefix,
		GlobalConfigDir: GlobalConfigDir,
		LocalConfigName: LocalConfigName,
		ConfigFile:      configFile,
		Defaults:        defaults,
		Keys:            Keys,
	}
}

// DefaultSaveConfig returns the SaveConfig used by `tidynote config set`.
func DefaultSaveConfig() SaveConfig {
	return SaveConfig{
		GlobalConfigDir: GlobalConfigDir,
		LocalConfigName: LocalConfigName,
		ValidKeys:       Keys,
	}
}

// Settings is the typed view of a resolved configuration.
type Settings struct {
	APIURL     string
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration

	StorageDriver string
	StoragePath   string
	StorageDSN    string
	StorageKey    string
	CompressAbove int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	WebhookURL string
	ListenAddr string
	LogLevel   string
	LogFormat  string

	// ServerTokenHash is the SHA-256 of the bearer token the HTTP API
	// requires. Empty leaves the API open.
	ServerTokenHash string
}

// FromResolved converts resolved string values into Settings. It reports
// every value that fails to parse.
func FromResolved(r *Resolved) (Settings, error) {
	var errs []error
	intVal := func(key string) int {
		raw := strings.TrimSpace(r.Get(key))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		}
		return n
	}
	boolVal := func(key string) bool {
		raw := strings.TrimSpace(r.Get(key))
		if raw == "" {
			return false
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		}
		return b
	}

	s := Settings{
		APIURL:        r.Get(KeyAPIURL),
		APIKey:        r.Get(KeyAPIKey),
		Model:         r.Get(KeyModel),
		MaxTokens:     intVal(KeyMaxTokens),
		MaxRetries:    intVal(KeyMaxRetries),
		StorageDriver: strings.ToLower(r.Get(KeyStorageDriver)),
		StoragePath:   r.Get(KeyStoragePath),
		StorageDSN:    r.Get(KeyStorageDSN),
		StorageKey:    r.Get(KeyStorageKey),
		CompressAbove: intVal(KeyCompressAbove),
		S3Bucket:      r.Get(KeyS3Bucket),
		S3Region:      r.Get(KeyS3Region),
		S3Endpoint:    r.Get(KeyS3Endpoint),
		S3PathStyle:   boolVal(KeyS3PathStyle),
		WebhookURL:    r.Get(KeyWebhookURL),
		ListenAddr:    r.Get(KeyListenAddr),
		LogLevel:      strings.ToLower(r.Get(KeyLogLevel)),
		LogFormat:     strings.ToLower(r.Get(KeyLogFormat)),

		ServerTokenHash: strings.ToLower(strings.TrimSpace(r.Get(KeyServerToken))),
	}

	if raw := strings.TrimSpace(r.Get(KeyTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a duration", KeyTimeout, raw))
		}
		s.Timeout = d
	}

	return s, errors.Join(errs...)
}

// Validate checks the settings needed to start. The API key is not required
// here; commands that call the completion service check it themselves.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.APIURL, validation.Required, validation.By(httpURL)),
		validation.Field(&s.Model, validation.Required),
		validation.Field(&s.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&s.MaxRetries, validation.Min(0), validation.Max(10)),
		validation.Field(&s.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&s.StorageDriver, validation.Required, validation.In(driverNames()...)),
		validation.Field(&s.StorageKey, validation.Required),
		validation.Field(&s.StorageDSN,
			validation.When(s.StorageDriver == string(storage.DriverPostgres), validation.Required)),
		validation.Field(&s.S3Bucket,
			validation.When(s.StorageDriver == string(storage.DriverS3), validation.Required)),
		validation.Field(&s.S3Endpoint, validation.By(httpURL)),
		validation.Field(&s.CompressAbove, validation.Min(0)),
		validation.Field(&s.WebhookURL, validation.By(httpURL)),
		validation.Field(&s.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&s.LogFormat, validation.In("text", "json")),
		validation.Field(&s.ServerTokenHash, validation.Match(tokenHashPattern).Error("must be a 64 character hex SHA-256 digest")),
	)
}

// StorageOptions maps the settings onto storage.Open options.
func (s Settings) StorageOptions() storage.Options {
	opts := storage.Options{
		Driver:        storage.Driver(s.StorageDriver),
		Path:          expandHome(s.StoragePath),
		DSN:           s.StorageDSN,
		CompressAbove: s.CompressAbove,
		S3: storage.S3Config{
			Bucket:    s.S3Bucket,
			Region:    s.S3Region,
			Endpoint:  s.S3Endpoint,
			PathStyle: s.S3PathStyle,
		},
	}
	if opts.Driver == storage.DriverSQLite && opts.Path != "" {
		ext := filepath.Ext(opts.Path)
		if ext != ".db" && ext != ".sqlite" {
			opts.Path = filepath.Join(opts.Path, "tidynote.db")
		}
	}
	return opts
}

// IsSecret reports whether a key's value should be masked when displayed.
func IsSecret(key string) bool {
	return key == KeyAPIKey || key == KeyStorageDSN
}

// Mask hides all but the last four characters of a secret value.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}

var tokenHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func driverNames() []any {
	names := make([]any, len(storage.Drivers))
	for i, d := range storage.Drivers {
		names[i] = string(d)
	}
	return names
}

func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
