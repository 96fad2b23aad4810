package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	RawDocDir string
	OutputDir string

	StoreProvider string
	FolderID      string

	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	DriveRateLimitRPS     int
	DriveTimeoutMs        int

	S3Endpoint string
	S3Region   string
	S3Bucket   string
	S3Key      string
	S3Secret   string

	LocalDir string

	FetchRetries    int
	CacheTTLSec     int
	RefreshSchedule string
	AutoExport      bool

	HTTPAddr        string
	CORSOrigins     []string
	DefaultLanguage string
	Timezone        string
	LogDev          bool

	CompanyName string
	WebsiteURL  string
	PhoneNumber string

	Schema Schema
}

// Field maps a document key to the label shown to operators.
type Field struct {
	Key   string
	Label string
}

// Schema describes which document keys carry the ticket fields.
type Schema struct {
	Ticket       Field
	Plate        Field
	Product      Field
	Client       Field
	Driver       Field
	Weight       Field
	Price        Field
	Date         Field
	DateFallback Field
	Custom       []Field

	SearchColumns   []string
	TopN            int
	DataMarker      string
	CompanionMarker string
}

// ExpectedKeys lists the keys every record carries after normalization.
func (s Schema) ExpectedKeys() []string {
	keys := []string{s.Plate.Key, s.Product.Key, s.Client.Key, s.Driver.Key, s.Weight.Key, s.Price.Key, s.Date.Key}
	for _, f := range s.Custom {
		keys = append(keys, f.Key)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			out = append(out, k)
		}
	}
	return out
}

// DefaultSchema mirrors the field names written by the weighbridge software.
func DefaultSchema() Schema {
	return Schema{
		Ticket:       Field{Key: "ticket_no", Label: "Ticket"},
		Plate:        Field{Key: "plate", Label: "Plate"},
		Product:      Field{Key: "product", Label: "Product"},
		Client:       Field{Key: "client", Label: "Client"},
		Driver:       Field{Key: "driver", Label: "Driver"},
		Weight:       Field{Key: "net", Label: "Net Weight"},
		Price:        Field{Key: "price", Label: "Price"},
		Date:         Field{Key: "date_out", Label: "Date"},
		DateFallback: Field{Key: "date_in", Label: "Date In"},
		Custom: []Field{
			{Key: "ex1", Label: "Destination"},
			{Key: "ex2", Label: "Source"},
			{Key: "ex3", Label: "Remorque"},
		},
		TopN:            5,
		DataMarker:      ".json",
		CompanionMarker: ".pdf",
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawDocDir: getEnv("RAW_DOC_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		StoreProvider: getEnv("STORE_PROVIDER", "drive"),
		FolderID:      getEnv("FOLDER_ID", ""),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		DriveRateLimitRPS:     getEnvInt("DRIVE_RATE_LIMIT_RPS", 5),
		DriveTimeoutMs:        getEnvInt("DRIVE_TIMEOUT_MS", 30000),

		S3Endpoint: getEnv("S3_ENDPOINT", ""),
		S3Region:   getEnv("S3_REGION", "us-east-1"),
		S3Bucket:   getEnv("S3_BUCKET", ""),
		S3Key:      getEnv("S3_ACCESS_KEY", ""),
		S3Secret:   getEnv("S3_SECRET_KEY", ""),

		LocalDir: getEnv("LOCAL_DIR", filepath.Join(cwd, "data", "folders")),

		FetchRetries:    getEnvInt("FETCH_RETRIES", 3),
		CacheTTLSec:     getEnvInt("CACHE_TTL_SEC", 600),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 10m"),
		AutoExport:      getEnvBool("AUTO_EXPORT", false),

		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", nil),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "FR"),
		Timezone:        getEnv("TIMEZONE", "Local"),
		LogDev:          getEnvBool("LOG_DEV", false),

		CompanyName: getEnv("COMPANY_NAME", "Orient Scale Solutions"),
		WebsiteURL:  getEnv("WEBSITE_URL", "https://www.orientscale.ma"),
		PhoneNumber: getEnv("PHONE_NUMBER", "0661572700"),
	}

	defaults := DefaultSchema()
	cfg.Schema = Schema{
		Ticket:       getEnvField("TICKET", defaults.Ticket),
		Plate:        getEnvField("PLATE", defaults.Plate),
		Product:      getEnvField("PRODUCT", defaults.Product),
		Client:       getEnvField("CLIENT", defaults.Client),
		Driver:       getEnvField("DRIVER", defaults.Driver),
		Weight:       getEnvField("WEIGHT", defaults.Weight),
		Price:        getEnvField("PRICE", defaults.Price),
		Date:         getEnvField("DATE", defaults.Date),
		DateFallback: getEnvField("DATE_FALLBACK", defaults.DateFallback),

		SearchColumns:   getEnvList("SEARCH_COLUMNS", nil),
		TopN:            getEnvInt("TOP_N", defaults.TopN),
		DataMarker:      getEnv("DATA_MARKER", defaults.DataMarker),
		CompanionMarker: getEnv("COMPANION_MARKER", defaults.CompanionMarker),
	}
	for i, f := range defaults.Custom {
		custom := getEnvField(fmt.Sprintf("CUSTOM_%d", i+1), f)
		if custom.Key == "" {
			continue
		}
		cfg.Schema.Custom = append(cfg.Schema.Custom, custom)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Location resolves Timezone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvField reads FIELD_<NAME>_KEY and FIELD_<NAME>_LABEL. An explicitly
// empty key disables the field.
func getEnvField(name string, fallback Field) Field {
	return Field{
		Key:   strings.TrimSpace(getEnv("FIELD_"+name+"_KEY", fallback.Key)),
		Label: getEnv("FIELD_"+name+"_LABEL", fallback.Label),
	}
}
