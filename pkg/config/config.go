package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LogLevel  string
	LogFormat string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	PasswordHash     string

	// AI
	AIProvider       string
	GeminiApiKey     string
	GeminiModel      string
	OllamaBaseURL    string
	OllamaModel      string
	FilePollInterval time.Duration

	// Google Workspace
	GoogleServiceAccountJSON string
	GoogleDriveFolderID      string
	GoogleSheetsID           string
	GoogleSheetsTab          string

	// Task store
	TaskTableBackend string // sheets, postgres or memory
	DatabaseURL      string
	TaskCacheTTL     time.Duration
	MaxFileSizeMB    int

	// Semantic search
	ChromaAPIKey   string
	ChromaTenant   string
	ChromaDatabase string

	// Task events
	GoogleProjectID     string
	TaskEventsTopic     string
	FirebaseCredentials string
	FCMTopic            string

	// Scrum email drafts
	IMAPAddr          string
	IMAPUsername      string
	IMAPPassword      string
	IMAPDraftsMailbox string
	ReportEmailFrom   string
	ReportEmailTo     string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 12*time.Hour),
		PasswordHash:    getEnv("FLUX_PASSWORD_HASH", ""),

		AIProvider:       getEnv("AI_PROVIDER", "gemini"),
		GeminiApiKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-flash-latest"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3"),
		FilePollInterval: getDuration("FILE_POLL_INTERVAL", 2*time.Second),

		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", "service_account.json"),
		GoogleDriveFolderID:      getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),
		GoogleSheetsID:           getEnv("GOOGLE_SHEETS_ID", ""),
		GoogleSheetsTab:          getEnv("GOOGLE_SHEETS_TAB", "Sheet1"),

		TaskTableBackend: getEnv("TASK_TABLE_BACKEND", "sheets"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TaskCacheTTL:     getDuration("TASK_CACHE_TTL", 60*time.Second),
		MaxFileSizeMB:    getInt("MAX_FILE_SIZE_MB", 100),

		ChromaAPIKey:   getEnv("CHROMA_API_KEY", ""),
		ChromaTenant:   getEnv("CHROMA_TENANT", ""),
		ChromaDatabase: getEnv("CHROMA_DATABASE", ""),

		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		TaskEventsTopic:     getEnv("TASK_EVENTS_TOPIC", "flux-task-events"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FCMTopic:            getEnv("FCM_TOPIC", "flux-tasks"),

		IMAPAddr:          getEnv("IMAP_ADDR", ""),
		IMAPUsername:      getEnv("IMAP_USERNAME", ""),
		IMAPPassword:      getEnv("IMAP_PASSWORD", ""),
		IMAPDraftsMailbox: getEnv("IMAP_DRAFTS_MAILBOX", "Drafts"),
		ReportEmailFrom:   getEnv("REPORT_EMAIL_FROM", ""),
		ReportEmailTo:     getEnv("REPORT_EMAIL_TO", ""),
	}
}

// Validate returns the names of settings that are required by the selected
// backends but missing.
func (c *Config) Validate() []string {
	var missing []string
	if c.GeminiApiKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.GoogleDriveFolderID == "" {
		missing = append(missing, "GOOGLE_DRIVE_FOLDER_ID")
	}
	switch c.TaskTableBackend {
	case "sheets":
		if c.GoogleSheetsID == "" {
			missing = append(missing, "GOOGLE_SHEETS_ID")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	}
	if _, err := os.Stat(c.GoogleServiceAccountJSON); err != nil {
		missing = append(missing, "GOOGLE_SERVICE_ACCOUNT_JSON (not configured)")
	}
	if c.PasswordHash == "" {
		missing = append(missing, "FLUX_PASSWORD_HASH")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
