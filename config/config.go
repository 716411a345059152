package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12222"`
	APIKey      string `env:"API_KEY"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type DatabaseConfig struct {
	Host            string `env:"MAILSIFT_POSTGRES_HOST,required"`
	Port            string `env:"MAILSIFT_POSTGRES_PORT" envDefault:"5432"`
	User            string `env:"MAILSIFT_POSTGRES_USER,required"`
	DBName          string `env:"MAILSIFT_POSTGRES_DB_NAME,required"`
	Password        string `env:"MAILSIFT_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"MAILSIFT_POSTGRES_DB_MAX_CONN" envDefault:"25"`
	MaxIdleConn     int    `env:"MAILSIFT_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"MAILSIFT_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"MAILSIFT_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILSIFT_POSTGRES_SSL_MODE" envDefault:"require"`
}

// R2StorageConfig is optional. Attachment promotion is skipped when any credential is missing.
type R2StorageConfig struct {
	AccountID             string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID           string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret       string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	EmailAttachmentBucket string `env:"BUCKET_NAME_EMAIL_ATTACHMENT" envDefault:"attachments"`
	CDNDomain             string `env:"EMAIL_ATTACHMENT_CDN_DOMAIN"`
}

func (c *R2StorageConfig) IsConfigured() bool {
	return c != nil && c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.EmailAttachmentBucket != ""
}

type IngestionConfig struct {
	MailProvider string `env:"MAIL_PROVIDER" envDefault:"gmail"`
	MaxMessages  int    `env:"INGESTION_MAX_MESSAGES" envDefault:"5"`
	LookbackDays int    `env:"INGESTION_LOOKBACK_DAYS" envDefault:"7"`
	// users picked up by the scheduled ingestion job
	ScheduledUserIDs []string `env:"INGESTION_USER_IDS" envSeparator:","`
}

type GmailConfig struct {
	ClientID     string `env:"GMAIL_CLIENT_ID"`
	ClientSecret string `env:"GMAIL_CLIENT_SECRET"`
	RedirectURL  string `env:"GMAIL_REDIRECT_URL" envDefault:"urn:ietf:wg:oauth:2.0:oob"`
}

type IMAPConfig struct {
	Server   string `env:"IMAP_SERVER"`
	Port     int    `env:"IMAP_PORT" envDefault:"993"`
	Username string `env:"IMAP_USERNAME"`
	Password string `env:"IMAP_PASSWORD"`
	TLS      bool   `env:"IMAP_TLS" envDefault:"true"`
	Folder   string `env:"IMAP_FOLDER" envDefault:"INBOX"`
}

type TokenStoreConfig struct {
	Backend  string `env:"TOKEN_STORE_BACKEND" envDefault:"file"`
	Dir      string `env:"TOKEN_STORE_DIR" envDefault:"./.tokens"`
	Password string `env:"TOKEN_STORE_PASSWORD"`
}

type GeminiConfig struct {
	APIKey       string `env:"GEMINI_API_KEY"`
	BaseURL      string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	Model        string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	TimeoutSecs  int    `env:"GEMINI_TIMEOUT_SECONDS" envDefault:"60"`
	MaxBodyChars int    `env:"CLASSIFIER_MAX_BODY_CHARS" envDefault:"4000"`
}

type StagingConfig struct {
	Dir         string `env:"STAGING_DIR" envDefault:"./tmp/staging"`
	MaxAgeHours int    `env:"STAGING_MAX_AGE_HOURS" envDefault:"24"`
}

type ExtractionConfig struct {
	MaxTextChars int    `env:"EXTRACTION_MAX_TEXT_CHARS" envDefault:"100000"`
	OCREnabled   bool   `env:"EXTRACTION_OCR_ENABLED" envDefault:"false"`
	OCRLanguages string `env:"EXTRACTION_OCR_LANGUAGES" envDefault:"eng"`
}
