package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/mongodb"
	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/infrastructure/logger"
	"gestion-hospitaliere/internal/infrastructure/mailer"
	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/joho/godotenv"
)

// Uniquement variables d'environnement

// Config structure unifiée
type Config struct {
	Environment   string
	Timezone      string
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	MongoDB       MongoConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	Mail          MailConfig
	Storage       StorageConfig
	Notifications NotificationsConfig
	Dashboard     DashboardConfig
	Logging       LoggingConfig
	CORS          CORSConfig
}

// ServerConfig configuration serveur HTTP
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"`
	Port         int           `env:"SERVER_PORT"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"`
}

// DatabaseConfig configuration PostgreSQL
type DatabaseConfig struct {
	Host           string        `env:"DB_HOST"`
	Port           int           `env:"DB_PORT"`
	Database       string        `env:"DB_NAME"`
	Username       string        `env:"DB_USERNAME"`
	Password       string        `env:"DB_PASSWORD"`
	MaxConnections int           `env:"DB_MAX_CONNECTIONS"`
	ConnectionTTL  time.Duration `env:"DB_CONNECTION_TTL"`
	QueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT"`
	SSLMode        string        `env:"DB_SSL_MODE"`
	AutoMigrate    bool          `env:"DB_AUTO_MIGRATE"`
	SeedData       bool          `env:"DB_SEED_DATA"`
}

// RedisConfig configuration Redis
type RedisConfig struct {
	Host        string        `env:"REDIS_HOST"`
	Port        int           `env:"REDIS_PORT"`
	Password    string        `env:"REDIS_PASSWORD"`
	Database    int           `env:"REDIS_DATABASE"`
	MaxRetries  int           `env:"REDIS_MAX_RETRIES"`
	PoolSize    int           `env:"REDIS_POOL_SIZE"`
	PoolTimeout time.Duration `env:"REDIS_POOL_TIMEOUT"`
}

// MongoConfig configuration MongoDB
type MongoConfig struct {
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"MONGODB_DATABASE"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT"`
	MaxPoolSize    int           `env:"MONGODB_MAX_POOL_SIZE"`
}

// AuthConfig configuration des jetons d'accès
type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTIssuer         string        `env:"JWT_ISSUER"`
	TokenTTL          time.Duration `env:"JWT_TOKEN_TTL"`
	MaxLoginAttempts  int           `env:"AUTH_MAX_LOGIN_ATTEMPTS"`
	LoginLockDuration time.Duration `env:"AUTH_LOGIN_LOCK_DURATION"`
	PrincipalCacheTTL time.Duration `env:"AUTH_PRINCIPAL_CACHE_TTL"`
	DefaultAdminEmail string        `env:"ADMIN_DEFAULT_EMAIL"`
	DefaultAdminPass  string        `env:"ADMIN_DEFAULT_PASSWORD"`
}

// RateLimitConfig limitation du débit API
type RateLimitConfig struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED"`
	Requests int           `env:"RATE_LIMIT_REQUESTS"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW"`
}

// MailConfig passerelle d'envoi d'emails
type MailConfig struct {
	Enabled     bool          `env:"MAIL_ENABLED"`
	GatewayURL  string        `env:"MAIL_GATEWAY_URL"`
	APIKey      string        `env:"MAIL_API_KEY"`
	FromAddress string        `env:"MAIL_FROM_ADDRESS"`
	FromName    string        `env:"MAIL_FROM_NAME"`
	Timeout     time.Duration `env:"MAIL_TIMEOUT"`
}

// StorageConfig stockage des fichiers téléversés
type StorageConfig struct {
	Root string `env:"STORAGE_ROOT"`
}

// NotificationsConfig file de notifications asynchrones
type NotificationsConfig struct {
	StreamName       string        `env:"NOTIFICATIONS_STREAM"`
	ConsumerGroup    string        `env:"NOTIFICATIONS_CONSUMER_GROUP"`
	Collection       string        `env:"NOTIFICATIONS_COLLECTION"`
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL"`
	ReminderEnabled  bool          `env:"REMINDER_ENABLED"`
}

// DashboardConfig cache du tableau de bord
type DashboardConfig struct {
	CacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL"`
}

// LoggingConfig configuration logging
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL"`
	Format      string `env:"LOG_FORMAT"`
	ServiceName string `env:"SERVICE_NAME"`
}

// CORSConfig configuration CORS
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `env:"CORS_MAX_AGE"`
}

// NewConfig charge la configuration depuis les variables d'environnement uniquement
func NewConfig() (*Config, error) {
	// Charger le fichier .env (optionnel)
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("[CONFIG] Warning: Fichier .env non trouvé: %v\n", err)
	}

	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")
	config.Timezone = getEnv("APP_TIMEZONE", "UTC")

	config.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "localhost"),
		Port:         getEnvInt("SERVER_PORT", 8000),
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30) * time.Second,
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30) * time.Second,
	}

	config.Database = DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnvInt("DB_PORT", 5432),
		Database:       getEnv("DB_NAME", "gestion_hospitaliere"),
		Username:       getEnv("DB_USERNAME", "postgres"),
		Password:       getEnv("DB_PASSWORD", ""),
		MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 25),
		ConnectionTTL:  getEnvDuration("DB_CONNECTION_TTL", 300) * time.Second,
		QueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 30) * time.Second,
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", true),
		SeedData:       getEnvBool("DB_SEED_DATA", config.Environment == "development"),
	}

	config.Redis = RedisConfig{
		Host:        getEnv("REDIS_HOST", "localhost"),
		Port:        getEnvInt("REDIS_PORT", 6379),
		Password:    getEnv("REDIS_PASSWORD", ""),
		Database:    getEnvInt("REDIS_DATABASE", 0),
		MaxRetries:  getEnvInt("REDIS_MAX_RETRIES", 3),
		PoolSize:    getEnvInt("REDIS_POOL_SIZE", 10),
		PoolTimeout: getEnvDuration("REDIS_POOL_TIMEOUT", 30) * time.Second,
	}

	defaultMongoURI := ""
	if config.Environment == "development" {
		defaultMongoURI = "mongodb://localhost:27017"
	}

	config.MongoDB = MongoConfig{
		URI:            getEnv("MONGODB_URI", defaultMongoURI),
		Database:       getEnv("MONGODB_DATABASE", "gestion_hospitaliere"),
		ConnectTimeout: getEnvDuration("MONGODB_CONNECT_TIMEOUT", 10) * time.Second,
		MaxPoolSize:    getEnvInt("MONGODB_MAX_POOL_SIZE", 100),
	}

	config.Auth = AuthConfig{
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "gestion-hospitaliere"),
		TokenTTL:          getEnvDuration("JWT_TOKEN_TTL", 3600) * time.Second,
		MaxLoginAttempts:  getEnvInt("AUTH_MAX_LOGIN_ATTEMPTS", 5),
		LoginLockDuration: getEnvDuration("AUTH_LOGIN_LOCK_DURATION", 900) * time.Second,
		PrincipalCacheTTL: getEnvDuration("AUTH_PRINCIPAL_CACHE_TTL", 300) * time.Second,
		DefaultAdminEmail: getEnv("ADMIN_DEFAULT_EMAIL", ""),
		DefaultAdminPass:  getEnv("ADMIN_DEFAULT_PASSWORD", ""),
	}
	if config.Auth.JWTSecret == "" && config.Environment == "development" {
		config.Auth.JWTSecret = "dev-secret-change-me"
	}

	config.RateLimit = RateLimitConfig{
		Enabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		Requests: getEnvInt("RATE_LIMIT_REQUESTS", 60),
		Window:   getEnvDuration("RATE_LIMIT_WINDOW", 60) * time.Second,
	}

	config.Mail = MailConfig{
		Enabled:     getEnvBool("MAIL_ENABLED", false),
		GatewayURL:  getEnv("MAIL_GATEWAY_URL", "http://localhost:8025"),
		APIKey:      getEnv("MAIL_API_KEY", ""),
		FromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@hopital.local"),
		FromName:    getEnv("MAIL_FROM_NAME", "Gestion Hospitalière"),
		Timeout:     getEnvDuration("MAIL_TIMEOUT", 10) * time.Second,
	}

	config.Storage = StorageConfig{
		Root: getEnv("STORAGE_ROOT", "storage/app/public"),
	}

	config.Notifications = NotificationsConfig{
		StreamName:       getEnv("NOTIFICATIONS_STREAM", "hopital_notifications_stream"),
		ConsumerGroup:    getEnv("NOTIFICATIONS_CONSUMER_GROUP", "hopital_notifications_workers"),
		Collection:       getEnv("NOTIFICATIONS_COLLECTION", "notifications"),
		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", 900) * time.Second,
		ReminderEnabled:  getEnvBool("REMINDER_ENABLED", true),
	}

	config.Dashboard = DashboardConfig{
		CacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", 30) * time.Second,
	}

	config.Logging = LoggingConfig{
		Level:       getEnv("LOG_LEVEL", "debug"),
		Format:      getEnv("LOG_FORMAT", defaultLogFormat(config.Environment)),
		ServiceName: getEnv("SERVICE_NAME", "gestion-hospitaliere"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("validation configuration échouée: %w", err)
	}

	if err := utils.SetZone(config.Timezone); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}

	fmt.Printf("[CONFIG] ✅ Configuration chargée pour environnement: %s\n", config.Environment)
	return config, nil
}

func (c *Config) GetServer() ServerConfig { return c.Server }
func (c *Config) GetCORS() CORSConfig     { return c.CORS }

// IsDevelopment indique si l'application tourne en local
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Convertisseurs vers configurations infrastructure

func NewPostgresConfig(config *Config) *postgres.DatabaseConfig {
	return &postgres.DatabaseConfig{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		Database:        config.Database.Database,
		Username:        config.Database.Username,
		Password:        config.Database.Password,
		SSLMode:         config.Database.SSLMode,
		MaxConnections:  config.Database.MaxConnections,
		ConnMaxLifetime: config.Database.ConnectionTTL,
		QueryTimeout:    config.Database.QueryTimeout,
	}
}

func NewRedisConfig(config *Config) *redis.RedisConfig {
	return &redis.RedisConfig{
		Host:        config.Redis.Host,
		Port:        config.Redis.Port,
		Password:    config.Redis.Password,
		Database:    config.Redis.Database,
		MaxRetries:  config.Redis.MaxRetries,
		PoolSize:    config.Redis.PoolSize,
		PoolTimeout: config.Redis.PoolTimeout,
	}
}

func NewMongoConfig(config *Config) *mongodb.MongoConfig {
	return &mongodb.MongoConfig{
		URI:            config.MongoDB.URI,
		Database:       config.MongoDB.Database,
		ConnectTimeout: config.MongoDB.ConnectTimeout,
		MaxPoolSize:    uint64(config.MongoDB.MaxPoolSize),
	}
}

func NewLoggerConfig(config *Config) *logger.Config {
	return &logger.Config{
		Level:       config.Logging.Level,
		Format:      config.Logging.Format,
		ServiceName: config.Logging.ServiceName,
	}
}

func NewMailerConfig(config *Config) *mailer.Config {
	return &mailer.Config{
		Enabled:     config.Mail.Enabled,
		GatewayURL:  config.Mail.GatewayURL,
		APIKey:      config.Mail.APIKey,
		FromAddress: config.Mail.FromAddress,
		FromName:    config.Mail.FromName,
		Timeout:     config.Mail.Timeout,
	}
}

func NewStorageConfig(config *Config) *storage.Config {
	return &storage.Config{Root: config.Storage.Root}
}

// Helpers pour parsing variables d'environnement
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds))
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func defaultLogFormat(environment string) string {
	if environment == "docker" {
		return "json"
	}
	return "console"
}

// validateConfig valide la configuration selon l'environnement
func validateConfig(config *Config) error {
	env := config.Environment

	if env != "development" && env != "docker" {
		return fmt.Errorf("environnement non supporté: %s (utilisez 'development' ou 'docker')", env)
	}

	missingVars := []string{}

	if env == "docker" {
		if config.Database.Password == "" {
			missingVars = append(missingVars, "DB_PASSWORD")
		}
		if config.Auth.JWTSecret == "" {
			missingVars = append(missingVars, "JWT_SECRET")
		}
		if config.Mail.Enabled && config.Mail.APIKey == "" {
			missingVars = append(missingVars, "MAIL_API_KEY")
		}

		if config.Redis.Password == "" {
			fmt.Printf("[CONFIG] ⚠️ REDIS_PASSWORD non défini pour environnement docker\n")
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("variables critiques manquantes pour environnement docker: %v", missingVars)
	}

	if config.RateLimit.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS doit être positif: %d", config.RateLimit.Requests)
	}

	return nil
}
