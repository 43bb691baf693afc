package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort          string
	BaseURL             string
	DatabaseDSN         string
	KafkaBroker         string
	KafkaTopic          string
	KafkaUsername       string
	KafkaPassword       string
	KafkaGroupID        string
	CloudinaryUrl       string
	AccessSecret        string
	ScholarshipAPIURL   string
	ScholarshipAPIToken string
	UpstreamTimeout     time.Duration
	DateLocation        string
	ApplicationsPath    string
	AppURL              string
	SMTPHost            string
	SMTPPort            string
	SMTPUser            string
	SMTPPassword        string
	MailFrom            string
	MailFromName        string
	MailSubject         string
}

func LoadConfig() Config {
	wd, _ := os.Getwd()
	log.Println("WD =", wd)

	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:          getEnv("SERVER_PORT", ":3000"),
		BaseURL:             getEnv("BASE_URL", "*"),
		DatabaseDSN:         os.Getenv("DATABASE_DSN"),
		KafkaBroker:         os.Getenv("KAFKA_BROKER"),
		KafkaTopic:          os.Getenv("KAFKA_TOPIC"),
		KafkaUsername:       os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:       os.Getenv("KAFKA_PASSWORD"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "scholarship-notifier"),
		CloudinaryUrl:       os.Getenv("CLOUDINARY_URL"),
		AccessSecret:        os.Getenv("ACCESS_SECRET"),
		ScholarshipAPIURL:   getEnv("SCHOLARSHIP_API_URL", "http://localhost:8080/api"),
		ScholarshipAPIToken: os.Getenv("SCHOLARSHIP_API_TOKEN"),
		UpstreamTimeout:     getEnvDuration("UPSTREAM_TIMEOUT", 20*time.Second),
		DateLocation:        getEnv("DATE_LOCATION", "Asia/Manila"),
		ApplicationsPath:    getEnv("APPLICATIONS_PATH", "/student/applications"),
		AppURL:              os.Getenv("APP_URL"),
		SMTPHost:            getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		MailFrom:            os.Getenv("MAIL_FROM"),
		MailFromName:        getEnv("MAIL_FROM_NAME", "Scholarship Office"),
		MailSubject:         os.Getenv("MAIL_SUBJECT"),
	}
}

// Location resolves DateLocation, falling back to the server's local zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DateLocation)
	if err != nil {
		log.Printf("invalid DATE_LOCATION %q, using local time: %v", c.DateLocation, err)
		return time.Local
	}
	return loc
}

// ApplicationsURL is the absolute applications page link used in emails, empty without APP_URL.
func (c Config) ApplicationsURL() string {
	if c.AppURL == "" {
		return ""
	}
	return strings.TrimRight(c.AppURL, "/") + c.ApplicationsPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
