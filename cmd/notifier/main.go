package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SundayYogurt/scholarship_service/config"
	"github.com/SundayYogurt/scholarship_service/infra/queue"
	"github.com/SundayYogurt/scholarship_service/internal/api/events"
	"github.com/SundayYogurt/scholarship_service/internal/services"
)

func main() {
	// ---------- Load Config ----------
	cfg := config.LoadConfig()
	if cfg.KafkaBroker == "" || cfg.KafkaTopic == "" {
		log.Fatal("KAFKA_BROKER and KAFKA_TOPIC are required")
	}

	log.Println("Notifier starting...")
	log.Printf("KafkaBroker=%s Topic=%s GroupID=%s", cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID)

	// ---------- Init Service ----------
	mailService := services.NewMailService(services.MailConfig{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		Username:     cfg.SMTPUser,
		Password:     cfg.SMTPPassword,
		From:         cfg.MailFrom,
		FromName:     cfg.MailFromName,
		Subject:      cfg.MailSubject,
		LinkURL:      cfg.ApplicationsURL(),
		DateLocation: cfg.Location(),
	})

	// ---------- Init Kafka Consumer ----------
	consumer := queue.NewConsumer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		events.NewSubmittedHandler(mailService),
	)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- Start Listening ----------
	log.Println("Notifier listening for events...")
	if err := consumer.Listen(ctx); err != nil {
		log.Printf("consumer stopped: %v", err)
	}
}
