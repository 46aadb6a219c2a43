package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/config"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
	"github.com/oksasatya/go-finance-tracker/pkg/mailer"
)

// Consumes notification jobs queued by the API (welcome, profile updated)
// and sends them through Mailgun.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer pub.Close()

	msgs, err := pub.Consume(16)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				logger.WithError(err).Warn("dropping undecodable job")
				_ = msg.Nack(false, false)
				continue
			}

			sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := mailer.Deliver(sendCtx, mg, job)
			cancel()

			fields := logrus.Fields{"to": job.To, "template": job.Template}
			switch {
			case errors.Is(err, mailer.ErrInvalidJob):
				logger.WithError(err).WithFields(fields).Warn("dropping invalid job")
				_ = msg.Nack(false, false)
			case err != nil:
				helpers.LogError(logger, "send failed; requeueing", err, fields)
				_ = msg.Nack(false, true)
			default:
				helpers.LogInfo(logger, "email sent", fields)
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-ctx.Done()
	logger.Info("shutting down...")
	pub.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
