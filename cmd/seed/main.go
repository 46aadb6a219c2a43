package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-finance-tracker/config"
	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
)

func ptr[T any](v T) *T { return &v }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	mc, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.MongoDB)

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}
	auth := application.NewAuthService(users, helpers.NewJWTManager(cfg.JWTSecret), nil, nil, nil, logger, cfg.AppName, cfg.AppURL)

	email, password := "demo@example.com", "password123"
	res, err := auth.Register(ctx, application.RegisterInput{
		Name:       "Demo User",
		Email:      email,
		Password:   password,
		University: "State University",
	}, application.ClientInfo{IP: "127.0.0.1", UserAgent: "seed"})
	if application.CodeOf(err) == application.CodeConflict {
		res, err = auth.Login(ctx, email, password, application.ClientInfo{IP: "127.0.0.1", UserAgent: "seed"})
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\ntoken=%s\n", res.User.ID, email, password, res.Token)

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	samples := []struct {
		kind   entity.Kind
		inputs []application.TransactionInput
	}{
		{entity.ExpenseKind, []application.TransactionInput{
			{Amount: ptr(1200.0), Description: ptr("Rent"), Category: ptr("Housing"), Counterparty: ptr("Landlord"),
				IsRecurring: ptr(true), RecurringFrequency: ptr(entity.FrequencyMonthly), StartDate: &monthStart},
			{Amount: ptr(54.3), Description: ptr("Groceries"), Category: ptr("Food"), Counterparty: ptr("Store")},
			{Amount: ptr(15.99), Description: ptr("Streaming"), Category: ptr("Entertainment"), Counterparty: ptr("Netflix"),
				IsRecurring: ptr(true), RecurringFrequency: ptr(entity.FrequencyMonthly), StartDate: &monthStart},
		}},
		{entity.IncomeKind, []application.TransactionInput{
			{Amount: ptr(3500.0), Description: ptr("Paycheck"), Category: ptr("Salary"), Counterparty: ptr("Employer"),
				IsRecurring: ptr(true), RecurringFrequency: ptr(entity.FrequencyBiWeekly), StartDate: &monthStart},
			{Amount: ptr(400.0), Description: ptr("Logo design"), Category: ptr("Freelance"), Counterparty: ptr("Client")},
		}},
	}
	for _, sample := range samples {
		kind := sample.kind
		repo := mongodb.NewTransactionRepository(db, kind)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("ensure %s indexes: %v", kind.Name, err)
		}
		svc := application.NewTransactionService(kind, repo, nil, logger)
		for _, in := range sample.inputs {
			t, err := svc.Create(ctx, res.User.ID, in)
			if err != nil {
				log.Fatalf("failed to seed %s: %v", kind.Name, err)
			}
			fmt.Printf("seeded %s: id=%s amount=%.2f %s\n", kind.Name, t.ID, t.Amount, t.Description)
		}
	}
}
