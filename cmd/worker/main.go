package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	internalaws "github.com/Huc06/Backend-Ecommerce/internal/aws"
	"github.com/Huc06/Backend-Ecommerce/internal/config"
	"github.com/Huc06/Backend-Ecommerce/internal/email"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/users"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	clients, err := internalaws.NewAWSClients(context.Background())
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	cfg := config.FromEnv()
	orderStore := orders.NewStore(clients.DynamoDB, cfg.OrdersTable, cfg.OrdersUserIndex)
	userStore := users.NewStore(clients.DynamoDB, cfg.UsersTable)

	p := NewProcessor(orderStore, userStore, &email.LogMailer{Log: logger}, logger)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1","user_id":"local-user-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			logger.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(p.Handle)
}
