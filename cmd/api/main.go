package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalaws "github.com/Huc06/Backend-Ecommerce/internal/aws"
	cartpkg "github.com/Huc06/Backend-Ecommerce/internal/cart"
	"github.com/Huc06/Backend-Ecommerce/internal/checkout"
	"github.com/Huc06/Backend-Ecommerce/internal/config"
	"github.com/Huc06/Backend-Ecommerce/internal/handlers"
	"github.com/Huc06/Backend-Ecommerce/internal/metrics"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/payments"
	"github.com/Huc06/Backend-Ecommerce/internal/products"
	"github.com/Huc06/Backend-Ecommerce/internal/validation"
	"github.com/Huc06/Backend-Ecommerce/internal/vnpay"
	"github.com/Huc06/Backend-Ecommerce/internal/vouchers"
)

func setupRouter(cfg handlers.Config, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.Register(r, cfg)

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

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

	cartStore := cartpkg.NewStore(clients.DynamoDB, cfg.CartsTable)
	productStore := products.NewStore(clients.DynamoDB, cfg.ProductsTable)
	voucherStore := vouchers.NewStore(clients.DynamoDB, cfg.VouchersTable)
	orderStore := orders.NewStore(clients.DynamoDB, cfg.OrdersTable, cfg.OrdersUserIndex)
	paymentStore := payments.NewStore(clients.DynamoDB, cfg.PaymentsTable, cfg.PaymentsTxnRefIndex, cfg.PaymentsUserIndex)

	gateway := vnpay.New(cfg.VNPay)
	recorder := metrics.NewRecorder(clients.CloudWatch, cfg.MetricsNamespace)
	publisher := internalaws.NewPublisher(clients.SQS, cfg.ConfirmationQueueURL)

	checkoutSvc := checkout.NewService(clients.DynamoDB, cartStore, productStore, voucherStore, orderStore, publisher, recorder, logger)
	paymentSvc := payments.NewService(paymentStore, orderStore, gateway, logger)
	reconciler := payments.NewReconciler(paymentStore, orderStore, gateway, recorder, logger)

	r := setupRouter(handlers.Config{
		Checkout:   checkoutSvc,
		Payments:   paymentSvc,
		Reconciler: reconciler,
		Carts:      cartStore,
		Products:   productStore,
		Vouchers:   voucherStore,
		Orders:     orderStore,
		Validator:  validation.New(),
		Log:        logger,
	}, logger)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
