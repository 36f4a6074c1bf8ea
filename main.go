package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/go-kyugo/productapi/config"
	"github.com/go-kyugo/productapi/database"
	"github.com/go-kyugo/productapi/http/controllers"
	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/repository"
	"github.com/go-kyugo/productapi/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	c, err := cfg.LoadConfig(cfg.DefaultPath)
	if err != nil {
		return err
	}

	log := logger.FromConfig(c.Log, c.App.Debug).With(logger.Fields{"app": c.App.Name, "env": c.App.Environment})
	logger.SetStd(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	products, closeStorage, err := openRepository(ctx, c, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	srv, err := server.New(server.Options{
		Config:      c,
		Logger:      log,
		HealthCheck: products.Ping,
	})
	if err != nil {
		return err
	}

	registerServices(srv, products)

	ctrl := &controllers.Controller{}
	if err := ctrl.Init(srv); err != nil {
		return err
	}
	srv.RegisterRoutes(ctrl)

	return srv.Start(ctx)
}

// openRepository selects the storage backend from config. The returned func
// releases it.
func openRepository(ctx context.Context, c *cfg.Config, log *logger.Logger) (repository.ProductRepository, func(), error) {
	if c.Database.Type == "memory" {
		logger.Warn("Using in-memory product storage; data is lost on restart", nil)
		return repository.NewMemoryProductRepository(log), func() {}, nil
	}

	db, err := database.ConnectFromConfig(ctx, c.Database)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to database", logger.Fields{"host": c.Database.Host, "dbname": c.Database.DBName})

	if !c.Database.SkipMigrations {
		if err := database.Migrate(db.SQL); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Migrations applied", nil)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", logger.Fields{"error": err.Error()})
		}
	}
	return repository.NewPostgresProductRepository(db.SQL, log), closeFn, nil
}

func registerServices(s *server.Server, products repository.ProductRepository) {
	logger.Info("Registering services", nil)

	// Services are resolved by name from the server's container in each
	// controller's Init.
	s.RegisterService(controllers.ProductService, products)
}
