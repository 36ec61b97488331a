package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	router "rideshare/internal/http"
	h "rideshare/internal/http/handlers"
	"rideshare/internal/messaging"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// newNotifier picks the RabbitMQ publisher when a broker URL is configured and
// falls back to logging otherwise. The returned func releases the broker connection.
func newNotifier(env intconfig.Env) (messaging.Notifier, func(), error) {
	if env.AMQPURL == "" {
		log.Println("AMQP_URL not set, notifications are only logged")
		return messaging.LogNotifier{}, func() {}, nil
	}
	rn, err := messaging.NewRabbitNotifier(env.AMQPURL, env.NotifyQueue)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}
	log.Printf("publishing notifications to queue %q", env.NotifyQueue)
	return rn, func() { _ = rn.Close() }, nil
}

func run() error {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSchema()
	if err := intdb.EnsureSchema(schemaCtx, db); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	notifier, closeNotifier, err := newNotifier(env)
	if err != nil {
		return err
	}
	defer closeNotifier()

	r := router.NewRouter(env, h.Deps{
		Auth: services.AuthService{
			Users:     services.UserService{DB: db},
			Notifier:  notifier,
			JWTSecret: []byte(env.JWTSecret),
			TokenTTL:  env.JWTTTL,
			OTPTTL:    env.OTPTTL,
		},
		Notifier: notifier,
		ETA: services.ETAService{
			BaseURL: env.OSRMBaseURL,
			Client:  &http.Client{Timeout: 10 * time.Second},
		},
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("server stopped cleanly")
	return nil
}
