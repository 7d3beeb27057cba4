package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/account"
	accountrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/credential"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/gate"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/health"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

func main() {
	// best-effort: a missing .env just means the real environment is used
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-auth-go")

	// fail fast before touching the network
	tokenCfg, err := token.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("token config: %v", err)
	}
	if string(tokenCfg.Secret) == token.DevSecret {
		sugar.Warn("JWT_SECRET not set; using the development secret")
	}
	codec, err := token.NewCodec(tokenCfg)
	if err != nil {
		sugar.Fatalf("token codec: %v", err)
	}

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := accountrepo.NewAccountRepo(db)
	if err := repo.EnsureTables(ctx); err != nil {
		sugar.Fatalf("ensure tables: %v", err)
	}

	m := metrics.New()
	hasher := credential.NewHasher(credential.ConcurrencyFromEnv())
	svc := account.NewService(repo, hasher, codec, sugar)

	handler := router.RegisterRoutes(router.Deps{
		Logger:  sugar,
		Account: account.NewHandler(svc, sugar, m),
		Gate:    gate.New(codec, sugar, m),
		Health:  health.NewHandler(db, sugar),
		Metrics: m,
	})
	srv := &http.Server{
		Addr:              listenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running", "addr", srv.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

func listenAddr() string {
	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "6001"
	}
	return net.JoinHostPort(host, port)
}
