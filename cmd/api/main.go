package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/moumensalem/masroof/internal/account"
	accountStore "github.com/moumensalem/masroof/internal/account/store"
	"github.com/moumensalem/masroof/internal/config"
	"github.com/moumensalem/masroof/internal/database"
	"github.com/moumensalem/masroof/internal/document"
	documentStore "github.com/moumensalem/masroof/internal/document/store"
	masroofHttp "github.com/moumensalem/masroof/internal/http"
	authHandler "github.com/moumensalem/masroof/internal/http/auth"
	documentHandler "github.com/moumensalem/masroof/internal/http/document"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		accountService  = account.NewService(accountStore.New(db))
		documentService = document.NewService(documentStore.New(db))
		issuer          = authHandler.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	)

	var (
		authH     = authHandler.NewHandler(accountService, issuer)
		documentH = documentHandler.NewHandler(documentService)
	)

	router := masroofHttp.New(authH, documentH, issuer)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
