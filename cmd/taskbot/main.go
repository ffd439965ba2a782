package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theheadmen/goTaskBot/internal/dbconnector"
	"github.com/theheadmen/goTaskBot/internal/engine"
	"github.com/theheadmen/goTaskBot/internal/memstore"
	"github.com/theheadmen/goTaskBot/internal/serverconfig"
	"github.com/theheadmen/goTaskBot/internal/service"
	"github.com/theheadmen/goTaskBot/internal/session"
	"github.com/theheadmen/goTaskBot/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env file not found, using process environment\n")
	}

	configStore := serverconfig.NewConfigStore()
	configStore.ParseFlags()
	if configStore.FlagBotToken == "" {
		log.Fatalf("bot token is not configured")
	}
	if configStore.FlagAdminID == 0 {
		log.Fatalf("admin id is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storage service.Storage
	if configStore.FlagDatabase == "" {
		log.Printf("no database configured, ledger state is in-memory only\n")
		storage = memstore.NewMemStore()
	} else {
		db, err := dbconnector.OpenDBConnect(configStore.FlagDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.DBInitialize(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		storage = db
	}

	transport, err := telegram.NewTransport(configStore.FlagBotToken)
	if err != nil {
		log.Fatalf("Failed to connect to bot API: %v", err)
	}
	log.Printf("Authorized as %s\n", transport.BotName())

	eng := engine.NewEngine(storage, session.NewStore(), transport,
		configStore.FlagAdminID, transport.BotName())

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	go func() {
		log.Printf("Starting metrics server on %s\n", configStore.FlagRunAddr)
		if err := http.ListenAndServe(configStore.FlagRunAddr, router); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start metrics server: %v", err)
		}
	}()

	log.Printf("Bot is running...\n")
	transport.Run(ctx, eng)
}
