package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"furniroom/server/config"
	"furniroom/server/handlers"
	"furniroom/server/models"
	"furniroom/server/persistence"
	"furniroom/server/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		// In production, restrict this to your client's domain
		return true
	},
}

func openStore(cfg config.StoreConfig) (persistence.Storage, error) {
	switch cfg.GetType() {
	case "postgres":
		log.Println("Using PostgreSQL persistence")
		return persistence.NewPostgresStore(cfg.GetDSN())
	case "mysql":
		log.Println("Using MySQL persistence")
		return persistence.NewMySQLStore(cfg.GetDSN())
	case "sqlite":
		log.Println("Using SQLite persistence")
		return persistence.NewSQLiteStore(cfg.GetDSN())
	case "json":
		log.Println("Using JSON persistence")
		return persistence.NewJSONStore(cfg.GetFile())
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.GetType())
}

// sessionUser reads the user identity from the upgrade request. Session
// tickets are issued elsewhere; this server trusts the query string.
func sessionUser(r *http.Request) (models.Avatar, error) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return models.Avatar{}, fmt.Errorf("missing or invalid user_id")
	}
	username := r.URL.Query().Get("username")
	if username == "" {
		username = "user" + strconv.FormatInt(userID, 10)
	}
	return models.Avatar{UserID: userID, Username: username}, nil
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	seedPath := flag.String("seed", "", "path to YAML seed file written into the store on start")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer db.Close()

	log.Println("Persistence initialized successfully")

	if *seedPath != "" {
		seed, err := config.LoadSeed(*seedPath)
		if err != nil {
			log.Fatalf("Failed to load seed: %v", err)
		}
		if err := seed.Apply(db); err != nil {
			log.Fatalf("Failed to apply seed: %v", err)
		}
		log.Printf("Seeded %d definitions, %d rooms and %d items", len(seed.Definitions), len(seed.Rooms), len(seed.Items))
	}

	// Initialize services
	logger := log.New(os.Stderr, "", log.LstdFlags)
	catalog, err := services.LoadCatalog(db, logger)
	if err != nil {
		log.Fatalf("Failed to load furniture catalog: %v", err)
	}
	inventory := services.NewInventoryService(catalog, db, logger)
	rooms := services.NewRoomManager(catalog, db, inventory, logger, cfg.Room.GetUnloadEmpty())
	clientManager := handlers.NewClientManager()

	// Set up HTTP routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		user, err := sessionUser(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if err := db.SaveUser(user.UserID, user.Username); err != nil {
			log.Printf("Failed to save user %d: %v", user.UserID, err)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		// Handle client connection
		handlers.HandleClientConnection(conn, user, cfg.Network.GetSendBuffer(), rooms, inventory, clientManager)
	})
	http.Handle(cfg.Server.GetMetricsPath(), promhttp.Handler())

	port := cfg.Server.GetPort()
	srv := &http.Server{Addr: ":" + strconv.Itoa(port)}
	go func() {
		log.Printf("Server starting on port %d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	// websocket connections are hijacked, so Shutdown does not wait for them
	clientManager.CloseAll()
}
