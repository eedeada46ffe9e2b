package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/screening"
	"github.com/whi-0404/TopCV-sub000/internal/storage"
)

// MyServer bundles the database and the optional external collaborators
// the route handlers depend on.
type MyServer struct {
	DB        *database.DBinstanceStruct
	Storage   storage.Client
	Screening *screening.Client
}

// NewServer construct new Server instance
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	if err := database.InitializeDatabase(); err != nil {
		log.Fatalf("Database failed to initialized: %s", err)
	}
	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialized: %s", err)
	}

	gcs, err := storage.NewClientFromEnv(context.Background())
	if err != nil {
		log.Fatalf("Cloud storage failed to initialize: %s", err)
	}

	s := &MyServer{
		DB:        db,
		Screening: screening.NewClientFromEnv(),
	}
	if gcs != nil {
		s.Storage = gcs
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
