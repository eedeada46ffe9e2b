package main

import (
	"log"

	"github.com/whi-0404/TopCV-sub000/internal/server"
)

// @title TopCV API
// @version 1.0
// @description Job marketplace backend: job post publication, application review and moderation.
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	srv := server.NewServer()

	log.Printf("Listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("cannot start server: %s", err)
	}
}
