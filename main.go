package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "transport/internal/config"
	"transport/internal/db"
	router "transport/internal/http"
	"transport/internal/repositories"
	"transport/internal/services"
	"transport/internal/tcp"
)

func main() {
	env := intconfig.LoadEnv()

	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if err := db.EnsureSchema(conn); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	svc := services.NewReservationService(
		repositories.EmployeeRepo{},
		repositories.TripRepo{},
		repositories.ClientRepo{},
		repositories.ReservedSeatRepo{},
	)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tcpSrv := tcp.NewServer(env.TCPAddr, svc)
	tcpDone := make(chan error, 1)
	go func() {
		log.Printf("Session server listening on %s", env.TCPAddr)
		tcpDone <- tcpSrv.ListenAndServe(ctx)
	}()

	r := router.NewRouter(env, svc)
	srv := &http.Server{
		Addr:              env.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("REST server listening on http://localhost%s", env.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("REST server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST shutdown: %v", err)
	}
	if err := <-tcpDone; err != nil {
		log.Printf("session server: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
