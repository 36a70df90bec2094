package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dbsession-middleware/middleware/dbsession"
)

func main() {
	// Exemplo: injetando o middleware diretamente no seu webserver,
	// construindo o pool a partir da connection string.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dburl := os.Getenv("DATABASE_URL")
	if dburl == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	mw, err := dbsession.New(ctx, dburl, 5)
	if err != nil {
		log.Fatalf("dbsession error: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		// leitura: o middleware entregou uma conexão direta do pool.
		g, err := dbsession.Conn(r)
		if err != nil {
			http.Error(w, "canceled", http.StatusServiceUnavailable)
			return
		}
		defer g.Release()

		var one int
		if err := g.Session().QueryRow(r.Context(), "SELECT 1").Scan(&one); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("pong\n"))
	})
	mux.HandleFunc("POST /touch", func(w http.ResponseWriter, r *http.Request) {
		// escrita: tudo aqui roda na transação do request; o commit é do
		// middleware, depois que este handler retornar com sucesso.
		g, err := dbsession.Conn(r)
		if err != nil {
			http.Error(w, "canceled", http.StatusServiceUnavailable)
			return
		}
		defer g.Release()

		_, err = g.Session().Exec(r.Context(),
			"CREATE TABLE IF NOT EXISTS touches (at timestamptz NOT NULL)")
		if err == nil {
			_, err = g.Session().Exec(r.Context(), "INSERT INTO touches (at) VALUES (now())")
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("touched\n"))
	})

	h := mw(mux)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
