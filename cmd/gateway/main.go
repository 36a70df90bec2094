package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dbsession-middleware/middleware/dbsession"
	"dbsession-middleware/middleware/dbsession/domain"
	"dbsession-middleware/middleware/dbsession/infra"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := infra.Connect(ctx, cfg.databaseURL, cfg.poolMaxConns)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer pool.Close()

	if err := migrate(ctx, pool); err != nil {
		log.Fatalf("migrate error: %v", err)
	}

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackRoutes(cfg.statsTrackRoutes),
		)
	}

	var gate domain.BeginGate
	if cfg.txRate > 0 {
		gate = infra.NewTxThrottle(cfg.txRate, cfg.txBurst)
	}

	r := chi.NewRouter()
	r.Use(dbsession.Middleware(dbsession.Options{
		Pool:           pool,
		Gate:           gate,
		Stats:          statsStore,
		AcquireTimeout: cfg.acquireTimeout,
		FailureStatus:  cfg.failureStatus,
	}))
	registerNotes(r)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s", cfg.listenAddr)
	log.Printf("pool: maxConns=%d acquireTimeout=%s", cfg.poolMaxConns, cfg.acquireTimeout)
	log.Printf("tx-gate: rate=%.3f burst=%d (0 = desligado)", cfg.txRate, cfg.txBurst)
	log.Printf("stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackRoutes=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackRoutes)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func migrate(ctx context.Context, pool *infra.PgxPool) error {
	_, err := pool.Pool().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS notes (
			id         uuid PRIMARY KEY,
			body       text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`)
	return err
}

type note struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// registerNotes monta um CRUD mínimo que exercita a sessão por request:
// GETs rodam sobre conexão direta, os demais métodos dentro da transação do
// request — o commit (ou rollback) é do middleware, nunca do handler.
func registerNotes(r chi.Router) {
	r.Route("/api/notes", func(r chi.Router) {
		r.Get("/", listNotes)
		r.Get("/{id}", getNote)
		r.Post("/", createNote)
		r.Put("/{id}", updateNote)
		r.Delete("/{id}", deleteNote)
	})
}

func listNotes(w http.ResponseWriter, r *http.Request) {
	g, err := dbsession.Conn(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer g.Release()

	rows, err := g.Session().Query(r.Context(),
		`SELECT id, body, created_at FROM notes ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	notes := make([]note, 0)
	for rows.Next() {
		var n note
		if err := rows.Scan(&n.ID, &n.Body, &n.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

func getNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, err := dbsession.Conn(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer g.Release()

	var n note
	err = g.Session().QueryRow(r.Context(),
		`SELECT id, body, created_at FROM notes WHERE id = $1`, id).
		Scan(&n.ID, &n.Body, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, fmt.Errorf("note not found"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, n)
}

func createNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("body is required"))
		return
	}

	g, err := dbsession.Conn(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer g.Release()

	n := note{ID: uuid.NewString(), Body: req.Body}
	err = g.Session().QueryRow(r.Context(),
		`INSERT INTO notes (id, body) VALUES ($1, $2) RETURNING created_at`,
		n.ID, n.Body).Scan(&n.CreatedAt)
	if err != nil {
		// status >= 500 sinaliza desfecho com erro: o middleware faz rollback.
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, n)
}

func updateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	g, err := dbsession.Conn(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer g.Release()

	tag, err := g.Session().Exec(r.Context(),
		`UPDATE notes SET body = $1 WHERE id = $2`, req.Body, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("note not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"updated": tag.RowsAffected()})
}

func deleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, err := dbsession.Conn(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer g.Release()

	tag, err := g.Session().Exec(r.Context(), `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("note not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": tag.RowsAffected()})
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type config struct {
	listenAddr     string
	databaseURL    string
	poolMaxConns   int32
	acquireTimeout time.Duration
	failureStatus  int
	txRate         float64
	txBurst        int

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackRoutes   bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.databaseURL = os.Getenv("DATABASE_URL")
	cfg.poolMaxConns = int32(getenvIntDefault("POOL_MAX_CONNS", 5))
	cfg.acquireTimeout = getenvDurationDefault("ACQUIRE_TIMEOUT", 0)
	cfg.failureStatus = getenvIntDefault("FAILURE_STATUS", 0)
	cfg.txRate = getenvFloatDefault("TX_RATE", 0)
	cfg.txBurst = getenvIntDefault("TX_BURST", 1)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "dbsession:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackRoutes = getenvBoolDefault("STATS_TRACK_ROUTES", false)

	if cfg.databaseURL == "" {
		return config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.poolMaxConns < 0 {
		return config{}, errors.New("POOL_MAX_CONNS must be >= 0")
	}
	if cfg.txRate < 0 {
		return config{}, errors.New("TX_RATE must be >= 0")
	}
	if cfg.txRate > 0 && cfg.txBurst <= 0 {
		return config{}, errors.New("TX_BURST must be > 0 when TX_RATE is set")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
