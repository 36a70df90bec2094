package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dbsession-middleware/middleware/dbsession/domain"
)

// PgxPool adapta um *pgxpool.Pool ao contrato domain.SessionPool.
//
// *pgxpool.Conn e pgx.Tx já satisfazem domain.Conn e domain.Tx; o adapter só
// precisa converter os retornos.
type PgxPool struct {
	pool *pgxpool.Pool
}

// NewPgxPool embrulha um pool pré-construído. O chamador continua dono do
// pool (inclusive do Close na saída do processo).
func NewPgxPool(pool *pgxpool.Pool) *PgxPool {
	return &PgxPool{pool: pool}
}

// Connect cria o pool a partir de uma connection string. maxConns > 0
// sobrepõe o tamanho máximo do pool; zero deixa o padrão do pgx.
func Connect(ctx context.Context, connString string, maxConns int32) (*PgxPool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("infra: parse config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("infra: connect: %w", err)
	}
	return &PgxPool{pool: pool}, nil
}

// Pool expõe o pool subjacente (ex.: para migrações no boot).
func (p *PgxPool) Pool() *pgxpool.Pool { return p.pool }

// Close encerra o pool subjacente.
func (p *PgxPool) Close() { p.pool.Close() }

// Acquire implementa domain.SessionPool.
func (p *PgxPool) Acquire(ctx context.Context) (domain.Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Begin implementa domain.SessionPool.
func (p *PgxPool) Begin(ctx context.Context) (domain.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
