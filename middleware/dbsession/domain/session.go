package domain

// Camada de domínio da sessão de banco.
//
// Contratos do colaborador de pool e a união fechada conexão/transação,
// sem dependência de net/http.

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier é a superfície mínima de execução de queries, comum a conexões
// diretas e transações. Os tipos de linha são os do pgx (interfaces), o que
// permite fakes em testes sem um banco real.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn é uma conexão emprestada do pool, fora de transação.
// Release devolve a conexão ao pool e deve ser chamado exatamente uma vez.
type Conn interface {
	Querier
	Release()
}

// Tx é uma transação aberta. Quem decide entre Commit e Rollback é o broker,
// na resolução do request; nunca o handler.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SessionPool é o colaborador de pool: o único ponto do sistema que toca o
// pool de conexões.
//
// Observação: a implementação pode ser pgxpool, um fake de teste, etc.
type SessionPool interface {
	Acquire(ctx context.Context) (Conn, error)
	Begin(ctx context.Context) (Tx, error)
}

// BeginGate limita a abertura de novas transações (o caminho caro).
// Wait bloqueia até haver permissão ou até o ctx encerrar.
type BeginGate interface {
	Wait(ctx context.Context) error
}

// Session é a união fechada: exatamente uma das variantes está preenchida.
// A superfície de query é uniforme — quem usa a sessão não precisa saber se
// está dentro de uma transação ou não.
type Session struct {
	tx   Tx
	conn Conn
}

// NewTransacting cria uma sessão transacional.
func NewTransacting(tx Tx) *Session { return &Session{tx: tx} }

// NewPlain cria uma sessão sobre uma conexão direta do pool.
func NewPlain(conn Conn) *Session { return &Session{conn: conn} }

// Transacting informa se a sessão carrega uma transação aberta.
func (s *Session) Transacting() bool { return s.tx != nil }

// Tx devolve a transação quando a sessão é transacional.
// Uso previsto: resolução pelo broker, não handlers.
func (s *Session) Tx() (Tx, bool) {
	if s.tx != nil {
		return s.tx, true
	}
	return nil, false
}

// Conn devolve a conexão direta quando a sessão não é transacional.
// Uso previsto: resolução pelo broker, não handlers.
func (s *Session) Conn() (Conn, bool) {
	if s.conn != nil {
		return s.conn, true
	}
	return nil, false
}

func (s *Session) querier() Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

func (s *Session) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.querier().Exec(ctx, sql, args...)
}

func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.querier().Query(ctx, sql, args...)
}

func (s *Session) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.querier().QueryRow(ctx, sql, args...)
}
