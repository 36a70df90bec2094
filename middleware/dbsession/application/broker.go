package application

import (
	"context"
	"fmt"

	"dbsession-middleware/middleware/dbsession/domain"
)

// SafeFunc decide se um método de request é seguro (somente leitura).
// Requests seguros recebem conexão direta; os demais, transação.
// Deve ser uma função pura do método.
type SafeFunc func(method string) bool

// DefaultSafe considera seguros apenas GET e HEAD.
func DefaultSafe(method string) bool {
	switch method {
	case "GET", "HEAD":
		return true
	}
	return false
}

// Broker concentra a decisão e o ciclo de vida da sessão por request.
//
// Ele não sabe nada sobre HTTP (headers/status): recebe o método como string
// e devolve o slot pronto para ser instalado no contexto do request.
type Broker struct {
	Pool domain.SessionPool

	// Safe é a política de classificação, substituível por rota/produto.
	// Nil usa DefaultSafe.
	Safe SafeFunc

	// Gate, quando presente, limita a abertura de novas transações.
	// Não se aplica ao caminho de conexão direta.
	Gate domain.BeginGate
}

// Classify informa se o método é seguro segundo a política configurada.
func (b Broker) Classify(method string) bool {
	safe := b.Safe
	if safe == nil {
		safe = DefaultSafe
	}
	return safe(method)
}

// Open classifica o request e adquire o recurso correspondente do pool:
// conexão direta para métodos seguros, transação para os demais.
// Falha do pool retorna erro sem nada instalado — o chamador não deve
// invocar o restante do pipeline.
func (b Broker) Open(ctx context.Context, method string) (*domain.Slot, error) {
	if b.Classify(method) {
		conn, err := b.Pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("dbsession: acquire: %w", err)
		}
		return domain.NewSlot(domain.NewPlain(conn)), nil
	}

	if b.Gate != nil {
		if err := b.Gate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("dbsession: begin gate: %w", err)
		}
	}
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("dbsession: begin: %w", err)
	}
	return domain.NewSlot(domain.NewTransacting(tx)), nil
}

// Resolve consome o slot depois que o pipeline retornou, no máximo uma vez.
//
//   - desfecho com falha: transação sofre rollback, conexão volta ao pool;
//     nunca há commit.
//   - desfecho sem falha: transação é comitada; erro de commit é retornado e
//     sobrepõe o desfecho original. Conexão direta apenas volta ao pool.
//
// Se a sessão foi retida além do request, slot.Resolve entra em pânico
// (violação fatal — ver domain.Slot).
func (b Broker) Resolve(ctx context.Context, slot *domain.Slot, failed bool) (domain.Outcome, error) {
	sess := slot.Resolve()

	if tx, ok := sess.Tx(); ok {
		if failed {
			// best-effort: o rollback é o caminho de descarte.
			_ = tx.Rollback(ctx)
			return domain.OutcomeRollback, nil
		}
		if err := tx.Commit(ctx); err != nil {
			return domain.OutcomeCommitError, fmt.Errorf("dbsession: commit: %w", err)
		}
		return domain.OutcomeCommit, nil
	}

	if conn, ok := sess.Conn(); ok {
		conn.Release()
	}
	return domain.OutcomeRelease, nil
}
