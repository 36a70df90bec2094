package dbsession

import (
	"context"
	"net/http"

	"dbsession-middleware/middleware/dbsession/domain"
)

// chave não exportada: o slot só entra/sai do contexto por este pacote.
type slotKey struct{}

// NewContext devolve um contexto carregando o slot.
//
// Além do uso interno do middleware, este é o ponto de injeção para testes:
// um slot pré-montado (ex.: embrulhando uma transação de teste) instalado
// antes do middleware faz a guarda de reentrância delegar direto, sem tocar
// o pool.
func NewContext(ctx context.Context, slot *domain.Slot) context.Context {
	return context.WithValue(ctx, slotKey{}, slot)
}

// FromContext recupera o slot instalado pelo middleware, se houver.
func FromContext(ctx context.Context) (*domain.Slot, bool) {
	slot, ok := ctx.Value(slotKey{}).(*domain.Slot)
	return slot, ok
}

// Conn devolve o guard de escrita da sessão do request atual.
//
// Por baixo, a sessão é transparentemente uma transação ou uma conexão
// direta do pool. O guard deve ser liberado (Release) exatamente uma vez;
// aquisições sequenciais pelo mesmo ou por outros estágios são legais e
// serializam pelo lock do slot.
//
// Entra em pânico se o middleware não rodou para este request — pipeline mal
// configurado é erro de programação, não erro de runtime recuperável.
// Retorna erro apenas se o contexto do request encerrar durante a espera.
func Conn(r *http.Request) (*domain.Guard, error) {
	slot, ok := FromContext(r.Context())
	if !ok {
		panic("dbsession: middleware não instalado; instale dbsession.Middleware antes dos handlers")
	}
	return slot.Acquire(r.Context())
}
