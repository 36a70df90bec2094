package dbsession

import (
	"context"
	"net/http"
	"time"

	"dbsession-middleware/middleware/dbsession/application"
	"dbsession-middleware/middleware/dbsession/domain"
	"dbsession-middleware/middleware/dbsession/infra"
)

type Options struct {
	// Pool é o colaborador de pool (ex.: infra.NewPgxPool). Obrigatório.
	Pool domain.SessionPool

	// Safe substitui a política de classificação (padrão: GET/HEAD seguros).
	Safe application.SafeFunc

	// Gate, quando presente, limita a taxa de abertura de transações
	// (ex.: infra.NewTxThrottle). Não afeta o caminho de conexão direta.
	Gate domain.BeginGate

	// Stats recebe a decisão e o desfecho de cada request (best-effort).
	Stats domain.StatsStore

	// AcquireTimeout limita a espera pelo pool na abertura da sessão.
	// Zero espera até o contexto do request encerrar.
	AcquireTimeout time.Duration

	// FailureStatus é o limiar a partir do qual o status capturado conta
	// como desfecho com erro (sem commit). Padrão: 500.
	FailureStatus int

	// RejectStatus é a resposta quando o pool falha na aquisição.
	// Padrão: 503.
	RejectStatus int
}

// New cria o middleware a partir de uma connection string e do tamanho máximo
// do pool. Para um pool pré-construído, use Middleware(Options{Pool: ...}).
func New(ctx context.Context, connString string, maxConns int32) (func(next http.Handler) http.Handler, error) {
	pool, err := infra.Connect(ctx, connString, maxConns)
	if err != nil {
		return nil, err
	}
	return Middleware(Options{Pool: pool}), nil
}

// Middleware entrega a cada request uma sessão de banco — transação para
// métodos mutantes, conexão direta para leituras — e a resolve exatamente
// uma vez quando o restante do pipeline retorna.
//
// A aquisição acontece antes de delegar; a resolução, somente depois que a
// delegação retorna. Entre os dois, handlers acessam a sessão via Conn(r).
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.FailureStatus == 0 {
		opts.FailureStatus = http.StatusInternalServerError
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.Broker{
		Pool: opts.Pool,
		Safe: opts.Safe,
		Gate: opts.Gate,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Guarda de reentrância, com duplo propósito: nunca rodar duas
			// vezes no mesmo request, e aceitar um slot injetado antes do
			// pipeline (ex.: transação de teste via NewContext).
			if _, ok := FromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			transacting := !svc.Classify(r.Method)

			openCtx := r.Context()
			if opts.AcquireTimeout > 0 {
				var cancel context.CancelFunc
				openCtx, cancel = context.WithTimeout(openCtx, opts.AcquireTimeout)
				defer cancel()
			}

			slot, err := svc.Open(openCtx, r.Method)
			if err != nil {
				// falha do pool: nenhum recurso instalado, nenhum handler roda.
				record(r, opts.Stats, transacting, domain.OutcomeReject)
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			r = r.WithContext(NewContext(r.Context(), slot))
			ow := newOutcomeWriter()

			// resolução não pode ser abortada por cliente que desistiu:
			// o commit/rollback precisa acontecer de qualquer jeito.
			resCtx := context.WithoutCancel(r.Context())

			panicked := true
			func() {
				defer func() {
					if panicked {
						// handler em pânico: resolve como falha (rollback)
						// e deixa o pânico seguir para o recoverer do servidor.
						outcome, _ := svc.Resolve(resCtx, slot, true)
						record(r, opts.Stats, transacting, outcome)
					}
				}()
				next.ServeHTTP(ow, r)
				panicked = false
			}()

			outcome, err := svc.Resolve(resCtx, slot, ow.failed(opts.FailureStatus))
			record(r, opts.Stats, transacting, outcome)
			if err != nil {
				// o commit falhou: a resposta capturada é descartada e o
				// desfecho vira erro, sobrepondo o sucesso original.
				http.Error(w, "database session commit failed", http.StatusInternalServerError)
				return
			}
			ow.flush(w)
		})
	}
}

// record envia o evento para o StatsStore, best-effort.
func record(r *http.Request, stats domain.StatsStore, transacting bool, outcome domain.Outcome) {
	if stats == nil {
		return
	}
	_ = stats.Record(r.Context(), domain.StatsEvent{
		Method:      r.Method,
		Path:        r.URL.Path,
		Transacting: transacting,
		Outcome:     outcome,
		At:          time.Now(),
	})
}
