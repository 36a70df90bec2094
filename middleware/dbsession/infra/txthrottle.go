package infra

import (
	"context"

	"golang.org/x/time/rate"
)

// TxThrottle é um token bucket (x/time/rate) que limita a taxa de abertura
// de novas transações — o caminho caro do broker. Requests classificados
// como mutantes esperam aqui antes do BEGIN; leituras não passam pelo gate.
type TxThrottle struct {
	lim *rate.Limiter
}

// NewTxThrottle cria o gate com `rps` transações por segundo e rajada `burst`.
func NewTxThrottle(rps float64, burst int) *TxThrottle {
	return &TxThrottle{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *TxThrottle) RPS() float64 { return float64(t.lim.Limit()) }
func (t *TxThrottle) Burst() int   { return t.lim.Burst() }

// Wait implementa domain.BeginGate. Bloqueia até haver token ou o ctx encerrar.
func (t *TxThrottle) Wait(ctx context.Context) error {
	return t.lim.Wait(ctx)
}
