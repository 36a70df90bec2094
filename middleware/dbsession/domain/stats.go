package domain

import (
	"context"
	"time"
)

// Outcome é o desfecho da sessão de um request, do ponto de vista do broker.
type Outcome string

const (
	// OutcomeCommit: transação comitada com sucesso.
	OutcomeCommit Outcome = "commit"
	// OutcomeCommitError: o commit falhou; os efeitos foram descartados.
	OutcomeCommitError Outcome = "commit_error"
	// OutcomeRollback: desfecho com erro; transação desfeita.
	OutcomeRollback Outcome = "rollback"
	// OutcomeRelease: conexão direta devolvida ao pool (sem commit).
	OutcomeRelease Outcome = "release"
	// OutcomeReject: o pool falhou na aquisição; nenhum handler rodou.
	OutcomeReject Outcome = "reject"
)

// StatsEvent representa a decisão e o desfecho do broker para um request.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
//
// Observação: cuidado com cardinalidade (ex.: Path sem controle pode explodir
// o número de chaves em uma base como Redis).
type StatsEvent struct {
	Method string
	Path   string

	// Transacting indica se o request foi classificado como mutante
	// (recebeu transação) ou não (conexão direta).
	Transacting bool
	Outcome     Outcome

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do broker.
//
// Implementações podem armazenar em Redis, memória, etc.
// O middleware deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
