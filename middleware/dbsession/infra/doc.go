// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - PgxPool: SessionPool sobre *pgxpool.Pool (jackc/pgx)
//   - TxThrottle: token bucket (golang.org/x/time/rate) para abertura de transações
//   - MemoryStatsStore / RedisStatsStore: persistência das decisões do broker
package infra
