// Package domain define contratos e tipos de domínio para a sessão de banco
// por request (conexão direta ou transação).
//
// Este pacote não depende de net/http nem de implementações concretas de pool.
// A intenção é permitir testes de unidade puros e desacoplar o ciclo de vida
// da sessão dos detalhes de infraestrutura (pgx, redis, etc).
package domain
