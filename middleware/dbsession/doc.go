// Package dbsession fornece um adapter HTTP (net/http) que entrega a cada
// request uma sessão de banco — transparentemente uma transação ou uma
// conexão direta do pool — e resolve essa sessão exatamente uma vez ao final.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sessão, slot, pool) sem net/http
//   - application: casos de uso (classificar, abrir, resolver) sem net/http
//   - infra: implementações concretas (pgxpool, token bucket, stores de stats)
//   - dbsession (este pacote): middleware HTTP + acessor de contexto +
//     captura de desfecho da resposta
//
// Fluxo no pipeline:
//
//  1. Se o request já carrega um slot (middleware repetido ou sessão injetada
//     por teste), apenas delega adiante.
//  2. Classifica o método: GET/HEAD recebem conexão direta; os demais,
//     transação. A política é substituível via Options.Safe.
//  3. Falha do pool responde 503 sem rodar nenhum handler.
//  4. Instala o slot no contexto e delega; handlers pegam acesso exclusivo
//     de escrita com Conn(r), quantas vezes quiserem, sequencialmente.
//  5. Resolve: desfecho sem falha comita a transação (erro de commit
//     sobrepõe a resposta); desfecho com falha faz rollback. Conexão direta
//     apenas volta ao pool.
//
// Por que transação só no caminho mutante: transações dão rollback garantido
// quando algo dá errado, mas custam caro demais para leituras que não
// precisam disso. O middleware gerencia a transação apenas quando ela vale a
// pena.
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o
// comportamento, como DATABASE_URL, POOL_MAX_CONNS, TX_RATE e STATS_ENABLED.
package dbsession
