// Package application contém os casos de uso do broker de sessão de banco:
// classificar o request (seguro/mutante), abrir a sessão no pool e resolvê-la
// (commit/rollback/release) exatamente uma vez.
//
// Ele depende apenas do pacote domain e não conhece net/http.
package application
