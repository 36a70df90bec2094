package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"dbsession-middleware/middleware/dbsession"
)

// Servidor de validação manual: o handler /segura é propositalmente burro e
// fica com o guard da sessão sem liberar. O esperado é o middleware entrar
// em pânico na resolução (retenção além do request) em vez de vazar conexão.
func main() {
	dburl := os.Getenv("DATABASE_URL")
	if dburl == "" {
		fmt.Println("DATABASE_URL é obrigatória")
		os.Exit(1)
	}

	mw, err := dbsession.New(context.Background(), dburl, 2)
	if err != nil {
		fmt.Printf("Erro ao criar o middleware: %s\n", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/segura", func(w http.ResponseWriter, r *http.Request) {
		g, err := dbsession.Conn(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_ = g // nunca chama Release: requisição malformada de propósito
		fmt.Println("Log: /segura reteve o guard; o middleware deve entrar em pânico agora")
		w.WriteHeader(http.StatusOK)
	})

	fmt.Println("Servidor burrão rodando em http://localhost:8082 (GET /segura)")
	err = http.ListenAndServe(":8082", mw(mux))
	if err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
