package dbsession

import (
	"bytes"
	"net/http"
)

// outcomeWriter captura status, headers e corpo da resposta em memória para
// que a resolução possa sobrepor um desfecho de sucesso (falha de commit
// vira 500, e a resposta original é descartada).
//
// Limitação assumida: respostas em streaming (Flusher/Hijacker) não combinam
// com commit-no-final; o corpo só vai para o cliente depois da resolução.
type outcomeWriter struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newOutcomeWriter() *outcomeWriter {
	return &outcomeWriter{header: make(http.Header)}
}

func (w *outcomeWriter) Header() http.Header { return w.header }

func (w *outcomeWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
}

func (w *outcomeWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

// failed informa se o desfecho capturado conta como erro (status >= limiar).
func (w *outcomeWriter) failed(threshold int) bool {
	return w.wroteHeader && w.status >= threshold
}

// flush entrega a resposta capturada ao writer real.
func (w *outcomeWriter) flush(dst http.ResponseWriter) {
	h := dst.Header()
	for k, vv := range w.header {
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	status := w.status
	if !w.wroteHeader {
		status = http.StatusOK
	}
	dst.WriteHeader(status)
	_, _ = dst.Write(w.body.Bytes())
}
