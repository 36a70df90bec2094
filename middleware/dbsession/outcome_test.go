package dbsession

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOutcomeWriter_DefaultsTo200OnFlush(t *testing.T) {
	ow := newOutcomeWriter()
	_, _ = ow.Write([]byte("hello"))

	rec := httptest.NewRecorder()
	ow.flush(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "hello" {
		t.Fatalf("expected buffered body, got %q", rec.Body.String())
	}
}

func TestOutcomeWriter_FailedThreshold(t *testing.T) {
	ow := newOutcomeWriter()
	ow.WriteHeader(http.StatusBadGateway)

	if !ow.failed(http.StatusInternalServerError) {
		t.Fatalf("expected 502 to count as failure with threshold 500")
	}
	if ow.failed(http.StatusBadGateway + 1) {
		t.Fatalf("expected 502 below threshold 503 to count as success")
	}
}

func TestOutcomeWriter_FirstWriteHeaderWins(t *testing.T) {
	ow := newOutcomeWriter()
	ow.WriteHeader(http.StatusCreated)
	ow.WriteHeader(http.StatusTeapot)

	rec := httptest.NewRecorder()
	ow.flush(rec)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected first WriteHeader to win, got %d", rec.Code)
	}
}

func TestOutcomeWriter_FlushCopiesHeaders(t *testing.T) {
	ow := newOutcomeWriter()
	ow.Header().Set("Content-Type", "application/json")
	ow.WriteHeader(http.StatusAccepted)

	rec := httptest.NewRecorder()
	ow.flush(rec)

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected header copied on flush, got %q", got)
	}
}
