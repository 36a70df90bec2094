package domain

import "context"

// Slot é o contêiner compartilhado que guarda exatamente uma Session durante
// o processamento de um request. Qualquer estágio do pipeline que alcance o
// contexto do request pode pedir acesso exclusivo de escrita via Acquire;
// a resolução (commit/release) acontece uma única vez, pelo broker, via
// Resolve.
//
// A exclusão mútua usa um channel de capacidade 1 para que a espera respeite
// cancelamento de contexto. Toda utilização exige acesso exclusivo, já que
// executar queries requer mutabilidade da sessão.
type Slot struct {
	sem chan struct{}

	// protegidos pelo sem
	sess     *Session
	resolved bool
}

// NewSlot cria um slot ocupado pela sessão dada.
func NewSlot(sess *Session) *Slot {
	return &Slot{sem: make(chan struct{}, 1), sess: sess}
}

// Acquire bloqueia até obter acesso exclusivo à sessão do slot e devolve um
// guard de escopo. O guard deve ser liberado exatamente uma vez (Release),
// readmitindo o próximo interessado. Retorna erro apenas se o ctx encerrar
// durante a espera.
//
// Chamar Acquire depois da resolução é erro de programação (a sessão já foi
// devolvida ao pool) e causa pânico.
func (s *Slot) Acquire(ctx context.Context) (*Guard, error) {
	select {
	case s.sem <- struct{}{}:
		if s.resolved {
			<-s.sem
			panic("dbsession: sessão acessada após a resolução do request; o recurso já foi devolvido ao pool")
		}
		return &Guard{slot: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolve toma posse exclusiva da sessão para a resolução final.
// Só o broker chama, no máximo uma vez, depois que o pipeline retornou.
//
// Se o acesso exclusivo não puder ser tomado imediatamente — um guard ainda
// está vivo, ou seja, algo reteve a sessão além do escopo do request — o
// processo não tem como continuar sem vazar conexões do pool, então o erro
// é fatal: pânico, nunca um log ignorável.
func (s *Slot) Resolve() *Session {
	select {
	case s.sem <- struct{}{}:
	default:
		panic("dbsession: não foi possível tomar posse exclusiva da sessão na resolução; o handler reteve a sessão além do request? continuar vazaria o pool")
	}
	if s.resolved {
		<-s.sem
		panic("dbsession: slot resolvido duas vezes")
	}
	s.resolved = true
	sess := s.sess
	s.sess = nil
	<-s.sem
	return sess
}

// Guard é o acesso exclusivo, com escopo, à sessão de um slot.
type Guard struct {
	slot     *Slot
	released bool
}

// Session devolve a sessão sob o guard.
func (g *Guard) Session() *Session {
	if g.released {
		panic("dbsession: guard usado após Release")
	}
	return g.slot.sess
}

// Release devolve o acesso exclusivo, readmitindo quem estiver esperando.
// Deve ser chamado exatamente uma vez.
func (g *Guard) Release() {
	if g.released {
		panic("dbsession: Release chamado duas vezes no mesmo guard")
	}
	g.released = true
	<-g.slot.sem
}
