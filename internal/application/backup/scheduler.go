// Package backup respaldo remoto del documento de exportación: programación con espera tras la
// última escritura, respaldo manual, restauración y estado.
package backup

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/agro-inventario/internal/infrastructure/remote"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// DefaultDebounce espera desde la última escritura antes de subir.
const DefaultDebounce = 2 * time.Minute

// State estado del programador.
type State string

const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateSyncing  State = "syncing"
	StateError    State = "error"
	StateDisabled State = "disabled"
)

// Exporter produce el documento a subir.
type Exporter interface {
	ExportJSON(ctx context.Context) ([]byte, error)
}

// Notifier recibe el resultado de cada respaldo automático.
type Notifier interface {
	Succeeded(r *remote.Receipt)
	Failed(err error)
}

type logNotifier struct{ log *logger.Logger }

func (n logNotifier) Succeeded(r *remote.Receipt) {
	n.log.Info().Str("provider", r.Provider).Str("location", r.Location).Str("version", r.Version).Msg("respaldo subido")
}

func (n logNotifier) Failed(err error) {
	n.log.Error().Err(err).Msg("respaldo automático fallido")
}

// Status estado visible del respaldo.
type Status struct {
	Enabled     bool            `json:"enabled"`
	Provider    string          `json:"provider,omitempty"`
	State       State           `json:"state"`
	NextRun     *time.Time      `json:"nextRun,omitempty"`
	LastSuccess *time.Time      `json:"lastSuccess,omitempty"`
	LastReceipt *remote.Receipt `json:"lastReceipt,omitempty"`
	LastError   string          `json:"lastError,omitempty"`
	LastErrorAt *time.Time      `json:"lastErrorAt,omitempty"`
}

// SchedulerOptions parámetros opcionales.
type SchedulerOptions struct {
	Debounce time.Duration
	Timeout  time.Duration // por subida; 0 = 60s
	Notifier Notifier
	Logger   *logger.Logger
}

// Scheduler sube el documento cuando pasa Debounce sin escrituras. Cada Schedule reinicia la
// espera; una subida en curso no se cancela. Un fallo deja el estado en error y se notifica;
// las escrituras locales nunca dependen del resultado.
type Scheduler struct {
	remote   remote.Remote
	exporter Exporter
	debounce time.Duration
	timeout  time.Duration
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64 // identifica el temporizador vigente
	nextRun  time.Time
	state    State
	inflight int
	closed   bool
	last     *remote.Receipt
	lastOK   time.Time
	lastErr  error
	lastErrT time.Time
	wg       sync.WaitGroup
}

// NewScheduler construye el programador. Con r nil queda deshabilitado.
func NewScheduler(r remote.Remote, exporter Exporter, opts SchedulerOptions) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{log: opts.Logger}
	}
	state := StateIdle
	if r == nil {
		state = StateDisabled
	}
	return &Scheduler{
		remote:   r,
		exporter: exporter,
		debounce: opts.Debounce,
		timeout:  opts.Timeout,
		notifier: opts.Notifier,
		log:      opts.Logger,
		now:      time.Now,
		state:    state,
	}
}

// Enabled indica si hay destino remoto.
func (s *Scheduler) Enabled() bool { return s.remote != nil }

// OnWrite adapta Schedule al gancho de escritura del almacén.
func (s *Scheduler) OnWrite(key string) { s.Schedule() }

// Schedule (re)inicia la espera del próximo respaldo.
func (s *Scheduler) Schedule() {
	if s.remote == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked()
}

func (s *Scheduler) scheduleLocked() {
	if s.closed {
		return
	}
	s.stopLocked()
	gen := s.gen
	s.nextRun = s.now().Add(s.debounce)
	s.state = StatePending
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
}

// Cancel descarta el respaldo pendiente.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if s.state == StatePending {
		s.state = s.settledLocked()
	}
}

// stopLocked detiene el temporizador vigente; un disparo ya vencido que espera el candado
// queda invalidado por el cambio de generación.
func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.nextRun = time.Time{}
}

// settledLocked estado sin nada pendiente.
func (s *Scheduler) settledLocked() State {
	switch {
	case s.inflight > 0:
		return StateSyncing
	case s.lastErr != nil:
		return StateError
	}
	return StateIdle
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.nextRun = time.Time{}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	r, err := s.push(ctx)
	if err != nil {
		s.notifier.Failed(err)
		return
	}
	s.notifier.Succeeded(r)
}

// Now sube el documento de inmediato y descarta la espera pendiente.
func (s *Scheduler) Now(ctx context.Context) (*remote.Receipt, error) {
	if s.remote == nil {
		return nil, remote.ErrRemoteNotConfigured
	}
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
	return s.push(ctx)
}

func (s *Scheduler) push(ctx context.Context) (*remote.Receipt, error) {
	s.mu.Lock()
	s.inflight++
	if s.timer == nil {
		s.state = StateSyncing
	}
	s.mu.Unlock()

	r, err := s.upload(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.lastErr, s.lastErrT = err, s.now()
	} else {
		s.last, s.lastOK, s.lastErr = r, s.now(), nil
	}
	if s.timer == nil {
		s.state = s.settledLocked()
	}
	return r, err
}

func (s *Scheduler) upload(ctx context.Context) (*remote.Receipt, error) {
	payload, err := s.exporter.ExportJSON(ctx)
	if err != nil {
		return nil, err
	}
	return s.remote.Push(ctx, payload)
}

// Status copia del estado actual.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Enabled: s.remote != nil, State: s.state, LastReceipt: s.last}
	if s.remote != nil {
		st.Provider = s.remote.Name()
	}
	if !s.nextRun.IsZero() {
		t := s.nextRun
		st.NextRun = &t
	}
	if !s.lastOK.IsZero() {
		t := s.lastOK
		st.LastSuccess = &t
	}
	if s.lastErr != nil {
		t := s.lastErrT
		st.LastError, st.LastErrorAt = s.lastErr.Error(), &t
	}
	return st
}

// Close detiene la espera y aguarda la subida en curso.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()
	s.wg.Wait()
}
