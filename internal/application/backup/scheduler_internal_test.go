package backup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/infrastructure/remote"
)

type countingRemote struct {
	mu     sync.Mutex
	pushes int
}

func (r *countingRemote) Name() string { return "mem" }

func (r *countingRemote) Push(ctx context.Context, payload []byte) (*remote.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes++
	return &remote.Receipt{Provider: "mem", At: time.Now()}, nil
}

func (r *countingRemote) Pull(ctx context.Context) ([]byte, error)             { return nil, nil }
func (r *countingRemote) Check(ctx context.Context) (*remote.Info, error)      { return &remote.Info{}, nil }
func (r *countingRemote) Last(ctx context.Context) (*remote.LastBackup, error) { return nil, nil }

func (r *countingRemote) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes
}

type staticExporter struct{}

func (staticExporter) ExportJSON(ctx context.Context) ([]byte, error) { return []byte(`{}`), nil }

const raceDebounce = 20 * time.Millisecond

// Un disparo vencido que espera el candado mientras se reprograma no debe pisar el nuevo temporizador.
func TestScheduler_DisparoVencidoNoPisaElNuevoTemporizador(t *testing.T) {
	r := &countingRemote{}
	s := NewScheduler(r, staticExporter{}, SchedulerOptions{Debounce: raceDebounce, Notifier: noopNotifier{}})
	defer s.Close()

	s.Schedule()
	s.mu.Lock()
	time.Sleep(3 * raceDebounce) // el primer temporizador vence y queda esperando el candado
	s.scheduleLocked()
	s.mu.Unlock()

	time.Sleep(raceDebounce / 4)
	st := s.Status()
	assert.Equal(t, StatePending, st.State)
	assert.NotNil(t, st.NextRun)
	assert.Zero(t, r.count(), "el disparo vencido se descarta")

	require.Eventually(t, func() bool { return r.count() == 1 }, time.Second, 2*time.Millisecond)
	time.Sleep(3 * raceDebounce)
	assert.Equal(t, 1, r.count(), "una sola subida por ráfaga")
}

func TestScheduler_CancelTrasDisparoVencido(t *testing.T) {
	r := &countingRemote{}
	s := NewScheduler(r, staticExporter{}, SchedulerOptions{Debounce: raceDebounce, Notifier: noopNotifier{}})
	defer s.Close()

	s.Schedule()
	s.mu.Lock()
	time.Sleep(3 * raceDebounce)
	s.scheduleLocked()
	s.mu.Unlock()
	s.Cancel()

	time.Sleep(4 * raceDebounce)
	assert.Zero(t, r.count())
	assert.Equal(t, StateIdle, s.Status().State)
}

type noopNotifier struct{}

func (noopNotifier) Succeeded(*remote.Receipt) {}
func (noopNotifier) Failed(error)              {}
