package pipeline

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/visualdelta/internal/observability"
	"github.com/your-org/visualdelta/internal/verbalizer"
)

// Registry owns one Pipeline per live call, constructed lazily on
// first snapshot. Guarded by a mutex since calls arrive concurrently
// over HTTP rather than from one worker loop.
type Registry struct {
	mu         sync.Mutex
	pipelines  map[uuid.UUID]*Pipeline
	cfg        Config
	llmHandler verbalizer.Handler
	logger     *slog.Logger
}

func NewRegistry(cfg Config, llmHandler verbalizer.Handler, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		pipelines:  make(map[uuid.UUID]*Pipeline),
		cfg:        cfg,
		llmHandler: llmHandler,
		logger:     logger,
	}
}

// Get returns the call's pipeline, constructing it on first access.
func (r *Registry) Get(callID uuid.UUID) *Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pipelines[callID]; ok {
		return p
	}
	p := New(r.cfg, r.llmHandler, r.logger)
	r.pipelines[callID] = p
	observability.ActiveCalls.Set(float64(len(r.pipelines)))
	return p
}

// Delete tears down a call's pipeline. Safe to call on a call with no
// live pipeline yet.
func (r *Registry) Delete(callID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pipelines, callID)
	observability.ActiveCalls.Set(float64(len(r.pipelines)))
}
