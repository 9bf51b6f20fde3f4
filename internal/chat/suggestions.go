package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MaxSuggestions es el tope de respuestas rapidas que se muestran.
const MaxSuggestions = 6

// SuggestionSource obtiene los prompts de ejemplo.
type SuggestionSource interface {
	GetSuggestions(ctx context.Context) ([]string, error)
}

// SuggestionProvider carga las sugerencias una vez por sesion.
type SuggestionProvider struct {
	source SuggestionSource
	logger *zap.Logger

	once  sync.Once
	mu    sync.RWMutex
	items []string
}

func NewSuggestionProvider(source SuggestionSource, logger *zap.Logger) *SuggestionProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionProvider{source: source, logger: logger}
}

// Load pide las sugerencias la primera vez que se llama; un fallo deja la
// lista vacia.
func (p *SuggestionProvider) Load(ctx context.Context) {
	p.once.Do(func() {
		if p.source == nil {
			return
		}
		raw, err := p.source.GetSuggestions(ctx)
		if err != nil {
			p.logger.Warn("load suggestions failed", zap.Error(err))
			return
		}
		items := make([]string, 0, MaxSuggestions)
		for _, s := range raw {
			if strings.TrimSpace(s) == "" {
				continue
			}
			items = append(items, s)
			if len(items) == MaxSuggestions {
				break
			}
		}
		p.mu.Lock()
		p.items = items
		p.mu.Unlock()
	})
}

// Suggestions devuelve una copia de las sugerencias visibles.
func (p *SuggestionProvider) Suggestions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.items))
	copy(out, p.items)
	return out
}
