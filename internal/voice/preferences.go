package voice

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"scoresight/internal/domain"
	"scoresight/internal/storage"
)

// ModeKey es la clave persistida del modo de lectura.
const ModeKey = "scoresight_tts_mode"

// ModeStore persiste el modo de lectura en el almacenamiento del cliente.
type ModeStore struct {
	store  storage.Store
	logger *zap.Logger
}

func NewModeStore(store storage.Store, logger *zap.Logger) *ModeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModeStore{store: store, logger: logger}
}

// Load devuelve el modo guardado; ausente, invalido o ilegible cae en on_demand.
func (s *ModeStore) Load(ctx context.Context) domain.SpeechMode {
	if s == nil || s.store == nil {
		return domain.DefaultSpeechMode
	}
	raw, err := s.store.Get(ctx, ModeKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("read speech mode failed", zap.Error(err))
		}
		return domain.DefaultSpeechMode
	}
	return domain.ParseSpeechMode(raw)
}

// Save escribe el modo tal cual; Load normaliza valores invalidos al leer.
func (s *ModeStore) Save(ctx context.Context, mode domain.SpeechMode) error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Set(ctx, ModeKey, string(mode))
}
