package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scoresight/internal/voice"
)

// SessionDeps agrupa los colaboradores externos de una sesion de chat.
type SessionDeps struct {
	Chat           Backend
	Suggestions    SuggestionSource
	Voice          *voice.Bridge
	Logger         *zap.Logger
	Now            func() time.Time
	RequestTimeout time.Duration
	QuickSendDelay time.Duration
}

// Session es el gestor de conversacion: log, controlador, voz y sugerencias.
type Session struct {
	Log         *MessageLog
	Controller  *Controller
	Suggestions *SuggestionProvider
	Voice       *voice.Bridge

	logger *zap.Logger
}

// NewSession conecta las piezas; sin Voice se usa un puente sin capacidades.
func NewSession(deps SessionDeps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Voice == nil {
		deps.Voice = voice.NewBridge(voice.Options{Logger: deps.Logger})
	}

	log := NewMessageLog(deps.Now)
	controller := NewController(log, deps.Chat, ControllerOptions{
		Speaker:        deps.Voice,
		Logger:         deps.Logger,
		Now:            deps.Now,
		RequestTimeout: deps.RequestTimeout,
		QuickSendDelay: deps.QuickSendDelay,
	})
	deps.Voice.SetSink(controller)

	return &Session{
		Log:         log,
		Controller:  controller,
		Suggestions: NewSuggestionProvider(deps.Suggestions, deps.Logger),
		Voice:       deps.Voice,
		logger:      deps.Logger,
	}
}

// Mount carga la preferencia de voz y las sugerencias de la sesion.
func (s *Session) Mount(ctx context.Context) {
	mode := s.Voice.LoadMode(ctx)
	s.Suggestions.Load(ctx)
	s.logger.Debug("chat session mounted",
		zap.String("speech_mode", string(mode)),
		zap.Int("suggestions", len(s.Suggestions.Suggestions())),
	)
}

// Unmount libera voz y turno en vuelo; el historial se descarta con la sesion.
func (s *Session) Unmount() {
	s.Controller.Abort()
	s.Voice.Close()
}
