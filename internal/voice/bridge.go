package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"scoresight/internal/domain"
)

// DefaultTranscriptDelay es la pausa entre recibir el transcript y enviarlo.
const DefaultTranscriptDelay = 300 * time.Millisecond

// TranscriptSink es la entrada de texto que comparten teclado y microfono.
type TranscriptSink interface {
	AppendInput(text string)
	Submit(ctx context.Context) bool
}

// Options configura el puente de voz.
type Options struct {
	Recognizer      Recognizer
	Synthesizer     Synthesizer
	Modes           *ModeStore
	Sink            TranscriptSink
	Logger          *zap.Logger
	Language        string
	TranscriptDelay time.Duration
}

// Bridge conecta la conversacion con el reconocimiento y la sintesis de voz.
// Sin capacidades disponibles todas las operaciones son no-ops.
type Bridge struct {
	rec         Recognizer
	syn         Synthesizer
	modes       *ModeStore
	logger      *zap.Logger
	language    string
	submitDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	sink       TranscriptSink
	mode       domain.SpeechMode
	listening  bool
	listenSeq  uint64
	recSession uint64
	speaking   bool
	utterance  uint64
	speakingID string
	timerSeq   uint64
	timers     map[uint64]*time.Timer
}

func NewBridge(opts Options) *Bridge {
	if opts.Recognizer == nil {
		opts.Recognizer = UnavailableRecognizer()
	}
	if opts.Synthesizer == nil {
		opts.Synthesizer = UnavailableSynthesizer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	if opts.TranscriptDelay <= 0 {
		opts.TranscriptDelay = DefaultTranscriptDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		rec:         opts.Recognizer,
		syn:         opts.Synthesizer,
		modes:       opts.Modes,
		sink:        opts.Sink,
		logger:      opts.Logger,
		language:    opts.Language,
		submitDelay: opts.TranscriptDelay,
		ctx:         ctx,
		cancel:      cancel,
		mode:        domain.DefaultSpeechMode,
		timers:      make(map[uint64]*time.Timer),
	}
}

// SetSink conecta la entrada de texto que recibe los transcripts.
func (b *Bridge) SetSink(sink TranscriptSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = sink
}

// LoadMode lee la preferencia persistida.
func (b *Bridge) LoadMode(ctx context.Context) domain.SpeechMode {
	mode := b.modes.Load(ctx)
	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()
	return mode
}

// Mode devuelve el modo de lectura actual.
func (b *Bridge) Mode() domain.SpeechMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// SetMode cambia el modo y lo persiste de inmediato.
func (b *Bridge) SetMode(ctx context.Context, mode domain.SpeechMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid speech mode %q", mode)
	}
	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()
	if err := b.modes.Save(ctx, mode); err != nil {
		b.logger.Warn("persist speech mode failed", zap.Error(err), zap.String("mode", string(mode)))
		return err
	}
	return nil
}

// CanListen indica si hay reconocimiento de voz disponible.
func (b *Bridge) CanListen() bool {
	return b.rec.Available()
}

// Listening indica si el reconocedor esta activo.
func (b *Bridge) Listening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listening
}

// Speaking indica si hay una locucion en curso.
func (b *Bridge) Speaking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speaking
}

// SpeakingMessageID devuelve el mensaje que se esta leyendo (o por empezar).
func (b *Bridge) SpeakingMessageID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speakingID
}

// StartListening pasa de idle a listening.
func (b *Bridge) StartListening() {
	if !b.rec.Available() {
		return
	}
	b.mu.Lock()
	if b.listening {
		b.mu.Unlock()
		return
	}
	b.listenSeq++
	seq := b.listenSeq
	b.recSession = seq
	b.listening = true
	b.mu.Unlock()

	events := RecognitionEvents{
		OnListeningStart: func() { b.setListening(seq, true) },
		OnTranscript:     func(text string) { b.handleTranscript(seq, text) },
		OnListeningEnd:   func() { b.setListening(seq, false) },
		OnError: func(err error) {
			b.logger.Warn("speech recognition error", zap.Error(err))
			b.setListening(seq, false)
		},
	}
	if err := guard(func() error { return b.rec.Start(b.language, events) }); err != nil {
		b.logger.Warn("start recognition failed", zap.Error(err))
		b.setListening(seq, false)
	}
}

// StopListening vuelve a idle. El motor puede entregar el transcript final
// despues de Stop; ese transcript se sigue aceptando.
func (b *Bridge) StopListening() {
	if !b.rec.Available() {
		return
	}
	b.mu.Lock()
	b.listenSeq++
	b.listening = false
	b.mu.Unlock()
	if err := guard(b.rec.Stop); err != nil {
		b.logger.Warn("stop recognition failed", zap.Error(err))
	}
}

// ToggleListening alterna entre idle y listening.
func (b *Bridge) ToggleListening() {
	if b.Listening() {
		b.StopListening()
		return
	}
	b.StartListening()
}

func (b *Bridge) setListening(seq uint64, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.listenSeq {
		return
	}
	b.listening = v
}

func (b *Bridge) handleTranscript(seq uint64, text string) {
	text = strings.TrimSpace(text)
	b.mu.Lock()
	sink := b.sink
	stale := seq != b.recSession || b.ctx.Err() != nil
	b.mu.Unlock()
	if text == "" || sink == nil || stale {
		return
	}

	sink.AppendInput(text)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.timerSeq++
	id := b.timerSeq
	b.timers[id] = time.AfterFunc(b.submitDelay, func() {
		b.mu.Lock()
		delete(b.timers, id)
		b.mu.Unlock()
		if b.ctx.Err() != nil {
			return
		}
		sink.Submit(b.ctx)
	})
}

// Speak cancela la locucion en curso y lee text. En modo off no hace nada.
func (b *Bridge) Speak(text string) {
	b.speak("", text)
}

// SpeakMessage lee un mensaje del asistente recordando cual es.
func (b *Bridge) SpeakMessage(msg domain.Message) {
	b.speak(msg.ID, msg.Content)
}

// AutoSpeak lee la respuesta solo en modo always.
func (b *Bridge) AutoSpeak(msg domain.Message) {
	if b.Mode() != domain.SpeechAlways {
		return
	}
	b.SpeakMessage(msg)
}

// ReadAloudAvailable indica si el mensaje ofrece el control manual de lectura.
func (b *Bridge) ReadAloudAvailable(msg domain.Message) bool {
	return msg.IsAssistant() && b.Mode() == domain.SpeechOnDemand && b.syn.Available()
}

// ReadAloud es el control manual: detiene el mensaje si es el que suena,
// si no lo lee.
func (b *Bridge) ReadAloud(msg domain.Message) {
	if !b.ReadAloudAvailable(msg) {
		return
	}
	if b.SpeakingMessageID() == msg.ID {
		b.StopSpeaking()
		return
	}
	b.SpeakMessage(msg)
}

func (b *Bridge) speak(id, text string) {
	if !b.syn.Available() || strings.TrimSpace(text) == "" {
		return
	}
	b.mu.Lock()
	if b.mode == domain.SpeechOff {
		b.mu.Unlock()
		return
	}
	b.utterance++
	seq := b.utterance
	b.speaking = false
	b.speakingID = id
	b.mu.Unlock()

	if err := guard(b.syn.Cancel); err != nil {
		b.logger.Warn("cancel speech failed", zap.Error(err))
	}

	events := SpeechEvents{
		OnSpeakStart: func() { b.setSpeaking(seq, true) },
		OnSpeakEnd:   func() { b.setSpeaking(seq, false) },
		OnSpeakError: func(err error) {
			b.logger.Warn("speech synthesis error", zap.Error(err))
			b.setSpeaking(seq, false)
		},
	}
	if err := guard(func() error { return b.syn.Speak(text, b.language, events) }); err != nil {
		b.logger.Warn("speak failed", zap.Error(err))
		b.setSpeaking(seq, false)
	}
}

func (b *Bridge) setSpeaking(seq uint64, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.utterance {
		return
	}
	b.speaking = v
	if !v {
		b.speakingID = ""
	}
}

// StopSpeaking corta la locucion en curso. Es idempotente.
func (b *Bridge) StopSpeaking() {
	b.mu.Lock()
	b.utterance++
	b.speaking = false
	b.speakingID = ""
	b.mu.Unlock()
	if !b.syn.Available() {
		return
	}
	if err := guard(b.syn.Cancel); err != nil {
		b.logger.Warn("cancel speech failed", zap.Error(err))
	}
}

// Close detiene reconocimiento, sintesis y envios pendientes.
func (b *Bridge) Close() {
	b.cancel()
	b.mu.Lock()
	timers := b.timers
	b.timers = make(map[uint64]*time.Timer)
	listening := b.listening
	b.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	if listening {
		b.StopListening()
	}
	b.StopSpeaking()
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech engine panic: %v", r)
		}
	}()
	return fn()
}
