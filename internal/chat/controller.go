package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"scoresight/internal/backend"
	"scoresight/internal/domain"
)

// ApologyMessage reemplaza la respuesta cuando el turno falla.
const ApologyMessage = "I'm sorry, I encountered an error. Please try again."

// DefaultQuickSendDelay deja un ciclo de pintado entre cargar la sugerencia y enviarla.
const DefaultQuickSendDelay = 100 * time.Millisecond

// Backend es el servicio remoto que responde cada turno.
type Backend interface {
	SendMessage(ctx context.Context, text string) (backend.ChatReply, error)
}

// Speaker recibe las respuestas para leerlas en voz alta segun el modo.
type Speaker interface {
	Mode() domain.SpeechMode
	SpeakMessage(msg domain.Message)
}

// ControllerOptions ajusta tiempos y dependencias opcionales.
type ControllerOptions struct {
	Speaker        Speaker
	Logger         *zap.Logger
	Now            func() time.Time
	RequestTimeout time.Duration
	QuickSendDelay time.Duration
}

// Controller media un turno completo con el backend y garantiza que cada
// mensaje del usuario reciba exactamente una respuesta.
type Controller struct {
	log        *MessageLog
	backend    Backend
	speaker    Speaker
	logger     *zap.Logger
	now        func() time.Time
	timeout    time.Duration
	quickDelay time.Duration

	inFlight atomic.Bool
	loading  atomic.Bool

	mu               sync.Mutex
	input            string
	cancelTurn       context.CancelFunc
	loadingObservers []func(bool)
}

// NewController construye el controlador sobre un log existente.
func NewController(log *MessageLog, b Backend, opts ControllerOptions) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.QuickSendDelay <= 0 {
		opts.QuickSendDelay = DefaultQuickSendDelay
	}
	return &Controller{
		log:        log,
		backend:    b,
		speaker:    opts.Speaker,
		logger:     opts.Logger,
		now:        opts.Now,
		timeout:    opts.RequestTimeout,
		quickDelay: opts.QuickSendDelay,
	}
}

// SetSpeaker conecta el puente de voz despues de construir el controlador.
func (c *Controller) SetSpeaker(s Speaker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speaker = s
}

// Log expone el historial de la sesion.
func (c *Controller) Log() *MessageLog {
	return c.log
}

// Loading indica si hay un turno esperando respuesta.
func (c *Controller) Loading() bool {
	return c.loading.Load()
}

// OnLoadingChange registra un observador del estado de carga.
func (c *Controller) OnLoadingChange(fn func(bool)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadingObservers = append(c.loadingObservers, fn)
}

func (c *Controller) setLoading(v bool) {
	c.loading.Store(v)
	c.mu.Lock()
	observers := append([]func(bool){}, c.loadingObservers...)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(v)
	}
}

// Input devuelve el texto preparado en la caja de entrada.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput reemplaza el texto preparado.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// AppendInput agrega texto al preparado, separado por un espacio si ambos
// lados tienen contenido.
func (c *Controller) AppendInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.input == "":
		c.input = text
	case text == "":
	default:
		c.input = c.input + " " + text
	}
}

// Submit envia el texto preparado y vacia la caja si el turno arranca.
func (c *Controller) Submit(ctx context.Context) bool {
	return c.send(ctx, c.Input(), true)
}

// Send ejecuta un turno con rawText. Devuelve false sin efectos si el texto
// esta vacio o ya hay un turno en vuelo; esos disparos se descartan.
func (c *Controller) Send(ctx context.Context, rawText string) bool {
	return c.send(ctx, rawText, false)
}

// QuickSend carga una sugerencia en la entrada y la envia tras una breve pausa.
func (c *Controller) QuickSend(ctx context.Context, suggestion string) bool {
	c.SetInput(suggestion)
	timer := time.NewTimer(c.quickDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return false
	}
	return c.Submit(ctx)
}

// Clear reinicia el historial y aborta el turno en vuelo; su respuesta no se
// agrega al log nuevo.
func (c *Controller) Clear() {
	c.log.Reset()
	c.Abort()
}

// Abort cancela el turno en vuelo sin tocar el historial.
func (c *Controller) Abort() {
	c.mu.Lock()
	cancel := c.cancelTurn
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) send(ctx context.Context, rawText string, fromInput bool) bool {
	if strings.TrimSpace(rawText) == "" {
		return false
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug("turn in flight, dropping send")
		return false
	}
	defer c.inFlight.Store(false)

	var (
		turnCtx context.Context
		cancel  context.CancelFunc
	)
	if c.timeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		turnCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	generation := c.log.appendTracked(domain.Message{
		ID:        newMessageID(),
		Role:      domain.RoleUser,
		Content:   rawText,
		Timestamp: formatTimestamp(c.now()),
	})

	c.mu.Lock()
	if fromInput {
		c.input = consumeInput(c.input, rawText)
	}
	c.cancelTurn = cancel
	c.mu.Unlock()

	c.setLoading(true)
	defer func() {
		c.mu.Lock()
		c.cancelTurn = nil
		c.mu.Unlock()
		c.setLoading(false)
	}()

	reply := c.settle(turnCtx, rawText)
	if !c.log.appendIf(generation, reply) {
		c.logger.Info("chat cleared during turn, reply dropped", zap.String("message_id", reply.ID))
		return true
	}

	c.mu.Lock()
	speaker := c.speaker
	c.mu.Unlock()
	if speaker != nil && speaker.Mode() == domain.SpeechAlways {
		speaker.SpeakMessage(reply)
	}
	return true
}

// consumeInput quita de staged el texto enviado. Lo que se agrego a la caja
// mientras el turno arrancaba (por ejemplo un transcript) se conserva.
func consumeInput(staged, sent string) string {
	if !strings.HasPrefix(staged, sent) {
		return staged
	}
	return strings.TrimLeft(staged[len(sent):], " ")
}

// settle hace la unica llamada del turno y la convierte en mensaje del asistente.
func (c *Controller) settle(ctx context.Context, text string) domain.Message {
	res, err := c.call(ctx, text)
	if err != nil {
		c.logger.Warn("chat request failed", zap.Error(err))
		return domain.Message{
			ID:        newMessageID(),
			Role:      domain.RoleAssistant,
			Content:   ApologyMessage,
			Timestamp: formatTimestamp(c.now()),
		}
	}

	timestamp := res.Timestamp
	if timestamp == "" {
		timestamp = formatTimestamp(c.now())
	}
	return domain.Message{
		ID:         newMessageID(),
		Role:       domain.RoleAssistant,
		Content:    res.Response,
		Timestamp:  timestamp,
		Source:     res.Source,
		Confidence: res.Confidence,
	}
}

func (c *Controller) call(ctx context.Context, text string) (res backend.ChatReply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chat backend panic: %v", r)
		}
	}()
	if c.backend == nil {
		return backend.ChatReply{}, fmt.Errorf("chat backend not configured")
	}
	res, err = c.backend.SendMessage(ctx, text)
	if err != nil {
		return backend.ChatReply{}, err
	}
	if strings.TrimSpace(res.Response) == "" {
		return backend.ChatReply{}, fmt.Errorf("%w: empty response text", backend.ErrMalformedResponse)
	}
	return res, nil
}
