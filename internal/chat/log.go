package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"scoresight/internal/domain"
)

// WelcomeMessage es el saludo con el que arranca (y se reinicia) cada sesion.
const WelcomeMessage = "Hello! I'm Scoresight AI. I can explain predictions, analyze teams using my ML models, and provide general football insights."

// MessageLog es el registro ordenado y append-only de la conversacion.
type MessageLog struct {
	mu         sync.RWMutex
	messages   []domain.Message
	observers  []func(domain.Message)
	generation uint64
	now        func() time.Time
}

// NewMessageLog crea el log con el mensaje de bienvenida.
func NewMessageLog(now func() time.Time) *MessageLog {
	if now == nil {
		now = time.Now
	}
	l := &MessageLog{now: now}
	l.messages = []domain.Message{l.welcome()}
	return l
}

func (l *MessageLog) welcome() domain.Message {
	return domain.Message{
		ID:        newMessageID(),
		Role:      domain.RoleAssistant,
		Content:   WelcomeMessage,
		Timestamp: formatTimestamp(l.now()),
	}
}

// Subscribe registra un observador invocado por cada Append.
func (l *MessageLog) Subscribe(fn func(domain.Message)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Append agrega el mensaje al final y notifica a los observadores.
func (l *MessageLog) Append(msg domain.Message) {
	l.appendTracked(msg)
}

// appendTracked agrega el mensaje y devuelve la generacion en la que quedo.
func (l *MessageLog) appendTracked(msg domain.Message) uint64 {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	generation := l.generation
	observers := append([]func(domain.Message){}, l.observers...)
	l.mu.Unlock()

	for _, fn := range observers {
		fn(msg)
	}
	return generation
}

// appendIf agrega el mensaje solo si no hubo un Reset desde generation.
func (l *MessageLog) appendIf(generation uint64, msg domain.Message) bool {
	l.mu.Lock()
	if l.generation != generation {
		l.mu.Unlock()
		return false
	}
	l.messages = append(l.messages, msg)
	observers := append([]func(domain.Message){}, l.observers...)
	l.mu.Unlock()

	for _, fn := range observers {
		fn(msg)
	}
	return true
}

// Reset reemplaza todo el historial por un unico mensaje de bienvenida.
func (l *MessageLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = []domain.Message{l.welcome()}
	l.generation++
}

// Generation cambia con cada Reset.
func (l *MessageLog) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// Messages devuelve una copia del historial.
func (l *MessageLog) Messages() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last devuelve el ultimo mensaje; el log nunca esta vacio.
func (l *MessageLog) Last() domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.messages[len(l.messages)-1]
}

// Get busca un mensaje por id.
func (l *MessageLog) Get(id string) (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.messages {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
