package domain

import "strings"

// SpeechMode controla la lectura en voz alta de las respuestas del asistente.
type SpeechMode string

const (
	SpeechAlways   SpeechMode = "always"
	SpeechOnDemand SpeechMode = "on_demand"
	SpeechOff      SpeechMode = "off"
)

// DefaultSpeechMode se usa cuando no hay preferencia guardada o es invalida.
const DefaultSpeechMode = SpeechOnDemand

// Valid indica si el modo pertenece al conjunto cerrado.
func (m SpeechMode) Valid() bool {
	switch m {
	case SpeechAlways, SpeechOnDemand, SpeechOff:
		return true
	default:
		return false
	}
}

// ParseSpeechMode normaliza un valor persistido; cualquier valor desconocido
// cae en DefaultSpeechMode.
func ParseSpeechMode(raw string) SpeechMode {
	mode := SpeechMode(strings.ToLower(strings.TrimSpace(raw)))
	if !mode.Valid() {
		return DefaultSpeechMode
	}
	return mode
}
