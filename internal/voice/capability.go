package voice

// RecognitionEvents son los callbacks que emite el motor de reconocimiento.
// Pueden llegar desde cualquier goroutine.
type RecognitionEvents struct {
	OnListeningStart func()
	OnTranscript     func(text string)
	OnListeningEnd   func()
	OnError          func(err error)
}

// Recognizer convierte voz en texto; entrega un transcript final por frase.
type Recognizer interface {
	Available() bool
	Start(language string, events RecognitionEvents) error
	Stop() error
}

// SpeechEvents son los callbacks de una locucion.
type SpeechEvents struct {
	OnSpeakStart func()
	OnSpeakEnd   func()
	OnSpeakError func(err error)
}

// Synthesizer lee texto en voz alta y permite cancelar la locucion en curso.
type Synthesizer interface {
	Available() bool
	Speak(text, language string, events SpeechEvents) error
	Cancel() error
}

type unavailableRecognizer struct{}

// UnavailableRecognizer es el reconocedor de plataformas sin microfono.
func UnavailableRecognizer() Recognizer { return unavailableRecognizer{} }

func (unavailableRecognizer) Available() bool                       { return false }
func (unavailableRecognizer) Start(string, RecognitionEvents) error { return nil }
func (unavailableRecognizer) Stop() error                           { return nil }

type unavailableSynthesizer struct{}

// UnavailableSynthesizer es el sintetizador de plataformas sin salida de voz.
func UnavailableSynthesizer() Synthesizer { return unavailableSynthesizer{} }

func (unavailableSynthesizer) Available() bool                          { return false }
func (unavailableSynthesizer) Speak(string, string, SpeechEvents) error { return nil }
func (unavailableSynthesizer) Cancel() error                            { return nil }
