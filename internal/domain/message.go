package domain

// Role identifica al autor de un mensaje del chat.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Source nombra el subsistema del backend que produjo una respuesta.
type Source string

const (
	SourceMLModel      Source = "ml_model"
	SourceTeamAnalyzer Source = "team_analyzer"
	SourceChatGPT      Source = "chatgpt"
)

// Label devuelve la etiqueta visible de la fuente.
func (s Source) Label() string {
	switch s {
	case SourceMLModel:
		return "ML Prediction Model"
	case SourceTeamAnalyzer:
		return "Historical Data Analysis"
	case SourceChatGPT:
		return "General Knowledge"
	default:
		return ""
	}
}

// Message es una entrada del log de conversacion.
type Message struct {
	ID         string   `json:"id"`
	Role       Role     `json:"role"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp"`
	Source     *Source  `json:"source,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// IsAssistant indica si el mensaje fue generado por el asistente.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}
