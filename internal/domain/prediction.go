package domain

// Team es un equipo disponible para la prediccion de medio tiempo.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest,omitempty"`
}

// Favorite convierte el equipo al formato del perfil de usuario.
func (t Team) Favorite() FootballTeam {
	return FootballTeam{ID: t.ID, Name: t.Name, ShortName: t.ShortName, Crest: t.Crest}
}

// Pair guarda un valor para local y visitante.
type Pair struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// MatchStats son las estadisticas del primer tiempo.
type MatchStats struct {
	Shots         Pair `json:"shots"`
	ShotsOnTarget Pair `json:"shotsOnTarget"`
	Corners       Pair `json:"corners"`
	Fouls         Pair `json:"fouls"`
	YellowCards   Pair `json:"yellowCards"`
	RedCards      Pair `json:"redCards"`
	Possession    Pair `json:"possession"`
}

// DefaultMatchStats devuelve el formulario inicial: todo en cero y posesion 50/50.
func DefaultMatchStats() MatchStats {
	return MatchStats{Possession: Pair{Home: 50, Away: 50}}
}

// Level es una escala cualitativa high/medium/low.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Momentum indica que equipo llega mejor al segundo tiempo.
type Momentum string

const (
	MomentumHome  Momentum = "home"
	MomentumAway  Momentum = "away"
	MomentumEqual Momentum = "equal"
)

// HalfTimePrediction es el resultado que muestra la pantalla de prediccion.
type HalfTimePrediction struct {
	HomeWinProbability float64  `json:"homeWinProbability"`
	DrawProbability    float64  `json:"drawProbability"`
	AwayWinProbability float64  `json:"awayWinProbability"`
	FinalScore         string   `json:"finalScore"`
	Confidence         Level    `json:"confidence"`
	Momentum           Momentum `json:"momentum"`
	ComebackLikelihood Level    `json:"comebackLikelihood"`
	KeyFactors         []string `json:"keyFactors"`
	AIExplanation      string   `json:"aiExplanation"`
	// Estimated es true cuando el resultado se calculo localmente.
	Estimated bool `json:"-"`
}
