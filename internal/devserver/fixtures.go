package devserver

import (
	"fmt"
	"sort"
	"strings"

	"scoresight/internal/domain"
)

var teams = []domain.Team{
	{ID: 57, Name: "Arsenal FC", ShortName: "Arsenal"},
	{ID: 58, Name: "Aston Villa FC", ShortName: "Aston Villa"},
	{ID: 397, Name: "Brighton & Hove Albion FC", ShortName: "Brighton Hove"},
	{ID: 61, Name: "Chelsea FC", ShortName: "Chelsea"},
	{ID: 354, Name: "Crystal Palace FC", ShortName: "Crystal Palace"},
	{ID: 62, Name: "Everton FC", ShortName: "Everton"},
	{ID: 64, Name: "Liverpool FC", ShortName: "Liverpool"},
	{ID: 65, Name: "Manchester City FC", ShortName: "Man City"},
	{ID: 66, Name: "Manchester United FC", ShortName: "Man United"},
	{ID: 67, Name: "Newcastle United FC", ShortName: "Newcastle"},
	{ID: 73, Name: "Tottenham Hotspur FC", ShortName: "Tottenham"},
	{ID: 563, Name: "West Ham United FC", ShortName: "West Ham"},
}

var suggestions = []string{
	"Who will win Arsenal vs Chelsea?",
	"How is Liverpool's recent form?",
	"Predict Man City vs Tottenham",
	"Analyze Newcastle's home record",
	"What does xG mean?",
	"Which team has the best defense?",
	"Explain the offside rule",
}

// answer es una respuesta de chat enlatada con su fuente.
type answer struct {
	text       string
	source     domain.Source
	confidence any
}

var (
	predictKeywords = []string{"predict", "forecast", "who will win", "outcome", "probability", "chance", "beat"}
	analyzeKeywords = []string{"stats", "form", "performance", "record", "analy", "strength", "how is", "how are"}
	rivalryKeywords = []string{"head to head", "h2h", "history", "against", " vs ", "versus", "rivalry"}
)

// route clasifica el mensaje como lo hace el backend real: prediccion,
// analisis de equipo, historial entre dos equipos y, si nada aplica, la IA.
func route(message string) answer {
	msg := " " + strings.ToLower(message) + " "
	mentioned := mentionedTeams(msg)

	switch {
	case containsAny(msg, predictKeywords) && len(mentioned) > 0:
		home := mentioned[0]
		pct := 50 + (home.ID % 20)
		text := fmt.Sprintf("%s has a %d%% chance to win based on recent form and head-to-head results.", home.ShortName, pct)
		if len(mentioned) > 1 {
			text = fmt.Sprintf("%s has a %d%% chance to beat %s based on recent form and head-to-head results.",
				home.ShortName, pct, mentioned[1].ShortName)
		}
		return answer{text: text, source: domain.SourceMLModel, confidence: float64(pct) / 100}
	case containsAny(msg, analyzeKeywords) && len(mentioned) > 0:
		team := mentioned[0]
		return answer{
			text:       fmt.Sprintf("%s have won 6 of their last 10 matches, scoring 1.8 goals per game on average.", team.ShortName),
			source:     domain.SourceTeamAnalyzer,
			confidence: "high",
		}
	case containsAny(msg, rivalryKeywords) && len(mentioned) > 1:
		a, b := mentioned[0], mentioned[1]
		wins := 4 + (a.ID+b.ID)%5
		return answer{
			text: fmt.Sprintf("In their last 20 meetings %s won %d, %s won %d and %d ended level.",
				a.ShortName, wins, b.ShortName, 20-wins-5, 5),
			source:     domain.SourceTeamAnalyzer,
			confidence: "high",
		}
	default:
		return answer{
			text:   "Football is a game of fine margins. Ask me about a specific match or team and I can dig into the numbers.",
			source: domain.SourceChatGPT,
		}
	}
}

// aliases cubre los nombres largos que los hinchas usan para algunos equipos.
var aliases = map[int][]string{
	65: {"manchester city"},
	66: {"manchester united", "man utd"},
	73: {"spurs"},
}

func mentionedTeams(msg string) []domain.Team {
	var out []domain.Team
	type hit struct {
		pos  int
		team domain.Team
	}
	var hits []hit
	for _, t := range teams {
		pos := strings.Index(msg, strings.ToLower(t.ShortName))
		if pos < 0 {
			pos = strings.Index(msg, strings.ToLower(t.Name))
		}
		for _, alias := range aliases[t.ID] {
			if pos >= 0 {
				break
			}
			pos = strings.Index(msg, alias)
		}
		if pos >= 0 {
			hits = append(hits, hit{pos: pos, team: t})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	for _, h := range hits {
		out = append(out, h.team)
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
