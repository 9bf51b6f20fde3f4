package main

import (
	"fmt"
	"strings"

	"scoresight/internal/domain"
)

// formatReply muestra la respuesta con su fuente y confianza, si las tiene.
func formatReply(m domain.Message) string {
	var tags []string
	if m.Source != nil {
		label := m.Source.Label()
		if label == "" {
			label = string(*m.Source)
		}
		tags = append(tags, label)
	}
	if m.Confidence != nil {
		tags = append(tags, fmt.Sprintf("%.0f%% confidence", *m.Confidence*100))
	}
	if len(tags) == 0 {
		return "Scoresight: " + m.Content
	}
	return fmt.Sprintf("Scoresight [%s]: %s", strings.Join(tags, ", "), m.Content)
}

func formatLine(m domain.Message) string {
	if m.IsAssistant() {
		return formatReply(m)
	}
	return "You: " + m.Content
}

func formatPrediction(home, away string, p domain.HalfTimePrediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s\n", home, away)
	fmt.Fprintf(&b, "  Home win:  %3.0f%%\n", p.HomeWinProbability*100)
	fmt.Fprintf(&b, "  Draw:      %3.0f%%\n", p.DrawProbability*100)
	fmt.Fprintf(&b, "  Away win:  %3.0f%%\n", p.AwayWinProbability*100)
	fmt.Fprintf(&b, "  Final score: %s (%s confidence)\n", p.FinalScore, orDefault(string(p.Confidence), "medium"))
	fmt.Fprintf(&b, "  Momentum: %s, comeback likelihood: %s\n",
		orDefault(string(p.Momentum), "equal"), orDefault(string(p.ComebackLikelihood), "medium"))
	if len(p.KeyFactors) > 0 {
		fmt.Fprintf(&b, "  Key factors: %s\n", strings.Join(p.KeyFactors, "; "))
	}
	if p.AIExplanation != "" {
		fmt.Fprintf(&b, "  %s\n", p.AIExplanation)
	}
	if p.Estimated {
		b.WriteString("  (local estimate, the prediction service was unavailable)\n")
	}
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
