package backend

import (
	"context"
	"net/http"

	"scoresight/internal/domain"
)

// HalfTimeStats usa las abreviaturas del dataset de entrenamiento.
type HalfTimeStats struct {
	HS  int `json:"hs"`
	AS  int `json:"as"`
	HST int `json:"hst"`
	AST int `json:"ast"`
	HC  int `json:"hc"`
	AC  int `json:"ac"`
	HF  int `json:"hf"`
	AF  int `json:"af"`
	HY  int `json:"hy"`
	AY  int `json:"ay"`
	HR  int `json:"hr"`
	AR  int `json:"ar"`
}

// HalfTimeRequest es el cuerpo de POST /api/half-time-predict.
type HalfTimeRequest struct {
	HomeTeam   string        `json:"home_team"`
	AwayTeam   string        `json:"away_team"`
	HomeScore  int           `json:"home_score"`
	AwayScore  int           `json:"away_score"`
	MatchStats HalfTimeStats `json:"match_stats"`
}

type teamsResponse struct {
	Teams []domain.Team `json:"teams"`
}

// GetTeams lista los equipos conocidos por el modelo.
func (c *HTTPClient) GetTeams(ctx context.Context) ([]domain.Team, error) {
	var tr teamsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/teams", "", nil, &tr); err != nil {
		return nil, err
	}
	return tr.Teams, nil
}

// PredictHalfTime pide la prediccion del resultado final a partir del primer tiempo.
func (c *HTTPClient) PredictHalfTime(ctx context.Context, req HalfTimeRequest) (domain.HalfTimePrediction, error) {
	var p domain.HalfTimePrediction
	if err := c.doJSON(ctx, http.MethodPost, "/api/half-time-predict", "", req, &p); err != nil {
		return domain.HalfTimePrediction{}, err
	}
	return p, nil
}
