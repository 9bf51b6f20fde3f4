package prediction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scoresight/internal/backend"
	"scoresight/internal/domain"
)

var (
	ErrMissingTeam   = errors.New("prediction home and away team are required")
	ErrSameTeam      = errors.New("prediction home and away team must differ")
	ErrNegativeValue = errors.New("prediction values must not be negative")
	ErrShotsOnTarget = errors.New("prediction shots on target exceed shots")
	ErrPossession    = errors.New("prediction possession must be 0-100 and sum to 100")
)

// Factores que acompanan la estimacion local.
var estimateFactors = []string{
	"Current score advantage",
	"Shots on target ratio",
	"Possession dominance",
	"Disciplinary record",
}

// Form es el formulario de medio tiempo: equipos, marcador y estadisticas.
type Form struct {
	HomeTeam string
	AwayTeam string
	Score    domain.Pair
	Stats    domain.MatchStats
}

// NewForm devuelve el formulario vacio con posesion 50/50.
func NewForm() Form {
	return Form{Stats: domain.DefaultMatchStats()}
}

// Validate revisa el formulario antes de pedir la prediccion.
func (f Form) Validate() error {
	home := strings.TrimSpace(f.HomeTeam)
	away := strings.TrimSpace(f.AwayTeam)
	if home == "" || away == "" {
		return ErrMissingTeam
	}
	if strings.EqualFold(home, away) {
		return ErrSameTeam
	}

	pairs := []struct {
		name string
		pair domain.Pair
	}{
		{"score", f.Score},
		{"shots", f.Stats.Shots},
		{"shotsOnTarget", f.Stats.ShotsOnTarget},
		{"corners", f.Stats.Corners},
		{"fouls", f.Stats.Fouls},
		{"yellowCards", f.Stats.YellowCards},
		{"redCards", f.Stats.RedCards},
		{"possession", f.Stats.Possession},
	}
	for _, p := range pairs {
		if p.pair.Home < 0 || p.pair.Away < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeValue, p.name)
		}
	}
	if f.Stats.ShotsOnTarget.Home > f.Stats.Shots.Home || f.Stats.ShotsOnTarget.Away > f.Stats.Shots.Away {
		return ErrShotsOnTarget
	}
	pos := f.Stats.Possession
	if pos.Home > 100 || pos.Away > 100 || pos.Home+pos.Away != 100 {
		return ErrPossession
	}
	return nil
}

// Request arma el cuerpo que espera el backend.
func (f Form) Request() backend.HalfTimeRequest {
	s := f.Stats
	return backend.HalfTimeRequest{
		HomeTeam:  strings.TrimSpace(f.HomeTeam),
		AwayTeam:  strings.TrimSpace(f.AwayTeam),
		HomeScore: f.Score.Home,
		AwayScore: f.Score.Away,
		MatchStats: backend.HalfTimeStats{
			HS:  s.Shots.Home,
			AS:  s.Shots.Away,
			HST: s.ShotsOnTarget.Home,
			AST: s.ShotsOnTarget.Away,
			HC:  s.Corners.Home,
			AC:  s.Corners.Away,
			HF:  s.Fouls.Home,
			AF:  s.Fouls.Away,
			HY:  s.YellowCards.Home,
			AY:  s.YellowCards.Away,
			HR:  s.RedCards.Home,
			AR:  s.RedCards.Away,
		},
	}
}

type Predictor interface {
	PredictHalfTime(ctx context.Context, req backend.HalfTimeRequest) (domain.HalfTimePrediction, error)
}

type TeamSource interface {
	GetTeams(ctx context.Context) ([]domain.Team, error)
}

// Service orquesta la pantalla de prediccion de medio tiempo.
type Service struct {
	predictor Predictor
	teams     TeamSource
	logger    *zap.Logger
}

func NewService(predictor Predictor, teams TeamSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{predictor: predictor, teams: teams, logger: logger}
}

// Teams lista los equipos; si el backend falla devuelve una lista vacia.
func (s *Service) Teams(ctx context.Context) []domain.Team {
	if s.teams == nil {
		return nil
	}
	teams, err := s.teams.GetTeams(ctx)
	if err != nil {
		s.logger.Warn("fetch teams failed", zap.Error(err))
		return []domain.Team{}
	}
	return teams
}

// Predict valida el formulario y pide la prediccion. Si el backend no
// responde devuelve la estimacion local marcada como Estimated.
func (s *Service) Predict(ctx context.Context, f Form) (domain.HalfTimePrediction, error) {
	if err := f.Validate(); err != nil {
		return domain.HalfTimePrediction{}, err
	}
	if s.predictor != nil {
		p, err := s.predictor.PredictHalfTime(ctx, f.Request())
		if err == nil {
			return p, nil
		}
		s.logger.Warn("half-time prediction failed, using local estimate",
			zap.String("home", f.HomeTeam),
			zap.String("away", f.AwayTeam),
			zap.Error(err),
		)
	}
	return Estimate(f.Score), nil
}

// Estimate calcula la prediccion heuristica a partir del marcador.
func Estimate(score domain.Pair) domain.HalfTimePrediction {
	diff := float64(score.Home - score.Away)

	momentum := domain.MomentumEqual
	leader := "both teams"
	switch {
	case score.Home > score.Away:
		momentum = domain.MomentumHome
		leader = "the home team"
	case score.Home < score.Away:
		momentum = domain.MomentumAway
		leader = "the away team"
	}
	comeback := domain.LevelMedium
	if score.Home == score.Away {
		comeback = domain.LevelLow
	}

	return domain.HalfTimePrediction{
		HomeWinProbability: clampProbability(0.45 + diff*0.1),
		DrawProbability:    clampProbability(0.25),
		AwayWinProbability: clampProbability(0.30 - diff*0.1),
		FinalScore:         fmt.Sprintf("%d-%d", score.Home+1, score.Away),
		Confidence:         domain.LevelHigh,
		Momentum:           momentum,
		ComebackLikelihood: comeback,
		KeyFactors:         append([]string(nil), estimateFactors...),
		AIExplanation:      fmt.Sprintf("Based on first-half performance, %s have the momentum going into the second half.", leader),
		Estimated:          true,
	}
}

func clampProbability(p float64) float64 {
	return max(0.1, min(0.9, p))
}

// FindTeam busca un equipo por nombre completo o corto.
func FindTeam(teams []domain.Team, name string) (domain.Team, bool) {
	name = strings.TrimSpace(name)
	for _, t := range teams {
		if strings.EqualFold(t.Name, name) || strings.EqualFold(t.ShortName, name) {
			return t, true
		}
	}
	return domain.Team{}, false
}
