package prediction

import (
	"context"
	"errors"
	"math"
	"testing"

	"scoresight/internal/backend"
	"scoresight/internal/domain"
)

type mockPredictor struct {
	result domain.HalfTimePrediction
	err    error
	last   *backend.HalfTimeRequest
}

func (m *mockPredictor) PredictHalfTime(_ context.Context, req backend.HalfTimeRequest) (domain.HalfTimePrediction, error) {
	m.last = &req
	return m.result, m.err
}

type mockTeams struct {
	teams []domain.Team
	err   error
}

func (m mockTeams) GetTeams(context.Context) ([]domain.Team, error) {
	return m.teams, m.err
}

func validForm() Form {
	f := NewForm()
	f.HomeTeam = "Arsenal"
	f.AwayTeam = "Chelsea"
	f.Score = domain.Pair{Home: 1, Away: 0}
	f.Stats.Shots = domain.Pair{Home: 7, Away: 3}
	f.Stats.ShotsOnTarget = domain.Pair{Home: 4, Away: 1}
	f.Stats.Corners = domain.Pair{Home: 5, Away: 2}
	f.Stats.Fouls = domain.Pair{Home: 6, Away: 8}
	f.Stats.YellowCards = domain.Pair{Home: 1, Away: 2}
	f.Stats.Possession = domain.Pair{Home: 58, Away: 42}
	return f
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Form)
		want   error
	}{
		{name: "valid", mutate: func(*Form) {}},
		{name: "missing team", mutate: func(f *Form) { f.AwayTeam = "  " }, want: ErrMissingTeam},
		{name: "same team", mutate: func(f *Form) { f.AwayTeam = "arsenal" }, want: ErrSameTeam},
		{name: "negative score", mutate: func(f *Form) { f.Score.Away = -1 }, want: ErrNegativeValue},
		{name: "negative fouls", mutate: func(f *Form) { f.Stats.Fouls.Home = -2 }, want: ErrNegativeValue},
		{name: "on target exceeds shots", mutate: func(f *Form) { f.Stats.ShotsOnTarget.Away = 4 }, want: ErrShotsOnTarget},
		{name: "possession sum", mutate: func(f *Form) { f.Stats.Possession = domain.Pair{Home: 60, Away: 50} }, want: ErrPossession},
		{name: "possession range", mutate: func(f *Form) { f.Stats.Possession = domain.Pair{Home: 120, Away: -20} }, want: ErrNegativeValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := f.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFormRequest(t *testing.T) {
	req := validForm().Request()
	if req.HomeTeam != "Arsenal" || req.AwayTeam != "Chelsea" || req.HomeScore != 1 || req.AwayScore != 0 {
		t.Fatalf("unexpected header fields %+v", req)
	}
	want := backend.HalfTimeStats{HS: 7, AS: 3, HST: 4, AST: 1, HC: 5, AC: 2, HF: 6, AF: 8, HY: 1, AY: 2}
	if req.MatchStats != want {
		t.Fatalf("stats = %+v, want %+v", req.MatchStats, want)
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name             string
		score            domain.Pair
		home, draw, away float64
		finalScore       string
		momentum         domain.Momentum
		comeback         domain.Level
	}{
		{name: "level", score: domain.Pair{}, home: 0.45, draw: 0.25, away: 0.30, finalScore: "1-0", momentum: domain.MomentumEqual, comeback: domain.LevelLow},
		{name: "home leads", score: domain.Pair{Home: 2, Away: 1}, home: 0.55, draw: 0.25, away: 0.20, finalScore: "3-1", momentum: domain.MomentumHome, comeback: domain.LevelMedium},
		{name: "away leads", score: domain.Pair{Home: 0, Away: 1}, home: 0.35, draw: 0.25, away: 0.40, finalScore: "1-1", momentum: domain.MomentumAway, comeback: domain.LevelMedium},
		{name: "clamped", score: domain.Pair{Home: 5, Away: 0}, home: 0.9, draw: 0.25, away: 0.1, finalScore: "6-0", momentum: domain.MomentumHome, comeback: domain.LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Estimate(tt.score)
			if !almostEqual(p.HomeWinProbability, tt.home) || !almostEqual(p.DrawProbability, tt.draw) || !almostEqual(p.AwayWinProbability, tt.away) {
				t.Fatalf("probabilities = %.2f/%.2f/%.2f", p.HomeWinProbability, p.DrawProbability, p.AwayWinProbability)
			}
			if p.FinalScore != tt.finalScore || p.Momentum != tt.momentum || p.ComebackLikelihood != tt.comeback {
				t.Fatalf("unexpected estimate %+v", p)
			}
			if p.Confidence != domain.LevelHigh || len(p.KeyFactors) != 4 || !p.Estimated {
				t.Fatalf("unexpected fixed fields %+v", p)
			}
		})
	}

	if got := Estimate(domain.Pair{Home: 1}).AIExplanation; got != "Based on first-half performance, the home team have the momentum going into the second half." {
		t.Fatalf("unexpected explanation %q", got)
	}
}

func TestServicePredict(t *testing.T) {
	ctx := context.Background()

	t.Run("backend result", func(t *testing.T) {
		mock := &mockPredictor{result: domain.HalfTimePrediction{FinalScore: "2-0", Confidence: domain.LevelMedium}}
		svc := NewService(mock, nil, nil)
		p, err := svc.Predict(ctx, validForm())
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		if p.FinalScore != "2-0" || p.Estimated {
			t.Fatalf("expected backend prediction, got %+v", p)
		}
		if mock.last == nil || mock.last.MatchStats.HST != 4 {
			t.Fatalf("request not forwarded: %+v", mock.last)
		}
	})

	t.Run("fallback on failure", func(t *testing.T) {
		mock := &mockPredictor{err: &backend.StatusError{Code: 500}}
		svc := NewService(mock, nil, nil)
		p, err := svc.Predict(ctx, validForm())
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		if !p.Estimated || p.FinalScore != "2-0" {
			t.Fatalf("expected local estimate, got %+v", p)
		}
	})

	t.Run("invalid form skips backend", func(t *testing.T) {
		mock := &mockPredictor{}
		svc := NewService(mock, nil, nil)
		f := validForm()
		f.HomeTeam = ""
		if _, err := svc.Predict(ctx, f); !errors.Is(err, ErrMissingTeam) {
			t.Fatalf("expected ErrMissingTeam, got %v", err)
		}
		if mock.last != nil {
			t.Fatalf("backend must not be called")
		}
	})
}

func TestServiceTeams(t *testing.T) {
	teams := []domain.Team{{ID: 57, Name: "Arsenal FC", ShortName: "Arsenal"}}
	svc := NewService(nil, mockTeams{teams: teams}, nil)
	got := svc.Teams(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 team, got %d", len(got))
	}
	if team, ok := FindTeam(got, "arsenal"); !ok || team.ID != 57 {
		t.Fatalf("FindTeam by short name failed")
	}
	if _, ok := FindTeam(got, "Spurs"); ok {
		t.Fatalf("unexpected match")
	}

	failing := NewService(nil, mockTeams{err: errors.New("down")}, nil)
	if got := failing.Teams(context.Background()); got == nil || len(got) != 0 {
		t.Fatalf("expected empty list on failure, got %v", got)
	}
}
