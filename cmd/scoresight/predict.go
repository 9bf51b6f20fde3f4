package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scoresight/internal/domain"
	"scoresight/internal/prediction"
)

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var (
		home, away string
		score      string
		shots      string
		onTarget   string
		corners    string
		fouls      string
		yellow     string
		red        string
		possession string
		listTeams  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the final result from half-time stats",
		Long:  "Sends the half-time score and first-half stats to the prediction service. Pairs are written home-away, e.g. --score 1-0.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := prediction.NewService(a.client, a.client, a.logger)
			out := cmd.OutOrStdout()
			if listTeams {
				for _, t := range svc.Teams(ctx) {
					fmt.Fprintf(out, "%-28s %s\n", t.Name, t.ShortName)
				}
				return nil
			}

			form := prediction.NewForm()
			form.HomeTeam, form.AwayTeam = home, away
			pairs := []struct {
				flag string
				raw  string
				dst  *domain.Pair
			}{
				{"score", score, &form.Score},
				{"shots", shots, &form.Stats.Shots},
				{"on-target", onTarget, &form.Stats.ShotsOnTarget},
				{"corners", corners, &form.Stats.Corners},
				{"fouls", fouls, &form.Stats.Fouls},
				{"yellow", yellow, &form.Stats.YellowCards},
				{"red", red, &form.Stats.RedCards},
				{"possession", possession, &form.Stats.Possession},
			}
			for _, p := range pairs {
				if p.raw == "" {
					continue
				}
				v, err := parsePair(p.raw)
				if err != nil {
					return fmt.Errorf("--%s: %w", p.flag, err)
				}
				*p.dst = v
			}

			result, err := svc.Predict(ctx, form)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatPrediction(form.HomeTeam, form.AwayTeam, result))
			return nil
		},
	}

	cmd.Flags().StringVar(&home, "home", "", "home team")
	cmd.Flags().StringVar(&away, "away", "", "away team")
	cmd.Flags().StringVar(&score, "score", "0-0", "half-time score")
	cmd.Flags().StringVar(&shots, "shots", "", "shots")
	cmd.Flags().StringVar(&onTarget, "on-target", "", "shots on target")
	cmd.Flags().StringVar(&corners, "corners", "", "corners")
	cmd.Flags().StringVar(&fouls, "fouls", "", "fouls")
	cmd.Flags().StringVar(&yellow, "yellow", "", "yellow cards")
	cmd.Flags().StringVar(&red, "red", "", "red cards")
	cmd.Flags().StringVar(&possession, "possession", "", "possession percentages (default 50-50)")
	cmd.Flags().BoolVar(&listTeams, "teams", false, "list the available teams and exit")
	return cmd
}

// parsePair lee "home-away", por ejemplo "2-1".
func parsePair(raw string) (domain.Pair, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return domain.Pair{}, fmt.Errorf("expected home-away, got %q", raw)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.Pair{}, fmt.Errorf("invalid home value %q", parts[0])
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Pair{}, fmt.Errorf("invalid away value %q", parts[1])
	}
	return domain.Pair{Home: h, Away: a}, nil
}
