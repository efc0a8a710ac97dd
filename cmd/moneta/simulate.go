package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"moneta/internal/config"
	"moneta/internal/game"
	"moneta/internal/recorder"
)

func newSimulateCmd() *cobra.Command {
	var (
		players   int
		seed      int64
		rulesPath string
		dbPath    string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a full session with scripted players and print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := config.LoadRules(rulesPath)
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			var rec recorder.Recorder = recorder.NewNoopRecorder()
			if dbPath != "" {
				sqliteRec, err := recorder.NewSQLiteRecorder(dbPath)
				if err != nil {
					return err
				}
				defer sqliteRec.Close()
				rec = sqliteRec
			}

			session, err := game.NewSession(rules, seed, logger)
			if err != nil {
				return err
			}

			bots, err := joinBots(session, players)
			if err != nil {
				return err
			}

			for anyContinuing(session, bots) {
				for _, bot := range bots {
					p, err := session.Portfolio(bot.name)
					if err != nil {
						return err
					}
					if p.Finished {
						continue
					}
					offers, err := session.OffersForPlayer(bot.name)
					if err != nil {
						return err
					}
					decisions := bot.decide(rules, p, offers)
					result, _, err := session.ResolveTurn(bot.name, decisions, "")
					if err != nil {
						return fmt.Errorf("%s month %d: %w", bot.name, p.Month, err)
					}
					if err := rec.RecordTurn(bot.name, result.Record); err != nil {
						return err
					}
					if result.Outcome == game.OutcomeDefaulted {
						printDanger(fmt.Sprintf("%s defaulted in month %d", bot.name, result.Record.Month))
					}
				}
			}

			rows := session.Leaderboard()
			if err := rec.RecordStandings(rows); err != nil {
				return err
			}
			printLeaderboard(rows, seed)
			return nil
		},
	}

	cmd.Flags().IntVar(&players, "players", 6, "number of scripted players")
	cmd.Flags().Int64Var(&seed, "seed", 42, "session seed (same seed, same game)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "rules YAML file (defaults built in)")
	cmd.Flags().StringVar(&dbPath, "db", "", "record turns and standings to this SQLite file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every resolved turn")
	return cmd
}

func newBanksCmd() *cobra.Command {
	var (
		seed      int64
		month     int
		rulesPath string
	)

	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Preview the bank market for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := config.LoadRules(rulesPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			session, err := game.NewSession(rules, seed, logger)
			if err != nil {
				return err
			}
			printBanks(session.Offers(month), month)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "session seed")
	cmd.Flags().IntVar(&month, "month", 1, "month to preview")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "rules YAML file")
	return cmd
}

type bot struct {
	name    string
	profile string
}

var botProfiles = []string{"saver", "balanced", "gambler"}

func joinBots(session *game.Session, count int) ([]bot, error) {
	bots := make([]bot, 0, count)
	for i := 0; i < count; i++ {
		profile := botProfiles[i%len(botProfiles)]
		b := bot{name: fmt.Sprintf("%s_%02d", profile, i+1), profile: profile}
		if _, err := session.Join(b.name); err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, nil
}

func anyContinuing(session *game.Session, bots []bot) bool {
	for _, b := range bots {
		p, err := session.Portfolio(b.name)
		if err == nil && !p.Finished {
			return true
		}
	}
	return false
}

// decide builds one month of decisions from a fixed allocation profile,
// skipping anything the current stage has not unlocked yet.
func (b bot) decide(rules game.Rules, p *game.Portfolio, offers []game.BankOffer) game.Decisions {
	income := game.LiraToMicros(rules.Income)
	d := game.Decisions{Allocations: map[game.AllocTarget]float64{}}

	switch b.profile {
	case "saver":
		d.DiscretionaryMicros = income / 20
		d.RepayPercent = 100
		if len(offers) > 0 {
			d.Allocations[game.TargetTerm] = 50
			d.Allocations[game.TargetDemand] = 20
		}
	case "balanced":
		d.DiscretionaryMicros = income / 10
		d.RepayPercent = 100
		if len(offers) > 0 {
			d.Allocations[game.TargetTerm] = 30
		}
		if month := rules.Assets[game.AssetEquity].StartMonth; p.Month >= month {
			d.Allocations[game.TargetEquity] = 30
		}
		if month := rules.Assets[game.AssetGold].StartMonth; p.Month >= month {
			d.Allocations[game.TargetGold] = 15
		}
	default: // gambler
		d.DiscretionaryMicros = income / 5
		if month := rules.Assets[game.AssetCrypto].StartMonth; p.Month >= month {
			d.Allocations[game.TargetCrypto] = 60
		} else if month := rules.Assets[game.AssetEquity].StartMonth; p.Month >= month {
			d.Allocations[game.TargetEquity] = 60
		}
	}

	if len(offers) > 0 {
		d.DemandBank = safestBank(offers).ID
		d.TermBank = bestTermBank(b.profile, offers).ID
		d.LoanBank = cheapestLoanBank(offers).ID
	}
	return d
}

func safestBank(offers []game.BankOffer) game.BankOffer {
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Guarantee > best.Guarantee {
			best = o
		}
	}
	return best
}

func bestTermBank(profile string, offers []game.BankOffer) game.BankOffer {
	if profile == "saver" {
		return safestBank(offers)
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.TermRate > best.TermRate {
			best = o
		}
	}
	return best
}

func cheapestLoanBank(offers []game.BankOffer) game.BankOffer {
	best := offers[0]
	for _, o := range offers[1:] {
		if o.LoanRate < best.LoanRate {
			best = o
		}
	}
	return best
}
