package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/config"
	"github.com/AdamBeresnev/tournament-engine/internal/db"
	"github.com/AdamBeresnev/tournament-engine/internal/pairing"
	"github.com/AdamBeresnev/tournament-engine/internal/service"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "bracketctl",
		Usage:  "operate tournament schedules and standings",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			generateCommand(),
			standingsCommand(),
		},
	}
}

// openDB connects with the configured database. The CLI runs without a
// session, so ownership checks do not apply.
func openDB(c *cli.Context) (*sqlx.DB, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	return db.Open(c.Context, cfg.Database.Driver, cfg.Database.DSN)
}

func tournamentFlag() cli.Flag {
	return &cli.StringFlag{Name: "tournament", Aliases: []string{"t"}, Usage: "tournament ID", Required: true}
}

func tournamentID(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("tournament"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tournament ID: %w", err)
	}
	return id, nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					database, err := openDB(c)
					if err != nil {
						return err
					}
					defer database.Close()

					if err := db.RunMigrations(database); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Migrations applied.")
					return nil
				},
			},
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "generate a schedule for a tournament",
		Subcommands: []*cli.Command{
			{
				Name:  "knockout",
				Usage: "build a single elimination bracket",
				Flags: []cli.Flag{
					tournamentFlag(),
					&cli.BoolFlag{Name: "shuffle", Usage: "shuffle seeds before pairing"},
					&cli.StringFlag{Name: "layout", Value: string(pairing.LayoutSequential), Usage: "sequential or seeded"},
					&cli.BoolFlag{Name: "replace", Usage: "replace an existing knockout bracket"},
				},
				Action: func(c *cli.Context) error {
					id, err := tournamentID(c)
					if err != nil {
						return err
					}
					layout, err := pairing.ParseLayout(c.String("layout"))
					if err != nil {
						return err
					}

					database, err := openDB(c)
					if err != nil {
						return err
					}
					defer database.Close()

					brackets := service.NewBracketService(database, store.NewTournamentStore(database), store.NewMatchStore(database), nil)
					matches, err := brackets.GenerateKnockout(c.Context, id, service.KnockoutOptions{
						Shuffle: c.Bool("shuffle"),
						Layout:  layout,
						Replace: c.Bool("replace"),
					})
					if err != nil {
						return err
					}
					return printMatches(c.App.Writer, matches)
				},
			},
			{
				Name:  "round-robin",
				Usage: "build a round robin schedule",
				Flags: []cli.Flag{
					tournamentFlag(),
					&cli.BoolFlag{Name: "home-and-away", Usage: "add the mirrored second leg"},
					&cli.StringFlag{Name: "group", Usage: "only schedule participants of this group"},
					&cli.BoolFlag{Name: "replace", Usage: "replace an existing schedule for the phase and group"},
				},
				Action: func(c *cli.Context) error {
					id, err := tournamentID(c)
					if err != nil {
						return err
					}

					database, err := openDB(c)
					if err != nil {
						return err
					}
					defer database.Close()

					brackets := service.NewBracketService(database, store.NewTournamentStore(database), store.NewMatchStore(database), nil)
					matches, err := brackets.GenerateRoundRobin(c.Context, id, service.RoundRobinOptions{
						HomeAndAway: c.Bool("home-and-away"),
						Group:       utils.StringOrNil(c.String("group")),
						Replace:     c.Bool("replace"),
					})
					if err != nil {
						return err
					}
					return printMatches(c.App.Writer, matches)
				},
			},
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the standings table",
		Flags: []cli.Flag{
			tournamentFlag(),
			&cli.StringFlag{Name: "group", Usage: "group to print instead of the overall table"},
			&cli.BoolFlag{Name: "recalculate", Usage: "recompute from finished matches first"},
		},
		Action: func(c *cli.Context) error {
			id, err := tournamentID(c)
			if err != nil {
				return err
			}

			database, err := openDB(c)
			if err != nil {
				return err
			}
			defer database.Close()

			standings := service.NewStandingsService(database, store.NewTournamentStore(database), store.NewMatchStore(database), store.NewStandingStore(database))
			group := utils.StringOrNil(c.String("group"))

			var table []bracket.Standing
			if c.Bool("recalculate") {
				table, err = standings.Compute(c.Context, id, group)
			} else {
				table, err = standings.Get(c.Context, id, group)
			}
			if err != nil {
				return err
			}
			return printStandings(c.App.Writer, table)
		},
	}
}

func printMatches(w io.Writer, matches []bracket.Match) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tMATCH\tNAME\tSTATUS\tSLOTS\tID")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n", m.RoundNumber, m.MatchNumber, m.RoundName, m.Status, len(m.Participants), m.ID)
	}
	fmt.Fprintf(tw, "\n%d matches\n", len(matches))
	return tw.Flush()
}

func printStandings(w io.Writer, table []bracket.Standing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPARTICIPANT\tP\tW\tD\tL\tFOR\tAGAINST\tDIFF\tPTS\tFORM")
	for _, s := range table {
		rank := "-"
		if s.CurrentRank != nil {
			rank = fmt.Sprint(*s.CurrentRank)
		}
		name := s.ParticipantName
		if name == "" {
			name = s.ParticipantID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%d\t%s\n",
			rank, name, s.MatchesPlayed, s.MatchesWon, s.MatchesDrawn, s.MatchesLost,
			s.ScoreFor, s.ScoreAgainst, s.ScoreDifference, s.Points, s.RecentForm)
	}
	return tw.Flush()
}
