package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "fitstakes"
	app.Usage = "points ledger and sweepstakes service"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the toml configuration file",
		},
	}
	app.Before = s.loadContext
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `Serves the account, ledger, leaderboard, ticket, and drawing apis.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start the scheduler",
			Category:    "Worker",
			Description: `Advances due drawings and refreshes leaderboards on a timer.`,
		},
		{
			Action:      s.startIngest,
			Name:        "ingest",
			Usage:       "Start the activity ingestion worker",
			Category:    "Worker",
			Description: `Consumes normalized activity events and credits points for them.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Apply database migrations and exit",
			Category:    "Ops",
			Description: `Brings the database schema up to date without starting a service.`,
		},
	}

	s.app = app
}
