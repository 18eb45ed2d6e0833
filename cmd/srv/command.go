package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "questengine"
	app.Usage = "Guild quest engine"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the toml config file",
			EnvVars: []string{"QUESTENGINE_CONFIG"},
		},
	}
	app.Before = func(cctx *cli.Context) error {
		if err := s.loadConfig(cctx); err != nil {
			return err
		}

		s.loadLogger()
		return s.loadSnowflake()
	}
	app.Commands = []*cli.Command{
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Creates or upgrades the quest tables.`,
		},
		{
			Action:      s.startEngine,
			Name:        "engine",
			Usage:       "Start the quest engine rpc server",
			Category:    "Server",
			Description: `Serves template management, rotations, progress and claims over JSON-RPC.`,
		},
		{
			Action:      s.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start the hook event subscriber",
			Category:    "Worker",
			Description: `Consumes hook events from kafka and advances quest progress.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Generates the rotations of every guild at each reset and deletes expired ones.`,
		},
		{
			Action:    s.startImport,
			Name:      "import",
			Usage:     "Import a template pack into a guild",
			ArgsUsage: "<pack.json>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "guild", Usage: "Target guild id, overrides the pack"},
				&cli.StringFlag{Name: "actor", Value: "cli", Usage: "Recorded as the template creator"},
			},
			Category:    "Database",
			Description: `Loads a json template pack, reports invalid or duplicated templates and creates the rest.`,
		},
	}

	s.app = app
}
