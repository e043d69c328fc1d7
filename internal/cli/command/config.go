package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/servetls/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the effective server configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the merged configuration (defaults, file, environment, flags)",
				Flags: append(serveFlags(), &cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Output format: yaml, json",
					Value:   "yaml",
				}),
				Action: configShow,
			},
			{
				Name:   "check",
				Usage:  "Validate the merged configuration without binding",
				Flags:  serveFlags(),
				Action: configCheck,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return render(c, cfg)
}

func configCheck(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return err
	}
	PrintSuccess(c, "configuration OK (serving %s on %s)", cfg.Server.Root, cfg.Server.Addr())
	return nil
}
