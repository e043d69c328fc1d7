package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/servetls/internal/cli/probe"
)

// ProbeCommand returns the probe command.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Connect to an HTTPS server and report the TLS session",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ca",
				Usage: "PEM file with additional trusted certificates",
			},
			&cli.BoolFlag{
				Name:    "insecure",
				Aliases: []string{"k"},
				Usage:   "Skip certificate verification",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall request timeout",
				Value: probe.DefaultTimeout,
			},
			outputFlag(),
		},
		Action: probeAction,
	}
}

func probeAction(c *cli.Context) error {
	target := c.Args().First()
	if target == "" {
		target = "localhost:8080"
	}

	report, err := probe.Probe(c.Context, probe.Options{
		URL:      target,
		CAFile:   c.String("ca"),
		Insecure: c.Bool("insecure"),
		Timeout:  c.Duration("timeout"),
	})
	if err != nil {
		return err
	}
	return render(c, report)
}
