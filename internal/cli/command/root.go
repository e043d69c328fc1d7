package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/servetls/internal/cli/output"
	"github.com/yndnr/servetls/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "servetls",
		Usage:   "Serve a directory over HTTPS",
		Version: buildinfo.String(),
		Flags:   serveFlags(),
		Action:  serveAction,
		Commands: []*cli.Command{
			ServeCommand(),
			ProbeCommand(),
			GenCertCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output format: table, json, yaml",
		Value:   string(output.FormatTable),
	}
}

// render writes data to the app's writer in the --output format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// PrintSuccess prints a success message to the app's writer.
func PrintSuccess(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, "✓ "+format+"\n", args...)
}
