package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/servetls/internal/infra/confloader"
	"github.com/yndnr/servetls/internal/server/app"
	"github.com/yndnr/servetls/internal/server/config"
	"github.com/yndnr/servetls/internal/telemetry/logger"
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve a directory over HTTPS (default command)",
		Flags:  serveFlags(),
		Action: serveAction,
	}
}

// overrideKeys maps serve flags to configuration keys. Only flags set on
// the command line are applied, so they win over file and environment.
var overrideKeys = map[string]string{
	"host":            "server.host",
	"port":            "server.port",
	"root":            "server.root",
	"cert":            "tls.cert_file",
	"key":             "tls.key_file",
	"tls-min-version": "tls.min_version",
	"no-listing":      "server.directory_listing",
	"max-conns":       "server.max_connections",
	"rate-limit":      "server.max_bytes_per_second",
	"admin-addr":      "admin.addr",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"SERVETLS_CONFIG"},
		},
		&cli.StringFlag{Name: "host", Usage: "Interface to bind (default: localhost)"},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to bind (default: 8080)"},
		&cli.StringFlag{Name: "root", Aliases: []string{"d"}, Usage: "Directory to serve (default: current directory)"},
		&cli.StringFlag{Name: "cert", Usage: "PEM certificate file (default: cert.pem)"},
		&cli.StringFlag{Name: "key", Usage: "PEM private key file (default: key.pem)"},
		&cli.StringFlag{Name: "tls-min-version", Usage: "Minimum TLS version: 1.2 or 1.3"},
		&cli.BoolFlag{Name: "no-listing", Usage: "Disable directory listings"},
		&cli.IntFlag{Name: "max-conns", Usage: "Maximum concurrent connections (0 = unlimited)"},
		&cli.IntFlag{Name: "rate-limit", Usage: "Per-response bytes per second (0 = unlimited)"},
		&cli.StringFlag{Name: "admin-addr", Usage: "Plain-HTTP address for /health, /ready and /metrics"},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error"},
		&cli.StringFlag{Name: "log-format", Usage: "Log format: text, json"},
	}
}

// loadConfig merges defaults, the config file, SERVETLS_* environment
// variables and explicitly set flags, in increasing priority.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	overrides := make(map[string]any)
	for name, key := range overrideKeys {
		if !c.IsSet(name) {
			continue
		}
		if name == "no-listing" {
			overrides[key] = !c.Bool(name)
			continue
		}
		overrides[key] = c.Value(name)
	}

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.Exit("unexpected argument: "+c.Args().First(), 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	return app.Run(c.Context, cfg, log, c.App.Writer)
}
