package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/servetls/internal/infra/tlscert"
	"github.com/yndnr/servetls/internal/server/config"
)

// GenCertCommand returns the gencert command.
func GenCertCommand() *cli.Command {
	return &cli.Command{
		Name:  "gencert",
		Usage: "Write a self-signed certificate and private key for local testing",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "host",
				Usage: "DNS name or IP to include (repeatable)",
				Value: cli.NewStringSlice(tlscert.DefaultHosts...),
			},
			&cli.StringFlag{
				Name:  "cert",
				Usage: "Certificate output path",
				Value: config.DefaultCertFile,
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "Private key output path",
				Value: config.DefaultKeyFile,
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Validity period in days",
				Value: 365,
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite existing files",
			},
		},
		Action: genCertAction,
	}
}

func genCertAction(c *cli.Context) error {
	certFile, keyFile := c.String("cert"), c.String("key")
	days := c.Int("days")
	if days <= 0 {
		return cli.Exit("--days must be positive", 2)
	}

	if !c.Bool("force") {
		for _, path := range []string{certFile, keyFile} {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
	}

	certPEM, keyPEM, err := tlscert.GenerateSelfSigned(c.StringSlice("host"), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	if err := tlscert.WriteFiles(certFile, keyFile, certPEM, keyPEM); err != nil {
		return err
	}

	PrintSuccess(c, "wrote %s and %s (valid %d days)", certFile, keyFile, days)
	return nil
}
