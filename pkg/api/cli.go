package api

import (
	"github.com/urfave/cli/v2"

	"github.com/sirensim/sirensim/pkg/simulator"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the simulation web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server with an embedded simulation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "scenario",
						Usage: "path to a scenario yaml file",
					},
				},
				Action: func(c *cli.Context) error {
					engine, err := simulator.Setup(c.String("scenario"))
					if err != nil {
						return err
					}

					stop := make(chan struct{})
					defer close(stop)

					go simulator.RunTicker(engine, stop)

					return SetupServer(c.String("listen"), engine)
				},
			},
		},
	}
}
