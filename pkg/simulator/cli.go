package simulator

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run the dispatch simulation",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the simulation headless",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scenario",
						Usage: "path to a scenario yaml file",
					},
				},
				Action: func(c *cli.Context) error {
					engine, err := Setup(c.String("scenario"))
					if err != nil {
						return err
					}

					stop := make(chan struct{})

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					go func() {
						<-signals
						close(stop)
					}()

					RunTicker(engine, stop)

					return nil
				},
			},
			{
				Name:  "inspect-network",
				Usage: "dump the road network a scenario would run on",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "path to a network yaml file; omit for the default grid",
					},
				},
				Action: func(c *cli.Context) error {
					var network *roadnet.Network
					var err error

					if file := c.String("file"); file != "" {
						network, err = roadnet.LoadFile(file)
						if err != nil {
							return err
						}
					} else {
						network = roadnet.GenerateGrid(roadnet.DefaultGridOptions())
					}

					for _, id := range network.NodeIDs() {
						node, _ := network.Node(id)
						pretty.Println(node)
					}

					pretty.Println(map[string]int{
						"nodes":    network.NodeCount(),
						"segments": network.SegmentCount(),
					})

					return nil
				},
			},
		},
	}
}
