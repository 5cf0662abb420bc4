package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/invclose/backend-go/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("invclose failed")
	}
}

func newPeriodFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "period",
		Usage:    "Closing month as YYYY-MM",
		Required: true,
	}
}

func newOutFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Output path, defaults to the canonical file name in the current directory",
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "invclose",
		Usage:     "Close a month of inventory against the sales history",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "zerolog level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
			&cli.BoolFlag{
				Name:    "status-flags",
				Usage:   "Emit the Discontinued Inv and Inv. NBO $ columns",
				EnvVars: []string{"REPORT_STATUS_FLAGS"},
				Value:   true,
			},
			&cli.StringFlag{
				Name:    "inclusion",
				Usage:   "Row filter: any_sale or trailing_sales",
				EnvVars: []string{"REPORT_INCLUSION"},
				Value:   "any_sale",
			},
			&cli.StringFlag{
				Name:    "degenerate",
				Usage:   "Zero total cost handling: rank_d or fail",
				EnvVars: []string{"REPORT_DEGENERATE_POLICY"},
				Value:   "rank_d",
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Close a period from local inventory and sales files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "inv", Usage: "Inventory extract (.xlsx or .csv)", Required: true},
					&cli.StringFlag{Name: "ven", Usage: "Sales history (.xlsx or .csv)", Required: true},
					newPeriodFlag(),
					newOutFlag(),
				},
				Action: runClose,
			},
			{
				Name:  "fetch",
				Usage: "Close a period from files kept in OneDrive, Drive, S3 or GCS",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Usage: "onedrive, drive, s3 or gcs", Required: true},
					&cli.StringFlag{Name: "inv", Usage: "Inventory file id or object key", Required: true},
					&cli.StringFlag{Name: "ven", Usage: "Sales file id or object key", Required: true},
					&cli.StringFlag{Name: "token", Usage: "Graph access token for onedrive", EnvVars: []string{"GRAPH_TOKEN"}},
					newPeriodFlag(),
					newOutFlag(),
				},
				Action: fetchClose,
			},
			{
				Name:  "list",
				Usage: "List candidate source files of a remote store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Usage: "drive, s3 or gcs", Required: true},
					&cli.StringFlag{Name: "prefix", Usage: "Object key prefix (s3, gcs)"},
					&cli.StringFlag{Name: "path", Usage: "Folder path from the Drive root"},
				},
				Action: listFiles,
			},
		},
	}
}
