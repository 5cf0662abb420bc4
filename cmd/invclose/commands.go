package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/invclose/backend-go/internal/config"
	"github.com/andresuchdata/invclose/backend-go/internal/domain"
	"github.com/andresuchdata/invclose/backend-go/internal/drive"
	"github.com/andresuchdata/invclose/backend-go/internal/pipeline/monthly_close"
	"github.com/andresuchdata/invclose/backend-go/internal/service"
	"github.com/andresuchdata/invclose/backend-go/internal/source"
	"github.com/andresuchdata/invclose/backend-go/internal/storage"
	"github.com/andresuchdata/invclose/backend-go/pkg/logger"
)

// loadConfig reads the environment and lets the global flags win.
func loadConfig(c *cli.Context) *config.Config {
	cfg := *config.Load()
	cfg.Report = config.ReportConfig{
		StatusFlags:      c.Bool("status-flags"),
		Inclusion:        c.String("inclusion"),
		DegeneratePolicy: c.String("degenerate"),
	}
	return &cfg
}

func newCloseService(c *cli.Context, cfg *config.Config, remotes map[string]source.Fetcher) (*service.CloseService, error) {
	pipelineCfg, err := service.PipelineConfig(cfg.Report)
	if err != nil {
		return nil, err
	}
	return service.NewCloseService(
		monthly_close.NewMonthlyClosePipeline(pipelineCfg, logger.Log),
		service.OneDriveFactory(c.Context, cfg.Graph),
		remotes,
		logger.Log,
	), nil
}

func runClose(c *cli.Context) error {
	inv, err := readUpload(c.String("inv"))
	if err != nil {
		return err
	}
	ven, err := readUpload(c.String("ven"))
	if err != nil {
		return err
	}

	svc, err := newCloseService(c, loadConfig(c), nil)
	if err != nil {
		return err
	}

	doc, err := svc.CloseUploads(c.Context, c.String("period"), inv, ven)
	if err != nil {
		return err
	}
	return saveDocument(c, doc)
}

func fetchClose(c *cli.Context) error {
	cfg := loadConfig(c)
	remotes, cleanup, err := service.Remotes(c.Context, cfg, logger.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := newCloseService(c, cfg, remotes)
	if err != nil {
		return err
	}

	var doc *domain.Document
	switch name := c.String("source"); name {
	case "onedrive":
		if c.String("token") == "" {
			return fmt.Errorf("--token is required for onedrive")
		}
		doc, err = svc.CloseOneDrive(c.Context, domain.OneDriveCloseRequest{
			Period: c.String("period"),
			Token:  c.String("token"),
			InvID:  c.String("inv"),
			VenID:  c.String("ven"),
		})
	default:
		doc, err = svc.CloseRemote(c.Context, domain.RemoteCloseRequest{
			Period: c.String("period"),
			Source: name,
			InvID:  c.String("inv"),
			VenID:  c.String("ven"),
		})
	}
	if err != nil {
		return err
	}
	return saveDocument(c, doc)
}

func listFiles(c *cli.Context) error {
	remotes, cleanup, err := service.Remotes(c.Context, loadConfig(c), logger.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	name := c.String("source")
	fetcher, ok := remotes[name]
	if !ok {
		return fmt.Errorf("%w: %s", service.ErrUnknownSource, name)
	}

	switch store := fetcher.(type) {
	case *drive.Service:
		folderID := ""
		if p := c.String("path"); p != "" {
			if folderID, err = store.FindFolderByPath(c.Context, p); err != nil {
				return err
			}
		}
		files, err := store.ListFiles(c.Context, folderID)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", f.ID, f.Name, f.ModifiedTime)
		}
	case storage.ObjectStore:
		objects, err := store.ListObjects(c.Context, c.String("prefix"))
		if err != nil {
			return err
		}
		for _, o := range objects {
			fmt.Fprintf(c.App.Writer, "%s\t%d\n", o.Key, o.Size)
		}
	default:
		return fmt.Errorf("%s does not support listing", name)
	}
	return nil
}

func readUpload(path string) (domain.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.UploadedFile{Filename: filepath.Base(path), Data: data}, nil
}

func saveDocument(c *cli.Context, doc *domain.Document) error {
	out := c.String("out")
	if out == "" {
		out = doc.Filename
	}
	if err := os.WriteFile(out, doc.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Log.Info().
		Str("run_id", doc.RunID).
		Str("file", out).
		Int("rows", doc.Rows).
		Bool("degenerate", doc.Degenerate).
		Msg("closed workbook written")
	fmt.Fprintln(c.App.Writer, out)
	return nil
}
