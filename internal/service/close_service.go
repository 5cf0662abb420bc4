package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/andresuchdata/invclose/backend-go/internal/domain"
	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
	"github.com/andresuchdata/invclose/backend-go/internal/pipeline/monthly_close"
	"github.com/andresuchdata/invclose/backend-go/internal/source"
	"github.com/andresuchdata/invclose/backend-go/internal/workbook"
)

// SheetName is the name of the single sheet of the closed workbook.
const SheetName = "InvActualizado"

// ErrUnknownSource is returned for a remote source that is not configured.
var ErrUnknownSource = errors.New("unknown source")

// FetcherFactory builds a fetcher bound to a user's access token.
type FetcherFactory func(token string) source.Fetcher

// CloseService runs the monthly close over uploaded or remote files.
type CloseService struct {
	pipeline *monthly_close.MonthlyClosePipeline
	oneDrive FetcherFactory
	remotes  map[string]source.Fetcher
	log      zerolog.Logger
}

// NewCloseService creates the service. oneDrive may be nil and remotes may
// be empty; the matching requests then fail with ErrUnknownSource.
func NewCloseService(p *monthly_close.MonthlyClosePipeline, oneDrive FetcherFactory, remotes map[string]source.Fetcher, log zerolog.Logger) *CloseService {
	if remotes == nil {
		remotes = make(map[string]source.Fetcher)
	}
	return &CloseService{
		pipeline: p,
		oneDrive: oneDrive,
		remotes:  remotes,
		log:      log,
	}
}

// Filename is the download name of the closed workbook of period.
func Filename(period string) string {
	return fmt.Sprintf("TblInventario_actualizado_%s.xlsx", period)
}

// CloseUploads closes period from two uploaded files.
func (s *CloseService) CloseUploads(ctx context.Context, period string, inv, ven domain.UploadedFile) (*domain.Document, error) {
	return s.close(period,
		source.File{Name: inv.Filename, Data: inv.Data},
		source.File{Name: ven.Filename, Data: ven.Data},
	)
}

// CloseOneDrive downloads both files from OneDrive and closes the period.
// The period is validated before anything is downloaded.
func (s *CloseService) CloseOneDrive(ctx context.Context, req domain.OneDriveCloseRequest) (*domain.Document, error) {
	if _, err := monthly_close.ParsePeriod(req.Period); err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	if s.oneDrive == nil {
		return nil, pkgerrors.WithStack(fmt.Errorf("%w: onedrive", ErrUnknownSource))
	}
	return s.fetchAndClose(ctx, s.oneDrive(req.Token), req.Period, req.InvID, req.VenID)
}

// CloseRemote downloads both files from a configured store and closes the
// period.
func (s *CloseService) CloseRemote(ctx context.Context, req domain.RemoteCloseRequest) (*domain.Document, error) {
	if _, err := monthly_close.ParsePeriod(req.Period); err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	fetcher, ok := s.remotes[req.Source]
	if !ok {
		return nil, pkgerrors.WithStack(fmt.Errorf("%w: %s", ErrUnknownSource, req.Source))
	}
	return s.fetchAndClose(ctx, fetcher, req.Period, req.InvID, req.VenID)
}

// Sources lists the configured remote stores.
func (s *CloseService) Sources() []string {
	names := lo.Keys(s.remotes)
	sort.Strings(names)
	return names
}

func (s *CloseService) fetchAndClose(ctx context.Context, f source.Fetcher, period, invID, venID string) (*domain.Document, error) {
	inv, ven, err := source.FetchPair(ctx, f, invID, venID)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	return s.close(period, inv, ven)
}

func (s *CloseService) close(period string, invFile, venFile source.File) (*domain.Document, error) {
	run := pipeline.NewRun(s.pipeline.Name(), period)
	doc, err := s.execute(run, period, invFile, venFile)
	if err != nil {
		run.Fail(err)
		run.Log(s.log)
		return nil, pkgerrors.WithStack(err)
	}
	run.Log(s.log)
	return doc, nil
}

func (s *CloseService) execute(run *pipeline.Run, period string, invFile, venFile source.File) (*domain.Document, error) {
	if _, err := monthly_close.ParsePeriod(period); err != nil {
		return nil, err
	}

	inv, err := workbook.Decode(invFile.Name, invFile.Data)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	ven, err := workbook.Decode(venFile.Name, venFile.Data)
	if err != nil {
		return nil, fmt.Errorf("sales: %w", err)
	}
	run.InventoryRows = inv.RowCount()
	run.SalesRows = ven.RowCount()

	report, err := s.pipeline.Run(inv, ven, period)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf, SheetName, report.Header(), report.Records()); err != nil {
		return nil, err
	}

	run.Complete(len(report.Rows), report.Degenerate)
	return &domain.Document{
		Filename:   Filename(report.Period.String()),
		Content:    buf.Bytes(),
		RunID:      run.ID,
		Rows:       len(report.Rows),
		Degenerate: report.Degenerate,
	}, nil
}
