package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/andresuchdata/invclose/backend-go/internal/source"
	"github.com/andresuchdata/invclose/backend-go/internal/source/mocks"
)

func TestFetchPair(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "inv-1").Return(source.File{Name: "inv.xlsx", Data: []byte("inv")}, nil)
	fetcher.EXPECT().Fetch(gomock.Any(), "ven-1").Return(source.File{Name: "ven.xlsx", Data: []byte("ven")}, nil)

	inv, ven, err := source.FetchPair(context.Background(), fetcher, "inv-1", "ven-1")
	require.NoError(t, err)
	assert.Equal(t, "inv.xlsx", inv.Name)
	assert.Equal(t, []byte("ven"), ven.Data)
}

func TestFetchPair_FailureCancelsOther(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "inv-1").
		Return(source.File{}, source.UpstreamError("onedrive", "inv-1", errors.New("404 Not Found")))
	fetcher.EXPECT().Fetch(gomock.Any(), "ven-1").
		DoAndReturn(func(ctx context.Context, id string) (source.File, error) {
			<-ctx.Done()
			return source.File{}, ctx.Err()
		})

	_, _, err := source.FetchPair(context.Background(), fetcher, "inv-1", "ven-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrUpstreamFetch))
	assert.Contains(t, err.Error(), "inventory")
	assert.Contains(t, err.Error(), "404 Not Found")
}
