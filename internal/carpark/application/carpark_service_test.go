package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/carpark/domain"
	sharedDomain "github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/cache"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
	"github.com/glitchjsy/opendata-api/tests/mocks"
)

type fakeRepo struct {
	statsYears []int
	lastPage   query.PageRequest
	listCalls  int
	refs       []domain.CarparkRef
}

func (f *fakeRepo) ListCarparks(context.Context) ([]*sqlstore.Row, error) {
	return []*sqlstore.Row{}, nil
}

func (f *fakeRepo) FindCarpark(_ context.Context, ref domain.CarparkRef) (*sqlstore.Row, error) {
	f.refs = append(f.refs, ref)
	return sqlstore.NewRow(0), nil
}

func (f *fakeRepo) LiveSpaceDates(context.Context) ([]string, error) {
	return []string{"2024-03-02"}, nil
}

func (f *fakeRepo) ListLiveSpaces(_ context.Context, _ sharedDomain.Criteria, page query.PageRequest) (query.PageResult[*sqlstore.Row], error) {
	f.listCalls++
	f.lastPage = page
	return query.NewPageResult[*sqlstore.Row](page, 0, nil), nil
}

func (f *fakeRepo) Stats(_ context.Context, now time.Time) (*stats.Report, error) {
	f.statsYears = append(f.statsYears, now.Year())
	r := stats.NewReport()
	r.Set("year", sqlstore.Int(int64(now.Year())))
	return r, nil
}

func TestGetParkingStats_CacheKeyFollowsYear(t *testing.T) {
	repo := &fakeRepo{}
	c := mocks.NewDummyCache()
	now := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	svc := NewCarparkService(repo, c, time.Hour, query.DefaultLimits, func() time.Time { return now }, zap.NewNop())

	_, err := svc.GetParkingStats(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return c.Has(cache.Key("carparks", "stats", "2024")) }, time.Second, 5*time.Millisecond)

	_, err = svc.GetParkingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, repo.statsYears)

	now = now.Add(2 * time.Hour)
	report, err := svc.GetParkingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025}, repo.statsYears)
	v, _ := report.Get("year")
	assert.Equal(t, sqlstore.Int(2025), v)
}

func TestListLiveSpaces_Validation(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewCarparkService(repo, nil, time.Hour, query.Limits{Default: 30, Max: 100}, nil, zap.NewNop())

	_, err := svc.ListLiveSpaces(context.Background(), map[string]string{"startDate": "2024/02/31"}, nil, nil)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)

	limit := 500
	_, err = svc.ListLiveSpaces(context.Background(), map[string]string{"startDate": "2024/02/28"}, nil, &limit)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastPage.Limit)
	assert.Equal(t, 1, repo.listCalls)
}

func TestGetCarpark_IDOrCode(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewCarparkService(repo, nil, time.Hour, query.DefaultLimits, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.GetCarpark(ctx, "0b6c5a7e-2f1d-4d8a-9b36-4f0f6f2e8a11")
	require.NoError(t, err)
	_, err = svc.GetCarpark(ctx, "GS")
	require.NoError(t, err)

	assert.Equal(t, []domain.CarparkRef{
		{ID: "0b6c5a7e-2f1d-4d8a-9b36-4f0f6f2e8a11"},
		{Code: "GS"},
	}, repo.refs)

	_, err = svc.GetCarpark(ctx, "  ")
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
	assert.Len(t, repo.refs, 2)
}
