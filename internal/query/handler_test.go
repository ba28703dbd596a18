package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/webpbin/trafficd/internal/core/bucket"
	httperr "github.com/webpbin/trafficd/internal/core/errors"
	"github.com/webpbin/trafficd/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	newTestService(store).RegisterRoutes(r)
	return r
}

func TestTrafficHandlerReturnsSeries(t *testing.T) {
	store := newQueryFake()
	store.series[bucket.Fine] = []storage.SeriesPoint{{Bucket: testNow - 600, Hits: 3}}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/traffic?days=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var series TrafficSeries
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &series))
	require.Equal(t, "10min", series.Granularity)
	require.Equal(t, int64(3), series.Data[0].Hits)
}

func TestTrafficHandlerExplicitRange(t *testing.T) {
	store := newQueryFake()
	store.series[bucket.Medium] = []storage.SeriesPoint{{Bucket: 1716901200, Hits: 7}}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/traffic?start=1716800000&end=1717000000", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []seriesCall{{bucket.Medium, 1716800000, 1717000000}}, store.seriesCalls)
}

func TestTrafficHandlerRejectsInvertedRange(t *testing.T) {
	r := newTestRouter(newQueryFake())

	req := httptest.NewRequest(http.MethodGet, "/v1/traffic?start=200&end=100", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidRangeError, errResp.ErrorType)
}

func TestTotalHandler(t *testing.T) {
	store := newQueryFake()
	store.series[bucket.Fine] = []storage.SeriesPoint{
		{Bucket: testNow - 1200, Hits: 3},
		{Bucket: testNow - 600, Hits: 4},
	}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/traffic/total?days=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var result map[string]int64
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, int64(7), result["total"])
}

func TestTopImagesHandler(t *testing.T) {
	store := newQueryFake()
	store.totals[bucket.Medium] = []storage.KeyTotal{{Key: "b.webp", Total: 9}, {Key: "a.webp", Total: 5}}
	store.totals[bucket.Fine] = []storage.KeyTotal{}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/images/top?days=7&limit=2", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var totals []storage.KeyTotal
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &totals))
	require.Equal(t, []storage.KeyTotal{
		{Key: "b.webp", Total: 9},
		{Key: "a.webp", Total: 5},
	}, totals)
}

func TestStatsHandlerReturnsBareSeries(t *testing.T) {
	store := newQueryFake()
	store.keySeries[bucket.Fine] = []storage.SeriesPoint{{Bucket: testNow - 600, Hits: 11}}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/images/a.webp/stats?days=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var data []storage.SeriesPoint
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &data))
	require.Equal(t, int64(11), data[0].Hits)
}
