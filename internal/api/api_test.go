package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/andresuchdata/invclose/backend-go/internal/config"
	"github.com/andresuchdata/invclose/backend-go/internal/graph"
	"github.com/andresuchdata/invclose/backend-go/internal/pipeline/monthly_close"
	"github.com/andresuchdata/invclose/backend-go/internal/service"
	"github.com/andresuchdata/invclose/backend-go/internal/source"
	"github.com/andresuchdata/invclose/backend-go/internal/source/mocks"
	"github.com/andresuchdata/invclose/backend-go/internal/workbook"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func xlsxFixture(t *testing.T, header []string, rows ...[]interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf, "Hoja1", header, rows))
	return buf.Bytes()
}

func fixtures(t *testing.T) (inv, ven []byte) {
	inv = xlsxFixture(t,
		[]string{"Número de artículo", "TTL", "Precio promedio total"},
		[]interface{}{"A-01", 10, 2.0},
	)
	ven = xlsxFixture(t,
		[]string{"Número de artículo", "Cantidad", "Total líneas", "Total Costo", "Día", "Mes", "Año"},
		[]interface{}{"A 01", 3, 30, 18, 15, 3, 2024},
	)
	return inv, ven
}

func newTestRouter(t *testing.T, oneDrive service.FetcherFactory, remotes map[string]source.Fetcher, graphCfg config.GraphConfig) *gin.Engine {
	t.Helper()
	log := zerolog.Nop()
	p := monthly_close.NewMonthlyClosePipeline(monthly_close.DefaultConfig(), log)
	return NewRouter(&Services{
		CloseService:  service.NewCloseService(p, oneDrive, remotes, log),
		Authenticator: graph.NewAuthenticator(graphCfg),
		Graph:         graphCfg,
		UploadLimitMB: 1,
	}, []string{"*"})
}

func multipartBody(t *testing.T, period string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("period", period))
	for field, data := range files {
		part, err := w.CreateFormFile(field, field+".xlsx")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestClose_Upload(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{})
	inv, ven := fixtures(t)
	body, contentType := multipartBody(t, "2024-03", map[string][]byte{"inv": inv, "ven": ven})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/close", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, workbook.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="TblInventario_actualizado_2024-03.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"InvActualizado"}, f.GetSheetList())
}

func TestClose_Errors(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{})
	inv, ven := fixtures(t)

	tests := []struct {
		name    string
		period  string
		files   map[string][]byte
		message string
	}{
		{"invalid period", "2024-13", map[string][]byte{"inv": inv, "ven": ven}, "invalid period"},
		{"missing sales file", "2024-03", map[string][]byte{"inv": inv}, `missing file "ven"`},
		{"sales file as inventory", "2024-03", map[string][]byte{"inv": ven, "ven": ven}, "schema mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.period, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/close", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestClose_UploadTooLarge(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{})
	big := bytes.Repeat([]byte("x"), 2<<20)
	body, contentType := multipartBody(t, "2024-03", map[string][]byte{"inv": big, "ven": big})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/close", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCloseOneDrive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inv, ven := fixtures(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "INV").Return(source.File{Data: inv}, nil)
	fetcher.EXPECT().Fetch(gomock.Any(), "VEN").Return(source.File{Data: ven}, nil)

	router := newTestRouter(t, func(token string) source.Fetcher {
		assert.Equal(t, "bearer-from-browser", token)
		return fetcher
	}, nil, config.GraphConfig{})

	payload, _ := json.Marshal(map[string]string{
		"period": "2024-03", "token": "bearer-from-browser", "invId": "INV", "venId": "VEN",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/close/onedrive", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))
}

func TestCloseOneDrive_UpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return(source.File{}, source.UpstreamError("onedrive", "INV", errors.New("status 401 Unauthorized"))).
		AnyTimes()

	router := newTestRouter(t, func(string) source.Fetcher { return fetcher }, nil, config.GraphConfig{})

	payload, _ := json.Marshal(map[string]string{
		"period": "2024-03", "token": "expired", "invId": "INV", "venId": "VEN",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/close/onedrive", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "upstream fetch failed")
	assert.Contains(t, w.Body.String(), "401")
}

func TestCloseRemote_Validation(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{})

	payload, _ := json.Marshal(map[string]string{
		"period": "2024-03", "source": "ftp", "invId": "a", "venId": "b",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/close/remote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Source")
}

func TestSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := newTestRouter(t, nil, map[string]source.Fetcher{
		"s3":    mocks.NewMockFetcher(ctrl),
		"drive": mocks.NewMockFetcher(ctrl),
	}, config.GraphConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/close/sources", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sources":["drive","s3"]}`, w.Body.String())
}

func TestAuthToken(t *testing.T) {
	oauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	}))
	defer oauth.Close()

	router := newTestRouter(t, nil, nil, config.GraphConfig{
		TenantID: "contoso", ClientID: "client", ClientSecret: "secret", AuthorityHost: oauth.URL,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/token?code=abc&redirect_uri=http://localhost:3000", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok graph.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestAuthToken_NotConfigured(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/token?code=abc", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestConfigJS(t *testing.T) {
	router := newTestRouter(t, nil, nil, config.GraphConfig{
		TenantID: "contoso", ClientID: "client", AuthorityHost: "https://login.microsoftonline.com",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/config.js", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "window.EXCEL_UP_CFG")
	assert.Contains(t, w.Body.String(), "https://login.microsoftonline.com/contoso")
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.example, http://b.example", " "})
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, origins)
	assert.False(t, allowAll)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}
