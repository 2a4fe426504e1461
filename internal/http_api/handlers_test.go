package http_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
)

// fakeClient is a canned models.ClientService recording the calls it
// receives.
type fakeClient struct {
	snapshot models.Snapshot
	form     models.FormFields

	errs  map[string]error
	calls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{errs: make(map[string]error)}
}

func (f *fakeClient) record(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeClient) Start(ctx context.Context)          {}
func (f *fakeClient) Snapshot() models.Snapshot          { return f.snapshot }
func (f *fakeClient) SetForm(form models.FormFields)     { f.form = form; f.calls = append(f.calls, "setForm") }
func (f *fakeClient) Reconcile(ctx context.Context) error { return f.record("reconcile") }
func (f *fakeClient) Initialize(ctx context.Context) error { return f.record("initialize") }
func (f *fakeClient) CreateLottery(ctx context.Context) error { return f.record("createLottery") }
func (f *fakeClient) BuyTicket(ctx context.Context) error { return f.record("buyTicket") }

func (f *fakeClient) BurnAndBuy(ctx context.Context, country, continent, token string, burnAmount uint64) error {
	return f.record("burnAndBuy")
}

func (f *fakeClient) Stake(ctx context.Context, country, continent, token string, amount uint64) error {
	return f.record("stake")
}

func (f *fakeClient) Unstake(ctx context.Context, country, continent, token string) error {
	return f.record("unstake")
}

func (f *fakeClient) PickWinner(ctx context.Context) error { return f.record("pickWinner") }
func (f *fakeClient) ClaimPrize(ctx context.Context) error { return f.record("claimPrize") }

func newTestServer(client models.ClientService) *HTTPServer {
	gin.SetMode(gin.TestMode)
	return NewHTTPServer(client, 0, logger.NewNop())
}

func doRequest(s *HTTPServer, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestStateEndpoint(t *testing.T) {
	client := newFakeClient()
	client.snapshot = models.Snapshot{Initialized: true, LotteryID: 4, Pot: 1.5}
	s := newTestServer(client)

	w := doRequest(s, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.True(t, snap.Initialized)
	require.Equal(t, uint32(4), snap.LotteryID)
	require.InDelta(t, 1.5, snap.Pot, 1e-9)
}

func TestSetFormEndpoint(t *testing.T) {
	client := newFakeClient()
	s := newTestServer(client)

	w := doRequest(s, http.MethodPut, "/api/v1/form",
		`{"country":"Portugal","continent":"Europe","token":"5","entry_method":"standard","entry_price":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Portugal", client.form.Country)
	require.Equal(t, "Europe", client.form.Continent)
	require.Equal(t, uint64(2), client.form.EntryPrice)
}

func TestSetFormRejectsMalformedBody(t *testing.T) {
	client := newFakeClient()
	s := newTestServer(client)

	w := doRequest(s, http.MethodPut, "/api/v1/form", `{"country":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, client.calls)
}

func TestIntentEndpointsDispatch(t *testing.T) {
	cases := []struct {
		path string
		body string
		call string
	}{
		{"/api/v1/initialize", "", "initialize"},
		{"/api/v1/lottery", "", "createLottery"},
		{"/api/v1/tickets", "", "buyTicket"},
		{"/api/v1/tickets/burn", `{"country":"Portugal","continent":"Europe","token":"USDC","burn_amount":3}`, "burnAndBuy"},
		{"/api/v1/stake", `{"country":"Portugal","continent":"Europe","token":"USDC","amount":10}`, "stake"},
		{"/api/v1/unstake", `{"country":"Portugal","continent":"Europe","token":"USDC"}`, "unstake"},
		{"/api/v1/winner", "", "pickWinner"},
		{"/api/v1/claim", "", "claimPrize"},
	}
	for _, tc := range cases {
		t.Run(tc.call, func(t *testing.T) {
			client := newFakeClient()
			s := newTestServer(client)

			w := doRequest(s, http.MethodPost, tc.path, tc.body)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, []string{tc.call}, client.calls)

			var resp IntentResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.True(t, resp.Success)
			require.NotEmpty(t, resp.Message)
		})
	}
}

func TestErrorTaxonomyMapsToStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrAuthorization, http.StatusForbidden},
		{models.ErrAccountNotFound, http.StatusNotFound},
		{models.ErrNotEligible, http.StatusConflict},
		{models.ErrMintResolution, http.StatusUnprocessableEntity},
		{models.ErrSubmission, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			client := newFakeClient()
			client.errs["buyTicket"] = tc.err
			s := newTestServer(client)

			w := doRequest(s, http.MethodPost, "/api/v1/tickets", "")
			require.Equal(t, tc.status, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, false, resp["success"])
			require.NotEmpty(t, resp["error"])
		})
	}
}

func TestBurnEndpointRejectsMalformedBody(t *testing.T) {
	client := newFakeClient()
	s := newTestServer(client)

	w := doRequest(s, http.MethodPost, "/api/v1/tickets/burn", `{"burn_amount":"three"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, client.calls)
}

func TestCORSPreflight(t *testing.T) {
	client := newFakeClient()
	s := newTestServer(client)

	w := doRequest(s, http.MethodOptions, "/api/v1/state", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
