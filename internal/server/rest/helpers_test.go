package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/archive"
	"github.com/dmitrijs2005/nutritracker/internal/server/auth"
	"github.com/dmitrijs2005/nutritracker/internal/server/config"
	"github.com/dmitrijs2005/nutritracker/internal/server/nutrients"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/nutritracker/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fdcMilk is a FoodData Central search answer with one whole-milk hit.
const fdcMilk = `{"foods":[{"fdcId":1097512,"description":"Milk, whole","dataType":"Foundation",
"foodNutrients":[{"nutrientName":"Energy","unitName":"KCAL","value":60},
{"nutrientName":"Protein","unitName":"G","value":3.2}]}]}`

type testEnv struct {
	t      *testing.T
	rm     *repotest.Manager
	mock   sqlmock.Sqlmock
	users  *services.UserService
	server *Server
	h      http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: 24 * time.Hour,
		PasswordHashCost:             bcrypt.MinCost,
		LoginRateLimit:               100,
		LoginRateBurst:               100,
		CORSAllowedOrigins:           []string{"http://localhost:3000"},
	}
}

// newTestEnv wires the real services over an in-memory repository manager,
// a sqlmock connection for transactions and a fake FoodData Central.
func newTestEnv(t *testing.T, cfg *config.Config, fdc http.Handler) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if fdc == nil {
		fdc = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, fdcMilk)
		})
	}
	upstream := httptest.NewServer(fdc)
	t.Cleanup(upstream.Close)

	rm := repotest.NewManager()
	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	lookup := nutrients.NewClient(upstream.URL, "test-key", 2*time.Second, 0, logging.Nop{})

	users := services.NewUserService(db, rm, issuer, cfg)
	trackers := services.NewTrackerService(db, rm, archive.NopArchiver{}, logging.Nop{})
	foods := services.NewFoodService(db, rm, lookup, trackers, archive.NopArchiver{}, logging.Nop{})

	srv := NewServer(cfg, users, foods, trackers, logging.Nop{})
	return &testEnv{t: t, rm: rm, mock: mock, users: users, server: srv, h: srv.Routes()}
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(userName, password string) *httptest.ResponseRecorder {
	e.t.Helper()

	form := url.Values{"username": {userName}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(userName, password, scope string) string {
	e.t.Helper()
	u, err := e.users.Register(context.Background(), services.RegisterInput{UserName: userName, Password: password, Scope: scope})
	require.NoError(e.t, err)
	return u.ID
}

func (e *testEnv) token(userName, password string) tokenResponse {
	e.t.Helper()
	rec := e.login(userName, password)
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenResponse](e.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
