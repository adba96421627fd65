package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/dew-duel/internal/config"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/render"
	"github.com/ericogr/dew-duel/internal/service"
	"github.com/ericogr/dew-duel/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noCrit struct{}

func (noCrit) Float64() float64 { return 0.99 }

type testServer struct {
	router  *gin.Engine
	auth    *TokenAuthority
	manager *service.Manager
	board   *render.Board
	pairs   *PairRegistry
	clock   *clockwork.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := storage.OpenAndMigrate(dsn, []game.Flavor{
		{Key: "voltage", Name: "Voltage", Attack: 10, Defense: 5},
		{Key: "code-red", Name: "Code Red", Attack: 8, Defense: 6},
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	repo := storage.NewSQLiteRepository(db)

	auth, err := NewTokenAuthority("test-secret")
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	stats := service.NewRepositoryStats(repo)
	board := render.NewBoard(clock)
	pairs := NewPairRegistry()
	rules := config.DefaultDuelRules()
	manager := service.NewManager(service.Options{
		Rules:    rules,
		Stats:    stats,
		Renderer: board,
		Observer: pairs,
		Clock:    clock,
		Roller:   noCrit{},
	})
	t.Cleanup(func() { manager.AbortAll("test cleanup") })

	router := gin.New()
	RegisterRoutes(router, auth, NewDuelHandler(manager, pairs, board), NewFlavorHandler(repo, stats, rules))
	return &testServer{router: router, auth: auth, manager: manager, board: board, pairs: pairs, clock: clock}
}

func (s *testServer) token(t *testing.T, id string, admin bool) string {
	t.Helper()
	tok, err := s.auth.Issue(id, strings.ToUpper(id[:1])+id[1:], admin, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// waitPhase polls the board until the duel reaches phase and round.
func (s *testServer) waitPhase(t *testing.T, matchID string, phase game.Phase, round int) render.Frame {
	t.Helper()
	var f render.Frame
	require.Eventually(t, func() bool {
		var ok bool
		f, ok = s.board.Frame(matchID)
		return ok && f.State.Phase == phase && (phase == game.PhaseFinished || f.State.Round == round)
	}, 2*time.Second, 5*time.Millisecond)
	return f
}

func (s *testServer) assignFlavors(t *testing.T) {
	t.Helper()
	admin := s.token(t, "root", true)
	w := s.do(t, http.MethodPut, "/api/members/ana/flavor", admin, gin.H{"flavor": "Voltage"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPut, "/api/members/bo/flavor", admin, gin.H{"flavor": "code red"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (s *testServer) createDuel(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/duels", s.token(t, "ana", false), gin.H{"target_id": "bo", "target_name": "Bo", "channel_id": "arena"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decode(t, w)["match_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/rules", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["text"], "30 HP")

	w = s.do(t, http.MethodGet, "/api/flavors", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flavors []flavorView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flavors))
	require.Len(t, flavors, 2)
	assert.Equal(t, "code-red", flavors[0].Key)

	w = s.do(t, http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev", decode(t, w)["version"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/duels", "", gin.H{"target_id": "bo"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/duels", "not-a-token", gin.H{"target_id": "bo"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := NewTokenAuthority("other-secret")
	require.NoError(t, err)
	forged, err := other.Issue("ana", "Ana", true, time.Hour)
	require.NoError(t, err)
	w = s.do(t, http.MethodPost, "/api/duels", forged, gin.H{"target_id": "bo"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/members/ana/flavor", s.token(t, "ana", false), gin.H{"flavor": "voltage"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateDuelErrors(t *testing.T) {
	s := newTestServer(t)
	ana := s.token(t, "ana", false)

	w := s.do(t, http.MethodPost, "/api/duels", ana, gin.H{"target_id": "bo"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "no flavors assigned yet")

	s.assignFlavors(t)
	w = s.do(t, http.MethodPost, "/api/duels", ana, gin.H{"target_id": "ana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/duels", ana, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.createDuel(t)
	w = s.do(t, http.MethodPost, "/api/duels", ana, gin.H{"target_id": "bo", "channel_id": "arena"})
	assert.Equal(t, http.StatusConflict, w.Code, "one live duel per pair and channel")

	w = s.do(t, http.MethodPost, "/api/duels", ana, gin.H{"target_id": "bo", "channel_id": "lobby"})
	assert.Equal(t, http.StatusCreated, w.Code, "other channels are independent")
}

func TestDuelFlow(t *testing.T) {
	s := newTestServer(t)
	s.assignFlavors(t)
	ana, bo, carla := s.token(t, "ana", false), s.token(t, "bo", false), s.token(t, "carla", false)

	id := s.createDuel(t)
	base := "/api/duels/" + id

	w := s.do(t, http.MethodGet, base, ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["text"], "Waiting for acceptance")

	w = s.do(t, http.MethodPost, base+"/move", ana, gin.H{"move": "atk"})
	assert.Equal(t, http.StatusConflict, w.Code, "not started")

	w = s.do(t, http.MethodPost, base+"/respond", ana, gin.H{"accept": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, base+"/respond", bo, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/respond", bo, gin.H{"accept": true})
	require.Equal(t, http.StatusOK, w.Code)
	s.waitPhase(t, id, game.PhaseInProgress, 1)

	w = s.do(t, http.MethodPost, base+"/move", carla, gin.H{"move": "atk"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPost, base+"/move", ana, gin.H{"move": "heal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/move", ana, gin.H{"move": "attack"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, base, bo, nil)
	assert.NotContains(t, w.Body.String(), "atk", "pending moves stay hidden")

	w = s.do(t, http.MethodPost, base+"/move", ana, gin.H{"move": "defend"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(t, http.MethodPost, base+"/move", bo, gin.H{"move": "DEF"})
	require.Equal(t, http.StatusOK, w.Code)

	f := s.waitPhase(t, id, game.PhaseInProgress, 2)
	assert.Equal(t, 26, f.State.PlayerB.HP)
	assert.Contains(t, f.Text, "Bo took 4 dmg.")

	// Bo never answers round 2
	w = s.do(t, http.MethodPost, base+"/move", ana, gin.H{"move": "atk"})
	require.Equal(t, http.StatusOK, w.Code)
	s.clock.Advance(60 * time.Second)
	f = s.waitPhase(t, id, game.PhaseFinished, 0)
	assert.Equal(t, game.OutcomeForfeitA, f.State.Outcome)

	w = s.do(t, http.MethodPost, base+"/move", bo, gin.H{"move": "atk"})
	assert.Equal(t, http.StatusGone, w.Code)

	// the pair is free again once the duel is over
	require.Eventually(t, func() bool {
		w := s.do(t, http.MethodPost, "/api/duels", ana, gin.H{"target_id": "bo", "channel_id": "arena"})
		return w.Code == http.StatusCreated
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAbortDuel(t *testing.T) {
	s := newTestServer(t)
	s.assignFlavors(t)
	id := s.createDuel(t)
	base := "/api/duels/" + id

	w := s.do(t, http.MethodPost, base+"/abort", s.token(t, "ana", false), gin.H{"reason": "no"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.token(t, "root", true)
	w = s.do(t, http.MethodPost, base+"/abort", admin, gin.H{"reason": "channel closed"})
	require.Equal(t, http.StatusOK, w.Code)

	f := s.waitPhase(t, id, game.PhaseFinished, 0)
	assert.Equal(t, game.OutcomeAborted, f.State.Outcome)
	assert.Equal(t, "channel closed", f.State.Reason)

	w = s.do(t, http.MethodPost, base+"/abort", admin, nil)
	assert.Equal(t, http.StatusGone, w.Code)
	w = s.do(t, http.MethodPost, "/api/duels/missing/abort", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/api/duels/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRollAndAssignFlavors(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "root", true)

	w := s.do(t, http.MethodPost, "/api/flavors/roll", admin, gin.H{"names": []string{"Baja Blast", "  ", "Voltage"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Flavors []flavorView `json:"flavors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Flavors, 2)
	for _, f := range resp.Flavors {
		total := f.Attack + f.Defense
		assert.True(t, total >= 16 && total <= 20, "total %d out of range", total)
	}
	assert.Equal(t, "baja-blast", resp.Flavors[0].Key)

	w = s.do(t, http.MethodPut, "/api/members/ana/flavor", admin, gin.H{"flavor": "BAJA BLAST"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, "/api/members/ana/flavor", admin, gin.H{"flavor": "pitch black"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPost, "/api/flavors/roll", admin, gin.H{"names": []string{" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenAuthority(t *testing.T) {
	auth, err := NewTokenAuthority("")
	require.NoError(t, err)

	tok, err := auth.Issue("ana", "Ana", true, time.Hour)
	require.NoError(t, err)
	claims, err := auth.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Subject)
	assert.Equal(t, "Ana", claims.Name)
	assert.True(t, claims.Admin)

	expired, err := auth.Issue("ana", "Ana", false, -time.Minute)
	require.NoError(t, err)
	_, err = auth.Parse(expired)
	assert.Error(t, err)

	noSubject, err := auth.Issue("", "Ghost", false, time.Hour)
	require.NoError(t, err)
	_, err = auth.Parse(noSubject)
	assert.Error(t, err)
}

func TestPairRegistry(t *testing.T) {
	p := NewPairRegistry()

	require.True(t, p.Reserve("c|a|b"))
	assert.False(t, p.Reserve("c|a|b"))
	assert.True(t, p.Reserve("c|b|a"), "pairs are ordered")

	p.Release("c|b|a")
	assert.True(t, p.Reserve("c|b|a"))

	p.Bind("c|a|b", "m1")
	p.OnFinished("m1", game.OutcomeDeclined, "no")
	assert.True(t, p.Reserve("c|a|b"))

	// finishing an unknown match is harmless
	p.OnFinished("m404", game.OutcomeAborted, "")
}
