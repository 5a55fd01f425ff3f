package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/service"
)

type memMaptchaRepo struct {
	challenges map[string]*model.MAPTCHAChallenge
}

func (r *memMaptchaRepo) Create(challenge *model.MAPTCHAChallenge) error {
	copied := *challenge
	r.challenges[challenge.ID] = &copied
	return nil
}

func (r *memMaptchaRepo) ByID(id string) (*model.MAPTCHAChallenge, error) {
	c, ok := r.challenges[id]
	if !ok {
		return nil, repository.ErrChallengeNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memMaptchaRepo) Consume(id string) (bool, error) {
	c, ok := r.challenges[id]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	return true, nil
}

func newMaptchaFixture() (*http.ServeMux, *memMaptchaRepo) {
	repo := &memMaptchaRepo{challenges: make(map[string]*model.MAPTCHAChallenge)}
	h := NewMAPTCHAHandler(service.NewMAPTCHAService(repo))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/maptcha", h.Generate)
	mux.HandleFunc("POST /api/maptcha/verify", h.Verify)
	return mux, repo
}

func TestMAPTCHAHandlerGenerate(t *testing.T) {
	mux, _ := newMaptchaFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/maptcha", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Generate status = %d", rec.Code)
	}

	var body map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["question"] == "" || body["id"] == "" {
		t.Errorf("incomplete challenge: %v", body)
	}
	if _, leaked := body["answer"]; leaked {
		t.Error("answer leaked in response")
	}
}

func TestMAPTCHAHandlerVerify(t *testing.T) {
	mux, repo := newMaptchaFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/maptcha", nil)
	mux.ServeHTTP(rec, req)

	var challenge struct {
		ID string `json:"id"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &challenge)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	answer := repo.challenges[challenge.ID].Answer

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/maptcha/verify",
		strings.NewReader(fmt.Sprintf(`{"id":%q,"answer":%d}`, challenge.ID, answer)))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Verify status = %d, body %s", rec.Code, rec.Body.String())
	}

	var verdict map[string]bool
	err = json.Unmarshal(rec.Body.Bytes(), &verdict)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !verdict["success"] {
		t.Error("correct answer rejected")
	}

	// The challenge is spent; a replay conflicts.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/maptcha/verify",
		strings.NewReader(fmt.Sprintf(`{"id":%q,"answer":%d}`, challenge.ID, answer)))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("replay status = %d, want 409", rec.Code)
	}
}

func TestMAPTCHAHandlerVerifyWrongAnswer(t *testing.T) {
	mux, repo := newMaptchaFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/maptcha", nil)
	mux.ServeHTTP(rec, req)

	var challenge struct {
		ID string `json:"id"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &challenge)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	wrong := repo.challenges[challenge.ID].Answer + 1

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/maptcha/verify",
		strings.NewReader(fmt.Sprintf(`{"id":%q,"answer":%d}`, challenge.ID, wrong)))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Verify status = %d, body %s", rec.Code, rec.Body.String())
	}

	var verdict map[string]bool
	err = json.Unmarshal(rec.Body.Bytes(), &verdict)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	success, ok := verdict["success"]
	if !ok {
		t.Fatalf("verdict missing success field: %s", rec.Body.String())
	}
	if success {
		t.Error("wrong answer accepted")
	}
}

func TestMAPTCHAHandlerVerifyUnknownID(t *testing.T) {
	mux, _ := newMaptchaFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/maptcha/verify",
		strings.NewReader(`{"id":"nope","answer":4}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Verify(unknown) status = %d, want 400", rec.Code)
	}
}
