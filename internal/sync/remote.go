package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/lexsync/pkg/models"
)

// Authority is the remote side of the sync protocol: per entity type a
// fetch of the current server value (nil when nothing is stored yet) and a
// full-replace upload. There are no partial-patch semantics. All calls are
// scoped by an opaque user identifier.
type Authority interface {
	FetchLearningProgress(ctx context.Context, userID string) (*models.LearningProgress, error)
	UploadLearningProgress(ctx context.Context, userID string, p models.LearningProgress) error

	FetchVocabulary(ctx context.Context, userID string) ([]models.VocabularyProgress, error)
	UploadVocabulary(ctx context.Context, userID string, v []models.VocabularyProgress) error

	FetchLearningStats(ctx context.Context, userID string) (*models.LearningStats, error)
	UploadLearningStats(ctx context.Context, userID string, s models.LearningStats) error

	UploadExerciseResults(ctx context.Context, userID string, r []models.ExerciseResult) error
	UploadSessions(ctx context.Context, userID string, s []models.LearningSession) error
}

// HTTPAuthority talks to the remote authority over HTTP with JSON bodies
type HTTPAuthority struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPAuthority creates a client for the given base URL. The token is
// sent as a bearer credential on every request.
func NewHTTPAuthority(baseURL, token string) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *HTTPAuthority) FetchLearningProgress(ctx context.Context, userID string) (*models.LearningProgress, error) {
	var p models.LearningProgress
	found, err := a.get(ctx, fmt.Sprintf("/users/%s/progress", userID), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (a *HTTPAuthority) UploadLearningProgress(ctx context.Context, userID string, p models.LearningProgress) error {
	return a.put(ctx, fmt.Sprintf("/users/%s/progress", userID), p)
}

func (a *HTTPAuthority) FetchVocabulary(ctx context.Context, userID string) ([]models.VocabularyProgress, error) {
	var v []models.VocabularyProgress
	found, err := a.get(ctx, fmt.Sprintf("/users/%s/vocabulary", userID), &v)
	if err != nil || !found {
		return nil, err
	}
	return v, nil
}

func (a *HTTPAuthority) UploadVocabulary(ctx context.Context, userID string, v []models.VocabularyProgress) error {
	return a.put(ctx, fmt.Sprintf("/users/%s/vocabulary", userID), v)
}

func (a *HTTPAuthority) FetchLearningStats(ctx context.Context, userID string) (*models.LearningStats, error) {
	var s models.LearningStats
	found, err := a.get(ctx, fmt.Sprintf("/users/%s/stats", userID), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (a *HTTPAuthority) UploadLearningStats(ctx context.Context, userID string, s models.LearningStats) error {
	return a.put(ctx, fmt.Sprintf("/users/%s/stats", userID), s)
}

func (a *HTTPAuthority) UploadExerciseResults(ctx context.Context, userID string, r []models.ExerciseResult) error {
	return a.put(ctx, fmt.Sprintf("/users/%s/exercise-results", userID), r)
}

func (a *HTTPAuthority) UploadSessions(ctx context.Context, userID string, s []models.LearningSession) error {
	return a.put(ctx, fmt.Sprintf("/users/%s/sessions", userID), s)
}

// get fetches path into out. Returns false with no error when the server
// has nothing stored yet (404).
func (a *HTTPAuthority) get(ctx context.Context, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %v", err)
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("unexpected status %s for GET %s", resp.Status, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %v", err)
	}
	return true, nil
}

// put uploads body as the full replacement value for path
func (a *HTTPAuthority) put(ctx context.Context, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, a.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s for PUT %s", resp.Status, path)
	}
	return nil
}

func (a *HTTPAuthority) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
}
