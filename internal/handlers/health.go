package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jeremyjsx/quickfacts/internal/storage"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthDeps struct {
	DB      Pinger
	Storage storage.Storage
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe: it answers 200 whenever the process is up.
// The database is pinged on every call; object storage is only checked with
// ?deep=1 since each check is a billed request. Check results are reported in
// the body but never change the code.
func Health(deps *HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		if deps != nil && deps.DB != nil {
			checks["db"] = check(deps.DB.PingContext(ctx))
		}
		if deps != nil && deps.Storage != nil && deepCheck(r) {
			_, err := deps.Storage.Exists(ctx, "__health__")
			checks["storage"] = check(err)
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(timestampLayout),
			Checks:    checks,
		})
	}
}

func check(err error) string {
	if err != nil {
		return "unhealthy"
	}
	return "ok"
}

func deepCheck(r *http.Request) bool {
	switch r.URL.Query().Get("deep") {
	case "1", "true":
		return true
	}
	return false
}
