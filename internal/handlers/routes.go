package handlers

import (
	"net/http"

	"github.com/jeremyjsx/quickfacts/internal/middleware"
)

type RouterDeps struct {
	Posts              *PostsHandler
	Uploads            *UploadsHandler
	Health             *HealthDeps
	Metrics            http.Handler
	UploadRateLimitRPM int
}

func Routes(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", Health(deps.Health))
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	mux.HandleFunc("GET /api/posts", deps.Posts.List())
	mux.HandleFunc("POST /api/posts", deps.Posts.Create())
	mux.HandleFunc("GET /api/posts/category/{category}", deps.Posts.ListByCategory())
	mux.HandleFunc("GET /api/posts/{id}", deps.Posts.Get())
	mux.HandleFunc("PUT /api/posts/{id}", deps.Posts.Update())
	mux.HandleFunc("DELETE /api/posts/{id}", deps.Posts.Delete())
	mux.HandleFunc("GET /api/categories", deps.Posts.Categories())

	if deps.Uploads != nil {
		mux.Handle("POST /api/uploads/image",
			middleware.RateLimit(deps.UploadRateLimitRPM)(deps.Uploads.UploadImage()))
	}

	return mux
}
