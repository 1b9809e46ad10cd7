package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travel-blog-server/middleware"
	"travel-blog-server/utils/errors"
)

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	AuthRateLimit  int
}

type Handlers struct {
	Auth   *AuthHandler
	Users  *UserHandler
	Posts  *PostHandler
	Upload *UploadHandler
	Health *HealthHandler
	// Uploads serves stored images when the memory storage driver is used.
	Uploads http.Handler
}

// NewRouter wires every route. Request ids, panic recovery and CORS wrap the
// whole router so they also apply to unmatched paths and preflight requests.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Observe())
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fail(w, req, errors.NotFound("Route"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fail(w, req, errors.NewAPIError("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed))
	})

	requireAuth := middleware.JWTMiddleware(cfg.JWTSecret)
	rateLimit := middleware.RateLimitByIP(cfg.AuthRateLimit, time.Minute)

	r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if h.Uploads != nil {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads", h.Uploads)).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.Handle("/register", rateLimit(http.HandlerFunc(h.Auth.RegisterUser))).Methods(http.MethodPost)
	users.Handle("/login", rateLimit(http.HandlerFunc(h.Auth.LoginUser))).Methods(http.MethodPost)
	users.Handle("/profile", requireAuth(http.HandlerFunc(h.Users.UpdateProfile))).Methods(http.MethodPut)
	users.Handle("/follow/{id}", requireAuth(http.HandlerFunc(h.Users.Follow))).Methods(http.MethodPost)
	users.Handle("/unfollow/{id}", requireAuth(http.HandlerFunc(h.Users.Unfollow))).Methods(http.MethodPost)
	users.HandleFunc("/username/{username}", h.Users.GetProfileByUsername).Methods(http.MethodGet)
	users.HandleFunc("/{id}", h.Users.GetProfile).Methods(http.MethodGet)

	// Post routes
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", h.Posts.ListPosts).Methods(http.MethodGet)
	posts.Handle("", requireAuth(http.HandlerFunc(h.Posts.CreatePost))).Methods(http.MethodPost)
	posts.HandleFunc("/region/{region}", h.Posts.ListByRegion).Methods(http.MethodGet)
	posts.HandleFunc("/country/{country}", h.Posts.ListByCountry).Methods(http.MethodGet)
	posts.HandleFunc("/user/{id}", h.Posts.ListByAuthor).Methods(http.MethodGet)
	posts.HandleFunc("/{id}", h.Posts.GetPost).Methods(http.MethodGet)
	posts.Handle("/{id}", requireAuth(http.HandlerFunc(h.Posts.UpdatePost))).Methods(http.MethodPut)
	posts.Handle("/{id}", requireAuth(http.HandlerFunc(h.Posts.DeletePost))).Methods(http.MethodDelete)

	api.HandleFunc("/map-data", h.Posts.MapData).Methods(http.MethodGet)
	api.Handle("/upload/{type}", requireAuth(http.HandlerFunc(h.Upload.UploadImage))).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = middleware.CORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = middleware.ErrorMiddleware()(handler)
	handler = middleware.RequestID()(handler)
	return handler
}
