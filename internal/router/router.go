package router

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"careerquest/internal/config"
	"careerquest/internal/database"
	"careerquest/internal/handlers/api/v1/missions"
	"careerquest/internal/handlers/ws"
	"careerquest/internal/middleware"
	"careerquest/internal/response"
	"careerquest/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DatabaseProbe is satisfied by *database.Manager
type DatabaseProbe interface {
	Health(ctx context.Context) *database.HealthStatus
}

// Probe reports the health of an optional dependency
type Probe interface {
	Health(ctx context.Context) error
}

// EventsProbe is satisfied by events.EventBus
type EventsProbe interface {
	Health() error
}

// Dependencies holds what the HTTP layer needs. Hub, Cache and Events may
// be nil.
type Dependencies struct {
	Config    *config.Config
	Missions  services.MissionService
	Tasks     services.TaskService
	Auth      *middleware.AuthMiddleware
	Responses *response.Builder
	Hub       *ws.Hub
	Database  DatabaseProbe
	Cache     Probe
	Events    EventsProbe
	StartedAt time.Time
	Logger    *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Responses == nil {
		deps.Responses = response.NewBuilder(nil, logger)
	}
	if deps.Auth == nil {
		deps.Auth = middleware.NewAuthMiddleware(nil, logger)
	}
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}

	r := mux.NewRouter()
	r.Use(
		middleware.RequestID(logger),
		middleware.StructuredLogging(middleware.DefaultLoggingConfig()),
		response.Middleware(deps.Responses),
		middleware.Recovery(),
		deps.Auth.Authenticate(),
	)

	r.HandleFunc("/health", healthHandler(deps)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	registerMissionRoutes(api, deps)

	if deps.Hub != nil {
		api.Handle("/ws", deps.Hub).Methods(http.MethodGet)
	}

	table := collectRoutes(r, logger)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		methodNotAllowed(w, req, table.allowed(req.URL.Path))
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// mux reports a method mismatch inside a subrouter as not found once
		// a sibling route shares the path prefix
		if methods := table.allowed(req.URL.Path); len(methods) > 0 {
			methodNotAllowed(w, req, methods)
			return
		}
		response.QuickError(w, req, services.NewNotFoundError("route not found"))
	})

	// Preflight requests never match a route method, so CORS answers them
	// before routing.
	return middleware.CORS(deps.Config.Server.CORSOrigin)(r)
}

// routeTable maps registered path patterns to their methods
type routeTable []routeEntry

type routeEntry struct {
	path    *regexp.Regexp
	methods []string
}

func collectRoutes(r *mux.Router, logger *zap.Logger) routeTable {
	var table routeTable
	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		pattern, err := route.GetPathRegexp()
		if err != nil {
			return nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return err
		}
		table = append(table, routeEntry{path: re, methods: methods})
		return nil
	})
	if err != nil {
		logger.Warn("Failed to index routes for method checks", zap.Error(err))
	}
	return table
}

// allowed returns the methods registered for path, in registration order
func (t routeTable) allowed(path string) []string {
	var methods []string
	seen := make(map[string]struct{})
	for _, entry := range t {
		if !entry.path.MatchString(path) {
			continue
		}
		for _, m := range entry.methods {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			methods = append(methods, m)
		}
	}
	return methods
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed []string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	err := services.NewValidationError("method not allowed", nil)
	err.StatusCode = http.StatusMethodNotAllowed
	response.QuickError(w, r, err)
}

func registerMissionRoutes(api *mux.Router, deps Dependencies) {
	c := missions.NewMissionController(deps.Missions, deps.Tasks, deps.Logger, deps.Responses)

	manage := deps.Auth.RequireRole("hr", "admin")
	authenticated := deps.Auth.RequireAuth()

	api.HandleFunc("/missions", c.ListMissions).Methods(http.MethodGet)
	api.Handle("/missions", manage(http.HandlerFunc(c.CreateMission))).Methods(http.MethodPost)
	api.HandleFunc("/missions/statistics", c.GetStatistics).Methods(http.MethodGet)
	api.HandleFunc("/missions/{id}", c.GetMission).Methods(http.MethodGet)
	api.Handle("/missions/{id}", manage(http.HandlerFunc(c.UpdateMission))).Methods(http.MethodPatch)
	api.Handle("/missions/{id}", manage(http.HandlerFunc(c.DeleteMission))).Methods(http.MethodDelete)

	api.HandleFunc("/missions/{id}/tasks", c.ListTasks).Methods(http.MethodGet)
	api.Handle("/missions/{id}/tasks", manage(http.HandlerFunc(c.CreateTask))).Methods(http.MethodPost)
	api.Handle("/missions/{id}/tasks/order", manage(http.HandlerFunc(c.ReorderTasks))).Methods(http.MethodPut)
	api.Handle("/missions/{id}/tasks/{taskId}", manage(http.HandlerFunc(c.UpdateTask))).Methods(http.MethodPatch)
	api.Handle("/missions/{id}/tasks/{taskId}", manage(http.HandlerFunc(c.DeleteTask))).Methods(http.MethodDelete)
	api.Handle("/missions/{id}/tasks/{taskId}/toggle", authenticated(http.HandlerFunc(c.ToggleTask))).Methods(http.MethodPost)

	api.HandleFunc("/badges", c.ListBadges).Methods(http.MethodGet)
}

func healthHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := response.NewHealthStatus(deps.Config.Server.Environment, deps.StartedAt)

		if deps.Database != nil {
			health.AddService("database", databaseError(deps.Database.Health(ctx)), true)
		}
		if deps.Cache != nil {
			health.AddService("cache", deps.Cache.Health(ctx), false)
		}
		if deps.Events != nil {
			health.AddService("events", deps.Events.Health(), false)
		}

		deps.Responses.WriteHealthCheck(w, r, health)
	}
}

// databaseError treats a degraded database as available
func databaseError(status *database.HealthStatus) error {
	if status == nil {
		return errors.New("no health status")
	}
	if status.Status != database.StatusUnhealthy {
		return nil
	}
	if len(status.Errors) > 0 {
		return errors.New(strings.Join(status.Errors, "; "))
	}
	return errors.New("database unhealthy")
}
