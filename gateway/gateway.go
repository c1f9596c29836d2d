package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smnsjas/go-wps/client"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
	"github.com/smnsjas/go-wps/transport"
)

// Config for the gateway handler.
type Config struct {
	// Service is the discovered WPS service. Required.
	Service *client.Service

	// BasePath prefixes every route, e.g. "/v1". Empty serves from "/".
	BasePath string

	// JWTSecret enables HS256 bearer authentication when non-empty.
	JWTSecret string

	// Metrics is served at /metrics when set.
	Metrics http.Handler

	// Logger receives one record per HTTP request. Nil discards them.
	Logger *slog.Logger
}

// Gateway is the REST façade over one Service.
type Gateway struct {
	svc    *client.Service
	jobs   *jobStore
	logger *slog.Logger
}

// New returns an HTTP handler exposing cfg.Service.
func New(cfg Config) (http.Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("gateway: service is required")
	}
	basePath := strings.TrimSuffix(cfg.BasePath, "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Gateway{svc: cfg.Service, jobs: newJobStore(), logger: logger}

	router := chi.NewRouter()
	router.Use(g.requestLogger)
	router.Use(newAuthMiddleware(cfg.JWTSecret, path.Join("/", basePath, "health")))

	hcfg := huma.DefaultConfig("WPS Gateway", "1.0.0")
	hcfg.OpenAPIPath = path.Join(basePath, "/openapi")
	hcfg.DocsPath = ""
	hcfg.SchemasPath = path.Join(basePath, "/schemas")
	api := humachi.New(router, hcfg)

	var target huma.API = api
	if basePath != "" {
		target = huma.NewGroup(api, basePath)
	}
	g.register(target)

	if cfg.Metrics != nil {
		router.Handle(path.Join("/", basePath, "metrics"), cfg.Metrics)
	}
	return router, nil
}

func (g *Gateway) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(transport.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(transport.HeaderRequestID, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		g.logger.Info("gateway request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestID)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type processPath struct {
	ID string `path:"id" doc:"Process identifier"`
}

type jobPath struct {
	ID string `path:"id" doc:"Gateway job identifier"`
}

func (g *Gateway) register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct{ Body HealthView }, error) {
		return &struct{ Body HealthView }{Body: HealthView{
			Status:  "ok",
			Version: g.svc.Version().String(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-capabilities",
		Method:      http.MethodGet,
		Path:        "/capabilities",
		Summary:     "Service capabilities",
	}, func(ctx context.Context, _ *struct{}) (*struct{ Body *model.Capabilities }, error) {
		return &struct{ Body *model.Capabilities }{Body: g.svc.Capabilities()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "describe-process",
		Method:      http.MethodGet,
		Path:        "/processes/{id}",
		Summary:     "Describe a process",
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, in *processPath) (*struct{ Body *model.ProcessDescription }, error) {
		desc, err := g.svc.ProcessDescription(ctx, in.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct{ Body *model.ProcessDescription }{Body: desc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "execute-process",
		Method:      http.MethodPost,
		Path:        "/processes/{id}/execution",
		Summary:     "Execute a process",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, in *struct {
		ID   string `path:"id" doc:"Process identifier"`
		Body ExecuteBody
	}) (*struct{ Body ExecutionView }, error) {
		view, err := g.execute(ctx, in.ID, in.Body)
		if err != nil {
			return nil, err
		}
		return &struct{ Body ExecutionView }{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/jobs",
		Summary:     "List tracked jobs",
	}, func(ctx context.Context, in *struct {
		Status string `query:"status" doc:"Only jobs with this last known status"`
	}) (*struct{ Body []JobView }, error) {
		entries := g.jobs.list(model.ParseStatus(in.Status))
		views := make([]JobView, 0, len(entries))
		for _, e := range entries {
			views = append(views, e.view())
		}
		return &struct{ Body []JobView }{Body: views}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}",
		Summary:     "Job status, refreshed from the server",
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, in *jobPath) (*struct{ Body JobView }, error) {
		e, err := g.refreshed(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		return &struct{ Body JobView }{Body: e.view()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-job-results",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}/results",
		Summary:     "Result of a succeeded job",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *jobPath) (*struct{ Body *model.Result }, error) {
		e, err := g.refreshed(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		switch status := e.job.Status(); status {
		case model.StatusSucceeded:
		case model.StatusFailed:
			return nil, handleError(client.ErrJobFailed)
		default:
			return nil, huma.Error409Conflict("job is " + status.String())
		}
		r, err := g.svc.FetchResult(ctx, e.job)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct{ Body *model.Result }{Body: r}, nil
	})
}

func (g *Gateway) execute(ctx context.Context, id string, body ExecuteBody) (ExecutionView, error) {
	inputs := make([]model.Input, 0, len(body.Inputs))
	for _, b := range body.Inputs {
		in, err := b.toModel()
		if err != nil {
			return ExecutionView{}, huma.Error400BadRequest(err.Error())
		}
		inputs = append(inputs, in)
	}
	outputs := make([]model.OutputRequest, 0, len(body.Outputs))
	for _, b := range body.Outputs {
		outputs = append(outputs, b.toModel())
	}

	resp, err := g.svc.Execute(ctx, id, inputs, outputs, client.ExecuteOptions{Async: body.Async, Raw: body.Raw})
	if err != nil {
		return ExecutionView{}, handleError(err)
	}

	view := ExecutionView{Kind: resp.Kind().String()}
	switch resp.Kind() {
	case protocol.ResponseJob:
		e := g.jobs.add(id, resp.Job)
		jv := e.view()
		view.Job = &jv
		g.logger.Info("gateway job started", "id", e.id, "process", id, "job_id", resp.Job.ID())
	case protocol.ResponseResult:
		view.Result = resp.Result
	case protocol.ResponseRaw:
		view.RawContentType = resp.Raw.ContentType
		view.Raw = resp.Raw.Body
	}
	return view, nil
}

// refreshed looks up a job and polls the server once unless it already
// completed.
func (g *Gateway) refreshed(ctx context.Context, id string) (*jobEntry, error) {
	e, ok := g.jobs.get(id)
	if !ok {
		return nil, huma.Error404NotFound("job " + id + " not found")
	}
	if !e.job.IsCompleted() {
		if err := g.svc.Refresh(ctx, e.job); err != nil {
			return nil, handleError(err)
		}
	}
	return e, nil
}
