// Package webui exposes a read-only HTTP query API over the sales warehouse,
// plus a minimal HTML form for ad-hoc queries.
//
// Routes:
//
//	GET  /            → query form; ?sql= renders results inline
//	GET  /healthz     → liveness probe
//	GET  /api/tables  → warehouse table names
//	GET  /api/query   → ?sql=SELECT ... ; JSON result set
//	POST /api/query   → {"sql": "SELECT ..."}; JSON result set
package webui

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"salesetl/pkg/records"
)

// Querier runs read queries against the warehouse.
type Querier interface {
	Query(ctx context.Context, sql string) (*records.Set, error)
	Tables(ctx context.Context) ([]string, error)
}

// Config controls server startup.
type Config struct {
	Addr string
	// MaxRows caps returned rows; 0 means no cap.
	MaxRows int
	// QueryTimeout bounds each request. Zero uses 30s.
	QueryTimeout time.Duration
}

// Server serves the query API.
type Server struct {
	cfg    Config
	q      Querier
	log    *zap.Logger
	router chi.Router
	tmpl   *template.Template
}

// NewServer constructs a Server with routes and the parsed form template.
func NewServer(cfg Config, q Querier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	s := &Server{
		cfg:  cfg,
		q:    q,
		log:  log,
		tmpl: template.Must(template.New("index").Funcs(template.FuncMap{"cell": cell}).Parse(indexHTML)),
	}
	s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("web server listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.QueryTimeout))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/tables", s.handleTables)
		r.Get("/query", s.handleQuery)
		r.Post("/query", s.handleQuery)
	})
	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// QueryRequest is the POST /api/query body.
type QueryRequest struct {
	SQL string `json:"sql"`
}

// QueryResponse is a result set in positional form.
type QueryResponse struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.q.Tables(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, map[string][]string{"tables": tables})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if r.Method == http.MethodPost {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			s.fail(w, r, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
	} else {
		req.SQL = r.URL.Query().Get("sql")
	}

	resp, status, err := s.runQuery(r.Context(), req.SQL)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) runQuery(ctx context.Context, sql string) (*QueryResponse, int, error) {
	sql, err := ReadOnly(sql)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	set, err := s.q.Query(ctx, sql)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	rows := set.Rows()
	truncated := false
	if s.cfg.MaxRows > 0 && len(rows) > s.cfg.MaxRows {
		rows = rows[:s.cfg.MaxRows]
		truncated = true
	}
	return &QueryResponse{
		Columns:   set.Columns(),
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: truncated,
	}, http.StatusOK, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// ErrNotReadOnly is returned for statements other than a single SELECT.
var ErrNotReadOnly = errors.New("only a single SELECT or WITH statement is allowed")

// writeKeywords may not appear anywhere in a query, which rejects
// data-modifying CTEs such as WITH x AS (...) DELETE FROM t.
var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true,
	"MERGE": true, "UPSERT": true, "CREATE": true, "DROP": true,
	"ALTER": true, "TRUNCATE": true, "ATTACH": true, "DETACH": true,
	"PRAGMA": true, "VACUUM": true, "GRANT": true, "REVOKE": true,
	"EXEC": true, "EXECUTE": true, "CALL": true, "COPY": true, "INTO": true,
}

// ReadOnly trims sql and checks that it is a single SELECT (or WITH ...
// SELECT) statement with no write keyword outside quotes. A trailing
// semicolon is dropped. Backends enforce read-only execution as well.
func ReadOnly(sql string) (string, error) {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	if sql == "" {
		return "", errors.New("sql must not be empty")
	}
	words := keywords(sql)
	if len(words) == 0 || (words[0] != "SELECT" && words[0] != "WITH") {
		return "", ErrNotReadOnly
	}
	if strings.Contains(stripQuoted(sql), ";") {
		return "", ErrNotReadOnly
	}
	for _, w := range words {
		if writeKeywords[w] {
			return "", fmt.Errorf("%w: %s is not allowed", ErrNotReadOnly, w)
		}
	}
	return sql, nil
}

// keywords returns the upper-cased bare words of sql, skipping quoted
// literals and identifiers.
func keywords(sql string) []string {
	return strings.FieldsFunc(strings.ToUpper(stripQuoted(sql)), func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

// stripQuoted blanks out '...', "..." and `...` spans and -- comments.
func stripQuoted(sql string) string {
	var b strings.Builder
	var quote rune
	comment := false
	prev := rune(0)
	for _, r := range sql {
		switch {
		case comment:
			if r == '\n' {
				comment = false
				b.WriteRune(' ')
			}
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteRune(' ')
		case r == '\'' || r == '"' || r == '`':
			quote = r
			b.WriteRune(' ')
		case r == '-' && prev == '-':
			comment = true
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		SQL    string
		Tables []string
		Result *QueryResponse
		Error  string
	}{SQL: r.URL.Query().Get("sql")}

	tables, err := s.q.Tables(r.Context())
	if err != nil {
		data.Error = err.Error()
	}
	data.Tables = tables

	if data.SQL != "" && data.Error == "" {
		res, _, err := s.runQuery(r.Context(), data.SQL)
		if err != nil {
			data.Error = err.Error()
		}
		data.Result = res
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Error("template error", zap.Error(err))
	}
}

func cell(v any) string { return records.String(v) }

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>sales warehouse</title>
<style>
body{font-family:sans-serif;margin:2rem}
textarea{width:100%;height:6rem;font-family:monospace}
table{border-collapse:collapse;margin-top:1rem}
td,th{border:1px solid #ccc;padding:.25rem .5rem}
.err{color:#b00}
</style></head>
<body>
<h1>sales warehouse</h1>
{{if .Tables}}<p>Tables: {{range $i, $t := .Tables}}{{if $i}}, {{end}}<code>{{$t}}</code>{{end}}</p>{{end}}
<form method="get" action="/">
<textarea name="sql">{{.SQL}}</textarea>
<button type="submit">Run</button>
</form>
{{if .Error}}<p class="err">{{.Error}}</p>{{end}}
{{with .Result}}
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{cell .}}</td>{{end}}</tr>{{end}}
</table>
<p>{{.RowCount}} rows{{if .Truncated}} (truncated){{end}}</p>
{{end}}
</body>
</html>
`
