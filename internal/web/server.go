// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the explorer as a local web page. The page is
// rendered on the server; each panel is also available as an HTML
// fragment.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/neurosynth-explorer/internal/controller"
	"github.com/pdiddy/neurosynth-explorer/internal/normalize"
	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/render"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

// Server holds the dependencies of the web handlers.
type Server struct {
	src         controller.Source
	log         *zap.Logger
	timeout     time.Duration
	debounce    time.Duration
	concurrency int
}

// NewServer returns a Server that reads from src. The term list and recent
// study results are cached for the life of the Server. A nil logger
// disables logging.
func NewServer(src controller.Source, cfg types.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Explorer.RequestTimeout
	if timeout <= 0 {
		timeout = types.DefaultConfig().Explorer.RequestTimeout
	}
	n := cfg.Serve.Concurrency
	if n <= 0 {
		n = types.DefaultConfig().Serve.Concurrency
	}
	debounce := cfg.Explorer.Debounce
	if debounce <= 0 {
		debounce = types.DefaultConfig().Explorer.Debounce
	}
	return &Server{
		src:         newSourceCache(src, studyCacheSize),
		log:         logger,
		timeout:     timeout,
		debounce:    debounce,
		concurrency: n,
	}
}

// SetupRoutes registers the page, fragment and health routes.
func SetupRoutes(router *gin.Engine, s *Server) {
	router.SetHTMLTemplate(pageTemplate)
	router.Use(RequestLogger(s.log))

	router.GET("/", s.PageHandler)
	router.GET("/health", s.HealthCheckHandler)

	fragments := router.Group("/fragments")
	{
		fragments.GET("/terms", s.TermsFragmentHandler)
		fragments.GET("/related", s.RelatedFragmentHandler)
		fragments.GET("/studies", s.StudiesFragmentHandler)
	}
}

// NewRouter returns a gin engine with recovery and all routes registered.
func NewRouter(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, s)
	return router
}

// ListenAndServe serves router on addr until ctx ends, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, router http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("serving explorer", zap.String("addr", addr))

	select {
	case err := <-errc:
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pageParams are the query parameters shared by the page and fragments.
type pageParams struct {
	Filter string `form:"filter"`
	Term   string `form:"term"`
	Query  string `form:"q"`
	From   string `form:"from"`
	To     string `form:"to"`
	Sort   string `form:"sort"`

	// Live marks a refresh issued while typing. A live request for a query
	// that cannot run yet is answered with 204 and no body.
	Live bool `form:"live"`
}

// studyFilter converts the year parameters. Values that are not years
// leave the bound unset.
func (p pageParams) studyFilter() studies.Filter {
	f := studies.Filter{Sort: studies.ParseDirection(p.Sort)}
	if b, err := studies.ParseBound(p.From); err == nil {
		f.From = b
	}
	if b, err := studies.ParseBound(p.To); err == nil {
		f.To = b
	}
	return f
}

// pageData feeds the page template.
type pageData struct {
	Params  pageParams
	Sort    studies.Direction
	Terms   template.HTML
	Related template.HTML
	Studies template.HTML

	// Loading is shown in a panel while the page script refetches it.
	Loading        template.HTML
	DebounceMillis int64
}

// HealthCheckHandler reports that the server is up.
func (s *Server) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PageHandler renders the full page, fetching its panels concurrently.
// Panels whose input is blank are left empty.
func (s *Server) PageHandler(c *gin.Context) {
	var p pageParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.String(http.StatusBadRequest, "invalid parameters: %v", err)
		return
	}
	data := pageData{
		Params:         p,
		Sort:           studies.ParseDirection(p.Sort),
		DebounceMillis: s.debounce.Milliseconds(),
	}
	data.Loading, _ = render.LoadingHTML()

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	g.Go(func() error {
		data.Terms, _ = s.termsPanel(ctx, p.Filter)
		return nil
	})
	if strings.TrimSpace(p.Term) != "" {
		g.Go(func() error {
			data.Related, _ = s.relatedPanel(ctx, p.Term)
			return nil
		})
	}
	if strings.TrimSpace(p.Query) != "" {
		g.Go(func() error {
			data.Studies, _ = s.studiesPanel(ctx, p.Query, p.studyFilter())
			return nil
		})
	}
	_ = g.Wait()

	c.HTML(http.StatusOK, "page", data)
}

// TermsFragmentHandler renders the term list filtered by ?filter=.
func (s *Server) TermsFragmentHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	html, status := s.termsPanel(ctx, c.Query("filter"))
	c.Data(status, "text/html; charset=utf-8", []byte(html))
}

// RelatedFragmentHandler renders the related terms of ?term=.
func (s *Server) RelatedFragmentHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	html, status := s.relatedPanel(ctx, c.Query("term"))
	c.Data(status, "text/html; charset=utf-8", []byte(html))
}

// StudiesFragmentHandler renders the studies matching ?q=, filtered by
// ?from=, ?to= and ordered by ?sort=. With ?live=1 an unrunnable query
// leaves the panel as it is.
func (s *Server) StudiesFragmentHandler(c *gin.Context) {
	var p pageParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.String(http.StatusBadRequest, "invalid parameters: %v", err)
		return
	}
	if p.Live && !query.IsRunnable(p.Query) {
		c.Status(http.StatusNoContent)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	html, status := s.studiesPanel(ctx, p.Query, p.studyFilter())
	c.Data(status, "text/html; charset=utf-8", []byte(html))
}

// Each panel returns its HTML and the status a fragment request should
// answer with: 200, or 502 when the upstream call failed.

func (s *Server) termsPanel(ctx context.Context, filter string) (template.HTML, int) {
	terms, err := s.src.Terms(ctx)
	if err != nil {
		return s.errorPanel(controller.PanelTerms, err)
	}
	return s.ok(render.TermsHTML(normalize.FilterTerms(terms, filter)))
}

func (s *Server) relatedPanel(ctx context.Context, term string) (template.HTML, int) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ok(render.NoticeHTML(controller.NoticeEnterTerm))
	}
	related, err := s.src.Related(ctx, term)
	if err != nil {
		return s.errorPanel(controller.PanelRelated, err)
	}
	return s.ok(render.RelatedHTML(related))
}

func (s *Server) studiesPanel(ctx context.Context, q string, f studies.Filter) (template.HTML, int) {
	q = strings.TrimSpace(q)
	switch {
	case q == "":
		return s.ok(render.NoticeHTML(controller.NoticeEnterQuery))
	case !query.IsRunnable(q):
		return s.ok(render.NoticeHTML(controller.NoticeIncompleteQuery))
	}
	recs, err := s.src.Studies(ctx, q)
	if err != nil {
		return s.errorPanel(controller.PanelStudies, err)
	}
	return s.ok(render.StudiesHTML(studies.Apply(recs, f), len(recs)))
}

func (s *Server) errorPanel(p controller.Panel, err error) (template.HTML, int) {
	s.log.Warn("panel request failed", zap.Stringer("panel", p), zap.Error(err))
	html, rerr := render.ErrorHTML(err)
	if rerr != nil {
		return template.HTML(template.HTMLEscapeString(err.Error())), http.StatusBadGateway
	}
	return html, http.StatusBadGateway
}

func (s *Server) ok(html template.HTML, err error) (template.HTML, int) {
	if err != nil {
		s.log.Error("rendering panel", zap.Error(err))
		return "", http.StatusInternalServerError
	}
	return html, http.StatusOK
}
