package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"habitboard/adapters/store"
	"habitboard/domain/filter"
	"habitboard/domain/student"
	"habitboard/domain/theme"
	"habitboard/internal/analysis"
	"habitboard/internal/dashboard"
	"habitboard/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	pageTitle    = "📊 Nawyki studentów a wyniki w nauce"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportName   = "studenci.xlsx"
	defaultLimit = 50
)

// pageData feeds templates/index.html
type pageData struct {
	Title    string
	Themes   []string
	Theme    theme.Theme
	Style    template.CSS
	Options  student.Options
	Bounds   student.Bounds
	Range    filter.Range
	State    filter.State
	KPIs     analysis.KPIs
	Panels   []Panel
	View     *dashboard.View
	ViewName string
	Saving   bool
}

type errorPageData struct {
	Theme    theme.Theme
	Style    template.CSS
	DataFile string
	DataDir  string
}

func (s *Server) handleIndex(c *gin.Context) {
	state, err := filter.ParseQuery(c.Request.URL.Query())
	if err != nil {
		s.logger.Warn("ignoring invalid filter in page url", zap.Error(err))
		state = filter.State{}
	}
	s.renderPage(c, state, c.Query("theme"), "")
}

func (s *Server) handleViewPage(c *gin.Context) {
	if s.views == nil {
		s.respondError(c, errors.NotFound("saved views"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.NotFound("view "+c.Param("id")))
		return
	}
	view, err := s.views.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.renderPage(c, view.State, view.Theme, view.Name)
}

func (s *Server) renderPage(c *gin.Context, state filter.State, themeName, viewName string) {
	if !s.service.Ready() {
		s.renderErrorPage(c, themeName)
		return
	}

	options, bounds, err := s.service.Options()
	if err != nil {
		s.respondError(c, err)
		return
	}
	// the slider starts at its full range, and the first render filters with it like every later one
	if state.StudyHours == nil {
		state.StudyHours = &filter.Range{Min: float64(bounds.Min), Max: float64(bounds.Max)}
	}
	rng := *state.StudyHours

	view, err := s.service.Render(c.Request.Context(), state, themeName)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.render(c, http.StatusOK, "index.html", pageData{
		Title:    pageTitle,
		Themes:   s.service.Themes(),
		Theme:    view.Theme,
		Style:    template.CSS(view.Style),
		Options:  options,
		Bounds:   bounds,
		Range:    rng,
		State:    view.Filter,
		KPIs:     view.KPIs,
		Panels:   s.panels,
		View:     view,
		ViewName: viewName,
		Saving:   s.views != nil,
	})
}

func (s *Server) renderErrorPage(c *gin.Context, themeName string) {
	th := s.service.Theme(themeName)
	s.render(c, http.StatusServiceUnavailable, "error.html", errorPageData{
		Theme:    th,
		Style:    template.CSS(th.Style()),
		DataFile: s.config.DataFile,
		DataDir:  s.config.DataDir,
	})
}

func (s *Server) render(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleDashboard(c *gin.Context) {
	state, err := filter.ParseQuery(c.Request.URL.Query())
	if err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.service.Render(c.Request.Context(), state, c.Query("theme"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type themeResponse struct {
	theme.Theme
	Style string `json:"style"`
}

// handleTheme works without data so the stylesheet can switch on the error page too
func (s *Server) handleTheme(c *gin.Context) {
	th := s.service.Theme(c.Query("name"))
	c.JSON(http.StatusOK, themeResponse{Theme: th, Style: th.Style()})
}

func (s *Server) handleOptions(c *gin.Context) {
	options, bounds, err := s.service.Options()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options, "bounds": bounds, "themes": s.service.Themes()})
}

func (s *Server) handleExport(c *gin.Context) {
	state, err := filter.ParseQuery(c.Request.URL.Query())
	if err != nil {
		s.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := s.service.Export(&buf, state); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportName+`"`)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

type createViewRequest struct {
	Name  string       `json:"name"`
	State filter.State `json:"state"`
	Theme string       `json:"theme"`
}

func (s *Server) handleCreateView(c *gin.Context) {
	if s.views == nil {
		s.respondError(c, errors.NotFound("saved views"))
		return
	}
	var req createViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid view body: "+err.Error()))
		return
	}

	view := &store.View{
		Name:  req.Name,
		State: req.State,
		Theme: s.service.Theme(req.Theme).Name,
	}
	if err := s.views.Save(c.Request.Context(), view); err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info("view saved", zap.String("id", view.ID.String()), zap.String("name", view.Name))
	c.JSON(http.StatusCreated, gin.H{"id": view.ID, "url": "/views/" + view.ID.String()})
}

func (s *Server) handleListViews(c *gin.Context) {
	if s.views == nil {
		c.JSON(http.StatusOK, []store.View{})
		return
	}
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, errors.InvalidInput("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	views, err := s.views.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleDeleteView(c *gin.Context) {
	if s.views == nil {
		s.respondError(c, errors.NotFound("saved views"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.NotFound("view "+c.Param("id")))
		return
	}
	if err := s.views.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// statusFor maps error codes to HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
