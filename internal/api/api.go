package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/giftology/radar/internal/screen"
	"github.com/giftology/radar/pkg/schema"
	"github.com/giftology/radar/pkg/sdk"
)

// FlowStarter opens the login and verification flow.
type FlowStarter interface {
	NewFlow(ctx context.Context) (*sdk.Flow, error)
}

// Client is what the handlers need: every endpoint plus the login flow.
type Client interface {
	sdk.RadarService
	FlowStarter
}

// Handler serves the dashboard screens as JSON. Screens live as long as the
// handler, so a failed reload still answers with the last data loaded.
type Handler struct {
	Client Client
	Log    *zap.Logger

	mu        sync.Mutex
	dashboard *screen.View[schema.DashboardMetrics]
	tasks     *screen.View[[]schema.Task]
	dov       *screen.View[schema.DOVDateList]
	contacts  *screen.View[[]schema.Contact]
	profile   *screen.View[schema.UserInfo]
}

func NewHandler(c Client, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{Client: c, Log: log}
	h.resetScreens()
	return h
}

// resetScreens drops every screen's state, closing the old views so loads
// still in flight are discarded.
func (h *Handler) resetScreens() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dashboard != nil {
		h.dashboard.Close()
		h.tasks.Close()
		h.dov.Close()
		h.contacts.Close()
		h.profile.Close()
	}
	h.dashboard = screen.NewDashboard(h.Client, h.Log)
	h.tasks = screen.NewTasks(h.Client, h.Log)
	h.dov = screen.NewDOV(h.Client, h.Log)
	h.contacts = screen.NewContacts(h.Client, h.Log)
	h.profile = screen.NewProfile(h.Client, h.Log)
}

func (h *Handler) screens() (*screen.View[schema.DashboardMetrics], *screen.View[[]schema.Task], *screen.View[schema.DOVDateList], *screen.View[[]schema.Contact], *screen.View[schema.UserInfo]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dashboard, h.tasks, h.dov, h.contacts, h.profile
}

// renderState answers 401 for a screen that needs a login, 200 otherwise.
func renderState[T any](c *gin.Context, s screen.State[T]) {
	if s.Unauthorized {
		c.JSON(http.StatusUnauthorized, s)
		return
	}
	c.JSON(http.StatusOK, s)
}

// renderErr maps client errors onto HTTP statuses.
func renderErr(c *gin.Context, err error) {
	var te *sdk.TransportError
	var se *sdk.ServiceError
	switch {
	case errors.Is(err, sdk.ErrNotAuthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, sdk.ErrInvalidEmail), errors.Is(err, sdk.ErrInvalidSecurityCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sdk.ErrFlowState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &te) && te.Kind == sdk.KindTimeout:
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": te.Message(), "error_number": te.Code()})
	case errors.As(err, &te):
		c.JSON(http.StatusBadGateway, gin.H{"error": te.Message(), "error_number": te.Code()})
	case errors.As(err, &se):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": se.Message, "error_number": se.ErrorNumber})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func serialParam(c *gin.Context) (int, bool) {
	serial, err := strconv.Atoi(c.Param("serial"))
	if err != nil || serial <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial must be a positive integer"})
		return 0, false
	}
	return serial, true
}

func (h *Handler) GetDashboard(c *gin.Context) {
	v, _, _, _, _ := h.screens()
	renderState(c, v.Refresh(c.Request.Context()))
}

func (h *Handler) GetTasks(c *gin.Context) {
	_, v, _, _, _ := h.screens()
	renderState(c, v.Refresh(c.Request.Context()))
}

func (h *Handler) GetDOV(c *gin.Context) {
	_, _, v, _, _ := h.screens()
	renderState(c, v.Refresh(c.Request.Context()))
}

func (h *Handler) GetContacts(c *gin.Context) {
	_, _, _, v, _ := h.screens()
	renderState(c, v.Refresh(c.Request.Context()))
}

func (h *Handler) GetProfile(c *gin.Context) {
	_, _, _, _, v := h.screens()
	renderState(c, v.Refresh(c.Request.Context()))
}

func (h *Handler) CompleteTask(c *gin.Context) {
	serial, ok := serialParam(c)
	if !ok {
		return
	}
	_, v, _, _, _ := h.screens()
	s, err := screen.CompleteTask(c.Request.Context(), v, h.Client, serial)
	if err != nil {
		h.Log.Info("task update failed", zap.Int("task", serial), zap.Error(err))
	}
	renderState(c, s)
}

func (h *Handler) GetTask(c *gin.Context) {
	serial, ok := serialParam(c)
	if !ok {
		return
	}
	resp, err := h.Client.Task(c.Request.Context(), serial)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetContact(c *gin.Context) {
	serial, ok := serialParam(c)
	if !ok {
		return
	}
	resp, err := h.Client.Contact(c.Request.Context(), serial)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHelp(c *gin.Context) {
	resp, err := h.Client.Help(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) PostFeedback(c *gin.Context) {
	var input schema.Feedback
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	env, err := h.Client.UpdateFeedback(c.Request.Context(), input)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	env, err := h.Client.ResetPassword(c.Request.Context(), input.Email)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		UserName string `json:"user_name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	flow, err := h.Client.NewFlow(ctx)
	if err != nil {
		renderErr(c, err)
		return
	}
	env, err := flow.Login(ctx, input.UserName, input.Password)
	var se *sdk.ServiceError
	if errors.As(err, &se) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": se.Message, "state": flow.State().String()})
		return
	}
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": flow.State().String(), "message": env.Message})
}

func (h *Handler) Verify(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	flow, err := h.Client.NewFlow(ctx)
	if err != nil {
		renderErr(c, err)
		return
	}
	_, err = flow.Verify(ctx, input.Code)
	var se *sdk.ServiceError
	if errors.As(err, &se) {
		h.resetScreens()
		c.JSON(http.StatusUnauthorized, gin.H{"error": se.Message, "state": flow.State().String()})
		return
	}
	if err != nil {
		renderErr(c, err)
		return
	}
	h.resetScreens()
	c.JSON(http.StatusOK, gin.H{"state": flow.State().String()})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Client.Logout(c.Request.Context()); err != nil {
		renderErr(c, err)
		return
	}
	h.resetScreens()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	flow, err := h.Client.NewFlow(ctx)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authorized": h.Client.Authorized(ctx),
		"state":      flow.State().String(),
	})
}

func (h *Handler) PostSetup(c *gin.Context) {
	res, err := h.Client.RunSetup(c.Request.Context())
	var are *sdk.AuthorizationRequiredError
	if errors.As(err, &are) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             are.Message,
			"authorize_url":     are.URL,
			"redirect_after_ms": are.Delay.Milliseconds(),
		})
		return
	}
	if err != nil {
		var te *sdk.TransportError
		var se *sdk.ServiceError
		if errors.Is(err, sdk.ErrNotAuthorized) || errors.As(err, &te) || errors.As(err, &se) {
			renderErr(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetReport(c *gin.Context) {
	r, err := screen.LoadReport(c.Request.Context(), h.Client, h.Log)
	if errors.Is(err, sdk.ErrNotAuthorized) {
		c.JSON(http.StatusUnauthorized, r)
		return
	}
	c.JSON(http.StatusOK, r)
}
