// Package server is an in-process fixture of the groups service: the full
// REST surface with the production wire encodings (JSON error envelope on
// domain refusals, text/plain on faults, 204 voids, 404 absence) backed by
// an in-memory store. Integration tests mount the router in httptest; the
// mock CLI command serves it for local development.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dinerozz/orgs-console/config"
	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/middleware"
	"github.com/dinerozz/orgs-console/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RunServer serves the fixture groups service until interrupted.
func RunServer(cfg *config.Config, store *Store) {
	switch cfg.Env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := NewRouter(store)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("✅ Fixture groups service starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	gracefulShutdown(srv)
}

func gracefulShutdown(srv *http.Server) {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("🔄 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	log.Println("✅ Server gracefully stopped")
}

// NewRouter builds the gin engine for the fixture service.
func NewRouter(store *Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AuthenticationMiddleware())

	h := &handlers{store: store}

	r.GET("/", h.info)
	r.GET("/group", h.listGroups)
	r.GET("/group/:id", h.getGroup)
	r.GET("/group/:id/exists", h.groupExists)
	r.PUT("/group/:id", h.createGroup)
	r.PUT("/group/:id/update", h.updateGroup)
	r.GET("/group/:id/requests", h.groupRequests)
	r.POST("/group/:id/requestmembership", h.requestMembership)
	r.POST("/group/:id/resource/workspace/:wsid", h.addOrRequestWorkspace)
	r.DELETE("/group/:id/resource/:type/:rid", h.deleteResource)
	r.POST("/group/:id/user/:username", h.inviteUser)
	r.DELETE("/group/:id/user/:username", h.removeMember)
	r.PUT("/group/:id/user/:username/admin", h.promoteMember)
	r.DELETE("/group/:id/user/:username/admin", h.demoteAdmin)

	r.GET("/request/id/:id", h.getRequest)
	r.PUT("/request/id/:id/cancel", h.cancelRequest)
	r.PUT("/request/id/:id/accept", h.acceptRequest)
	r.PUT("/request/id/:id/deny", h.denyRequest)
	r.POST("/request/id/:id/getperm", h.grantReadAccess)
	r.GET("/request/targeted", h.targetedRequests)
	r.GET("/request/created", h.createdRequests)

	r.GET("/user/search/:query", h.searchUsers)

	return r
}

type handlers struct {
	store *Store
}

// fail renders an error in the groups service wire format: domain refusals
// become a 500 with the JSON envelope, anything else a 500 text/plain body.
func fail(c *gin.Context, err error) {
	var f *Fault
	if errors.As(err, &f) {
		c.JSON(http.StatusInternalServerError, apperr.ErrorEnvelope{
			Error: apperr.ErrorInfo{
				HTTPCode:   http.StatusInternalServerError,
				HTTPStatus: http.StatusText(http.StatusInternalServerError),
				AppCode:    f.Code,
				AppError:   apperr.Name(f.Code),
				Message:    f.Message,
				CallID:     uuid.NewString(),
				Time:       time.Now().UnixMilli(),
			},
		})
		return
	}
	c.String(http.StatusInternalServerError, err.Error())
}

func (h *handlers) info(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Info())
}

func (h *handlers) listGroups(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Groups())
}

func (h *handlers) getGroup(c *gin.Context) {
	group := h.store.Group(c.Param("id"))
	if group == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *handlers) groupExists(c *gin.Context) {
	c.JSON(http.StatusOK, entity.GroupExists{Exists: h.store.GroupExists(c.Param("id"))})
}

type groupBody struct {
	Name        string             `json:"name"`
	Custom      entity.GroupCustom `json:"custom"`
	Description string             `json:"description"`
}

func (h *handlers) createGroup(c *gin.Context) {
	var body groupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, fault(apperr.CodeIllegalParameter, "malformed group payload"))
		return
	}

	group, err := h.store.CreateGroup(c.Param("id"), body.Name, body.Description, body.Custom.GravatarHash, middleware.Username(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *handlers) updateGroup(c *gin.Context) {
	var body groupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, fault(apperr.CodeIllegalParameter, "malformed group payload"))
		return
	}

	if err := h.store.UpdateGroup(c.Param("id"), body.Name, body.Description, body.Custom.GravatarHash, middleware.Username(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listFilter(c *gin.Context) ListFilter {
	filter := ListFilter{
		IncludeClosed: c.Query("closed") != "",
		Descending:    c.Query("order") == "desc",
	}
	if raw := c.Query("excludeupto"); raw != "" {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ExcludeUpTo = millis
		}
	}
	return filter
}

func (h *handlers) groupRequests(c *gin.Context) {
	requests, err := h.store.GroupRequests(c.Param("id"), middleware.Username(c), listFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *handlers) requestMembership(c *gin.Context) {
	request, err := h.store.RequestMembership(c.Param("id"), middleware.Username(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) addOrRequestWorkspace(c *gin.Context) {
	outcome, err := h.store.AddOrRequestWorkspace(c.Param("id"), middleware.Username(c), c.Param("wsid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *handlers) deleteResource(c *gin.Context) {
	if err := h.store.DeleteResource(c.Param("id"), middleware.Username(c), c.Param("type"), c.Param("rid")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) inviteUser(c *gin.Context) {
	request, err := h.store.InviteUser(c.Param("id"), middleware.Username(c), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) removeMember(c *gin.Context) {
	if err := h.store.RemoveMember(c.Param("id"), middleware.Username(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) promoteMember(c *gin.Context) {
	if err := h.store.PromoteMember(c.Param("id"), middleware.Username(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) demoteAdmin(c *gin.Context) {
	if err := h.store.DemoteAdmin(c.Param("id"), middleware.Username(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) getRequest(c *gin.Context) {
	request, err := h.store.Request(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) cancelRequest(c *gin.Context) {
	request, err := h.store.CancelRequest(c.Param("id"), middleware.Username(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) acceptRequest(c *gin.Context) {
	request, err := h.store.AcceptRequest(c.Param("id"), middleware.Username(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) denyRequest(c *gin.Context) {
	request, err := h.store.DenyRequest(c.Param("id"), middleware.Username(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) targetedRequests(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.TargetedRequests(middleware.Username(c), listFilter(c)))
}

func (h *handlers) createdRequests(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.CreatedRequests(middleware.Username(c), listFilter(c)))
}

func (h *handlers) grantReadAccess(c *gin.Context) {
	// The fixture tracks no external permissions; acknowledge with a void
	// success after confirming the request exists.
	if _, err := h.store.Request(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) searchUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.SearchUsers(c.Param("query")))
}
