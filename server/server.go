package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Uranury/altimeter/altimeter"
)

// stateResponse is State plus the color as hex, which the page uses
// directly as its background.
type stateResponse struct {
	altimeter.State
	ColorHex string `json:"color_hex"`
	Accepted *bool  `json:"accepted,omitempty"`
}

func newStateResponse(s altimeter.State) stateResponse {
	return stateResponse{State: s, ColorHex: s.Color.Hex()}
}

type deltaRequest struct {
	Delta *float64 `json:"delta" binding:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// Server exposes the controller to browsers: a JSON API for the altitude
// commands and a websocket that streams every state change.
type Server struct {
	ctrl      *altimeter.Controller
	hub       *Hub
	staticDir string
}

// New wires the hub to the controller's change notifications.
func New(ctrl *altimeter.Controller, staticDir string) *Server {
	s := &Server{ctrl: ctrl, hub: NewHub(), staticDir: staticDir}
	ctrl.OnChange(func(st altimeter.State) {
		s.hub.Broadcast(newStateResponse(st))
	})
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if s.staticDir != "" {
		r.Static("/static", s.staticDir)
		r.GET("/", func(c *gin.Context) {
			c.File(s.staticDir + "/index.html")
		})
	}

	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.POST("/altitude/increase", s.command(s.ctrl.IncreaseAltitude))
	api.POST("/altitude/decrease", s.command(s.ctrl.DecreaseAltitude))
	api.POST("/delta", s.applyDelta)
	api.PUT("/mode", s.setMode)

	r.GET("/ws", s.handleWebSocket)

	return r
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.ctrl.Snapshot()))
}

func (s *Server) command(apply func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.respond(c, apply())
	}
}

func (s *Server) applyDelta(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respond(c, s.ctrl.ApplySimulatedDelta(*req.Delta))
}

func (s *Server) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := altimeter.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.ctrl.SetMode(mode)
	c.JSON(http.StatusOK, newStateResponse(s.ctrl.Snapshot()))
}

// respond reports whether the command was applied; a command ignored
// because of the current mode is still a 200 with accepted=false.
func (s *Server) respond(c *gin.Context, accepted bool) {
	resp := newStateResponse(s.ctrl.Snapshot())
	resp.Accepted = &accepted
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request, func() any {
		return newStateResponse(s.ctrl.Snapshot())
	})
}
