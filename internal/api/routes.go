// Package api binds the session and check-in handlers onto one router so
// the application shell can treat the whole surface as a single handler.
package api

import (
	"github.com/julienschmidt/httprouter"

	checkinhandler "checkinapp/internal/checkins/handler"
	sessionhandler "checkinapp/internal/sessions/handler"
)

type Router struct {
	sessions *sessionhandler.SessionHandler
	checkIns *checkinhandler.CheckInHandler
}

func NewRouter(sessions *sessionhandler.SessionHandler, checkIns *checkinhandler.CheckInHandler) *Router {
	return &Router{
		sessions: sessions,
		checkIns: checkIns,
	}
}

func (r *Router) RegisterRoutes(router *httprouter.Router) {
	router.POST("/sessions", r.sessions.Create)
	router.GET("/sessions", r.sessions.GetAll)
	router.GET("/sessions/:id", r.sessions.GetByID)
	router.PATCH("/sessions/:id", r.sessions.Update)
	router.POST("/sessions/:id/close", r.sessions.Close)
	router.POST("/sessions/:id/cancel", r.sessions.Cancel)

	router.POST("/sessions/:id/checkins", r.checkIns.CheckIn)
	router.GET("/sessions/:id/checkins", r.checkIns.GetBySession)

	router.POST("/sessions/:id/registrations", r.checkIns.Register)
	router.GET("/sessions/:id/registrations", r.checkIns.GetRegistrations)
	router.POST("/sessions/:id/registrations/:regId/confirm", r.checkIns.ConfirmRegistration)
}
