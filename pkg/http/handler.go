package http

import "github.com/labstack/echo/v4"

// Handler defines HTTP route registration interface.
// Routes are registered on the /api group.
type Handler interface {
	RegisterRoutes(g *echo.Group)
}
