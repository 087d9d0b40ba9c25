package http

import "github.com/labstack/echo/v4"

// Handler registers a related group of routes on the server. Both the
// board view API and the replay feed implement it.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
