package handler

import (
	"net/http"

	"tracker/internal/delivery/api/response"
	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/usecase"

	"github.com/labstack/echo/v4"
)

// crudRoutes serves the five owner-scoped routes of one resource.
// Req is the wire body, In the usecase input, T the entity and R its view.
type crudRoutes[T any, In any, Req any, R any] struct {
	subject string
	uc      usecase.CrudUsecase[T, In]
	input   func(*Req) *In
	view    func(*T) *R
}

func (r *crudRoutes[T, In, Req, R]) List(c echo.Context) error {
	items, err := r.uc.List(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapAll(items, r.view))
}

func (r *crudRoutes[T, In, Req, R]) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c, r.subject)
	}
	item, err := r.uc.Get(c.Request().Context(), deliverycontext.GetCaller(c), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, r.view(item))
}

func (r *crudRoutes[T, In, Req, R]) Create(c echo.Context) error {
	req := new(Req)
	if ok, err := decode(c, req); !ok {
		return err
	}
	item, err := r.uc.Create(c.Request().Context(), deliverycontext.GetCaller(c), r.input(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, r.view(item))
}

// Update serves both PUT and PATCH; absent fields keep their stored value.
func (r *crudRoutes[T, In, Req, R]) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c, r.subject)
	}
	req := new(Req)
	if ok, err := decode(c, req); !ok {
		return err
	}
	item, err := r.uc.Update(c.Request().Context(), deliverycontext.GetCaller(c), id, r.input(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, r.view(item))
}

func (r *crudRoutes[T, In, Req, R]) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c, r.subject)
	}
	if err := r.uc.Delete(c.Request().Context(), deliverycontext.GetCaller(c), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// mount adds the routes under g. List uses optional auth, the rest require it.
// A non-nil list replaces the plain List handler.
func (r *crudRoutes[T, In, Req, R]) mount(g *echo.Group, optional, required echo.MiddlewareFunc, list echo.HandlerFunc) {
	if list == nil {
		list = r.List
	}
	g.GET("", list, optional)
	g.POST("", r.Create, required)
	g.GET("/:id", r.Get, required)
	g.PUT("/:id", r.Update, required)
	g.PATCH("/:id", r.Update, required)
	g.DELETE("/:id", r.Delete, required)
}
