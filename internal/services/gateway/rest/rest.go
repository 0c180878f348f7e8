// Package rest exposes the gateway's resource surface, one route per
// entity kind and CRUD verb, each a direct forward to a backend service.
package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Handler forwards resource requests to the backend entity services.
type Handler struct {
	users    userv1.UserServiceClient
	products productv1.ProductServiceClient
}

// NewHandler creates a resource handler over the backend clients.
func NewHandler(users userv1.UserServiceClient, products productv1.ProductServiceClient) *Handler {
	return &Handler{users: users, products: products}
}

// Register mounts the resource routes.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/users", h.createUser)
	e.GET("/users", h.listUsers)
	e.GET("/users/:id", h.getUser)
	e.PUT("/users/:id", h.updateUser)
	e.DELETE("/users/:id", h.deleteUser)

	e.POST("/products", h.createProduct)
	e.GET("/products", h.listProducts)
	e.GET("/products/:id", h.getProduct)
	e.PUT("/products/:id", h.updateProduct)
	e.DELETE("/products/:id", h.deleteProduct)
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type productPayload struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type messagePayload struct {
	Message string `json:"message"`
}

func userJSON(user *userv1.User) userPayload {
	return userPayload{ID: user.GetId(), Username: user.GetUsername(), Email: user.GetEmail()}
}

func productJSON(product *productv1.Product) productPayload {
	return productPayload{ID: product.GetId(), Name: product.GetName(), Price: product.GetPrice()}
}

// backendError maps a backend RPC failure onto a transport status,
// passing the detail message through unchanged.
func backendError(c echo.Context, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return c.JSON(http.StatusInternalServerError, messagePayload{Message: err.Error()})
	}
	code := http.StatusInternalServerError
	switch st.Code() {
	case codes.NotFound:
		code = http.StatusNotFound
	case codes.InvalidArgument:
		code = http.StatusBadRequest
	case codes.Unavailable, codes.DeadlineExceeded:
		code = http.StatusBadGateway
	}
	return c.JSON(code, messagePayload{Message: st.Message()})
}

// pathID parses the :id segment. On failure it writes the 400 response
// itself and reports false so the handler stops before any backend call.
func pathID(c echo.Context, kind string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, messagePayload{Message: "invalid " + kind + " id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) createUser(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messagePayload{Message: "invalid request body"})
	}
	resp, err := h.users.CreateUser(c.Request().Context(), &userv1.CreateUserRequest{
		Username: body.Username,
		Email:    body.Email,
	})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, struct {
		Message string      `json:"message"`
		User    userPayload `json:"user"`
	}{resp.GetMessage(), userJSON(resp.GetUser())})
}

func (h *Handler) listUsers(c echo.Context) error {
	resp, err := h.users.GetUsers(c.Request().Context(), &userv1.GetUsersRequest{})
	if err != nil {
		return backendError(c, err)
	}
	users := make([]userPayload, 0, len(resp.GetUsers()))
	for _, user := range resp.GetUsers() {
		users = append(users, userJSON(user))
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c echo.Context) error {
	id, ok := pathID(c, "user")
	if !ok {
		return nil
	}
	resp, err := h.users.GetUser(c.Request().Context(), &userv1.GetUserRequest{UserId: id})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, userJSON(resp.GetUser()))
}

func (h *Handler) updateUser(c echo.Context) error {
	id, ok := pathID(c, "user")
	if !ok {
		return nil
	}
	var body struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messagePayload{Message: "invalid request body"})
	}
	resp, err := h.users.UpdateUser(c.Request().Context(), &userv1.UpdateUserRequest{
		UserId:   id,
		Username: body.Username,
		Email:    body.Email,
	})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, userJSON(resp.GetUser()))
}

func (h *Handler) deleteUser(c echo.Context) error {
	id, ok := pathID(c, "user")
	if !ok {
		return nil
	}
	resp, err := h.users.DeleteUser(c.Request().Context(), &userv1.DeleteUserRequest{UserId: id})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, messagePayload{Message: resp.GetMessage()})
}

func (h *Handler) createProduct(c echo.Context) error {
	var body struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messagePayload{Message: "invalid request body"})
	}
	resp, err := h.products.CreateProduct(c.Request().Context(), &productv1.CreateProductRequest{
		Name:  body.Name,
		Price: body.Price,
	})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, struct {
		Message string         `json:"message"`
		Product productPayload `json:"product"`
	}{resp.GetMessage(), productJSON(resp.GetProduct())})
}

func (h *Handler) listProducts(c echo.Context) error {
	resp, err := h.products.GetProducts(c.Request().Context(), &productv1.GetProductsRequest{})
	if err != nil {
		return backendError(c, err)
	}
	products := make([]productPayload, 0, len(resp.GetProducts()))
	for _, product := range resp.GetProducts() {
		products = append(products, productJSON(product))
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c echo.Context) error {
	id, ok := pathID(c, "product")
	if !ok {
		return nil
	}
	resp, err := h.products.GetProduct(c.Request().Context(), &productv1.GetProductRequest{ProductId: id})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, productJSON(resp.GetProduct()))
}

func (h *Handler) updateProduct(c echo.Context) error {
	id, ok := pathID(c, "product")
	if !ok {
		return nil
	}
	var body struct {
		Name  *string  `json:"name"`
		Price *float64 `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messagePayload{Message: "invalid request body"})
	}
	resp, err := h.products.UpdateProduct(c.Request().Context(), &productv1.UpdateProductRequest{
		ProductId: id,
		Name:      body.Name,
		Price:     body.Price,
	})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, productJSON(resp.GetProduct()))
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id, ok := pathID(c, "product")
	if !ok {
		return nil
	}
	resp, err := h.products.DeleteProduct(c.Request().Context(), &productv1.DeleteProductRequest{ProductId: id})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, messagePayload{Message: resp.GetMessage()})
}
