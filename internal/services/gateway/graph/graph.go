// Package graph serves the gateway's single-endpoint query surface.
// Every resolver forwards one call to a backend entity service.
package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	"google.golang.org/grpc/status"
)

// Handler resolves graph queries against the backend entity services.
type Handler struct {
	schema graphql.Schema
}

type resolvers struct {
	users    userv1.UserServiceClient
	products productv1.ProductServiceClient
}

// NewHandler builds the schema over the backend clients.
func NewHandler(users userv1.UserServiceClient, products productv1.ProductServiceClient) (*Handler, error) {
	r := &resolvers{users: users, products: products}
	schema, err := r.buildSchema()
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return &Handler{schema: schema}, nil
}

// Register mounts the query endpoint. POST carries the standard
// {query, operationName, variables} body; GET accepts a query parameter
// for hand-typed exploration.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/graphql", h.serve)
	e.GET("/graphql", h.serve)
}

type graphRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) serve(c echo.Context) error {
	var req graphRequest
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
	} else if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request body"})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.Request().Context(),
	})
	return c.JSON(http.StatusOK, result)
}

// backendError strips transport framing so clients see only the
// backend's detail text, unchanged.
func backendError(err error) error {
	if st, ok := status.FromError(err); ok {
		return errors.New(st.Message())
	}
	return err
}

func argID(p graphql.ResolveParams) (int64, error) {
	raw, ok := p.Args["id"]
	if !ok {
		return 0, errors.New("id is required")
	}
	switch v := raw.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id %q", v)
		}
		return id, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("invalid id %v", raw)
	}
}

func argString(p graphql.ResolveParams, name string) (string, bool) {
	v, ok := p.Args[name].(string)
	return v, ok
}

func argFloat(p graphql.ResolveParams, name string) (float64, bool) {
	switch v := p.Args[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (r *resolvers) buildSchema() (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*userv1.User).GetId(), nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*userv1.User).GetUsername(), nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*userv1.User).GetEmail(), nil
				},
			},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*productv1.Product).GetId(), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*productv1.Product).GetName(), nil
				},
			},
			"price": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Float),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*productv1.Product).GetPrice(), nil
				},
			},
		},
	})

	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(userType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp, err := r.users.GetUsers(p.Context, &userv1.GetUsersRequest{})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetUsers(), nil
				},
			},
			"getUserById": &graphql.Field{
				Type: userType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p)
					if err != nil {
						return nil, err
					}
					resp, err := r.users.GetUser(p.Context, &userv1.GetUserRequest{UserId: id})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetUser(), nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(productType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp, err := r.products.GetProducts(p.Context, &productv1.GetProductsRequest{})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetProducts(), nil
				},
			},
			"getProductById": &graphql.Field{
				Type: productType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p)
					if err != nil {
						return nil, err
					}
					resp, err := r.products.GetProduct(p.Context, &productv1.GetProductRequest{ProductId: id})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetProduct(), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					username, _ := argString(p, "username")
					email, _ := argString(p, "email")
					resp, err := r.users.CreateUser(p.Context, &userv1.CreateUserRequest{
						Username: username,
						Email:    email,
					})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetUser(), nil
				},
			},
			"updateUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p)
					if err != nil {
						return nil, err
					}
					in := &userv1.UpdateUserRequest{UserId: id}
					if username, ok := argString(p, "username"); ok {
						in.Username = &username
					}
					if email, ok := argString(p, "email"); ok {
						in.Email = &email
					}
					resp, err := r.users.UpdateUser(p.Context, in)
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetUser(), nil
				},
			},
			"deleteUser": &graphql.Field{
				Type: graphql.String,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p)
					if err != nil {
						return nil, err
					}
					resp, err := r.users.DeleteUser(p.Context, &userv1.DeleteUserRequest{UserId: id})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetMessage(), nil
				},
			},
			"createProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"price": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := argString(p, "name")
					price, _ := argFloat(p, "price")
					resp, err := r.products.CreateProduct(p.Context, &productv1.CreateProductRequest{
						Name:  name,
						Price: price,
					})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetProduct(), nil
				},
			},
			"updateProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":  &graphql.ArgumentConfig{Type: graphql.String},
					"price": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p)
					if err != nil {
						return nil, err
					}
					in := &productv1.UpdateProductRequest{ProductId: id}
					if name, ok := argString(p, "name"); ok {
						in.Name = &name
					}
					if price, ok := argFloat(p, "price"); ok {
						in.Price = &price
					}
					resp, err := r.products.UpdateProduct(p.Context, in)
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetProduct(), nil
				},
			},
			"deleteProduct": &graphql.Field{
				Type: graphql.String,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p)
					if err != nil {
						return nil, err
					}
					resp, err := r.products.DeleteProduct(p.Context, &productv1.DeleteProductRequest{ProductId: id})
					if err != nil {
						return nil, backendError(err)
					}
					return resp.GetMessage(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
