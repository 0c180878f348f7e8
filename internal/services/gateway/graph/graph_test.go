package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeUserClient struct {
	userv1.UserServiceClient

	users  []*userv1.User
	nextID int64
}

func (f *fakeUserClient) CreateUser(ctx context.Context, in *userv1.CreateUserRequest, opts ...grpc.CallOption) (*userv1.CreateUserResponse, error) {
	f.nextID++
	user := &userv1.User{Id: f.nextID, Username: in.GetUsername(), Email: in.GetEmail()}
	f.users = append(f.users, user)
	return &userv1.CreateUserResponse{Message: "User created!", User: user}, nil
}

func (f *fakeUserClient) GetUsers(ctx context.Context, in *userv1.GetUsersRequest, opts ...grpc.CallOption) (*userv1.GetUsersResponse, error) {
	return &userv1.GetUsersResponse{Users: f.users}, nil
}

func (f *fakeUserClient) GetUser(ctx context.Context, in *userv1.GetUserRequest, opts ...grpc.CallOption) (*userv1.GetUserResponse, error) {
	for _, user := range f.users {
		if user.GetId() == in.GetUserId() {
			return &userv1.GetUserResponse{User: user}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "User not found")
}

func (f *fakeUserClient) UpdateUser(ctx context.Context, in *userv1.UpdateUserRequest, opts ...grpc.CallOption) (*userv1.UpdateUserResponse, error) {
	for _, user := range f.users {
		if user.GetId() != in.GetUserId() {
			continue
		}
		if in.Username != nil {
			user.Username = in.GetUsername()
		}
		if in.Email != nil {
			user.Email = in.GetEmail()
		}
		return &userv1.UpdateUserResponse{User: user}, nil
	}
	return nil, status.Error(codes.NotFound, "User not found")
}

func (f *fakeUserClient) DeleteUser(ctx context.Context, in *userv1.DeleteUserRequest, opts ...grpc.CallOption) (*userv1.DeleteUserResponse, error) {
	for i, user := range f.users {
		if user.GetId() == in.GetUserId() {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return &userv1.DeleteUserResponse{Message: "User deleted"}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "User not found")
}

type fakeProductClient struct {
	productv1.ProductServiceClient

	products []*productv1.Product
	nextID   int64
}

func (f *fakeProductClient) CreateProduct(ctx context.Context, in *productv1.CreateProductRequest, opts ...grpc.CallOption) (*productv1.CreateProductResponse, error) {
	f.nextID++
	product := &productv1.Product{Id: f.nextID, Name: in.GetName(), Price: in.GetPrice()}
	f.products = append(f.products, product)
	return &productv1.CreateProductResponse{Message: "Product created!", Product: product}, nil
}

func (f *fakeProductClient) GetProducts(ctx context.Context, in *productv1.GetProductsRequest, opts ...grpc.CallOption) (*productv1.GetProductsResponse, error) {
	return &productv1.GetProductsResponse{Products: f.products}, nil
}

func (f *fakeProductClient) GetProduct(ctx context.Context, in *productv1.GetProductRequest, opts ...grpc.CallOption) (*productv1.GetProductResponse, error) {
	for _, product := range f.products {
		if product.GetId() == in.GetProductId() {
			return &productv1.GetProductResponse{Product: product}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "Product not found")
}

func (f *fakeProductClient) UpdateProduct(ctx context.Context, in *productv1.UpdateProductRequest, opts ...grpc.CallOption) (*productv1.UpdateProductResponse, error) {
	for _, product := range f.products {
		if product.GetId() != in.GetProductId() {
			continue
		}
		if in.Name != nil {
			product.Name = in.GetName()
		}
		if in.Price != nil {
			product.Price = in.GetPrice()
		}
		return &productv1.UpdateProductResponse{Product: product}, nil
	}
	return nil, status.Error(codes.NotFound, "Product not found")
}

func (f *fakeProductClient) DeleteProduct(ctx context.Context, in *productv1.DeleteProductRequest, opts ...grpc.CallOption) (*productv1.DeleteProductResponse, error) {
	for i, product := range f.products {
		if product.GetId() == in.GetProductId() {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return &productv1.DeleteProductResponse{Message: "Product deleted"}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "Product not found")
}

type graphResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func query(t *testing.T, e *echo.Echo, q string) graphResult {
	t.Helper()

	body, err := json.Marshal(map[string]string{"query": q})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result graphResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return result
}

func newTestServer(t *testing.T) (*echo.Echo, *fakeUserClient, *fakeProductClient) {
	t.Helper()

	users := &fakeUserClient{}
	products := &fakeProductClient{}
	handler, err := NewHandler(users, products)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	e := echo.New()
	handler.Register(e)
	return e, users, products
}

func TestMutationCreateUser_ReturnsCreatedUser(t *testing.T) {
	e, _, _ := newTestServer(t)

	result := query(t, e, `mutation { createUser(username: "ana", email: "ana@example.com") { id username email } }`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(result.Data["createUser"], &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.ID != "1" || user.Username != "ana" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestQueryProducts_ListsAll(t *testing.T) {
	e, _, products := newTestServer(t)
	products.products = []*productv1.Product{
		{Id: 1, Name: "Pen", Price: 1.5},
		{Id: 2, Name: "Notebook", Price: 3},
	}

	result := query(t, e, `{ products { id name price } }`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}

	var list []struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(result.Data["products"], &list); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Pen" || list[1].Price != 3 {
		t.Fatalf("unexpected products: %+v", list)
	}
}

func TestQueryUnknownUser_SurfacesDetailText(t *testing.T) {
	e, _, _ := newTestServer(t)

	result := query(t, e, `{ getUserById(id: "42") { id } }`)
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v, want one", result.Errors)
	}
	if result.Errors[0].Message != "User not found" {
		t.Fatalf("message = %q, want %q", result.Errors[0].Message, "User not found")
	}
}

func TestMutationUpdateProduct_OmittedArgumentLeftUnchanged(t *testing.T) {
	e, _, products := newTestServer(t)
	products.products = []*productv1.Product{{Id: 1, Name: "Pen", Price: 1.5}}
	products.nextID = 1

	result := query(t, e, `mutation { updateProduct(id: "1", price: 2.5) { name price } }`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}

	var product struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(result.Data["updateProduct"], &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.Name != "Pen" || product.Price != 2.5 {
		t.Fatalf("unexpected product: %+v", product)
	}
}

func TestMutationDeleteUser_ReturnsMessage(t *testing.T) {
	e, users, _ := newTestServer(t)
	users.users = []*userv1.User{{Id: 1, Username: "ana", Email: "ana@example.com"}}
	users.nextID = 1

	result := query(t, e, `mutation { deleteUser(id: "1") }`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}

	var message string
	if err := json.Unmarshal(result.Data["deleteUser"], &message); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if message != "User deleted" {
		t.Fatalf("message = %q, want %q", message, "User deleted")
	}
}

func TestGetRequest_AcceptsQueryParameter(t *testing.T) {
	e, users, _ := newTestServer(t)
	users.users = []*userv1.User{{Id: 1, Username: "ana", Email: "ana@example.com"}}

	req := httptest.NewRequest(http.MethodGet, "/graphql?query="+
		"%7B%20users%20%7B%20username%20%7D%20%7D", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result graphResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}
}
