package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/totegamma/catgraph"
	"github.com/totegamma/catgraph/internal/domain"
)

type staticAddress string

func (a staticAddress) IdentityServiceURL() string { return string(a) }

type mockGateway struct {
	users map[string]catgraph.User

	calls     []string
	lastBase  string
	lastToken string
	lastID    string
	lastInput catgraph.UserInput
	loginErr  error
}

func newMockGateway() *mockGateway {
	return &mockGateway{users: map[string]catgraph.User{
		"u1": {InternalID: "u1", UserName: "one", Email: "one@example.com", Role: "user"},
		"u2": {InternalID: "u2", UserName: "two", Email: "two@example.com", Role: "user"},
	}}
}

func (m *mockGateway) record(call, base string) {
	m.calls = append(m.calls, call)
	m.lastBase = base
}

func (m *mockGateway) ListUsers(ctx context.Context, base string) ([]catgraph.User, error) {
	m.record("list", base)
	var out []catgraph.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockGateway) GetUser(ctx context.Context, base, id string) (catgraph.User, error) {
	m.record("get", base)
	m.lastID = id
	u, ok := m.users[id]
	if !ok {
		return catgraph.User{}, domain.UpstreamError{StatusCode: 404, Message: "User not found"}
	}
	return u, nil
}

func (m *mockGateway) Login(ctx context.Context, base string, creds catgraph.Credentials) (catgraph.LoginResponse, error) {
	m.record("login", base)
	if m.loginErr != nil {
		return catgraph.LoginResponse{}, m.loginErr
	}
	return catgraph.LoginResponse{
		Token:   "jwt",
		Message: "Login successful",
		User:    m.users["u1"],
	}, nil
}

func (m *mockGateway) Register(ctx context.Context, base string, input catgraph.UserInput) (catgraph.UserResponse, error) {
	m.record("register", base)
	m.lastInput = input
	return catgraph.UserResponse{Message: "user created", Data: catgraph.User{InternalID: "u3", UserName: *input.UserName}}, nil
}

func (m *mockGateway) UpdateSelf(ctx context.Context, base, token string, input catgraph.UserInput) (catgraph.UserResponse, error) {
	m.record("updateSelf", base)
	m.lastToken = token
	m.lastInput = input
	return catgraph.UserResponse{Message: "user updated", Data: catgraph.User{InternalID: "u1", UserName: *input.UserName}}, nil
}

func (m *mockGateway) DeleteSelf(ctx context.Context, base, token string) (catgraph.MessageResponse, error) {
	m.record("deleteSelf", base)
	m.lastToken = token
	return catgraph.MessageResponse{Message: "user deleted"}, nil
}

func (m *mockGateway) UpdateUser(ctx context.Context, base, token, id string, input catgraph.UserInput) (catgraph.UserResponse, error) {
	m.record("updateUser", base)
	m.lastToken = token
	m.lastID = id
	return catgraph.UserResponse{Message: "user updated", Data: catgraph.User{InternalID: id}}, nil
}

func (m *mockGateway) DeleteUser(ctx context.Context, base, token, id string) (catgraph.MessageResponse, error) {
	m.record("deleteUser", base)
	m.lastToken = token
	m.lastID = id
	return catgraph.MessageResponse{Message: "user deleted"}, nil
}

func strptr(s string) *string { return &s }

func TestUserConfigCheckedPerCall(t *testing.T) {
	gw := newMockGateway()
	addr := &mutableAddress{}
	uc := NewUserUsecase(gw, addr)

	if _, err := uc.List(context.Background()); !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected config error got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway must not be called without address")
	}

	addr.url = "http://auth.local"
	if _, err := uc.List(context.Background()); err != nil {
		t.Fatalf("expected success after reconfiguration got %v", err)
	}
	if gw.lastBase != "http://auth.local" {
		t.Fatalf("expected base url to be forwarded got %s", gw.lastBase)
	}
}

type mutableAddress struct{ url string }

func (a *mutableAddress) IdentityServiceURL() string { return a.url }

func TestUserGetNormalizesID(t *testing.T) {
	uc := NewUserUsecase(newMockGateway(), staticAddress("http://auth"))
	actor, err := uc.Get(context.Background(), "u2")
	if err != nil {
		t.Fatal(err)
	}
	if actor.ID != "u2" {
		t.Fatalf("expected id aliased from _id got %q", actor.ID)
	}
}

func TestUserLogin(t *testing.T) {
	uc := NewUserUsecase(newMockGateway(), staticAddress("http://auth"))
	res, err := uc.Login(context.Background(), catgraph.Credentials{Username: "one@example.com", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Token == "" || res.User.ID != "u1" {
		t.Fatalf("unexpected login result %+v", res)
	}
}

func TestUserLoginFailurePassesThrough(t *testing.T) {
	gw := newMockGateway()
	gw.loginErr = domain.UpstreamError{StatusCode: 403, Message: "Incorrect username/password"}
	uc := NewUserUsecase(gw, staticAddress("http://auth"))
	_, err := uc.Login(context.Background(), catgraph.Credentials{})
	if err == nil || err.Error() != "Incorrect username/password" {
		t.Fatalf("expected upstream message got %v", err)
	}
}

func TestUserRegister(t *testing.T) {
	uc := NewUserUsecase(newMockGateway(), staticAddress("http://auth"))
	res, err := uc.Register(context.Background(), catgraph.UserInput{UserName: strptr("three")})
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != "u3" || res.Message == "" {
		t.Fatalf("unexpected register result %+v", res)
	}
}

func TestUserUpdateSelfUsesToken(t *testing.T) {
	gw := newMockGateway()
	uc := NewUserUsecase(gw, staticAddress("http://auth"))

	if _, err := uc.UpdateSelf(context.Background(), catgraph.UserInput{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated got %v", err)
	}

	res, err := uc.UpdateSelf(as("u1", domain.RoleUser), catgraph.UserInput{UserName: strptr("renamed")})
	if err != nil {
		t.Fatal(err)
	}
	if gw.lastToken != "token-u1" {
		t.Fatalf("expected requester token got %s", gw.lastToken)
	}
	if res.User.ID != "u1" || res.User.UserName != "renamed" {
		t.Fatalf("unexpected update result %+v", res)
	}
}

func TestUserDeleteSelfReturnsRequester(t *testing.T) {
	gw := newMockGateway()
	uc := NewUserUsecase(gw, staticAddress("http://auth"))

	if _, err := uc.DeleteSelf(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated got %v", err)
	}

	res, err := uc.DeleteSelf(as("u1", domain.RoleUser))
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != "u1" || res.Message != "user deleted" {
		t.Fatalf("unexpected delete result %+v", res)
	}
}

func TestUserAdminOperations(t *testing.T) {
	gw := newMockGateway()
	uc := NewUserUsecase(gw, staticAddress("http://auth"))

	if _, err := uc.UpdateAsAdmin(context.Background(), "u2", catgraph.UserInput{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated got %v", err)
	}
	if _, err := uc.UpdateAsAdmin(as("u1", domain.RoleUser), "u2", catgraph.UserInput{}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied got %v", err)
	}
	if _, err := uc.DeleteAsAdmin(as("u1", domain.RoleUser), "u2"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway must not be called for denied requests, got %v", gw.calls)
	}

	res, err := uc.UpdateAsAdmin(as("a1", domain.RoleAdmin), "u2", catgraph.UserInput{Email: strptr("new@example.com")})
	if err != nil {
		t.Fatal(err)
	}
	if gw.lastID != "u2" || gw.lastToken != "token-a1" || res.User.ID != "u2" {
		t.Fatalf("unexpected admin update: id=%s token=%s res=%+v", gw.lastID, gw.lastToken, res)
	}

	res, err = uc.DeleteAsAdmin(as("a1", domain.RoleAdmin), "u2")
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != "u2" || res.User.Email != "two@example.com" {
		t.Fatalf("expected fetched target in result got %+v", res)
	}
	if gw.calls[len(gw.calls)-2] != "get" || gw.calls[len(gw.calls)-1] != "deleteUser" {
		t.Fatalf("expected get then delete got %v", gw.calls)
	}
}

func TestUserCheckToken(t *testing.T) {
	uc := NewUserUsecase(newMockGateway(), staticAddress(""))
	if _, err := uc.CheckToken(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated got %v", err)
	}
	res, err := uc.CheckToken(as("u1", domain.RoleUser))
	if err != nil {
		t.Fatal(err)
	}
	if res.User.ID != "u1" || res.Message != "Token is valid" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestUserResolveOwnerMemo(t *testing.T) {
	gw := newMockGateway()
	uc := NewUserUsecase(gw, staticAddress("http://auth"))
	ctx := domain.WithOwnerMemo(context.Background())

	for i := 0; i < 3; i++ {
		actor, err := uc.ResolveOwner(ctx, "u2")
		if err != nil {
			t.Fatal(err)
		}
		if actor.ID != "u2" {
			t.Fatalf("unexpected owner %+v", actor)
		}
	}
	if len(gw.calls) != 1 {
		t.Fatalf("expected a single upstream call per request got %d", len(gw.calls))
	}

	// A new request starts with an empty memo.
	if _, err := uc.ResolveOwner(domain.WithOwnerMemo(context.Background()), "u2"); err != nil {
		t.Fatal(err)
	}
	if len(gw.calls) != 2 {
		t.Fatalf("expected a fresh upstream call for a new request got %d", len(gw.calls))
	}
}
