// Package api exposes one service per admin backend resource.
//
// Every function is a request descriptor: it maps an operation onto a verb
// and path, hands it to the shared request.Client, and returns the result.
// Services hold no state, handle no errors and never short-circuit a call
// locally; an empty batch delete is still sent.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/leapstack-labs/goadmin/pkg/request"
)

// Prefix is prepended to every endpoint path.
const Prefix = "/api"

// Doer is the subset of request.Client the services depend on.
type Doer interface {
	Do(ctx context.Context, req *request.Request) (*request.Response, error)
	Decode(ctx context.Context, req *request.Request, out any) error
}

// API groups the resource services.
type API struct {
	Users         *Users
	Roles         *Roles
	Menus         *Menus
	OperationLogs *OperationLogs
	Base          *Base
}

// New builds all services on top of c.
func New(c Doer) *API {
	return &API{
		Users:         &Users{c: c},
		Roles:         &Roles{c: c},
		Menus:         &Menus{c: c},
		OperationLogs: &OperationLogs{c: c},
		Base:          &Base{c: c},
	}
}

func path(format string, args ...any) string {
	return Prefix + fmt.Sprintf(format, args...)
}

func get(p string, params url.Values) *request.Request {
	return &request.Request{Method: http.MethodGet, URL: p, Params: params}
}

func send(method, p string, body any) *request.Request {
	return &request.Request{Method: method, URL: p, Data: body}
}

// mutate runs a call whose only interesting result is the envelope.
func mutate(ctx context.Context, c Doer, req *request.Request) (*core.Envelope, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &core.Envelope{}, nil
	}
	env := resp.Envelope
	return &env, nil
}

// decode runs a call and unmarshals its data into a fresh T.
func decode[T any](ctx context.Context, c Doer, req *request.Request) (*T, error) {
	out := new(T)
	if err := c.Decode(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
