// Package service wraps each backend resource family in named operations.
// Every operation issues exactly one HTTP call and reports failures as a
// *model.APIError whose Message is safe to show to the user.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/me/bizdir/internal/apiclient"
	"github.com/me/bizdir/pkg/model"
)

// Backend is the request pipeline the services depend on.
// *apiclient.Client implements it.
type Backend interface {
	Get(ctx context.Context, op, path string, query url.Values) (*apiclient.Response, error)
	Post(ctx context.Context, op, path string, body any) (*apiclient.Response, error)
	Put(ctx context.Context, op, path string, body any) (*apiclient.Response, error)
	Patch(ctx context.Context, op, path string, body any) (*apiclient.Response, error)
	Delete(ctx context.Context, op, path string) (*apiclient.Response, error)
}

// Services bundles the three service modules over one backend.
type Services struct {
	Auth     *AuthService
	Business *BusinessService
	Content  *ContentService
}

// New creates all service modules over b.
func New(b Backend) *Services {
	return &Services{
		Auth:     NewAuthService(b),
		Business: NewBusinessService(b),
		Content:  NewContentService(b),
	}
}

// normalize turns any failure into an APIError. The backend's message wins;
// otherwise fallback is used. Transport causes stay reachable via Unwrap.
func normalize(op, fallback string, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &model.APIError{Op: op, Status: apiErr.Status, Message: msg, Err: apiErr.Err}
	}
	return &model.APIError{Op: op, Message: fallback, Err: err}
}

// malformed reports a 2xx reply whose payload could not be used.
func malformed(op, fallback string, cause error) error {
	return &model.APIError{Op: op, Message: fallback, Err: cause}
}

// segment escapes one path element (a place or content ID).
func segment(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}

// decodeList decodes the first array found at one of paths. "@this" names
// the whole body, for endpoints that reply with a bare array.
func decodeList[T any](resp *apiclient.Response, paths ...string) ([]T, error) {
	root := resp.JSON()
	for _, p := range paths {
		v := root.Get(p)
		if !v.IsArray() {
			continue
		}
		var out []T
		if err := json.Unmarshal([]byte(v.Raw), &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("no list at %s", strings.Join(paths, ", "))
}

// decodeObject decodes the first object found at one of paths.
func decodeObject[T any](resp *apiclient.Response, paths ...string) (*T, error) {
	root := resp.JSON()
	for _, p := range paths {
		v := root.Get(p)
		if !v.IsObject() {
			continue
		}
		var out T
		if err := json.Unmarshal([]byte(v.Raw), &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		return &out, nil
	}
	return nil, fmt.Errorf("no object at %s", strings.Join(paths, ", "))
}

// stringAt returns the first non-empty string found at one of paths.
func stringAt(resp *apiclient.Response, paths ...string) string {
	root := resp.JSON()
	for _, p := range paths {
		if v := root.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// Message returns the backend's success message, if it sent one.
func Message(resp *apiclient.Response) string {
	if resp == nil {
		return ""
	}
	return stringAt(resp, "message")
}
