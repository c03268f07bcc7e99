package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

type sampleBody struct {
	Name  string `json:"name" validate:"required,max=5"`
	Price string `json:"price_category" validate:"omitempty,price_category"`
	Owner struct {
		Email string `json:"email" validate:"required,email"`
	} `json:"owner"`
}

func newBodyRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest sampleBody
	err := DecodeJSONBody(newBodyRequest(`{"name":"Cafe","price_category":"Moderate","owner":{"email":"a@b.co"}}`), &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Name != "Cafe" || dest.Owner.Email != "a@b.co" {
		t.Fatalf("unexpected decode %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest sampleBody
	err := DecodeJSONBody(newBodyRequest(`{"name":"Cafe","extra":1,"owner":{"email":"a@b.co"}}`), &dest)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	var dest sampleBody
	err := DecodeJSONBody(newBodyRequest(`{"name":"Too long name","price_category":"cheap","owner":{"email":"nope"}}`), &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
	if details["name"] != "must be at most 5" {
		t.Fatalf("unexpected name message %q", details["name"])
	}
	if details["price_category"] != "must be a known price category" {
		t.Fatalf("unexpected price message %q", details["price_category"])
	}
	if details["owner.email"] != "must be a valid email" {
		t.Fatalf("unexpected email message %q", details["owner.email"])
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x&big=500", nil)
	if v, err := ParseQueryInt(r, "page", 0, 0, 100); err != nil || v != 3 {
		t.Fatalf("expected 3, got %d %v", v, err)
	}
	if v, err := ParseQueryInt(r, "missing", 7, 0, 100); err != nil || v != 7 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if _, err := ParseQueryInt(r, "bad", 0, 0, 100); err == nil {
		t.Fatalf("expected error for non numeric value")
	}
	if _, err := ParseQueryInt(r, "big", 0, 0, 100); err == nil {
		t.Fatalf("expected error for out of range value")
	}
}

func TestParseQueryFloat(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?lat=48.15&lng=200", nil)
	if v, err := ParseQueryFloat(r, "lat", -90, 90); err != nil || v != 48.15 {
		t.Fatalf("expected 48.15, got %v %v", v, err)
	}
	if _, err := ParseQueryFloat(r, "lng", -180, 180); err == nil {
		t.Fatalf("expected range error")
	}
	if _, err := ParseQueryFloat(r, "missing", -90, 90); err == nil {
		t.Fatalf("expected required error")
	}
}

func TestParseQueryFloatRejectsNonFiniteValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?nw_lat=NaN&se_lat=nan&nw_lng=Inf", nil)
	for _, key := range []string{"nw_lat", "se_lat"} {
		if _, err := ParseQueryFloat(r, key, -90, 90); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error for NaN, got %v", key, err)
		}
	}
	if _, err := ParseQueryFloat(r, "nw_lng", -180, 180); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for Inf, got %v", err)
	}
}

func TestParseQueryListAndString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?tags=WIFI,%20PETS&tags=TERRACE&name=%20%20", nil)
	tags := ParseQueryList(r, "tags")
	if len(tags) != 3 || tags[0] != "WIFI" || tags[1] != "PETS" || tags[2] != "TERRACE" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if ParseQueryString(r, "name") != nil {
		t.Fatalf("blank value should be nil")
	}
}

func TestParseUUIDParam(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("menuID", "not-a-uuid")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	if _, err := ParseUUIDParam(r, "menuID"); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
