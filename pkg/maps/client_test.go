package maps

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

func TestClientResolveCoordinatesRequest(t *testing.T) {
	respBody := `{"status":"OK","results":[{"formatted_address":"Jilemnického 9, 965 01 Žiar nad Hronom","geometry":{"location":{"lat":48.5863,"lng":18.8513}}}]}`

	var capturedPath string
	var capturedQuery map[string][]string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedPath = req.URL.Path
		capturedQuery = req.URL.Query()
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client, err := NewClient("test-key",
		WithBaseURL("http://maps.test/maps/api"),
		WithHTTPClient(&http.Client{Transport: rt}),
		WithLocale("sk", "sk"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	lat, lng, err := client.ResolveCoordinates(context.Background(), "Jilemnickeho 9", "965 01", "Žiar nad Hronom")
	if err != nil {
		t.Fatalf("resolve coordinates: %v", err)
	}
	if capturedPath != "/maps/api/geocode/json" {
		t.Fatalf("unexpected path %q", capturedPath)
	}
	if got := capturedQuery["address"]; len(got) != 1 || got[0] != "Jilemnickeho 9, 965 01, Žiar nad Hronom" {
		t.Fatalf("unexpected address param %v", got)
	}
	if got := capturedQuery["key"]; len(got) != 1 || got[0] != "test-key" {
		t.Fatalf("api key param missing: %v", got)
	}
	if got := capturedQuery["language"]; len(got) != 1 || got[0] != "sk" {
		t.Fatalf("language param missing: %v", got)
	}
	if lat != 48.5863 || lng != 18.8513 {
		t.Fatalf("unexpected coordinates %f,%f", lat, lng)
	}
}

func TestClientResolveAddressRequest(t *testing.T) {
	respBody := `{"status":"OK","results":[{"formatted_address":"Jilemnického 9, 965 01 Žiar nad Hronom, Slovakia","address_components":[` +
		`{"long_name":"9","short_name":"9","types":["street_number"]},` +
		`{"long_name":"Jilemnického","short_name":"Jilemnického","types":["route"]},` +
		`{"long_name":"Žiar nad Hronom","short_name":"Žiar nad Hronom","types":["locality","political"]}]}]}`

	var capturedLatLng string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedLatLng = req.URL.Query().Get("latlng")
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://maps.test/maps/api"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	address, city, err := client.ResolveAddress(context.Background(), 48.5863, 18.8513)
	if err != nil {
		t.Fatalf("resolve address: %v", err)
	}
	if capturedLatLng != "48.5863,18.8513" {
		t.Fatalf("unexpected latlng %q", capturedLatLng)
	}
	if address != "Jilemnického 9" {
		t.Fatalf("unexpected address %q", address)
	}
	if city != "Žiar nad Hronom" {
		t.Fatalf("unexpected city %q", city)
	}
}

func TestClientZeroResultsIsDependencyError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`), nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, _, err = client.ResolveCoordinates(context.Background(), "Nowhere 1", "000 00", "Atlantis")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestClientDeniedStatusIsDependencyError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`), nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, _, err = client.ResolveAddress(context.Background(), 1, 1)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "geocoding failed") {
		t.Fatalf("unexpected message %v", err)
	}
}

func TestClientHTTPFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `oops`), nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, _, err := client.ResolveCoordinates(context.Background(), "a", "b", "c"); pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestClientRejectsInvalidInput(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, _, err := client.ResolveCoordinates(context.Background(), " ", "", ""); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := client.ResolveAddress(context.Background(), 91, 0); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
