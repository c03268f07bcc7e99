package gcs

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"cloud.google.com/go/storage"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memoryStore struct {
	objects      map[string]string
	writeErr     error
	deleteErr    error
	contentTypes map[string]string
	deleted      []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]string{}, contentTypes: map[string]string{}}
}

func (m *memoryStore) Write(ctx context.Context, object, contentType string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.objects[object] = string(data)
	m.contentTypes[object] = contentType
	return nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memoryStore) Delete(ctx context.Context, object string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.objects[object]; !ok {
		return storage.ErrObjectNotExist
	}
	delete(m.objects, object)
	m.deleted = append(m.deleted, object)
	return nil
}

func (m *memoryStore) Attrs(ctx context.Context) error { return nil }
func (m *memoryStore) Close() error                    { return nil }

func newTestClient(store objectStore) *Client {
	return newClient(store, config.GCSConfig{BucketName: "nowaround", PublicBaseURL: "https://cdn.test/"}, nil)
}

func TestUploadPictureWritesObjectAndReturnsURL(t *testing.T) {
	store := newMemoryStore()
	client := newTestClient(store)

	url, err := client.UploadPicture(context.Background(), pngHeader, enums.RoleEstablishment, "auth0|x", "profile")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://cdn.test/nowaround/establishment/auth0%7Cx/profile" {
		t.Fatalf("unexpected url %q", url)
	}
	if store.contentTypes["establishment/auth0|x/profile"] != "image/png" {
		t.Fatalf("unexpected content type %q", store.contentTypes["establishment/auth0|x/profile"])
	}
}

func TestUploadPictureRejectsNonImages(t *testing.T) {
	client := newTestClient(newMemoryStore())
	_, err := client.UploadPicture(context.Background(), []byte("hello world"), enums.RoleEstablishment, "owner", "profile")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.UploadPicture(context.Background(), nil, enums.RoleEstablishment, "owner", "profile"); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty data, got %v", err)
	}
}

func TestUploadPictureWrapsStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.writeErr = errors.New("quota")
	client := newTestClient(store)
	_, err := client.UploadPicture(context.Background(), pngHeader, enums.RoleEstablishment, "owner", "background")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDeleteWithoutContextRemovesEverythingUnderOwner(t *testing.T) {
	store := newMemoryStore()
	store.objects["establishment/owner-1/profile"] = "a"
	store.objects["establishment/owner-1/menu/m1/i1"] = "b"
	store.objects["establishment/owner-10/profile"] = "c"
	store.objects["user/owner-1/profile"] = "d"
	client := newTestClient(store)

	if err := client.Delete(context.Background(), enums.RoleEstablishment, "owner-1", ""); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.deleted) != 2 {
		t.Fatalf("expected two deletions, got %v", store.deleted)
	}
	if _, ok := store.objects["establishment/owner-10/profile"]; !ok {
		t.Fatal("sibling owner prefix must survive")
	}
	if _, ok := store.objects["user/owner-1/profile"]; !ok {
		t.Fatal("other role must survive")
	}
}

func TestDeleteToleratesMissingObjects(t *testing.T) {
	client := newTestClient(newMemoryStore())
	if err := client.Delete(context.Background(), enums.RoleEstablishment, "owner-1", "profile"); err != nil {
		t.Fatalf("missing object should be ignored, got %v", err)
	}
	if err := client.Delete(context.Background(), enums.RoleEstablishment, "owner-1", ""); err != nil {
		t.Fatalf("empty owner should be ignored, got %v", err)
	}
}

func TestDeleteSurfacesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.objects["establishment/owner-1/profile"] = "a"
	store.deleteErr = errors.New("permission denied")
	client := newTestClient(store)
	if err := client.Delete(context.Background(), enums.RoleEstablishment, "owner-1", "profile"); pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
