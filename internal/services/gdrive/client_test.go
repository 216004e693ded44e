package gdrive_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"fantamorto/internal/services"
	"fantamorto/internal/services/gdrive"
)

type fakeDrive struct {
	mu        sync.Mutex
	token     string
	files     map[string]string // name -> id
	mimeTypes map[string]string // id -> mimeType
	content   map[string]string // id -> body
	listCalls int
	refreshes int
	uploads   []string
}

func newFakeDrive(t *testing.T) (*fakeDrive, *httptest.Server) {
	t.Helper()
	drive := &fakeDrive{
		token:     "access",
		files:     map[string]string{"morti": "doc-1", "forse": "file-2"},
		mimeTypes: map[string]string{"doc-1": "application/vnd.google-apps.document", "file-2": "application/json"},
		content:   map[string]string{"doc-1": "\ufeff[\"Mario Rossi\"]", "file-2": "[]"},
	}
	server := httptest.NewServer(http.HandlerFunc(drive.handle))
	t.Cleanup(server.Close)
	return drive, server
}

func (d *fakeDrive) handle(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r.URL.Path == "/token" {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("refresh_token") != "refresh" || r.PostForm.Get("client_id") != "id" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		d.refreshes++
		d.token = "renewed"
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"renewed","token_type":"Bearer","expires_in":3600}`)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+d.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/drive/v3/files":
		d.listCalls++
		q := r.URL.Query().Get("q")
		for name, id := range d.files {
			if strings.Contains(q, "'"+name+"'") {
				_, _ = io.WriteString(w, `{"files":[{"id":"`+id+`","name":"`+name+`","mimeType":"`+d.mimeTypes[id]+`"}]}`)
				return
			}
		}
		_, _ = io.WriteString(w, `{"files":[]}`)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/export"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/drive/v3/files/"), "/export")
		if r.URL.Query().Get("mimeType") != "text/plain" {
			http.Error(w, "bad mime", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, d.content[id])
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/drive/v3/files/"):
		id := strings.TrimPrefix(r.URL.Path, "/drive/v3/files/")
		if r.URL.Query().Get("alt") != "media" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, d.content[id])
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/upload/drive/v3/files/"):
		id := strings.TrimPrefix(r.URL.Path, "/upload/drive/v3/files/")
		if r.URL.Query().Get("uploadType") != "media" {
			http.Error(w, "bad upload", http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		d.content[id] = string(body)
		d.uploads = append(d.uploads, id)
		_, _ = io.WriteString(w, `{"id":"`+id+`"}`)
	default:
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, server *httptest.Server, accessToken string) *gdrive.Client {
	t.Helper()
	client, err := gdrive.New(gdrive.Credentials{
		ClientID:     "id",
		ClientSecret: "secret",
		AccessToken:  accessToken,
		RefreshToken: "refresh",
		TokenURL:     server.URL + "/token",
	}, gdrive.WithBaseURL(server.URL), gdrive.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := gdrive.New(gdrive.Credentials{ClientID: "id", ClientSecret: "secret", AccessToken: "a"})
	if !errors.Is(err, services.ErrConfigurationMissing) {
		t.Fatalf("expected configuration missing error, got %v", err)
	}
}

func TestReadListExportsDocAndStripsBOM(t *testing.T) {
	_, server := newFakeDrive(t)
	client := newClient(t, server, "access")

	names, err := client.ReadList(context.Background(), "morti")
	if err != nil {
		t.Fatalf("ReadList returned error: %v", err)
	}
	if !slices.Equal(names, []string{"Mario Rossi"}) {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestReadListDownloadsPlainFiles(t *testing.T) {
	_, server := newFakeDrive(t)
	client := newClient(t, server, "access")

	names, err := client.ReadList(context.Background(), "forse")
	if err != nil {
		t.Fatalf("ReadList returned error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}
}

func TestMissingDocumentIsPersistenceFailure(t *testing.T) {
	_, server := newFakeDrive(t)
	client := newClient(t, server, "access")

	_, err := client.ReadList(context.Background(), "nope")
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestWriteListUploadsAndCachesFileID(t *testing.T) {
	drive, server := newFakeDrive(t)
	client := newClient(t, server, "access")
	ctx := context.Background()

	if _, err := client.ReadList(ctx, "morti"); err != nil {
		t.Fatalf("ReadList returned error: %v", err)
	}
	if err := client.WriteList(ctx, "morti", []string{"Mario Rossi", "Jane Doe"}); err != nil {
		t.Fatalf("WriteList returned error: %v", err)
	}

	drive.mu.Lock()
	defer drive.mu.Unlock()
	if drive.listCalls != 1 {
		t.Fatalf("expected file id to be cached, got %d list calls", drive.listCalls)
	}
	if got := drive.content["doc-1"]; got != `["Mario Rossi","Jane Doe"]` {
		t.Fatalf("unexpected uploaded content %q", got)
	}
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	drive, server := newFakeDrive(t)
	client := newClient(t, server, "stale")

	names, err := client.ReadList(context.Background(), "morti")
	if err != nil {
		t.Fatalf("ReadList returned error: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("unexpected names: %v", names)
	}
	drive.mu.Lock()
	defer drive.mu.Unlock()
	if drive.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", drive.refreshes)
	}
}
