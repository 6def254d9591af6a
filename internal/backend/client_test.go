package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", 2*time.Second, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDoSendsJSONWithBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "cookie-tok", Path: "/"})
		writeJSON(w, 200, map[string]any{"access_token": "tok-1", "refresh_token": "ref-1", "token_type": "Bearer"})
	})
	mux.HandleFunc("POST /api/restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		var in model.CategoryInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		writeJSON(w, 201, model.Category{ID: "cat-42", RestaurantID: "R1", Name: in.Name})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := c.Login(ctx, model.Credentials{Email: "o@x.io", Password: "pw"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	var got model.Category
	if err := c.Do(ctx, http.MethodPost, "/restaurants/R1/categories", model.CategoryInput{Name: "Appetizers"}, &got); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.ID != "cat-42" || got.Name != "Appetizers" {
		t.Errorf("unexpected category %+v", got)
	}
	if tok := c.AccessToken(); tok != "tok-1" {
		t.Errorf("AccessToken = %q", tok)
	}
	c.SetTokens("", "")
	if tok := c.AccessToken(); tok != "cookie-tok" {
		t.Errorf("AccessToken cookie fallback = %q", tok)
	}
}

func TestRefreshAndRetryOnce(t *testing.T) {
	var refreshes, calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeJSON(w, 200, map[string]any{"access_token": "fresh"})
	})
	mux.HandleFunc("GET /api/restaurants/R1/zones", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, 401, map[string]any{"detail": "Token expired"})
			return
		}
		writeJSON(w, 200, []model.DeliveryZone{{ID: "zone-1", RestaurantID: "R1"}})
	})
	c, _ := newTestClient(t, mux)
	c.SetTokens("stale", "ref")

	var zones []model.DeliveryZone
	if err := c.Do(context.Background(), http.MethodGet, "/restaurants/R1/zones", nil, &zones); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(zones) != 1 || refreshes.Load() != 1 || calls.Load() != 2 {
		t.Errorf("zones=%d refreshes=%d calls=%d", len(zones), refreshes.Load(), calls.Load())
	}
}

func TestSecond401RequiresLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"access_token": "still-bad"})
	})
	mux.HandleFunc("GET /api/restaurants/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]any{"detail": "Not authenticated"})
	})
	c, _ := newTestClient(t, mux)
	var hooked atomic.Int32
	c.OnLoginRequired = func() { hooked.Add(1) }

	err := c.Do(context.Background(), http.MethodGet, "/restaurants/me", nil, nil)
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if hooked.Load() != 1 {
		t.Errorf("OnLoginRequired fired %d times", hooked.Load())
	}
	if Classify(err) != KindUnauthorized || Message(err, "") != MsgUnauthorized {
		t.Errorf("unexpected classification %v / %q", Classify(err), Message(err, ""))
	}
}

func TestFailedRefreshRequiresLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]any{"detail": "Invalid refresh token"})
	})
	mux.HandleFunc("GET /api/calls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]any{"detail": "expired"})
	})
	c, _ := newTestClient(t, mux)
	if err := c.Do(context.Background(), http.MethodGet, "/calls?restaurant_id=R1", nil, nil); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	var refreshes atomic.Int32
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		<-release
		writeJSON(w, 200, map[string]any{"access_token": "fresh"})
	})
	mux.HandleFunc("GET /api/restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, 401, map[string]any{"detail": "expired"})
			return
		}
		writeJSON(w, 200, []model.Category{})
	})
	c, _ := newTestClient(t, mux)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Do(context.Background(), http.MethodGet, "/restaurants/R1/categories", nil, nil)
		}()
	}
	for refreshes.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond) // let the other callers join the flight
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Do: %v", err)
		}
	}
	if n := refreshes.Load(); n > 2 {
		t.Errorf("expected the refresh to be shared, got %d", n)
	}
}

func TestUploadMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/restaurants/R1/menu-items/item-1/image", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			writeJSON(w, 400, map[string]any{"detail": "no file"})
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "dish.jpg" || string(data) != "jpegbytes" || hdr.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("unexpected part %q %q %q", hdr.Filename, data, hdr.Header.Get("Content-Type"))
		}
		writeJSON(w, 200, model.ImageUpload{ImageURL: "https://cdn/x.jpg"})
	})
	c, _ := newTestClient(t, mux)

	var got model.ImageUpload
	err := c.Upload(context.Background(), "/restaurants/R1/menu-items/item-1/image", "file", "dish.jpg", "image/jpeg", []byte("jpegbytes"), &got)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got.ImageURL != "https://cdn/x.jpg" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
}

func TestNetworkErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url+"/api", time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = c.Do(context.Background(), http.MethodGet, "/restaurants/me", nil, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T %v", err, err)
	}
	if !ShouldReport(err) || Message(err, "x") != MsgNetwork {
		t.Errorf("network error should be reported with the connectivity message")
	}
}
