package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/notify"
	"github.com/iliyamo/restaurant-dashboard/internal/session"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newDashboard(t *testing.T, mux *http.ServeMux) (*Dashboard, *backend.Client, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client, err := backend.New(srv.URL, 5*time.Second, quiet)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	rec := &notify.Recorder{}
	return NewDashboard(Deps{Transport: client, Sink: rec, Log: quiet}), client, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func settle(t *testing.T, fn func(context.Context, string) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx, "R1"); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func TestCategoryCreateReconciles(t *testing.T) {
	var mu sync.Mutex
	var cats []model.Category
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, cats)
	})
	mux.HandleFunc("POST /restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		var in model.CategoryInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		c := model.Category{ID: "cat-42", RestaurantID: "R1", Name: in.Name, DisplayOrder: in.DisplayOrder}
		mu.Lock()
		cats = append(cats, c)
		mu.Unlock()
		writeJSON(w, http.StatusCreated, c)
	})
	d, _, rec := newDashboard(t, mux)
	ctx := context.Background()

	if es, err := d.Categories.List(ctx, "R1"); err != nil || len(es) != 0 {
		t.Fatalf("initial list = %v, %v", es, err)
	}
	got, err := d.Categories.Create(ctx, "R1", model.CategoryInput{Name: "Appetizers"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "cat-42" {
		t.Errorf("expected server id cat-42, got %q", got.ID)
	}
	settle(t, d.Categories.x.Collection().Settle)

	es, err := d.Categories.List(ctx, "R1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(es) != 1 || es[0].Pending() || es[0].Value.ID != "cat-42" {
		t.Errorf("unexpected entries %+v", es)
	}
	calls := rec.Calls()
	if len(calls) != 1 || calls[0].Severity != notify.Success || calls[0].Message != "Category created" {
		t.Errorf("expected one success notification, got %+v", calls)
	}
}

func TestCreateRejectsBlankNameLocally(t *testing.T) {
	posts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Category{})
	})
	mux.HandleFunc("POST /restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		posts++
		writeJSON(w, http.StatusCreated, model.Category{})
	})
	d, _, rec := newDashboard(t, mux)
	ctx := context.Background()
	if _, err := d.Categories.List(ctx, "R1"); err != nil {
		t.Fatalf("List: %v", err)
	}

	_, err := d.Categories.Create(ctx, "R1", model.CategoryInput{Name: "  "})
	if backend.Classify(err) != backend.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	settle(t, d.Categories.x.Collection().Settle)
	if posts != 0 {
		t.Errorf("blank name reached the backend %d times", posts)
	}
	last, _ := rec.Last()
	if last.Message != "name: is required" || last.Severity != notify.Error {
		t.Errorf("unexpected notification %+v", last)
	}
	if es, _ := d.Categories.List(ctx, "R1"); len(es) != 0 {
		t.Errorf("placeholder not rolled back: %+v", es)
	}
}

func TestDeleteOfVanishedEntitySucceeds(t *testing.T) {
	var mu sync.Mutex
	mods := []model.Modifier{{ID: "mod-1", RestaurantID: "R1", Name: "Extra Cheese"}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/modifiers", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, mods)
	})
	mux.HandleFunc("DELETE /restaurants/R1/modifiers/mod-1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		mods = nil
		mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Modifier not found"})
	})
	d, _, rec := newDashboard(t, mux)
	ctx := context.Background()
	if _, err := d.Modifiers.List(ctx, "R1"); err != nil {
		t.Fatalf("List: %v", err)
	}

	if err := d.Modifiers.Delete(ctx, "R1", "mod-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	settle(t, d.Modifiers.x.Collection().Settle)
	if es, _ := d.Modifiers.List(ctx, "R1"); len(es) != 0 {
		t.Errorf("expected modifier gone, got %+v", es)
	}
	if last, _ := rec.Last(); last.Severity != notify.Success {
		t.Errorf("expected success, got %+v", last)
	}
}

func TestSetBoundarySavesAndReconciles(t *testing.T) {
	var mu sync.Mutex
	zone := model.DeliveryZone{ID: "z1", RestaurantID: "R1", ZoneName: "Downtown", DeliveryFee: 2.5}
	var method string
	var body map[string]json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/zones", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, []model.DeliveryZone{zone})
	})
	mux.HandleFunc("/restaurants/R1/zones/z1/boundary", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
			return
		}
		var g model.GeoPolygon
		_ = json.Unmarshal(body["boundary"], &g)
		zone.Boundary = &g
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "boundary": map[string]any{"type": "Feature", "geometry": g}})
	})
	mux.HandleFunc("GET /restaurants/R1/zones/z1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		// the zone record itself carries no geometry
		z := zone
		z.Boundary = nil
		writeJSON(w, http.StatusOK, z)
	})
	d, _, rec := newDashboard(t, mux)
	ctx := context.Background()
	if _, err := d.Zones.List(ctx, "R1"); err != nil {
		t.Fatalf("List: %v", err)
	}

	square := model.NewPolygon([2]float64{13.4, 52.5}, [2]float64{13.5, 52.5}, [2]float64{13.5, 52.6}, [2]float64{13.4, 52.6})
	got, err := d.Zones.SetBoundary(ctx, "R1", "z1", square)
	if err != nil {
		t.Fatalf("SetBoundary: %v", err)
	}
	mu.Lock()
	if method != http.MethodPost {
		t.Errorf("expected POST, got %s", method)
	}
	if _, ok := body["boundary"]; !ok {
		t.Errorf("request body lacks the boundary key: %v", body)
	}
	mu.Unlock()
	if got.ID != "z1" || got.RestaurantID != "R1" || got.ZoneName != "Downtown" || got.Boundary == nil || got.Boundary.Type != "Polygon" {
		t.Errorf("unexpected reconciled zone %+v", got)
	}

	es, _ := d.Zones.x.Collection().Peek("R1")
	if len(es) != 1 || es[0].Pending() || es[0].Value.Boundary == nil {
		t.Errorf("expected confirmed zone with boundary in cache, got %+v", es)
	}
	calls := rec.Calls()
	if len(calls) != 1 || calls[0].Severity != notify.Success || calls[0].Message != "Delivery area saved" {
		t.Errorf("expected one success notification, got %+v", calls)
	}

	settle(t, d.Zones.x.Collection().Settle)
	g, err := d.Zones.Boundary(ctx, "R1", "z1")
	if err != nil || g == nil || len(g.Coordinates[0]) != 5 {
		t.Errorf("Boundary = %+v, %v", g, err)
	}
}

func TestHoursReplaceSortsAndValidates(t *testing.T) {
	var mu sync.Mutex
	var stored []model.OperatingHour
	puts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/hours", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, stored)
	})
	mux.HandleFunc("PUT /restaurants/R1/hours", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Hours []model.HourInput `json:"hours"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		defer mu.Unlock()
		puts++
		stored = nil
		for i, h := range body.Hours {
			stored = append(stored, model.OperatingHour{
				ID: "h" + string(rune('0'+i)), RestaurantID: "R1",
				DayOfWeek: h.DayOfWeek, OpenTime: h.OpenTime, CloseTime: h.CloseTime, IsClosed: h.IsClosed,
			})
		}
		writeJSON(w, http.StatusOK, stored)
	})
	d, _, rec := newDashboard(t, mux)
	ctx := context.Background()

	got, err := d.Hours.Replace(ctx, "R1", []model.HourInput{
		{DayOfWeek: "sun", OpenTime: "10:00", CloseTime: "14:00"},
		{DayOfWeek: "Monday", OpenTime: "9:00", CloseTime: "17:00"},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(got) != 2 || got[0].DayOfWeek != "Monday" || got[1].DayOfWeek != "Sunday" {
		t.Errorf("expected Monday first, got %+v", got)
	}
	if got[0].OpenTime != "09:00:00" {
		t.Errorf("expected normalized open time, got %q", got[0].OpenTime)
	}
	settle(t, d.Hours.x.Collection().Settle)

	_, err = d.Hours.Replace(ctx, "R1", []model.HourInput{{DayOfWeek: "Funday", OpenTime: "09:00", CloseTime: "10:00"}})
	if backend.Classify(err) != backend.KindValidation || !errors.Is(err, model.ErrInvalidHours) {
		t.Fatalf("expected invalid hours, got %v", err)
	}
	settle(t, d.Hours.x.Collection().Settle)
	if puts != 1 {
		t.Errorf("invalid week reached the backend")
	}
	es, _ := d.Hours.List(ctx, "R1")
	if len(es) != 2 || es[0].Value.DayOfWeek != "Monday" {
		t.Errorf("expected previous week restored, got %+v", es)
	}
	if n := len(rec.Calls()); n != 2 {
		t.Errorf("expected one notification per run, got %d", n)
	}
}

func TestCallsListCutsCachedPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /calls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "200" || r.URL.Query().Get("restaurant_id") != "R1" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		calls := make([]model.Call, 5)
		for i := range calls {
			calls[i] = model.Call{ID: "call-" + string(rune('a'+i))}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": calls})
	})
	d, _, _ := newDashboard(t, mux)

	got, err := d.Calls.List(context.Background(), "R1", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "call-a" || got[0].RestaurantID != "R1" {
		t.Errorf("unexpected calls %+v", got)
	}
	var buf bytes.Buffer
	if err := d.Calls.Export(context.Background(), "R1", &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected workbook bytes")
	}
}

func menuSheet(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return &buf
}

func TestImportMenuSummarises(t *testing.T) {
	var mu sync.Mutex
	var items []model.MenuItem
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/menu-items", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, items)
	})
	mux.HandleFunc("POST /restaurants/R1/menu-items", func(w http.ResponseWriter, r *http.Request) {
		var in model.MenuItemInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		mu.Lock()
		defer mu.Unlock()
		it := model.MenuItem{ID: "item-" + in.Name, RestaurantID: "R1", Name: in.Name, Price: in.Price, Category: in.Category}
		items = append(items, it)
		writeJSON(w, http.StatusCreated, it)
	})
	d, _, rec := newDashboard(t, mux)

	sheet := menuSheet(t,
		[]any{"Category", "Price", "Name", "Description", "Available"},
		[]any{"Mains", "12.5", "Burger", "", ""},
		[]any{"Mains", "abc", "Broken", "", ""},
		[]any{"", "3", "Fries", "", "no"},
	)
	res, err := d.MenuItems.Import(context.Background(), "R1", sheet)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Created) != 2 || len(res.Skipped) != 1 || len(res.Failed) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Created[1].Category != model.DefaultMenuCategory {
		t.Errorf("expected default category, got %q", res.Created[1].Category)
	}
	calls := rec.Calls()
	if len(calls) != 1 || calls[0].Severity != notify.Warning || calls[0].Message != "Imported 2 menu items, 1 rows not imported" {
		t.Errorf("expected one summary notification, got %+v", calls)
	}
	settle(t, d.MenuItems.x.Collection().Settle)
}

func TestUploadImageReplacesItem(t *testing.T) {
	var mu sync.Mutex
	item := model.MenuItem{ID: "item-1", RestaurantID: "R1", Name: "Burger", Price: 10}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /restaurants/R1/menu-items", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, []model.MenuItem{item})
	})
	mux.HandleFunc("GET /restaurants/R1/menu-items/item-1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, item)
	})
	mux.HandleFunc("POST /restaurants/R1/menu-items/item-1/image", func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else if hdr.Filename != "burger.jpg" {
			t.Errorf("expected re-encoded filename, got %q", hdr.Filename)
		}
		url := "https://cdn.example.com/burger.jpg"
		mu.Lock()
		item.ImageURL = &url
		mu.Unlock()
		writeJSON(w, http.StatusOK, model.ImageUpload{ImageURL: url})
	})
	d, _, rec := newDashboard(t, mux)
	ctx := context.Background()
	if _, err := d.MenuItems.List(ctx, "R1"); err != nil {
		t.Fatalf("List: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var pic bytes.Buffer
	if err := png.Encode(&pic, img); err != nil {
		t.Fatal(err)
	}
	got, err := d.MenuItems.UploadImage(ctx, "R1", "item-1", ImageFile{Name: "burger.png", Body: &pic})
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if got.ImageURL == nil || *got.ImageURL != "https://cdn.example.com/burger.jpg" {
		t.Errorf("unexpected image url %v", got.ImageURL)
	}
	settle(t, d.MenuItems.x.Collection().Settle)

	_, err = d.MenuItems.UploadImage(ctx, "R1", "item-1", ImageFile{Name: "notes.txt", Body: bytes.NewReader([]byte("hello"))})
	if backend.Classify(err) != backend.KindValidation {
		t.Errorf("expected validation error for text upload, got %v", err)
	}
	settle(t, d.MenuItems.x.Collection().Settle)
	if n := len(rec.Calls()); n != 2 {
		t.Errorf("expected 2 notifications, got %d", n)
	}
}

func TestLoginStoresIdentityAndExpiryClearsIt(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "owner@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token, "refresh_token": "r1", "token_type": "bearer",
			"user": map[string]string{"id": "u1", "email": "owner@example.com"},
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.User{UserID: "u1", Email: "owner@example.com", RestaurantID: "R1"})
	})
	mux.HandleFunc("GET /restaurants/R1/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token expired"})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Refresh token expired"})
	})
	d, client, _ := newDashboard(t, mux)
	store := session.NewStore(nil, "test", time.Hour, quiet)
	auth := NewAuthService(client, store, d.Restaurants, quiet)
	ctx := context.Background()

	u, err := auth.Login(ctx, model.Credentials{Email: "owner@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.RestaurantID != "R1" {
		t.Errorf("expected restaurant R1, got %+v", u)
	}
	if cur, ok := auth.Current(ctx); !ok || cur.UserID != "u1" {
		t.Fatalf("expected stored identity, got %+v %v", cur, ok)
	}

	_, err = d.Categories.List(ctx, "R1")
	if !errors.Is(err, backend.ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if _, ok := auth.Current(ctx); ok {
		t.Error("identity survived an unrenewable session")
	}
}

func TestExpiryLogsIdentityClearFailure(t *testing.T) {
	d, client, _ := newDashboard(t, http.NewServeMux())
	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer unreachable.Close()
	store := session.NewStore(unreachable, "test", time.Hour, quiet)

	var logged bytes.Buffer
	NewAuthService(client, store, d.Restaurants, slog.New(slog.NewTextHandler(&logged, nil)))
	client.OnLoginRequired()

	if !strings.Contains(logged.String(), "could not clear identity") {
		t.Errorf("expected clear failure to be logged, got %q", logged.String())
	}
	if strings.Contains(logged.String(), "identity cleared") {
		t.Errorf("reported a clear that failed: %q", logged.String())
	}
}
