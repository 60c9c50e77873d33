package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buddy-dubby/reselling-app/internal/config"
	"github.com/buddy-dubby/reselling-app/internal/imaging"
	"github.com/buddy-dubby/reselling-app/internal/pricing"
	"github.com/buddy-dubby/reselling-app/internal/service"
	"github.com/buddy-dubby/reselling-app/internal/storage"
)

type serverFixture struct {
	ts        *httptest.Server
	store     storage.Store
	uploadDir string
}

// newTestServer wires the full handler chain against a file store and an
// engine with live lookups disabled, so every price flows through the
// deterministic fallbacks.
func newTestServer(t *testing.T, remover *imaging.Remover) *serverFixture {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewFileStore(filepath.Join(dir, "inventory.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	engine := pricing.NewEngine(nil, false, zerolog.Nop())
	cfg := &config.Config{Revalue: config.RevalueConfig{Interval: time.Hour}}
	svc := service.New(cfg, nil, engine, store, nil, zerolog.Nop())

	if remover == nil {
		remover = imaging.NewRemover("", 0, zerolog.Nop())
	}

	uploadDir := filepath.Join(dir, "uploads")
	srv := New(Options{
		Port:           0,
		UploadDir:      uploadDir,
		MaxUploadBytes: 16 << 20,
	}, Deps{
		Engine:   engine,
		Store:    store,
		Remover:  remover,
		Revaluer: svc,
		Logger:   zerolog.Nop(),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &serverFixture{ts: ts, store: store, uploadDir: uploadDir}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newTestServer(t, nil)

	resp, err := http.Get(f.ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("status field: got %q", body["status"])
	}
}

func TestPriceCheckRetailFallback(t *testing.T) {
	f := newTestServer(t, nil)

	resp := postJSON(t, f.ts.URL+"/api/price-check", map[string]any{
		"query":        "Leather Jacket",
		"condition":    "good",
		"retail_price": 200,
		"item_cost":    20,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var body struct {
		Query      string `json:"query"`
		DataSource string `json:"data_source"`
		Estimates  map[string]struct {
			Low    float64 `json:"low"`
			High   float64 `json:"high"`
			Avg    float64 `json:"avg"`
			Profit float64 `json:"profit"`
		} `json:"estimates"`
		Recommendation struct {
			QuickSale float64 `json:"quick_sale"`
			FairPrice float64 `json:"fair_price"`
			MaxValue  float64 `json:"max_value"`
		} `json:"recommendation"`
		Tip string `json:"tip"`
	}
	decodeBody(t, resp, &body)

	if body.Query != "Leather Jacket" {
		t.Fatalf("query echo: got %q", body.Query)
	}
	if !strings.Contains(body.DataSource, "retail") {
		t.Fatalf("data source: got %q, want retail estimate", body.DataSource)
	}

	// retail 200 in good condition: 30% / 40% / 50% of retail.
	if body.Recommendation.QuickSale != 60 || body.Recommendation.FairPrice != 80 || body.Recommendation.MaxValue != 100 {
		t.Fatalf("tiers: got %+v", body.Recommendation)
	}

	if len(body.Estimates) != 4 {
		t.Fatalf("estimates: got %d platforms, want 4", len(body.Estimates))
	}

	// Poshmark at $80 charges 20%: net 64, profit 44 after the $20 cost.
	posh, ok := body.Estimates["poshmark"]
	if !ok {
		t.Fatal("poshmark estimate missing")
	}
	if posh.Avg != 64 {
		t.Fatalf("poshmark avg: got %.2f, want 64", posh.Avg)
	}
	if posh.Profit != 44 {
		t.Fatalf("poshmark profit: got %.2f, want 44", posh.Profit)
	}
	if posh.Low != 48 {
		t.Fatalf("poshmark low: got %.2f, want 48", posh.Low)
	}
	if posh.High != 80 {
		t.Fatalf("poshmark high: got %.2f, want 80", posh.High)
	}

	if body.Tip == "" {
		t.Fatal("tip should not be empty")
	}
}

func TestPriceCheckRequiresQuery(t *testing.T) {
	f := newTestServer(t, nil)

	resp := postJSON(t, f.ts.URL+"/api/price-check", map[string]any{"condition": "good"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] == "" {
		t.Fatal("error message missing")
	}
}

func TestInventoryLifecycle(t *testing.T) {
	f := newTestServer(t, nil)

	resp := postJSON(t, f.ts.URL+"/api/inventory", map[string]any{
		"name":      "Pleated Midi Skirt",
		"brand":     "Aritzia",
		"condition": "excellent",
		"cost":      18.5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201", resp.StatusCode)
	}

	var created storage.Item
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatal("created item has no id")
	}
	if created.Status != storage.StatusUnlisted {
		t.Fatalf("default status: got %q", created.Status)
	}

	listResp, err := http.Get(f.ts.URL + "/api/inventory")
	if err != nil {
		t.Fatalf("GET inventory: %v", err)
	}
	var listBody struct {
		Items []storage.Item `json:"items"`
	}
	decodeBody(t, listResp, &listBody)
	if len(listBody.Items) != 1 {
		t.Fatalf("list: got %d items, want 1", len(listBody.Items))
	}

	// 部分更新只应覆盖请求里出现的字段。
	req, err := http.NewRequest(http.MethodPut, f.ts.URL+"/api/inventory/"+created.ID, strings.NewReader(`{"status":"listed"}`))
	if err != nil {
		t.Fatalf("build PUT: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	updateResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT item: %v", err)
	}
	var updated storage.Item
	decodeBody(t, updateResp, &updated)
	if updated.Status != storage.StatusListed {
		t.Fatalf("updated status: got %q", updated.Status)
	}
	if updated.Name != "Pleated Midi Skirt" {
		t.Fatalf("partial update wiped name: got %q", updated.Name)
	}

	delReq, err := http.NewRequest(http.MethodDelete, f.ts.URL+"/api/inventory/"+created.ID, nil)
	if err != nil {
		t.Fatalf("build DELETE: %v", err)
	}
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("DELETE item: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: got %d, want 204", delResp.StatusCode)
	}

	getResp, err := http.Get(f.ts.URL + "/api/inventory/" + created.ID)
	if err != nil {
		t.Fatalf("GET deleted item: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("after delete: got %d, want 404", getResp.StatusCode)
	}
}

func TestInventoryRevalueAndHistory(t *testing.T) {
	f := newTestServer(t, nil)

	resp := postJSON(t, f.ts.URL+"/api/inventory", map[string]any{
		"name":         "Barbour Waxed Jacket",
		"condition":    "good",
		"retail_price": 200,
	})
	var created storage.Item
	decodeBody(t, resp, &created)

	revResp := postJSON(t, f.ts.URL+"/api/inventory/"+created.ID+"/revalue", nil)
	if revResp.StatusCode != http.StatusOK {
		t.Fatalf("revalue status: got %d, want 200", revResp.StatusCode)
	}

	var rev struct {
		ItemID         string `json:"item_id"`
		DataSource     string `json:"data_source"`
		Recommendation struct {
			FairPrice float64 `json:"fair_price"`
		} `json:"recommendation"`
		Alerted bool `json:"alerted"`
	}
	decodeBody(t, revResp, &rev)
	if rev.ItemID != created.ID {
		t.Fatalf("item id: got %q", rev.ItemID)
	}
	if rev.Recommendation.FairPrice != 80 {
		t.Fatalf("fair price: got %.2f, want 80", rev.Recommendation.FairPrice)
	}
	if rev.Alerted {
		t.Fatal("first valuation should not alert")
	}

	histResp, err := http.Get(f.ts.URL + "/api/inventory/" + created.ID + "/valuations")
	if err != nil {
		t.Fatalf("GET valuations: %v", err)
	}
	var hist struct {
		ItemID     string              `json:"item_id"`
		Valuations []storage.Valuation `json:"valuations"`
	}
	decodeBody(t, histResp, &hist)
	if len(hist.Valuations) != 1 {
		t.Fatalf("history: got %d snapshots, want 1", len(hist.Valuations))
	}
	if !hist.Valuations[0].FairPrice.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("snapshot fair price: got %s", hist.Valuations[0].FairPrice)
	}
}

func TestGenerateDescription(t *testing.T) {
	f := newTestServer(t, nil)

	resp := postJSON(t, f.ts.URL+"/api/generate-description", map[string]any{
		"name":      "Platform Heel Boots",
		"brand":     "Dr. Martens",
		"category":  "shoes",
		"condition": "good",
		"size":      "US 8",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var body struct {
		Title       string `json:"title"`
		Poshmark    string `json:"poshmark"`
		Xiaohongshu string `json:"xiaohongshu"`
	}
	decodeBody(t, resp, &body)

	if body.Title != "Dr. Martens Platform Heel Boots Size US 8" {
		t.Fatalf("title: got %q", body.Title)
	}
	if body.Poshmark == "" {
		t.Fatal("poshmark copy missing")
	}
	if !strings.Contains(body.Xiaohongshu, "八成新") {
		t.Fatalf("小红书文案应标注成色: %q", body.Xiaohongshu)
	}

	missing := postJSON(t, f.ts.URL+"/api/generate-description", map[string]any{"brand": "Nike"})
	missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing name: got %d, want 400", missing.StatusCode)
	}
}

// cutoutPNG builds a cutout the stub removal service returns: transparent
// upper half, red lower half.
func cutoutPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 8; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartImage(t *testing.T, field, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestRemoveBackgroundEndpoint(t *testing.T) {
	cutout := cutoutPNG(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(cutout)
	}))
	t.Cleanup(upstream.Close)

	remover := imaging.NewRemover(upstream.URL, 5*time.Second, zerolog.Nop())
	f := newTestServer(t, remover)

	body, contentType := multipartImage(t, "image", "boots.jpg", []byte("raw photo payload"))
	resp, err := http.Post(f.ts.URL+"/api/remove-background", contentType, body)
	if err != nil {
		t.Fatalf("POST remove-background: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var result struct {
		Success     bool `json:"success"`
		Transparent struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
		} `json:"transparent"`
		WhiteBG struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
		} `json:"white_bg"`
	}
	decodeBody(t, resp, &result)

	if !result.Success {
		t.Fatal("success flag not set")
	}
	if ok, _ := regexp.MatchString(`^boots_transparent_[0-9a-f]{6}\.png$`, result.Transparent.Filename); !ok {
		t.Fatalf("transparent filename: got %q", result.Transparent.Filename)
	}
	if ok, _ := regexp.MatchString(`^boots_white_[0-9a-f]{6}\.jpg$`, result.WhiteBG.Filename); !ok {
		t.Fatalf("white filename: got %q", result.WhiteBG.Filename)
	}

	if _, err := os.Stat(filepath.Join(f.uploadDir, result.WhiteBG.Filename)); err != nil {
		t.Fatalf("white rendition not saved: %v", err)
	}

	fileResp, err := http.Get(f.ts.URL + result.Transparent.URL)
	if err != nil {
		t.Fatalf("GET %s: %v", result.Transparent.URL, err)
	}
	fileResp.Body.Close()
	if fileResp.StatusCode != http.StatusOK {
		t.Fatalf("serving rendition: got %d, want 200", fileResp.StatusCode)
	}
}

func TestRemoveBackgroundUnconfigured(t *testing.T) {
	f := newTestServer(t, nil)

	body, contentType := multipartImage(t, "image", "boots.jpg", []byte("raw photo payload"))
	resp, err := http.Post(f.ts.URL+"/api/remove-background", contentType, body)
	if err != nil {
		t.Fatalf("POST remove-background: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", resp.StatusCode)
	}
}

func TestInventoryPhotoUpload(t *testing.T) {
	f := newTestServer(t, nil)

	resp := postJSON(t, f.ts.URL+"/api/inventory", map[string]any{"name": "Canvas Tote"})
	var created storage.Item
	decodeBody(t, resp, &created)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"front.jpg", "back.jpg"} {
		part, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("photo bytes")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	upResp, err := http.Post(f.ts.URL+"/api/inventory/"+created.ID+"/photos", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST photos: %v", err)
	}
	if upResp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", upResp.StatusCode)
	}

	var upBody struct {
		Added  []string `json:"added"`
		Photos []string `json:"photos"`
	}
	decodeBody(t, upResp, &upBody)
	if len(upBody.Added) != 2 || len(upBody.Photos) != 2 {
		t.Fatalf("photos: added %d, total %d, want 2/2", len(upBody.Added), len(upBody.Photos))
	}
	for _, name := range upBody.Photos {
		if !strings.HasPrefix(name, created.ID+"_") {
			t.Fatalf("photo name should carry the item id prefix: %q", name)
		}
		if _, err := os.Stat(filepath.Join(f.uploadDir, name)); err != nil {
			t.Fatalf("photo not saved: %v", err)
		}
	}
}
