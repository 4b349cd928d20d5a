package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/config"
)

// --- In-memory repositories ---

type memLinkRepo struct {
	mu     sync.Mutex
	nextID int
	links  map[string]catalog.Link
	cats   *memCategoryRepo
}

func newMemLinkRepo(cats *memCategoryRepo) *memLinkRepo {
	return &memLinkRepo{links: make(map[string]catalog.Link), cats: cats}
}

func (r *memLinkRepo) Insert(_ context.Context, link *catalog.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	link.ID = fmt.Sprintf("link-%d", r.nextID)
	r.links[link.ID] = *link
	return nil
}

func (r *memLinkRepo) resolve(link catalog.Link) catalog.Link {
	link.Category = nil
	if link.CategoryID != "" {
		if cat, ok := r.cats.categories[link.CategoryID]; ok {
			c := cat
			link.Category = &c
		}
	}
	return link
}

func (r *memLinkRepo) FindAll(_ context.Context) ([]catalog.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Link, 0, len(r.links))
	for _, link := range r.links {
		out = append(out, r.resolve(link))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLinkRepo) FindFeatured(_ context.Context, limit int) ([]catalog.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Link, 0)
	for _, link := range r.links {
		if link.IsFeatured && len(out) < limit {
			out = append(out, r.resolve(link))
		}
	}
	return out, nil
}

func (r *memLinkRepo) FindByCategory(_ context.Context, categoryID string) ([]catalog.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Link, 0)
	for _, link := range r.links {
		if link.CategoryID == categoryID {
			out = append(out, r.resolve(link))
		}
	}
	return out, nil
}

func (r *memLinkRepo) FindByID(_ context.Context, id string) (*catalog.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	resolved := r.resolve(link)
	return &resolved, nil
}

func (r *memLinkRepo) Update(_ context.Context, link *catalog.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[link.ID]; !ok {
		return catalog.ErrNotFound
	}
	stored := *link
	stored.Category = nil
	r.links[link.ID] = stored
	return nil
}

func (r *memLinkRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.links, id)
	return nil
}

func (r *memLinkRepo) IncrementClicks(_ context.Context, id string, at time.Time) (*catalog.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	link.Clicks++
	link.UpdatedAt = at
	r.links[id] = link
	resolved := r.resolve(link)
	return &resolved, nil
}

func (r *memLinkRepo) Summary(_ context.Context, topN int) (*catalog.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &catalog.Summary{}
	for _, link := range r.links {
		s.TotalLinks++
		s.TotalClicks += link.Clicks
		if link.IsFeatured {
			s.FeaturedLinks++
		}
	}
	for _, link := range r.links {
		if len(s.TopLinks) < topN {
			s.TopLinks = append(s.TopLinks, r.resolve(link))
		}
	}
	return s, nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	nextID     int
	categories map[string]catalog.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[string]catalog.Category)}
}

func (r *memCategoryRepo) Insert(_ context.Context, category *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Name == category.Name {
			return catalog.ErrCategoryNameTaken
		}
	}
	r.nextID++
	category.ID = fmt.Sprintf("cat-%d", r.nextID)
	r.categories[category.ID] = *category
	return nil
}

func (r *memCategoryRepo) FindAll(_ context.Context) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCategoryRepo) FindByID(_ context.Context, id string) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &c, nil
}

func (r *memCategoryRepo) Update(_ context.Context, category *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return catalog.ErrNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *memCategoryRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type memImageStore struct {
	mu    sync.Mutex
	count int
}

func (s *memImageStore) Store(_ context.Context, upload *catalog.ImageUpload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.Copy(io.Discard, upload.Content); err != nil {
		return "", err
	}
	s.count++
	return fmt.Sprintf("image-%d.png", s.count), nil
}

type memUserRepo struct {
	users map[string]*auth.User
}

func (r *memUserRepo) Insert(_ context.Context, user *auth.User) error {
	if _, ok := r.users[user.Email]; ok {
		return auth.ErrEmailTaken
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users[user.Email] = user
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByRole(_ context.Context, role string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// --- Test server ---

type apiEnvelope struct {
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cats := newMemCategoryRepo()
	links := newMemLinkRepo(cats)
	catalogSvc := catalog.NewService(links, cats, &memImageStore{}, nil, nil)

	users := &memUserRepo{users: make(map[string]*auth.User)}
	authSvc := auth.NewService(users, "router-test-secret", time.Hour)
	if _, err := authSvc.CreateUser(context.Background(), "admin", "admin@example.com", "s3cret", auth.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.App.Name = "linkatalog-test"
	cfg.Uploads.Dir = t.TempDir()

	router := NewRouterWithOptions(cfg, catalogSvc, authSvc, RouterOptions{})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response envelope: %v", err)
	}
	return resp, envelope
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "s3cret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", resp.StatusCode, envelope.Message)
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Token == "" {
		t.Fatal("login returned no token")
	}
	return data.Token
}

// --- Tests ---

func TestAdminRoutesRejectAnonymous(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/admin/links"},
		{http.MethodPut, "/api/admin/links/some-id"},
		{http.MethodDelete, "/api/admin/links/some-id"},
		{http.MethodPost, "/api/admin/categories"},
		{http.MethodDelete, "/api/admin/categories/some-id"},
		{http.MethodGet, "/api/admin/stats"},
	}

	for _, route := range routes {
		resp, _ := doJSON(t, route.method, srv.URL+route.path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateLink_ValidationError(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/admin/links", token, map[string]any{
		"description": "no title or url",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(envelope.Message, "title") || !strings.Contains(envelope.Message, "url") {
		t.Errorf("message %q does not name the missing fields", envelope.Message)
	}
}

func TestLinkLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	// Category first.
	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/admin/categories", token, map[string]string{
		"name": "Tools",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: status = %d: %s", resp.StatusCode, envelope.Message)
	}
	var category struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(envelope.Data, &category); err != nil {
		t.Fatal(err)
	}

	// Duplicate name conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/admin/categories", token, map[string]string{
		"name": "Tools",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate category: status = %d, want 409", resp.StatusCode)
	}

	// Create link as multipart with an image part.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Editor")
	_ = mw.WriteField("url", "https://example.com")
	_ = mw.WriteField("category", category.ID)
	_ = mw.WriteField("tags", "ide, text")
	_ = mw.WriteField("isFeatured", "true")
	part, err := mw.CreateFormFile("image", "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/admin/links", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rawResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var createEnvelope apiEnvelope
	if err := json.NewDecoder(rawResp.Body).Decode(&createEnvelope); err != nil {
		t.Fatal(err)
	}
	rawResp.Body.Close()
	if rawResp.StatusCode != http.StatusCreated {
		t.Fatalf("create link: status = %d: %s", rawResp.StatusCode, createEnvelope.Message)
	}

	var created struct {
		ID       string   `json:"id"`
		Image    string   `json:"image"`
		Tags     []string `json:"tags"`
		Clicks   int64    `json:"clicks"`
		Category *struct {
			Name string `json:"name"`
		} `json:"category"`
	}
	if err := json.Unmarshal(createEnvelope.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Image == "" {
		t.Error("created link has no image reference")
	}
	if len(created.Tags) != 2 {
		t.Errorf("got %d tags, want 2", len(created.Tags))
	}
	if created.Clicks != 0 {
		t.Errorf("new link clicks = %d, want 0", created.Clicks)
	}
	if created.Category == nil || created.Category.Name != "Tools" {
		t.Errorf("category not resolved on create: %+v", created.Category)
	}

	// Anonymous click increments the counter.
	resp, envelope = doJSON(t, http.MethodPut, srv.URL+"/api/links/click/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("click: status = %d", resp.StatusCode)
	}
	var clicked struct {
		Clicks int64 `json:"clicks"`
	}
	if err := json.Unmarshal(envelope.Data, &clicked); err != nil {
		t.Fatal(err)
	}
	if clicked.Clicks != 1 {
		t.Errorf("clicks after click = %d, want 1", clicked.Clicks)
	}

	// Partial update touches only the title.
	resp, envelope = doJSON(t, http.MethodPut, srv.URL+"/api/admin/links/"+created.ID, token, map[string]string{
		"title": "Renamed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d: %s", resp.StatusCode, envelope.Message)
	}
	var updated struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Clicks int64  `json:"clicks"`
	}
	if err := json.Unmarshal(envelope.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Renamed" || updated.URL != "https://example.com" || updated.Clicks != 1 {
		t.Errorf("partial update changed more than the title: %+v", updated)
	}

	// Deleting the category leaves the link with a null category.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/categories/"+category.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete category: status = %d", resp.StatusCode)
	}

	resp, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/links", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list links: status = %d", resp.StatusCode)
	}
	var listed []struct {
		ID       string `json:"id"`
		Category *struct {
			Name string `json:"name"`
		} `json:"category"`
	}
	if err := json.Unmarshal(envelope.Data, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 {
		t.Fatalf("got %d links, want 1", len(listed))
	}
	if listed[0].Category != nil {
		t.Errorf("dangling category must resolve to null, got %+v", listed[0].Category)
	}

	// Delete the link.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/links/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete link: status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/links/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleting twice: status = %d, want 404", resp.StatusCode)
	}
}

func TestListByUnknownCategoryReturnsEmpty(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/links/category/does-not-exist", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var listed []json.RawMessage
	if err := json.Unmarshal(envelope.Data, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Errorf("got %d links, want 0", len(listed))
	}
}

func TestAdminStats(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/admin/links", token, map[string]any{
		"title":      "Editor",
		"url":        "https://example.com",
		"isFeatured": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create link: status = %d: %s", resp.StatusCode, envelope.Message)
	}

	resp, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/admin/stats", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: status = %d", resp.StatusCode)
	}
	var summary struct {
		TotalLinks    int64 `json:"totalLinks"`
		FeaturedLinks int64 `json:"featuredLinks"`
	}
	if err := json.Unmarshal(envelope.Data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalLinks != 1 || summary.FeaturedLinks != 1 {
		t.Errorf("summary = %+v, want one featured link", summary)
	}
}
