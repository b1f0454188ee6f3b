package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/MaatFonseca/api-token-sale/internal/app"
	"github.com/MaatFonseca/api-token-sale/internal/middleware"
	"github.com/MaatFonseca/api-token-sale/pkg/testutil"
)

const testAdminSecret = "test-secret"

func newTestHandler(t *testing.T) (http.Handler, *testutil.RecordingMailer) {
	t.Helper()
	m := testutil.NewRecordingMailer()
	application := app.New(app.Deps{
		Issuer: testutil.NewSequenceIssuer(),
		Mailer: m,
	}, nil)
	handler := NewHandler(application, Config{
		AdminAuth: middleware.NewAdminAuth(testAdminSecret, nil),
	})
	return handler, m
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestSignupFlow(t *testing.T) {
	handler, m := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodPost, "/api/applications",
		map[string]string{"email": "foo@bar.baz"}, nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("create: expected 202, got %d (%s)", resp.Code, resp.Body.String())
	}
	if len(m.First) != 1 || m.First[0].PrivateID != "private-1" {
		t.Fatalf("welcome email not dispatched: %#v", m.First)
	}

	resp = doJSON(t, handler, http.MethodPut, "/api/applications/private-1",
		map[string]interface{}{
			"privateId": "private-1", "publicId": "public-1",
			"email": "foo@bar.baz", "firstName": "Foo", "lastName": "Bar",
			"country": "Portugal", "txHashes": []string{"h1"},
		}, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("update: expected 204, got %d (%s)", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, handler, http.MethodGet, "/api/applications/private-1", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}
	var projection map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &projection); err != nil {
		t.Fatalf("unmarshal projection: %v", err)
	}
	if projection["firstName"] != "Foo" || projection["publicId"] != "public-1" {
		t.Fatalf("unexpected projection: %v", projection)
	}
	for _, hidden := range []string{"creation", "lastUpdate", "lockDate"} {
		if _, leaked := projection[hidden]; leaked {
			t.Fatalf("projection leaks %s: %v", hidden, projection)
		}
	}

	resp = doJSON(t, handler, http.MethodPost, "/api/applications/private-1/lock", nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("lock: expected 204, got %d (%s)", resp.Code, resp.Body.String())
	}
	if len(m.Second) != 1 {
		t.Fatalf("confirmation email not dispatched: %#v", m.Second)
	}
}

func TestCreateRejectsMalformedEmail(t *testing.T) {
	handler, m := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodPost, "/api/applications",
		map[string]string{"email": "not-an-email"}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if len(m.First) != 0 {
		t.Fatal("no email expected for rejected signup")
	}
}

func TestUpdateReportsMissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodPut, "/api/applications/private-1",
		map[string]string{"firstName": "Foo"}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body struct {
		MissingFields []string `json:"missingFields"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if len(body.MissingFields) != 2 || body.MissingFields[0] != "lastName" || body.MissingFields[1] != "country" {
		t.Fatalf("unexpected missing fields: %v", body.MissingFields)
	}
}

func TestUpdateRejectsSelfDeclaredLock(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodPut, "/api/applications/private-1",
		map[string]interface{}{
			"firstName": "Foo", "lastName": "Bar", "country": "Portugal", "isLocked": true,
		}, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestUnknownApplication(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodGet, "/api/applications/unknown", nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("get: expected 404, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodPost, "/api/applications/unknown/lock", nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("lock: expected 404, got %d", resp.Code)
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doJSON(t, handler, http.MethodGet, "/api/admin/applications", nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestAdminSeesRawRecords(t *testing.T) {
	handler, _ := newTestHandler(t)

	token, err := middleware.SignAdminToken(testAdminSecret, "ops", time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	authed := map[string]string{"Authorization": "Bearer " + token}

	resp := doJSON(t, handler, http.MethodPost, "/api/applications",
		map[string]string{"email": "foo@bar.baz"}, nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("create: expected 202, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodGet, "/api/admin/applications", nil, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var all []map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &all); err != nil {
		t.Fatalf("unmarshal admin list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
	// Raw record: administrative timestamps included.
	if _, ok := all[0]["creation"]; !ok {
		t.Fatalf("admin view should carry creation: %v", all[0])
	}

	publicID := all[0]["publicId"].(string)
	resp = doJSON(t, handler, http.MethodGet, "/api/admin/applications/"+publicID, nil, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin get: expected 200, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodGet, "/api/admin/applications/unknown", nil, authed)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("admin get unknown: expected 404, got %d", resp.Code)
	}

	resp = doJSON(t, handler, http.MethodGet, "/api/admin/audit", nil, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin audit: expected 200, got %d", resp.Code)
	}
	var audit []map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &audit); err != nil {
		t.Fatalf("unmarshal audit: %v", err)
	}
	if len(audit) != 3 {
		t.Fatalf("expected 3 audited admin reads, got %d", len(audit))
	}
}
