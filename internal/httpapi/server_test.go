package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sebas/cxgateway/internal/config"
	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/imsdata"
	"github.com/sebas/cxgateway/internal/stats"
)

func newTestServer(t *testing.T) (*Server, *hsstask.Base) {
	t.Helper()
	cache := hsscache.New()
	t.Cleanup(cache.Close)
	fc := diameter.NewFakeClient()
	cfg := &config.Config{
		OriginHost:             "cxgateway.test",
		OriginRealm:            "test",
		DestinationHost:        "hss.test",
		DestinationRealm:       "test",
		ReregistrationInterval: time.Hour,
	}
	sessions := cxcodec.NewSessionIDGenerator("cxgateway.test", time.Unix(0, 0))
	base := hsstask.New(cfg, cxdict.Default(), cache, fc, stats.NewRegistry(nil), sessions)
	return NewServer("127.0.0.1:0", base), base
}

func TestHandlePing(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	s.handlePing(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestHandleImpuLegacyXMLRouteReturnsRawXML(t *testing.T) {
	s, base := newTestServer(t)
	if _, err := base.Cache.PutRegData([]string{"sip:impu@test"}, 0).
		WithXML("<IMSSubscription/>").
		WithRegState(imsdata.Registered).
		Execute(context.Background()); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/impu/sip%3Aimpu%40test", nil)
	s.handleImpu(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "<IMSSubscription/>" {
		t.Errorf("body = %q, want raw IMSSubscription XML (not a ClearwaterRegData envelope)", rec.Body.String())
	}
}

func TestHandleImpuLegacyXMLRouteUnknownImpuIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/impu/sip%3Aunknown%40test", nil)
	s.handleImpu(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleImpuRegDataRouteMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/impu/sip%3Aimpu%40test/reg-data", nil)
	s.handleImpu(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleImpuRegDataGetUnknownImpuIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/impu/sip%3Aunknown%40test/reg-data", nil)
	s.handleImpu(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleImpuRegDataPutUnknownReqTypeIsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"reqtype":"bogus"}`)
	req := httptest.NewRequest(http.MethodPut, "/impu/sip%3Aimpu%40test/reg-data", body)
	s.handleImpu(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImpiDigestMissingSchemeIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/impi/impi%40test/bogus-scheme", nil)
	s.handleImpi(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleImpiMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/impi/impi%40test/digest", nil)
	s.handleImpi(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestSplitFirstSegment(t *testing.T) {
	cases := []struct {
		path      string
		wantFirst string
		wantRest  string
		wantSlash bool
	}{
		{"sip:impu@test", "sip:impu@test", "", false},
		{"sip:impu@test/", "sip:impu@test", "", true},
		{"sip:impu@test/reg-data", "sip:impu@test", "reg-data", true},
	}
	for _, c := range cases {
		first, rest, hasSlash := splitFirstSegment(c.path)
		if first != c.wantFirst || rest != c.wantRest || hasSlash != c.wantSlash {
			t.Errorf("splitFirstSegment(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.path, first, rest, hasSlash, c.wantFirst, c.wantRest, c.wantSlash)
		}
	}
}
