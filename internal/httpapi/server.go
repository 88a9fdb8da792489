// Package httpapi wires the gateway's HTTP surface onto net/http: a
// bare http.ServeMux with manual trailing-segment parsing.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sebas/cxgateway/internal/handlers/authvector"
	"github.com/sebas/cxgateway/internal/handlers/httpresult"
	"github.com/sebas/cxgateway/internal/handlers/lookup"
	"github.com/sebas/cxgateway/internal/handlers/regdata"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/logging"
)

const component = "httpapi"

// Server is the gateway's HTTP listener. It holds no state of its own
// beyond the shared task base every handler task is built over.
type Server struct {
	addr       string
	httpServer *http.Server

	digestTask  *authvector.ImpiDigestTask
	avTask      *authvector.ImpiAvTask
	regDataTask *regdata.ImpuRegDataTask
	regStatus   *lookup.ImpiRegistrationStatusTask
	locInfo     *lookup.ImpuLocationInfoTask
}

// NewServer builds the full HTTP route table over a shared hsstask.Base.
func NewServer(addr string, base *hsstask.Base) *Server {
	s := &Server{
		addr:        addr,
		digestTask:  authvector.NewImpiDigestTask(base),
		avTask:      authvector.NewImpiAvTask(base),
		regDataTask: regdata.NewImpuRegDataTask(base),
		regStatus:   lookup.NewImpiRegistrationStatusTask(base),
		locInfo:     lookup.NewImpuLocationInfoTask(base),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/impi/", s.handleImpi)
	mux.HandleFunc("/impu/", s.handleImpu)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Start begins listening on a background goroutine.
func (s *Server) Start() error {
	logging.Info(component, "starting HTTP listener", "addr", s.addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(component, "listener error", "err", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleImpi dispatches every GET /impi/{impi}/... route:
// digest, {digest|aka|av}, and registration-status.
func (s *Server) handleImpi(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeStatus(w, http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/impi/")
	impiEsc, tail, ok := splitFirstSegment(rest)
	if !ok {
		writeStatus(w, http.StatusNotFound)
		return
	}
	impi, err := url.PathUnescape(impiEsc)
	if err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	switch tail {
	case "digest":
		s.writeResult(w, s.digestTask.Handle(r.Context(), authvector.DigestRequest{
			IMPI:     impi,
			PublicID: r.URL.Query().Get("public_id"),
		}))
	case "registration-status":
		s.writeResult(w, s.regStatus.Handle(r.Context(), lookup.RegistrationStatusRequest{
			IMPI:           impi,
			IMPU:           r.URL.Query().Get("impu"),
			VisitedNetwork: r.URL.Query().Get("visited-network"),
			AuthType:       r.URL.Query().Get("auth-type"),
		}))
	default:
		// {digest|aka|av} scheme path segment.
		s.writeResult(w, s.avTask.Handle(r.Context(), authvector.AvRequest{
			IMPI:          impi,
			SchemeSegment: tail,
			PublicID:      r.URL.Query().Get("impu"),
			Autn:          r.URL.Query().Get("autn"),
		}))
	}
}

// handleImpu dispatches every /impu/{impu}/... route:
// location, reg-data, and the legacy bare-IMPU XML route.
func (s *Server) handleImpu(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/impu/")
	impuEsc, tail, hasTail := splitFirstSegment(rest)
	impu, err := url.PathUnescape(impuEsc)
	if err != nil || impu == "" {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	switch tail {
	case "location":
		if r.Method != http.MethodGet {
			writeStatus(w, http.StatusMethodNotAllowed)
			return
		}
		originating, _ := strconv.ParseBool(r.URL.Query().Get("originating"))
		s.writeResult(w, s.locInfo.Handle(r.Context(), lookup.LocationInfoRequest{
			IMPU:        impu,
			Originating: originating,
			AuthType:    r.URL.Query().Get("auth-type"),
		}))
	case "reg-data":
		req := regdata.Request{
			IMPU:      impu,
			PrivateID: r.URL.Query().Get("private_id"),
		}
		switch r.Method {
		case http.MethodGet:
			req.IsGet = true
		case http.MethodPut:
			body, err := decodeReqType(r)
			if err != nil {
				writeStatus(w, http.StatusBadRequest)
				return
			}
			req.ReqType = body
		default:
			writeStatus(w, http.StatusMethodNotAllowed)
			return
		}
		s.writeResult(w, s.regDataTask.Handle(r.Context(), req))
	case "":
		if !hasTail {
			// legacy GET /impu/{impu} raw-XML route.
			if r.Method != http.MethodGet {
				writeStatus(w, http.StatusMethodNotAllowed)
				return
			}
			s.writeResult(w, s.regDataTask.HandleLegacyXML(r.Context(), impu))
			return
		}
		writeStatus(w, http.StatusNotFound)
	default:
		writeStatus(w, http.StatusNotFound)
	}
}

type reqTypeBody struct {
	ReqType string `json:"reqtype"`
}

func decodeReqType(r *http.Request) (string, error) {
	defer r.Body.Close()
	var body reqTypeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.ReqType, nil
}

// splitFirstSegment splits path on the first "/", returning the first
// segment, the remainder, and whether a "/" was present at all — used to
// tell "/impu/{impu}" (legacy route) apart from "/impu/{impu}/reg-data".
func splitFirstSegment(path string) (first, rest string, hasSlash bool) {
	idx := strings.Index(path, "/")
	if idx < 0 {
		return path, "", false
	}
	return path[:idx], strings.TrimSuffix(path[idx+1:], "/"), true
}

func (s *Server) writeResult(w http.ResponseWriter, resp httpresult.Response) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if resp.Body != nil {
		_, _ = w.Write(resp.Body)
	}
}

func writeStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// DefaultShutdownTimeout bounds how long Stop waits for in-flight
// requests to drain.
const DefaultShutdownTimeout = 5 * time.Second
