package downstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/career-bff/internal/downstream/transport"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
)

// stub — апстрим, отвечающий заданным статусом и телом и запоминающий запрос.
type stub struct {
	status int
	body   string

	method string
	path   string
	query  url.Values
	header http.Header
	got    []byte
}

func (s *stub) server(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.method = r.Method
		s.path = r.URL.Path
		s.query = r.URL.Query()
		s.header = r.Header.Clone()
		s.got, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newClient() *Client {
	return New(Options{Timeout: 2 * time.Second, UserAgent: "career-bff-test"})
}

func TestPost_Success201_ReturnsData(t *testing.T) {
	s := &stub{status: http.StatusCreated, body: `{"code":"0","msg":"ok","data":{"token":"T1"}}`}
	srv := s.server(t)

	data, err := newClient().Post(context.Background(), srv.URL+"/signup/email", map[string]string{"email": "a@x.com"})
	require.NoError(t, err)
	require.JSONEq(t, `{"token":"T1"}`, string(data))

	require.Equal(t, http.MethodPost, s.method)
	require.Equal(t, "/signup/email", s.path)
	require.JSONEq(t, `{"email":"a@x.com"}`, string(s.got))
	require.Equal(t, "application/json", s.header.Get("Content-Type"))
	require.Equal(t, "career-bff-test", s.header.Get("User-Agent"))
	require.NotEmpty(t, s.header.Get("X-Request-Id"))
}

func TestGet_QueryAndRequestIDPropagation(t *testing.T) {
	s := &stub{status: http.StatusOK, body: `{"code":"0","msg":"ok","data":{"token":"R1"}}`}
	srv := s.server(t)

	ctx := context.WithValue(context.Background(), transport.CtxRequestID, "rid-77")
	data, err := newClient().Get(ctx, srv.URL+"/password/reset/email", url.Values{"email": {"a@x.com"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"token":"R1"}`, string(data))

	require.Equal(t, "a@x.com", s.query.Get("email"))
	require.Equal(t, "rid-77", s.header.Get("X-Request-Id"))
}

func TestStatusMapping(t *testing.T) {
	tcs := []struct {
		name     string
		status   int
		body     string
		wantKind apierrors.Kind
		wantMsg  string
	}{
		{"400", 400, `{"code":"1","msg":"bad input","data":null}`, apierrors.KindClient, "bad input"},
		{"401", 401, `{"code":"1","msg":"wrong password","data":null}`, apierrors.KindUnauthorized, "wrong password"},
		{"403", 403, `{"code":"1","msg":"denied","data":null}`, apierrors.KindForbidden, "denied"},
		{"404", 404, `{"code":"1","msg":"no such user","data":null}`, apierrors.KindNotFound, "no such user"},
		{"406", 406, `{"code":"1","msg":"dup","data":null}`, apierrors.KindNotAcceptable, "dup"},
		{"409", 409, `{"code":"1","msg":"conflict","data":null}`, apierrors.KindServer, "conflict"},
		{"502_malformed", 502, `<html>bad gateway</html>`, apierrors.KindServer, "Bad Gateway"},
		{"404_empty", 404, ``, apierrors.KindNotFound, "Not Found"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			s := &stub{status: tc.status, body: tc.body}
			srv := s.server(t)

			_, err := newClient().Get(context.Background(), srv.URL+"/users/1", nil)
			require.Error(t, err)

			e, ok := apierrors.As(err)
			require.True(t, ok)
			require.Equal(t, tc.wantKind, e.Kind)
			require.Equal(t, tc.wantMsg, e.Msg)
		})
	}
}

func TestStatusMapping_CarriesEnvelopeData(t *testing.T) {
	s := &stub{status: 400, body: `{"code":"1","msg":"bad","data":{"field":"email"}}`}
	srv := s.server(t)

	_, err := newClient().Post(context.Background(), srv.URL+"/login", map[string]string{})
	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.JSONEq(t, `{"field":"email"}`, string(e.Data.(json.RawMessage)))
}

func TestSuccessStatus_WithErrorCode_IsServer(t *testing.T) {
	s := &stub{status: http.StatusOK, body: `{"code":"2","msg":"upstream failed","data":null}`}
	srv := s.server(t)

	_, err := newClient().Put(context.Background(), srv.URL+"/password/update", map[string]string{})
	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, apierrors.KindServer, e.Kind)
	require.Equal(t, "upstream failed", e.Msg)
}

func TestNumericZeroCode_IsSuccess(t *testing.T) {
	s := &stub{status: http.StatusOK, body: `{"code":0,"msg":"ok","data":[1,2]}`}
	srv := s.server(t)

	data, err := newClient().Delete(context.Background(), srv.URL+"/x", nil)
	require.NoError(t, err)
	require.JSONEq(t, `[1,2]`, string(data))
}

func TestMalformedBodyOnSuccess_IsServer(t *testing.T) {
	s := &stub{status: http.StatusOK, body: `not json`}
	srv := s.server(t)

	_, err := newClient().Get(context.Background(), srv.URL+"/x", nil)
	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, apierrors.KindServer, e.Kind)
	require.Equal(t, "malformed_response", e.Msg)
}

func TestEmptyBodyOnSuccess_IsOK(t *testing.T) {
	s := &stub{status: http.StatusNoContent}
	srv := s.server(t)

	data, err := newClient().Delete(context.Background(), srv.URL+"/x", nil)
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestExpectedStatus_AcceptedEvenIfError(t *testing.T) {
	s := &stub{status: http.StatusConflict, body: `{"code":"9","msg":"exists","data":{"id":1}}`}
	srv := s.server(t)

	res, err := newClient().Call(context.Background(), Request{
		Method:   http.MethodPost,
		URL:      srv.URL + "/x",
		Expected: http.StatusConflict,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, res.Status)
	require.Equal(t, "exists", res.Msg)
}

func TestDo_ReturnsRawResultWithoutNormalising(t *testing.T) {
	s := &stub{status: http.StatusNotFound, body: `{"code":"1","msg":"nope","data":null}`}
	srv := s.server(t)

	res, err := newClient().Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL + "/x"})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.Status)
	require.Equal(t, "1", res.Code)
	require.Equal(t, "nope", res.Msg)
	require.Equal(t, apierrors.KindNotFound, apierrors.KindOf(res.Err(0)))
}

func TestTransportFailure_IsServerWithDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/signup"
	srv.Close()

	_, err := newClient().Post(context.Background(), target, map[string]string{"password": "secret"})
	require.Error(t, err)

	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, apierrors.KindServer, e.Kind)
	require.Equal(t, "post_connection_error", e.Msg)

	require.Error(t, e.Err)
	require.Contains(t, e.Err.Error(), "POST")
	require.Contains(t, e.Err.Error(), target)
	require.NotContains(t, e.Err.Error(), "secret")
}

func TestTimeout_IsServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cl := New(Options{Timeout: 50 * time.Millisecond})
	_, err := cl.Get(context.Background(), srv.URL, nil)

	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, "get_connection_error", e.Msg)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResultErr_Table(t *testing.T) {
	tcs := []struct {
		name     string
		res      Result
		expected int
		wantErr  bool
		wantKind apierrors.Kind
	}{
		{"200_ok", Result{Method: "GET", Status: 200, Code: "0"}, 0, false, ""},
		{"200_nocode", Result{Method: "GET", Status: 200}, 0, false, ""},
		{"201_post", Result{Method: "POST", Status: 201, Code: "0"}, 0, false, ""},
		{"302", Result{Method: "GET", Status: 302}, 0, false, ""},
		{"200_code1", Result{Method: "GET", Status: 200, Code: "1"}, 0, true, apierrors.KindServer},
		{"404", Result{Method: "GET", Status: 404, Msg: "x"}, 0, true, apierrors.KindNotFound},
		{"500", Result{Method: "GET", Status: 500, Msg: "x"}, 0, true, apierrors.KindServer},
		{"404_expected", Result{Method: "GET", Status: 404, Code: "1"}, 404, false, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.res.Err(tc.expected)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tc.wantKind, apierrors.KindOf(err))
		})
	}
}

func TestTimeout_AppliesUnderLongerRequestDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(1500 * time.Millisecond):
		}
	}))
	defer srv.Close()

	// Так выглядит контекст после middleware.Timeout входящего запроса.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cl := New(Options{Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := cl.Get(ctx, srv.URL, nil)

	require.Less(t, time.Since(start), time.Second)
	e, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, "get_connection_error", e.Msg)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
