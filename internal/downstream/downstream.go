// downstream — адаптер HTTP-вызовов к апстрим-сервисам (auth, user, search).
//
// Апстримы отвечают конвертом {"code","msg","data"}. Адаптер приводит любой
// ответ к одному типу Result и одной функции нормализации Result.Err:
//   - успех: статус < 400 или равен ожидаемому для глагола;
//     для статусов < 400 код конверта должен отсутствовать или быть "0";
//   - иначе: вид ошибки по статусу (400/401/403/404/406/прочее -> Server),
//     msg из конверта или текст статуса, если конверт битый;
//   - сетевые сбои: Server с сообщением "<verb>_connection_error",
//     а метод, URL и причина остаются только во внутренней ошибке.
//
// Client не хранит состояния запроса и безопасен для конкурентного использования.
package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/career-bff/internal/downstream/transport"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// ExpectedStatus — ожидаемый статус успешного ответа для глагола.
func ExpectedStatus(method string) int {
	if method == http.MethodPost {
		return http.StatusCreated
	}

	return http.StatusOK
}

// Request — описание исходящего вызова.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Body   any
	Header http.Header
	// Expected — ожидаемый статус; 0 — по глаголу (ExpectedStatus).
	Expected int
}

// Result — разобранный ответ апстрима.
type Result struct {
	Method string
	URL    string
	Status int
	Code   string
	Msg    string
	Data   json.RawMessage
	// Malformed — тело не является конвертом {"code","msg","data"}.
	Malformed bool
}

// Err нормализует ответ в ошибку таксономии или nil при успехе.
func (r *Result) Err(expected int) error {
	if expected == 0 {
		expected = ExpectedStatus(r.Method)
	}

	if r.Status < http.StatusBadRequest || r.Status == expected {
		if r.Malformed {
			return apierrors.Server("malformed_response",
				fmt.Errorf("%s %s: status %d: body is not an envelope", r.Method, r.URL, r.Status))
		}

		if r.Status < http.StatusBadRequest && r.Code != "" && r.Code != apierrors.CodeOK {
			msg := r.Msg
			if msg == "" {
				msg = "server_error"
			}

			return apierrors.Server(msg,
				fmt.Errorf("%s %s: status %d: envelope code %q", r.Method, r.URL, r.Status, r.Code)).
				WithData(dataOrNil(r.Data))
		}

		return nil
	}

	msg := r.Msg
	if r.Malformed || msg == "" {
		msg = http.StatusText(r.Status)
	}

	e := apierrors.New(apierrors.FromStatus(r.Status), msg)
	e.Err = fmt.Errorf("%s %s: status %d", r.Method, r.URL, r.Status)
	e.Data = dataOrNil(r.Data)

	return e
}

// Options — параметры клиента.
type Options struct {
	// Timeout — верхняя граница каждого вызова; <= 0 — 10s.
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
	Metrics   *transport.Metrics
	// Transport — базовый транспорт; nil — http.DefaultTransport.
	Transport http.RoundTripper
}

// Client — адаптер вызовов.
type Client struct {
	http *http.Client
}

// New собирает клиента с цепочкой: метаданные -> метрики -> логирование -> таймаут.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rt := transport.Chain(opts.Transport,
		transport.WithMetadata(opts.UserAgent),
		transport.WithMetrics(opts.Metrics),
		transport.WithLogging(opts.Logger),
		transport.WithTimeout(timeout),
	)

	return &Client{http: &http.Client{Transport: rt}}
}

// Do выполняет вызов и разбирает конверт. Ошибка — только при сетевом сбое
// (таймаут, отказ соединения, обрыв чтения тела); статусы не проверяются.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	const op = "downstream.Do"

	method := strings.ToUpper(req.Method)
	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apierrors.Server("server_error", fmt.Errorf("%s: %s %s: encode body: %w", op, method, req.URL, err))
		}
		body = bytes.NewReader(raw)
	}

	hreq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, c.connErr(ctx, op, method, req.URL, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set("Accept", "application/json")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, c.connErr(ctx, op, method, req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.connErr(ctx, op, method, req.URL, err)
	}

	res := &Result{Method: method, URL: req.URL, Status: resp.StatusCode}
	parseEnvelope(raw, res)

	return res, nil
}

// Call выполняет вызов и сразу нормализует ответ.
func (c *Client) Call(ctx context.Context, req Request) (*Result, error) {
	const op = "downstream.Call"

	res, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := res.Err(req.Expected); err != nil {
		log.From(ctx).Warn("downstream_failed",
			slog.String("op", op),
			slog.String("method", res.Method),
			slog.String("url", res.URL),
			slog.Int("status", res.Status),
			slog.String("msg", res.Msg),
		)
		return res, err
	}

	return res, nil
}

// Get — простой вызов: возвращает только data.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	return c.data(ctx, Request{Method: http.MethodGet, URL: rawURL, Query: params})
}

func (c *Client) Post(ctx context.Context, rawURL string, body any) (json.RawMessage, error) {
	return c.data(ctx, Request{Method: http.MethodPost, URL: rawURL, Body: body})
}

func (c *Client) Put(ctx context.Context, rawURL string, body any) (json.RawMessage, error) {
	return c.data(ctx, Request{Method: http.MethodPut, URL: rawURL, Body: body})
}

func (c *Client) Delete(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	return c.data(ctx, Request{Method: http.MethodDelete, URL: rawURL, Query: params})
}

func (c *Client) data(ctx context.Context, req Request) (json.RawMessage, error) {
	res, err := c.Call(ctx, req)
	if err != nil {
		return nil, err
	}

	return rawOrNil(res.Data), nil
}

func (c *Client) connErr(ctx context.Context, op, method, rawURL string, err error) error {
	log.From(ctx).Error("downstream_connection_failed",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("url", rawURL),
		slog.String("err", err.Error()),
	)

	return apierrors.Server(strings.ToLower(method)+"_connection_error",
		fmt.Errorf("%s: %s %s: %w", op, method, rawURL, err))
}

type envelope struct {
	Code json.RawMessage `json:"code"`
	Msg  *string         `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// parseEnvelope заполняет Code/Msg/Data. Код допускается строкой или числом.
// Пустое тело (например, 204) конвертом не считается, но и битым тоже.
func parseEnvelope(raw []byte, res *Result) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return
	}

	if raw[0] != '{' {
		res.Malformed = true
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		res.Malformed = true
		return
	}

	if env.Msg != nil {
		res.Msg = *env.Msg
	}
	res.Data = env.Data
	res.Code = codeString(env.Code)
}

func codeString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}

// dataOrNil — data для ошибки: пустое значение даёт nil-интерфейс.
func dataOrNil(raw json.RawMessage) any {
	if raw = rawOrNil(raw); raw == nil {
		return nil
	}

	return raw
}

func rawOrNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	return raw
}
