// errors описывает таксономию ошибок шлюза и единый формат ответа для фронта.
//
// Любая ошибка, дошедшая до HTTP-слоя, рендерится в конверт
// {"code": "<код>", "msg": "<безопасное сообщение>", "data": <any|null>}.
// HTTP-статус определяется видом (Kind) ошибки:
//   - Client -> 400;
//   - Unauthorized -> 401;
//   - Forbidden -> 403;
//   - NotFound -> 404;
//   - NotAcceptable / DuplicateUser -> 406;
//   - TooManyRequests -> 429;
//   - Server и любая нетипизированная ошибка -> 500.
//
// Причина (Err) и стек наружу не отдаются, только логируются.
package errors

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
)

// CodeOK — код успешного ответа в конверте.
const CodeOK = "0"

// Kind — вид ошибки.
type Kind string

const (
	KindClient          Kind = "client"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindNotAcceptable   Kind = "not_acceptable"
	KindDuplicateUser   Kind = "duplicate_user"
	KindTooManyRequests Kind = "too_many_requests"
	KindServer          Kind = "server"
)

type kindMeta struct {
	status int
	code   string
	msg    string
}

var kinds = map[Kind]kindMeta{
	KindClient:          {http.StatusBadRequest, "40000", "client_error"},
	KindUnauthorized:    {http.StatusUnauthorized, "40100", "unauthorized"},
	KindForbidden:       {http.StatusForbidden, "40300", "forbidden"},
	KindNotFound:        {http.StatusNotFound, "40400", "not_found"},
	KindNotAcceptable:   {http.StatusNotAcceptable, "40600", "not_acceptable"},
	KindDuplicateUser:   {http.StatusNotAcceptable, "40600", "duplicate_user"},
	KindTooManyRequests: {http.StatusTooManyRequests, "42900", "frequent_requests"},
	KindServer:          {http.StatusInternalServerError, "50000", "server_error"},
}

// Status возвращает HTTP-статус по умолчанию для вида ошибки.
func (k Kind) Status() int {
	if m, ok := kinds[k]; ok {
		return m.status
	}

	return http.StatusInternalServerError
}

// Error — типизированная ошибка шлюза.
// Msg — безопасное для клиента сообщение, Err — внутренняя причина (только для логов).
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Data any
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает только по виду: errors.Is(err, apierrors.NotFound("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Status — HTTP-статус ошибки.
func (e *Error) Status() int { return e.Kind.Status() }

// WithMsg возвращает копию ошибки того же вида с более конкретным сообщением.
func (e *Error) WithMsg(msg string) *Error {
	cp := *e
	cp.Msg = msg
	return &cp
}

// WithData возвращает копию ошибки с полезной нагрузкой data.
func (e *Error) WithData(data any) *Error {
	cp := *e
	cp.Data = data
	return &cp
}

// New создаёт ошибку вида kind с кодом по умолчанию.
// Пустой msg заменяется сообщением вида по умолчанию.
func New(kind Kind, msg string) *Error {
	m, ok := kinds[kind]
	if !ok {
		kind = KindServer
		m = kinds[KindServer]
	}

	if msg == "" {
		msg = m.msg
	}

	return &Error{Kind: kind, Code: m.code, Msg: msg}
}

func Client(msg string) *Error          { return New(KindClient, msg) }
func Unauthorized(msg string) *Error    { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func NotAcceptable(msg string) *Error   { return New(KindNotAcceptable, msg) }
func DuplicateUser(msg string) *Error   { return New(KindDuplicateUser, msg) }
func TooManyRequests(msg string) *Error { return New(KindTooManyRequests, msg) }

// Server создаёт серверную ошибку с внутренней причиной cause.
func Server(msg string, cause error) *Error {
	e := New(KindServer, msg)
	e.Err = cause
	return e
}

// FromStatus подбирает вид ошибки по HTTP-статусу ответа апстрима.
func FromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindClient
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusNotAcceptable:
		return KindNotAcceptable
	default:
		return KindServer
	}
}

// As достаёт *Error из цепочки.
func As(err error) (*Error, bool) {
	var e *Error
	if goerrors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// KindOf возвращает вид ошибки; нетипизированная ошибка считается Server.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}

	return KindServer
}

// Wrap оставляет типизированную ошибку как есть (сохраняя вид),
// а нетипизированную превращает в Server с диагностикой op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := As(err); ok {
		return fmt.Errorf("%s: %w", op, err)
	}

	return Server("server_error", fmt.Errorf("%s: %w", op, err))
}

// Response — корневой объект ответа для фронта.
type Response struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и конверт ответа.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500, чтобы не отдать "200 OK" с телом ошибки;
//   - err не *Error - 500/server_error без утечки деталей;
//   - err — *Error - статус и код по виду, msg и data как есть.
func ToHTTP(err error) (int, Response) {
	e, ok := As(err)
	if err == nil || !ok {
		m := kinds[KindServer]
		return m.status, Response{Code: m.code, Msg: m.msg}
	}

	code := e.Code
	if code == "" {
		code = kinds[e.Kind].code
	}

	return e.Status(), Response{Code: code, Msg: e.Msg, Data: e.Data}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус и конверт, прокидывает X-Request-Id в заголовок ответа.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		w.Header().Set("X-Request-Id", rid)
	}

	writeJSON(w, status, resp)
}

// WriteSuccess пишет успешный конверт {code:"0", msg, data}.
func WriteSuccess(w http.ResponseWriter, status int, msg string, data any) {
	if msg == "" {
		msg = "ok"
	}

	writeJSON(w, status, Response{Code: CodeOK, Msg: msg, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
