// middleware — net/http-обёртки публичного REST-слоя шлюза.
package middleware

import (
	"net/http"
)

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain применяет мидлвары к обработчику в порядке их перечисления.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// recorder запоминает статус и размер ответа.
// before вызывается ровно один раз, до отправки заголовков.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
	before func(http.Header)
}

func record(w http.ResponseWriter, before func(http.Header)) *recorder {
	return &recorder{ResponseWriter: w, before: before}
}

func (w *recorder) WriteHeader(code int) {
	if w.status != 0 {
		return
	}

	w.status = code
	if w.before != nil {
		w.before(w.Header())
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// Unwrap нужен http.ResponseController.
func (w *recorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }
