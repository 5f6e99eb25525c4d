package middleware

import (
	"net/http"
	"strconv"
	"time"
)

const headerResponseTime = "X-Response-Time"

// ResponseTime добавляет X-Response-Time: секунды от входа в обработчик
// до отправки статуса.
func ResponseTime() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(record(w, func(h http.Header) {
				h.Set(headerResponseTime, strconv.FormatFloat(time.Since(start).Seconds(), 'f', 6, 64))
			}), r)
		})
	}
}
