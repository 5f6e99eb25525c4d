package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WithTimeout ограничивает исходящий запрос таймаутом d.
//
// Контракт:
//  1. d <= 0 — запрос уходит без изменений;
//  2. иначе действует min(дедлайн ctx, now+d): дедлайн входящего запроса
//     не продлевается, но и не отключает таймаут вызова;
//  3. cancel() вызывается при закрытии тела ответа (или сразу, если
//     RoundTrip вернул ошибку).
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if d <= 0 {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
