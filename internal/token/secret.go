package token

import (
	"errors"
	"fmt"
)

// ErrEmptySubject — идентификатор субъекта пуст.
var ErrEmptySubject = errors.New("empty subject id")

// SecretDeriver выводит ключ подписи access-токена по идентификатору субъекта.
type SecretDeriver interface {
	Derive(subjectID string) ([]byte, error)
}

// ReversedIDDeriver — ключ = Prefix + цифры subjectID в обратном порядке.
//
// Ключ не случаен и нигде не хранится: любой, кто знает правило и id,
// получит тот же ключ. Оставлен для совместимости с уже выданными токенами;
// для новых установок нужен централизованный секрет с ротацией.
type ReversedIDDeriver struct {
	Prefix string
}

func (d ReversedIDDeriver) Derive(subjectID string) ([]byte, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("token.ReversedIDDeriver.Derive: %w", ErrEmptySubject)
	}

	r := []rune(subjectID)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}

	return []byte(d.Prefix + string(r)), nil
}

// StaticDeriver — один общий ключ для всех субъектов.
type StaticDeriver []byte

func (d StaticDeriver) Derive(subjectID string) ([]byte, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("token.StaticDeriver.Derive: %w", ErrEmptySubject)
	}

	return []byte(d), nil
}
