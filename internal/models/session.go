package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Поля записи сессии.
const (
	FieldUserID       = "user_id"
	FieldRegion       = "region"
	FieldEmail        = "email"
	FieldOnline       = "online"
	FieldRefreshToken = "refresh_token"
	FieldToken        = "token"
)

// Session — запись аутентифицированной сессии в кэше (ключ — user_id строкой).
// Помимо служебных полей хранит всё, что вернул auth-апстрим при логине.
// Числа хранятся как json.Number, чтобы идентификаторы не теряли точность.
type Session map[string]any

// DecodeSession разбирает JSON-объект в сессию.
func DecodeSession(raw []byte) (Session, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var s Session
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("models.DecodeSession: %w", err)
	}

	if s == nil {
		return nil, fmt.Errorf("models.DecodeSession: not an object")
	}

	return s, nil
}

func (s Session) UserID() string       { return asString(s[FieldUserID]) }
func (s Session) Region() string       { return asString(s[FieldRegion]) }
func (s Session) Email() string        { return asString(s[FieldEmail]) }
func (s Session) RefreshToken() string { return asString(s[FieldRefreshToken]) }

// Online — флаг "в сети"; отсутствующее или не булево значение — false.
func (s Session) Online() bool {
	b, _ := s[FieldOnline].(bool)
	return b
}

func (s Session) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Clone — поверхностная копия.
func (s Session) Clone() Session {
	out := make(Session, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

// Without возвращает копию без полей deny.
func (s Session) Without(deny []string) Session {
	out := s.Clone()
	for _, f := range deny {
		delete(out, f)
	}

	return out
}

// Offline — урезанная запись после выхода: только user_id, region и online=false.
func (s Session) Offline() Session {
	return Session{
		FieldUserID: s[FieldUserID],
		FieldRegion: s[FieldRegion],
		FieldOnline: false,
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
