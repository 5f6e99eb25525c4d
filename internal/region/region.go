// region выбирает базовый URL апстрима (auth/user/search) по региону пользователя.
// Неизвестный или пустой регион получает хост "default".
package region

import (
	"fmt"

	"github.com/pribylovaa/career-bff/internal/config"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
)

// Default — ключ хоста по умолчанию.
const Default = "default"

// Hosts — таблицы хостов по сервисам.
type Hosts struct {
	current string
	auth    map[string]string
	user    map[string]string
	search  map[string]string
}

// New строит таблицы из конфигурации.
func New(cfg config.RegionsConfig) *Hosts {
	current := cfg.Current
	if current == "" {
		current = Default
	}

	return &Hosts{
		current: current,
		auth:    cfg.Auth,
		user:    cfg.User,
		search:  cfg.Search,
	}
}

// Current — регион, в котором работает шлюз.
func (h *Hosts) Current() string { return h.current }

func (h *Hosts) Auth(region string) (string, error)   { return lookup("auth", h.auth, region) }
func (h *Hosts) User(region string) (string, error)   { return lookup("user", h.user, region) }
func (h *Hosts) Search(region string) (string, error) { return lookup("search", h.search, region) }

func lookup(service string, hosts map[string]string, region string) (string, error) {
	if host, ok := hosts[region]; ok && host != "" {
		return host, nil
	}

	if host := hosts[Default]; host != "" {
		return host, nil
	}

	e := apierrors.Client(fmt.Sprintf("invalid region: %s", region))
	e.Err = fmt.Errorf("region.%s: no default host", service)
	return "", e
}
