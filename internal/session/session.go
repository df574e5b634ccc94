package session

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	security "github.com/linemk/printshop/internal/jwt-new"
)

// Ключи долговременного хранилища
const (
	KeyToken       = "token"
	KeyLocale      = "locale"
	KeyCartSession = "cart_session"
)

const DefaultLocale = "en"

// SupportedLocales - языки, которые умеет бэкенд
var SupportedLocales = []string{"en", "uk", "pt"}

// Store - долговременное хранилище значений сессии
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Session - состояние клиента, общее для всех страниц.
// Читается из Store при старте, изменения пишутся сразу.
type Session struct {
	mu      sync.RWMutex
	store   Store
	envLang string

	token       string
	locale      string
	cartSession string

	// не сохраняется между запусками
	lastOrderID int64
}

// Load читает сохранённые значения. envLang - значение LANG для определения языка.
func Load(store Store, envLang string) (*Session, error) {
	const op = "session.Load"

	s := &Session{store: store, envLang: envLang}
	if err := s.read(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Reload перечитывает долговременные значения, например после входа через CLI,
// пока дашборд уже запущен. Последний заказ не трогается.
func (s *Session) Reload() error {
	const op = "session.Reload"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.read(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// read вызывается под s.mu или до того, как сессия стала доступна другим
func (s *Session) read() error {
	token, err := s.store.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	cartSession, err := s.store.Get(KeyCartSession)
	if err != nil {
		return fmt.Errorf("read cart session: %w", err)
	}
	saved, err := s.store.Get(KeyLocale)
	if err != nil {
		return fmt.Errorf("read locale: %w", err)
	}

	s.token = token
	s.cartSession = cartSession
	s.locale = DetectLocale(saved, s.envLang)
	return nil
}

// LoadFromEnv - то же, что Load, язык окружения берётся из LANG
func LoadFromEnv(store Store) (*Session, error) {
	return Load(store, os.Getenv("LANG"))
}

// DetectLocale: сохранённое значение, затем первые две буквы LANG, затем en
func DetectLocale(saved, envLang string) string {
	if IsSupported(saved) {
		return saved
	}
	if len(envLang) >= 2 {
		if lang := strings.ToLower(envLang[:2]); IsSupported(lang) {
			return lang
		}
	}
	return DefaultLocale
}

func IsSupported(locale string) bool {
	return slices.Contains(SupportedLocales, locale)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) error {
	return s.write(KeyToken, token, &s.token)
}

// ClearToken - выход из аккаунта
func (s *Session) ClearToken() error {
	return s.write(KeyToken, "", &s.token)
}

// Role - роль из токена, пустая если токена нет
func (s *Session) Role() string {
	return security.RoleFromToken(s.Token())
}

func (s *Session) IsAdmin() bool {
	return s.Role() == security.RoleAdmin
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Session) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

func (s *Session) SetLocale(locale string) error {
	if !IsSupported(locale) {
		return fmt.Errorf("unsupported locale %q, expected one of %s", locale, strings.Join(SupportedLocales, ", "))
	}
	return s.write(KeyLocale, locale, &s.locale)
}

func (s *Session) CartSession() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartSession
}

func (s *Session) SetCartSession(marker string) error {
	return s.write(KeyCartSession, marker, &s.cartSession)
}

func (s *Session) LastOrderID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastOrderID
}

func (s *Session) SetLastOrderID(id int64) {
	s.mu.Lock()
	s.lastOrderID = id
	s.mu.Unlock()
}

func (s *Session) write(key, value string, field *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *field == value {
		return nil
	}
	var err error
	if value == "" {
		err = s.store.Delete(key)
	} else {
		err = s.store.Set(key, value)
	}
	if err != nil {
		return fmt.Errorf("session: persist %s: %w", key, err)
	}
	*field = value
	return nil
}
