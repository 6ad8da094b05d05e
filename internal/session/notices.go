package session

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	apperrors "bandroom/internal/errors"
)

const noticesName = "bandroom_notices"

func init() {
	gob.Register(apperrors.Notice{})
}

// Notices keeps one-shot messages for the visitor's next page in a signed cookie.
type Notices struct {
	store *sessions.CookieStore
}

// NewNotices builds a notice store signed with a key derived from secret.
func NewNotices(secret string, secure bool) *Notices {
	hashKey := sha256.Sum256([]byte("notices:" + secret))
	store := sessions.NewCookieStore(hashKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Notices{store: store}
}

// Add queues a notice.
func (n *Notices) Add(c echo.Context, notice apperrors.Notice) error {
	// A tampered or foreign cookie decodes with an error but still yields a fresh session.
	sess, _ := n.store.Get(c.Request(), noticesName)
	sess.AddFlash(notice)
	return sess.Save(c.Request(), c.Response())
}

// Success queues a success notice.
func (n *Notices) Success(c echo.Context, msg string) error {
	return n.Add(c, apperrors.Notice{Category: apperrors.CategorySuccess, Message: msg})
}

// Error queues an error notice.
func (n *Notices) Error(c echo.Context, msg string) error {
	return n.Add(c, apperrors.Notice{Category: apperrors.CategoryError, Message: msg})
}

// Pop returns and clears the queued notices.
func (n *Notices) Pop(c echo.Context) []apperrors.Notice {
	sess, err := n.store.Get(c.Request(), noticesName)
	if err != nil && sess.IsNew {
		return nil
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())

	notices := make([]apperrors.Notice, 0, len(flashes))
	for _, f := range flashes {
		if notice, ok := f.(apperrors.Notice); ok {
			notices = append(notices, notice)
		}
	}
	return notices
}
