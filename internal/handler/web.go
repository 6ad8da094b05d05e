package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "bandroom/internal/errors"
	"bandroom/internal/session"
	"bandroom/internal/view"
)

// Pages renders templates and queues notices for the HTML handlers.
type Pages struct {
	notices *session.Notices
}

// NewPages creates the page helper shared by the HTML handlers.
func NewPages(notices *session.Notices) *Pages {
	return &Pages{notices: notices}
}

// Render writes the named page with the visitor's session, pending notices and CSRF token.
func (p *Pages) Render(c echo.Context, status int, name, title string, data any) error {
	return c.Render(status, name, view.Page{
		Title:   title,
		Session: session.FromContext(c),
		Notices: p.notices.Pop(c),
		CSRF:    csrfToken(c),
		Data:    data,
	})
}

// Redirect queues notice and sends the browser to path.
func (p *Pages) Redirect(c echo.Context, path string, notice apperrors.Notice) error {
	if err := p.notices.Add(c, notice); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, path)
}

// Success queues a success notice and redirects.
func (p *Pages) Success(c echo.Context, path, msg string) error {
	return p.Redirect(c, path, apperrors.Notice{Category: apperrors.CategorySuccess, Message: msg})
}

// Fail turns a domain error into a notice and redirects. Other errors are returned unchanged.
func (p *Pages) Fail(c echo.Context, path string, err error) error {
	notice, ok := apperrors.NoticeFor(err)
	if !ok {
		return err
	}
	return p.Redirect(c, path, notice)
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
