package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bandroom/internal/errors"
	"bandroom/internal/model"
	"bandroom/internal/session"
)

func TestRenderer_Pages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{"add_room", "browse_rooms", "my_room", "edit_room", "login", "register", "error"} {
		assert.Contains(t, r.pages, name)
	}
}

func TestRenderer_RendersLayoutAndNotices(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "browse_rooms", Page{
		Title:   "Rooms",
		Session: &session.Session{Username: "alice"},
		Notices: []apperrors.Notice{{Category: apperrors.CategorySuccess, Message: "Room created successfully"}},
		Data:    []model.Room{{ID: "r1", BandName: "<Foo>", RoomKey: "abc"}},
	}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Logged in as alice")
	assert.Contains(t, out, `class="notice success"`)
	assert.Contains(t, out, "Room created successfully")
	assert.Contains(t, out, `href="/my_room/r1"`)
	assert.Contains(t, out, "&lt;Foo&gt;")
	assert.NotContains(t, out, "abc")
}

func TestRenderer_CSRFFieldOnlyWhenTokenSet(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "login", Page{Session: session.Anonymous()}, nil))
	assert.NotContains(t, buf.String(), `name="_csrf"`)

	buf.Reset()
	require.NoError(t, r.Render(&buf, "login", Page{Session: session.Anonymous(), CSRF: "tok"}, nil))
	assert.Contains(t, buf.String(), `name="_csrf" value="tok"`)
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", Page{}, nil))
}
