package templates_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saddagada1/bella-server-web/pkg/email/templates"
)

func TestOTPTemplates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("verify email", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(ctx, templates.VerifyEmail("K3Q9ZB"))
		require.NoError(t, err)
		assert.Contains(t, html, "<title>Verify Email</title>")
		assert.Contains(t, html, "Your Token is: ")
		assert.Contains(t, html, "K3Q9ZB")
	})

	t.Run("forgot password", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(ctx, templates.ForgotPassword("K3Q9ZB"))
		require.NoError(t, err)
		assert.Contains(t, html, "<title>Forgot Password</title>")
		assert.Contains(t, html, "K3Q9ZB")
	})

	t.Run("body is nested in layout", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(ctx, templates.ForgotPassword("K3Q9ZB"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
		assert.True(t, strings.HasSuffix(html, "</body></html>"))
		body := html[strings.Index(html, "<body"):]
		assert.Contains(t, body, "If it was not you, ignore this email.")
		assert.Contains(t, body, "It expires in one hour.")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := templates.Render(cctx, templates.VerifyEmail("K3Q9ZB"))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("code is escaped", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(ctx, templates.VerifyEmail("<b>"))
		require.NoError(t, err)
		assert.NotContains(t, html, "<b>")
		assert.Contains(t, html, "&lt;b&gt;")
	})
}
