package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, args []string, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--offline", "--countdown", "0s", "--settle", "2s"}, args...))
	cmd.SetIn(strings.NewReader(strings.Join(script, "\n") + "\n"))
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestShellAnonymousContainment(t *testing.T) {
	out := runScript(t, []string{"--path", "/app/tools"}, "quit")

	assert.Contains(t, out, "tab opened at /app/tools")
	assert.Contains(t, out, "redirect /app/tools -> /")
	assert.Contains(t, out, "view marketing at /")
}

func TestShellLoginAndLogout(t *testing.T) {
	out := runScript(t, []string{"--path", "/"},
		"login user-1:owner@example.com",
		"go /faq",
		"logout",
	)

	assert.Contains(t, out, "signed in as user-1")
	assert.Contains(t, out, "redirect / -> /app")
	assert.Contains(t, out, "view app at /app")
	assert.Contains(t, out, "view marketing at /faq")
	assert.Contains(t, out, "signed out")
}

func TestShellPaymentFailure(t *testing.T) {
	out := runScript(t, []string{"--path", "/app", "--token", "user-1", "--subscription", "past_due"}, "state")

	assert.Contains(t, out, "redirect /app -> /account")
	assert.Contains(t, out, `"subscription_redirect": "/account"`)
}

func TestShellOnboarding(t *testing.T) {
	out := runScript(t, []string{"--path", "/app", "--token", "user-1", "--profiles", "0"}, "go /pricing")

	assert.Contains(t, out, "redirect /app -> /onboarding")
	assert.Contains(t, out, "view onboarding at /onboarding")
	assert.Contains(t, out, "redirect /pricing -> /onboarding")
}

func TestShellStaticPage(t *testing.T) {
	t.Run("Should render a review page without running the guard", func(t *testing.T) {
		out := runScript(t, []string{"--path", "/r/acme-plumbing", "--token", "user-1"}, "state")

		assert.Contains(t, out, "view public_review at /r/acme-plumbing")
		assert.Contains(t, out, "static page /r/acme-plumbing, guard not running")
		assert.NotContains(t, out, "redirect /r/acme-plumbing")
		assert.NotContains(t, out, "view app")
	})

	t.Run("Should load the guarded shell on the next navigation", func(t *testing.T) {
		out := runScript(t, []string{"--path", "/privacy-policy", "--token", "user-1"}, "go /app")

		assert.Contains(t, out, "view privacy_policy")
		assert.Contains(t, out, "view app at /app")
	})

	t.Run("Should guard a review path reached after load", func(t *testing.T) {
		out := runScript(t, []string{"--path", "/", "--token", "user-1"}, "go /r/acme-plumbing")

		assert.Contains(t, out, "redirect /r/acme-plumbing -> /app")
		assert.NotContains(t, out, "view public_review")
	})
}

func TestShellRejectsUnknownSubscription(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--offline", "--subscription", "lifetime"})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestShellBadCommands(t *testing.T) {
	out := runScript(t, nil, "go", "login", "dance", "login :nobody")

	assert.Contains(t, out, "usage: go <path>")
	assert.Contains(t, out, "usage: login <token>")
	assert.Contains(t, out, `unknown command "dance"`)
	assert.Contains(t, out, "login failed")
}
