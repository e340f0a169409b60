//go:build integration

package sandbox_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uistudio/internal/sandbox"
)

const flowDocument = `<!DOCTYPE html>
<html>
<body>
  <nav>
    <a id="to-2" href="/somewhere-else" data-navigate="page-2">Second</a>
    <a id="external" href="https://example.com/" target="_blank">External</a>
  </nav>
  <section id="page-1"><h1>First</h1></section>
  <section id="page-2"><h1>Second</h1></section>
  <form id="f"><input name="email"><button id="submit" type="submit">Submit</button></form>
  <button id="login">Log in</button>
</body>
</html>`

func openSandboxed(t *testing.T, doc string) *rod.Page {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, sandbox.Isolate(doc))
	}))
	t.Cleanup(srv.Close)

	u := launcher.New().Headless(true).MustLaunch()
	browser := rod.New().ControlURL(u).MustConnect()
	t.Cleanup(browser.MustClose)

	page := browser.Timeout(30 * time.Second).MustPage(srv.URL)
	page.MustWaitLoad()
	return page
}

func TestRouterSwitchesPages(t *testing.T) {
	page := openSandboxed(t, flowDocument)
	startURL := page.MustInfo().URL

	assert.True(t, page.MustElement("#page-1").MustVisible())
	assert.False(t, page.MustElement("#page-2").MustVisible())

	page.MustElement("#to-2").MustClick()

	assert.False(t, page.MustElement("#page-1").MustVisible())
	assert.True(t, page.MustElement("#page-2").MustVisible())
	assert.Equal(t, startURL, page.MustInfo().URL)
}

func TestRouterMocksSubmit(t *testing.T) {
	page := openSandboxed(t, flowDocument)
	button := page.MustElement("#submit")

	button.MustClick()
	assert.Equal(t, "Loading...", button.MustText())

	page.MustWait(`() => document.getElementById('submit').textContent === 'Saved!'`)
	page.MustWait(`() => document.getElementById('submit').textContent === 'Submit'`)
	assert.False(t, button.MustProperty("disabled").Bool())
}

func TestRouterShowsToastOnLogin(t *testing.T) {
	page := openSandboxed(t, flowDocument)
	page.MustElement("#login").MustClick()
	page.MustWait(`() => document.querySelector('[data-sandbox-toast]') !== null`)
	require.Equal(t, "Log in", page.MustElement("#login").MustText())
}

const layoutDocument = `<!DOCTYPE html>
<html>
<body>
  <header id="page-header"><h1 id="brand">Shop</h1></header>
  <main id="page-content">
    <section id="page-1" data-page="home"><p>Home</p></section>
    <section id="page-2" data-page="cart"><p>Cart</p><a id="back" href="#" data-navigate="home">Back</a></section>
  </main>
  <a id="to-cart" href="#" data-navigate="page-2">Cart</a>
</body>
</html>`

func TestRouterIgnoresLayoutIDs(t *testing.T) {
	page := openSandboxed(t, layoutDocument)

	assert.True(t, page.MustElement("#page-header").MustVisible())
	assert.True(t, page.MustElement("#page-content").MustVisible())
	assert.True(t, page.MustElement("#page-1").MustVisible())
	assert.False(t, page.MustElement("#page-2").MustVisible())

	page.MustElement("#to-cart").MustClick()
	assert.True(t, page.MustElement("#page-content").MustVisible())
	assert.False(t, page.MustElement("#page-1").MustVisible())
	assert.True(t, page.MustElement("#page-2").MustVisible())

	page.MustElement("#back").MustClick()
	assert.True(t, page.MustElement("#page-1").MustVisible())
	assert.True(t, page.MustElement("#brand").MustVisible())
}
