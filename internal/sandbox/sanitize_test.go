package sandbox

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStripsTargetAttributes(t *testing.T) {
	in := `<a href="/x" target="_blank">x</a><form target='_top'></form><a target=_parent href="#a">a</a>`
	out := Sanitize(in)
	assert.NotContains(t, strings.ToLower(out), "target")
	assert.Contains(t, out, `<a href="/x">x</a>`)
	assert.Contains(t, out, `<a href="#a">a</a>`)
}

func TestSanitizeKeepsTargetOutsideTags(t *testing.T) {
	in := `<p>aim at the target="goal"</p><script>var o = {}; o.target = 1;</script>`
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitizeNeutralizesJavascriptLinks(t *testing.T) {
	in := `<a href="javascript:alert(1)">a</a><a HREF='JavaScript:void(0)'>b</a><a href=javascript:go()>c</a>`
	out := Sanitize(in)
	assert.NotContains(t, strings.ToLower(out), "javascript:")
	assert.Equal(t, 3, strings.Count(out, `href="#"`))
}

func TestSanitizeBlocksNavigation(t *testing.T) {
	cases := []string{
		`window.location = "https://evil.example";`,
		`window.location.href = '/checkout';`,
		`top.location.href = url;`,
		`parent.location = base + "/next";`,
		`window.top.location = "x";`,
		`location.href = "/a";`,
		`location = next;`,
		`location.assign("/a");`,
		`window.location.replace('/b');`,
		`window.open("https://evil.example", "_blank");`,
		"document.location = `/t`;",
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			out := Sanitize("<script>" + c + "</script>")
			assert.Contains(t, out, NavigationBlocked)
			assert.NotContains(t, out, "evil.example")
			assert.NotRegexp(t, `location\s*(\.\s*href\s*)?=[^=]`, out)
		})
	}
}

func TestSanitizeKeepsExpressionsValid(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			`<button onClick={() => window.location.href = '/signup'}>Join</button>`,
			`<button onClick={() => ` + NavigationBlocked + `}>Join</button>`,
		},
		{
			`<button onclick="ok && (location.href='/x')">Go</button>`,
			`<button onclick="ok && (` + NavigationBlocked + `)">Go</button>`,
		},
		{
			`<script>const go = () => window.open('/w');</script>`,
			`<script>const go = () => ` + NavigationBlocked + `;</script>`,
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Sanitize(tc.in))
		assert.Equal(t, tc.want, Sanitize(tc.want))
	}
}

func TestSanitizeLeavesUnrelatedCode(t *testing.T) {
	cases := []string{
		`if (window.location.href === "/x") { go(); }`,
		`const location = useLocation();`,
		`let location = props.location;`,
		`item.location = "Berlin";`,
		`const geolocation = "x";`,
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			doc := "<script>" + c + "</script>"
			assert.Equal(t, doc, Sanitize(doc))
		})
	}
}

func TestSanitizeAdjacentStatements(t *testing.T) {
	out := Sanitize(`<script>location='a';location='b';window.open('c')</script>`)
	assert.Equal(t, 3, strings.Count(out, NavigationBlocked))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	docs := []string{
		"",
		`<!DOCTYPE html><html><body><a href="javascript:x()" target="_blank">go</a></body></html>`,
		`<script>location='a';location='b';window.open('c');top.location.href = a + "/b" + c;</script>`,
		`<button onclick="window.location.href='/next'">Next</button>`,
		`<a target="a" target='b' target=c>x</a>`,
		`<div title="a>b" target="x">t</div>`,
		"<script>var s = \"window.location.href = \\\"/x\\\"\";</script>",
		InjectRouter(`<html><body><p>x</p></body></html>`),
	}
	for _, doc := range docs {
		once := Sanitize(doc)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestIsolateIsIdempotent(t *testing.T) {
	doc := `<!DOCTYPE html><html><body><a href="/x" target="_blank">x</a><script>window.location="/y"</script></body></html>`
	once := Isolate(doc)
	assert.Equal(t, once, Isolate(once))
	assert.Equal(t, 1, strings.Count(once, `id="`+RouterID+`"`))
}

func TestInjectRouterPlacement(t *testing.T) {
	t.Run("before last body close", func(t *testing.T) {
		doc := `<html><body><pre></body></pre></BODY></html>`
		out := InjectRouter(doc)
		idx := strings.Index(out, `<script id="`+RouterID+`">`)
		require.GreaterOrEqual(t, idx, 0)
		assert.True(t, strings.HasSuffix(out, "</BODY></html>"))
		assert.Less(t, strings.Index(out, "</body></pre>"), idx)
	})
	t.Run("no body", func(t *testing.T) {
		out := InjectRouter("<p>fragment</p>")
		assert.True(t, strings.HasPrefix(out, "<p>fragment</p>"))
		assert.Contains(t, out, RouterID)
	})
	t.Run("once", func(t *testing.T) {
		once := InjectRouter("<body></body>")
		assert.Equal(t, once, InjectRouter(once))
	})
}

func TestRouterScriptSurvivesSanitize(t *testing.T) {
	assert.Equal(t, routerScript, Sanitize(routerScript))

	body := strings.TrimPrefix(routerScript, `<script id="`+RouterID+`">`)
	body = strings.TrimSuffix(body, "</script>")
	assert.NotRegexp(t, regexp.MustCompile(`<[a-zA-Z]`), body)
	assert.NotContains(t, body, "location")
	assert.NotContains(t, body, "window.open")
}

func TestRouterScriptBehaviour(t *testing.T) {
	for _, want := range []string{
		"addEventListener('click'",
		"addEventListener('submit'",
		"preventDefault()",
		"stopPropagation()",
		"}, true);",
		"[data-navigate]",
		`[id^="page-"]`,
		`/^page-\d+$/`,
		"p.parentNode !== page.parentNode",
		"'Loading...'",
		"'Saved!'",
		"800",
		"1500",
		"MutationObserver",
	} {
		assert.Contains(t, routerScript, want)
	}
}
