package preview

import (
	"encoding/json"
	"regexp"
	"strings"

	"uistudio/internal/sandbox"
)

// DefaultEntryPoint is the component name used when none can be discovered.
const DefaultEntryPoint = "App"

const ident = `[A-Za-z_$][\w$]*`

var (
	useDirective = regexp.MustCompile(`(?m)^\s*['"]use (?:client|server|strict)['"];?[ \t]*\r?\n?`)
	importFrom   = regexp.MustCompile(`(?ms)^[ \t]*import\s[^;'"]*?\sfrom\s*['"][^'"\n]+['"][ \t]*;?[ \t]*\r?\n?`)
	importBare   = regexp.MustCompile(`(?m)^[ \t]*import\s*['"][^'"\n]+['"][ \t]*;?[ \t]*\r?\n?`)

	defaultNamedFunc = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+(async\s+)?function(\s*\*?\s*)(` + ident + `)`)
	defaultAnonFunc  = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+(async\s+)?function\s*\(`)
	defaultClass     = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+class\s+(` + ident + `)`)
	defaultArrow     = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+(async\s*)?(\(|` + ident + `\s*=>)`)
	defaultName      = regexp.MustCompile(`(?m)^[ \t]*export\s+default\s+(` + ident + `)[ \t]*;?[ \t]*\r?(?:\n|$)`)
	defaultWrapped   = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+((?:` + ident + `\.)?` + ident + `\s*\()`)
	exportList       = regexp.MustCompile(`(?m)^[ \t]*export\s*(?:type\s*)?\{[^}]*\}(?:\s*from\s*['"][^'"\n]+['"])?[ \t]*;?[ \t]*\r?\n?`)
	exportDecl       = regexp.MustCompile(`(?m)^([ \t]*)export\s+((?:async\s+)?(?:const|let|var|function|class|type|interface|enum|abstract)\b)`)

	declaredApp    = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?(?:async\s+)?(?:function\s*\*?|const|let|var|class)\s+App\b`)
	uppercaseDecl  = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:async\s+)?(?:function\s*\*?|const|let|var|class)\s+([A-Z][\w$]*)`)
	defaultKeyword = regexp.MustCompile(`(?m)^[ \t]*export\s+default\b`)
)

var reservedDefaults = map[string]bool{"function": true, "class": true, "async": true}

// EntryPoint discovers the component a module renders: its default export, then a
// declared App, then the first uppercase function or constant, then App.
func EntryPoint(src string) string {
	if m := defaultNamedFunc.FindStringSubmatch(src); m != nil {
		return m[4]
	}
	if m := defaultClass.FindStringSubmatch(src); m != nil {
		return m[2]
	}
	if defaultWrapped.MatchString(src) {
		return DefaultEntryPoint
	}
	if m := defaultName.FindStringSubmatch(src); m != nil && !reservedDefaults[m[1]] {
		return m[1]
	}
	if defaultKeyword.MatchString(src) {
		return DefaultEntryPoint
	}
	if declaredApp.MatchString(src) {
		return DefaultEntryPoint
	}
	if m := uppercaseDecl.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return DefaultEntryPoint
}

// StripModuleSyntax removes import and export syntax line by line so the module
// can run as a plain script. Default exports become named declarations; an
// anonymous default export is named App.
func StripModuleSyntax(src string) string {
	out := useDirective.ReplaceAllString(src, "")
	out = importFrom.ReplaceAllString(out, "")
	out = importBare.ReplaceAllString(out, "")
	out = defaultNamedFunc.ReplaceAllString(out, "${1}${2}function${3}${4}")
	out = defaultAnonFunc.ReplaceAllString(out, "${1}${2}function App(")
	out = defaultClass.ReplaceAllString(out, "${1}class ${2}")
	out = defaultArrow.ReplaceAllString(out, "${1}const App = ${2}${3}")
	out = defaultWrapped.ReplaceAllString(out, "${1}const App = ${2}")
	out = defaultName.ReplaceAllStringFunc(out, func(line string) string {
		if m := defaultName.FindStringSubmatch(line); m != nil && reservedDefaults[m[1]] {
			return line
		}
		return ""
	})
	out = exportList.ReplaceAllString(out, "")
	out = exportDecl.ReplaceAllString(out, "${1}${2}")
	return strings.TrimSpace(out)
}

const componentHarness = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Preview</title>
  ` + StylingEngineTag + `
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script src="https://unpkg.com/@babel/standalone/babel.min.js"></script>
  <style>
    #preview-error { margin: 1.5rem; padding: 1rem 1.25rem; border-radius: .5rem; background: #fef2f2; color: #991b1b; border: 1px solid #fecaca; font: 14px/1.5 ui-monospace, monospace; white-space: pre-wrap; }
  </style>
</head>
<body>
  <div id="root"></div>
  <script>
  (function () {
    var mount = document.getElementById('root');
    function showError(message) {
      mount.innerHTML = '';
      var banner = document.createElement('div');
      banner.id = 'preview-error';
      banner.textContent = 'Preview error: ' + message;
      mount.appendChild(banner);
    }
    window.addEventListener('error', function (event) {
      showError(event && event.message ? event.message : 'Script error');
    });
    if (!window.React || !window.ReactDOM || !window.Babel) {
      showError('Component runtime failed to load');
      return;
    }

    var source = __PREVIEW_SOURCE__;
    var entry = __PREVIEW_ENTRY__;
    var h = React.createElement;

    function Link(props) {
      var rest = Object.assign({}, props);
      var href = rest.href;
      if (href && typeof href === 'object') href = href.pathname || '#';
      ['prefetch', 'replace', 'scroll', 'shallow', 'legacyBehavior', 'passHref', 'children'].forEach(function (k) { delete rest[k]; });
      rest.href = href || '#';
      return h('a', rest, props.children);
    }
    function Image(props) {
      var rest = Object.assign({}, props);
      ['fill', 'priority', 'placeholder', 'blurDataURL', 'quality', 'loader', 'unoptimized'].forEach(function (k) { delete rest[k]; });
      if (rest.src && typeof rest.src === 'object') rest.src = rest.src.src;
      if (props.fill) rest.style = Object.assign({ position: 'absolute', inset: 0, width: '100%', height: '100%', objectFit: 'cover' }, props.style);
      return h('img', rest);
    }
    function noop() {}
    function useRouter() {
      return { push: noop, replace: noop, back: noop, forward: noop, refresh: noop, prefetch: noop, pathname: '/', query: {}, asPath: '/' };
    }
    function Head() { return null; }
    function Icon(props) {
      return h('span', { className: (props && props.className) || '', 'aria-hidden': true, style: { display: 'inline-block', width: '1em', height: '1em' } });
    }

    var shims = {
      React: React,
      ReactDOM: ReactDOM,
      useState: React.useState,
      useEffect: React.useEffect,
      useLayoutEffect: React.useLayoutEffect,
      useMemo: React.useMemo,
      useCallback: React.useCallback,
      useRef: React.useRef,
      useReducer: React.useReducer,
      useContext: React.useContext,
      useId: React.useId,
      createContext: React.createContext,
      forwardRef: React.forwardRef,
      memo: React.memo,
      Fragment: React.Fragment,
      Link: Link,
      Image: Image,
      Head: Head,
      Script: Head,
      useRouter: useRouter,
      usePathname: function () { return '/'; },
      useSearchParams: function () { return new URLSearchParams(); }
    };
    var scope = new Proxy(shims, {
      has: function (target, key) {
        if (key in target) return true;
        return typeof key === 'string' && key !== entry && /^[A-Z]/.test(key) && !(key in window);
      },
      get: function (target, key) {
        if (key in target) return target[key];
        if (key === Symbol.unscopables) return undefined;
        return Icon;
      }
    });

    class ErrorBoundary extends React.Component {
      constructor(props) {
        super(props);
        this.state = { error: null };
      }
      static getDerivedStateFromError(error) {
        return { error: error };
      }
      render() {
        if (this.state.error) {
          return h('div', { id: 'preview-error' }, 'Preview error: ' + (this.state.error.message || String(this.state.error)));
        }
        return this.props.children;
      }
    }

    try {
      var code = Babel.transform(source, {
        filename: 'App.tsx',
        sourceType: 'script',
        presets: [['typescript', { isTSX: true, allExtensions: true }], ['react', { runtime: 'classic' }]]
      }).code;
      var factory = new Function('__scope', 'with (__scope) {\n' + code + '\nreturn typeof ' + entry + ' !== "undefined" ? ' + entry + ' : null;\n}');
      var Component = factory(scope);
      if (!Component) {
        showError('No component named ' + entry + ' was found');
        return;
      }
      ReactDOM.createRoot(mount).render(h(ErrorBoundary, null, h(Component)));
    } catch (err) {
      showError(err && err.message ? err.message : String(err));
    }
  })();
  </script>
</body>
</html>
`

// compileComponent embeds a JSX/TSX module in the component harness. The module
// is sanitized before it is encoded, since escaped markup no longer looks like
// tags.
func compileComponent(src string) string {
	entry := EntryPoint(src)
	body := StripModuleSyntax(src)
	if body == "" {
		return Placeholder("The component source is empty.")
	}
	return strings.NewReplacer(
		"__PREVIEW_SOURCE__", jsLiteral(sandbox.Sanitize(body)),
		"__PREVIEW_ENTRY__", jsLiteral(entry),
	).Replace(componentHarness)
}

// jsLiteral encodes s as a JavaScript string literal that is safe inside a
// script element.
func jsLiteral(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
