package preview

import (
	"regexp"
	"strings"

	"uistudio/internal/sandbox"
)

var (
	scriptBlock   = regexp.MustCompile(`(?is)<script(\s[^>]*)?>(.*?)</script\s*>`)
	templateBlock = regexp.MustCompile(`(?is)<template(?:\s[^>]*)?>(.*?)</template\s*>`)
	styleBlock    = regexp.MustCompile(`(?is)<style(?:\s[^>]*)?>(.*?)</style\s*>`)
	setupAttr     = regexp.MustCompile(`(?i)\bsetup\b`)
	tsAttr        = regexp.MustCompile(`(?i)\blang\s*=\s*["']?ts`)
	topBinding    = regexp.MustCompile(`(?m)^(?:export\s+)?(?:const|let|var|(?:async\s+)?function\s*\*?|class)\s+(` + ident + `)`)
)

// templateUnit is a two-section component: a logic block and a markup block.
type templateUnit struct {
	Script     string
	Template   string
	Styles     []string
	Setup      bool
	TypeScript bool
}

// extractTemplate splits a single-file component. It takes the first script and
// the first template section; style sections are kept apart from both.
func extractTemplate(src string) (templateUnit, bool) {
	var u templateUnit
	for _, m := range styleBlock.FindAllStringSubmatch(src, -1) {
		u.Styles = append(u.Styles, m[1])
	}
	rest := styleBlock.ReplaceAllString(src, "")
	if m := scriptBlock.FindStringSubmatch(rest); m != nil {
		u.Script = trimBlankLines(m[2])
		u.Setup = setupAttr.MatchString(m[1])
		u.TypeScript = tsAttr.MatchString(m[1])
	}
	m := templateBlock.FindStringSubmatch(rest)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return u, false
	}
	u.Template = strings.TrimSpace(m[1])
	return u, true
}

// scriptBindings lists the top-level names declared by a script block.
func scriptBindings(script string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range topBinding.FindAllStringSubmatch(dedent(script), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

const templateHarness = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Preview</title>
  ` + StylingEngineTag + `
  <script src="https://unpkg.com/vue@3/dist/vue.global.prod.js"></script>
  __PREVIEW_TRANSFORMER__
  <style>
    #preview-error { margin: 1.5rem; padding: 1rem 1.25rem; border-radius: .5rem; background: #fef2f2; color: #991b1b; border: 1px solid #fecaca; font: 14px/1.5 ui-monospace, monospace; white-space: pre-wrap; }
__PREVIEW_STYLES__
  </style>
</head>
<body>
  <div id="app"></div>
  <script>
  (function () {
    var mount = document.getElementById('app');
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
    if (!window.Vue) {
      showError('Component runtime failed to load');
      return;
    }

    var template = __PREVIEW_TEMPLATE__;
    var script = __PREVIEW_SCRIPT__;
    var mode = __PREVIEW_MODE__;
    var typed = __PREVIEW_TYPED__;
    var noop = function () {};
    var names = ['ref', 'reactive', 'computed', 'watch', 'watchEffect', 'onMounted', 'onUnmounted', 'onBeforeUnmount', 'nextTick', 'toRefs',
      'defineProps', 'defineEmits', 'defineExpose', 'withDefaults', 'onMount', 'onDestroy', 'createEventDispatcher', 'tick'];
    var values = [Vue.ref, Vue.reactive, Vue.computed, Vue.watch, Vue.watchEffect, Vue.onMounted, Vue.onUnmounted, Vue.onBeforeUnmount, Vue.nextTick, Vue.toRefs,
      function () { return {}; }, function () { return noop; }, noop, function (p) { return p; }, Vue.onMounted, Vue.onUnmounted, function () { return noop; }, Vue.nextTick];

    try {
      if (typed && script) {
        if (!window.Babel) throw new Error('TypeScript transformer failed to load');
        script = Babel.transform(script, {
          filename: 'Component.ts',
          sourceType: 'script',
          parserOpts: { allowReturnOutsideFunction: true },
          presets: [['typescript', { allExtensions: true }]]
        }).code;
      }
      var component = { template: template };
      if (mode === 'options' && script) {
        var options = Function.apply(null, names.concat([script])).apply(null, values);
        component = Object.assign({}, options || {}, { template: template });
      } else if (script) {
        var setup = Function.apply(null, names.concat([script]));
        component.setup = function () { return setup.apply(null, values) || {}; };
      }
      var app = Vue.createApp(component);
      app.config.errorHandler = function (err) { showError(err && err.message ? err.message : String(err)); };
      app.mount(mount);
    } catch (err) {
      showError(err && err.message ? err.message : String(err));
    }
  })();
  </script>
</body>
</html>
`

const typeScriptTransformer = `<script src="https://unpkg.com/@babel/standalone/babel.min.js"></script>`

// templateScript is the prepared logic block and how the harness runs it.
type templateScript struct {
	Body  string
	Mode  string // setup, options
	Typed bool
}

func renderTemplateHarness(markup string, script templateScript, styles []string) string {
	transformer := ""
	if script.Typed {
		transformer = typeScriptTransformer
	}
	css := strings.TrimSpace(strings.Join(styles, "\n"))
	css = strings.ReplaceAll(css, "</style", "<\\/style")
	typed := "false"
	if script.Typed {
		typed = "true"
	}
	return strings.NewReplacer(
		"__PREVIEW_TRANSFORMER__", transformer,
		"__PREVIEW_STYLES__", css,
		"__PREVIEW_TEMPLATE__", jsLiteral(sandbox.Sanitize(markup)),
		"__PREVIEW_SCRIPT__", jsLiteral(sandbox.Sanitize(script.Body)),
		"__PREVIEW_MODE__", jsLiteral(script.Mode),
		"__PREVIEW_TYPED__", typed,
	).Replace(templateHarness)
}

var optionsExport = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+(?:defineComponent\s*\()?`)

// compileVue mounts a single-file Vue component with the global Vue build.
func compileVue(src string) string {
	u, ok := extractTemplate(src)
	if !ok {
		return Placeholder("No template section was found in the component.")
	}
	script := templateScript{Mode: "setup", Typed: u.TypeScript}
	body := stripImports(u.Script)
	switch {
	case body == "":
	case !u.Setup && defaultKeyword.MatchString(body):
		script.Mode = "options"
		wrapped := strings.Contains(body, "defineComponent")
		script.Body = closeOptionsCall(optionsExport.ReplaceAllString(body, "${1}return ("), wrapped)
	default:
		script.Body = setupReturn(body)
	}
	return renderTemplateHarness(u.Template, script, u.Styles)
}

// closeOptionsCall terminates the expression opened by the rewritten default
// export. A trailing semicolon or defineComponent paren is folded into it.
func closeOptionsCall(body string, wrapped bool) string {
	trimmed := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(body), ";"))
	if wrapped && strings.HasSuffix(trimmed, ")") {
		trimmed = strings.TrimSuffix(trimmed, ")")
	}
	return trimmed + "\n);"
}

// setupReturn appends a return of every top-level binding so the template can
// reach them.
func setupReturn(body string) string {
	names := scriptBindings(body)
	if len(names) == 0 {
		return body
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": typeof "+n+" !== 'undefined' ? "+n+" : undefined")
	}
	return body + "\nreturn { " + strings.Join(parts, ", ") + " };"
}

// trimBlankLines drops leading and trailing blank lines but keeps the
// indentation of the first line.
func trimBlankLines(src string) string {
	src = strings.TrimRight(src, " \t\r\n")
	for {
		i := strings.IndexByte(src, '\n')
		if i < 0 || strings.TrimSpace(src[:i]) != "" {
			return src
		}
		src = src[i+1:]
	}
}

// dedent removes the indentation shared by every non-blank line.
func dedent(src string) string {
	lines := strings.Split(src, "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return src
	}
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = l[indent:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

func stripImports(src string) string {
	out := importFrom.ReplaceAllString(dedent(src), "")
	out = importBare.ReplaceAllString(out, "")
	out = exportList.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
