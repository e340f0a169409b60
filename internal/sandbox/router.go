package sandbox

import (
	"regexp"
	"strings"
)

// RouterID is the id of the injected router script element.
const RouterID = "sandbox-router"

var bodyClose = regexp.MustCompile(`(?i)</body\s*>`)

// routerScript intercepts every interaction inside the frame. Clicks on links and
// buttons are captured before page handlers see them; targets naming a page
// container switch the visible page, other buttons get a simulated action.
// Page containers carry data-page or an id of the form page-N; showing one
// hides only its sibling containers.
// The script text must not contain a "<" directly followed by a letter, nor any
// navigation statement, so that Sanitize leaves it untouched.
const routerScript = `<script id="` + RouterID + `">
(function () {
  if (window.__sandboxRouter) return;
  window.__sandboxRouter = true;

  var PAGES = '[data-page], [id^="page-"]';
  var PAGE_ID = /^page-\d+$/;
  var CONTROLS = 'a, button, [data-navigate], [role="button"], input[type="submit"], input[type="button"]';
  var SAVE_WORDS = /submit|save|send|confirm|apply|update/i;
  var AUTH_WORDS = /log\s*in|sign|register/i;

  function isPage(el) {
    return el.hasAttribute('data-page') || PAGE_ID.test(el.id);
  }

  function pages() {
    return Array.prototype.slice.call(document.querySelectorAll(PAGES)).filter(isPage);
  }

  function groups() {
    var list = [];
    pages().forEach(function (p) {
      for (var i = 0; i !== list.length; i++) {
        if (list[i][0].parentNode === p.parentNode) {
          list[i].push(p);
          return;
        }
      }
      list.push([p]);
    });
    return list;
  }

  function pageName(el) {
    return el.getAttribute('data-page') || el.id;
  }

  function findPage(target) {
    if (!target) return null;
    var name = String(target).trim().replace(/^#/, '').replace(/^\.?\//, '');
    if (!name) return null;
    var list = pages();
    for (var i = 0; i !== list.length; i++) {
      var p = list[i];
      if (pageName(p) === name || p.id === name || p.id === 'page-' + name) return p;
    }
    return null;
  }

  function show(page) {
    pages().forEach(function (p) {
      if (p.parentNode !== page.parentNode) return;
      if (p === page) {
        p.style.display = '';
        p.removeAttribute('hidden');
        p.setAttribute('data-active', 'true');
      } else {
        p.style.display = 'none';
        p.setAttribute('hidden', '');
        p.removeAttribute('data-active');
      }
    });
  }

  function sync() {
    groups().forEach(function (group) {
      var active = group.filter(function (p) { return p.getAttribute('data-active') === 'true'; })[0];
      show(active || group[0]);
    });
  }

  function toast(message) {
    var t = document.createElement('div');
    t.setAttribute('data-sandbox-toast', '');
    t.textContent = message;
    t.style.cssText = 'position:fixed;right:24px;bottom:24px;z-index:2147483647;padding:12px 16px;border-radius:8px;' +
      'background:#111827;color:#fff;font:14px/1.4 system-ui,sans-serif;box-shadow:0 10px 25px rgba(0,0,0,.2)';
    document.body.appendChild(t);
    setTimeout(function () { if (t.parentNode) t.parentNode.removeChild(t); }, 2500);
  }

  function isInput(el) {
    return el.tagName === 'INPUT';
  }

  function isAction(el) {
    if (el.tagName === 'BUTTON' || el.getAttribute('role') === 'button') return true;
    return isInput(el) && (el.type === 'submit' || el.type === 'button');
  }

  function mock(el) {
    if (el.getAttribute('data-sandbox-busy') === 'true') return;
    var label = (isInput(el) ? el.value : el.textContent || '').trim();
    var original = isInput(el) ? el.value : el.innerHTML;
    function setText(text) {
      if (isInput(el)) el.value = text; else el.textContent = text;
    }
    function restore() {
      if (isInput(el)) el.value = original; else el.innerHTML = original;
      el.disabled = false;
      el.removeAttribute('data-sandbox-busy');
    }
    el.setAttribute('data-sandbox-busy', 'true');
    el.disabled = true;
    setText('Loading...');
    setTimeout(function () {
      if (SAVE_WORDS.test(label)) {
        el.disabled = false;
        setText('Saved!');
        setTimeout(restore, 1500);
        return;
      }
      restore();
      if (AUTH_WORDS.test(label)) toast('Signed in successfully (preview)');
    }, 800);
  }

  document.addEventListener('click', function (event) {
    var start = event.target;
    if (!start || start.nodeType !== 1) start = start && start.parentElement;
    var el = start && start.closest ? start.closest(CONTROLS) : null;
    if (!el) return;
    event.preventDefault();
    event.stopPropagation();
    var page = findPage(el.getAttribute('data-navigate') || el.getAttribute('href'));
    if (page) {
      show(page);
      return;
    }
    if (isAction(el)) mock(el);
  }, true);

  document.addEventListener('submit', function (event) {
    event.preventDefault();
    event.stopPropagation();
    var form = event.target;
    var button = form && form.querySelector ? form.querySelector('button[type="submit"], input[type="submit"], button:not([type])') : null;
    if (button) mock(button); else toast('Submitted (preview)');
  }, true);

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', sync);
  } else {
    sync();
  }
  if (window.MutationObserver) {
    new MutationObserver(sync).observe(document.documentElement, { childList: true, subtree: true });
  }
})();
</script>`

// InjectRouter inserts the virtual router before the last closing body tag, or
// at the end of the document when there is none. A document that already
// carries the router is returned unchanged.
func InjectRouter(doc string) string {
	if strings.Contains(doc, `id="`+RouterID+`"`) {
		return doc
	}
	locs := bodyClose.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return doc + "\n" + routerScript + "\n"
	}
	at := locs[len(locs)-1][0]
	return doc[:at] + routerScript + "\n" + doc[at:]
}
