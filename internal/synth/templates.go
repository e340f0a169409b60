package synth

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"uistudio/internal/domain/entity"
)

// sectionAliases folds the vocabulary of layout analysis onto catalog keys.
var sectionAliases = map[string]string{
	"header": "hero", "banner": "hero", "intro": "hero",
	"feature": "features", "services": "features",
	"plans": "pricing", "price": "pricing",
	"reviews": "testimonials", "testimonial": "testimonials",
	"about": "content", "main": "content", "body": "content", "text": "content",
	"form": "contact", "contact-form": "contact",
	"dashboard": "stats", "metrics": "stats", "kpi": "stats", "kpis": "stats",
	"graph": "chart", "charts": "chart", "analytics": "chart",
	"list": "table", "data-table": "table", "grid": "table",
	"menu": "sidebar", "sidenav": "sidebar",
	"shop": "products", "product": "products", "catalog": "products", "ecommerce": "products",
	"blog": "posts", "articles": "posts", "post": "posts",
	"subscribe": "newsletter",
	"signin": "login", "sign-in": "login", "signup": "login", "sign-up": "login", "auth": "login", "register": "login",
	"questions": "faq",
	"images": "gallery", "portfolio": "gallery",
	"call-to-action": "cta",
	"people": "team",
}

// navSections are rendered by the navigation bar rather than as sections.
var navSections = map[string]bool{"nav": true, "navbar": true, "navigation": true, "topnav": true}

var sectionCatalog = map[string]string{
	"hero": `<section id="hero" class="bg-gradient-to-br from-slate-50 to-slate-100 py-24">
  <div class="mx-auto max-w-5xl px-6 text-center">
    <p class="text-sm font-semibold uppercase tracking-widest text-indigo-600">Introducing Acme</p>
    <h1 class="mt-4 text-5xl font-bold tracking-tight text-slate-900">Build beautiful products faster</h1>
    <p class="mx-auto mt-6 max-w-2xl text-lg text-slate-600">Everything your team needs to plan, design and ship in one calm, focused workspace.</p>
    <div class="mt-10 flex justify-center gap-4">
      <button class="rounded-lg bg-indigo-600 px-6 py-3 font-semibold text-white shadow-md transition hover:bg-indigo-500">Get started</button>
      <button class="rounded-lg border border-slate-300 px-6 py-3 font-semibold text-slate-700 transition hover:bg-white">Learn more</button>
    </div>
  </div>
</section>`,
	"features": `<section id="features" class="py-20">
  <div class="mx-auto max-w-6xl px-6">
    <h2 class="text-center text-3xl font-bold text-slate-900">Features</h2>
    <div class="mt-12 grid gap-8 md:grid-cols-3">
      <div class="rounded-xl border border-slate-200 p-6 shadow-sm transition hover:shadow-md">
        <h3 class="text-lg font-semibold text-slate-900">Fast</h3>
        <p class="mt-2 text-slate-600">Pages load instantly and stay responsive under load.</p>
      </div>
      <div class="rounded-xl border border-slate-200 p-6 shadow-sm transition hover:shadow-md">
        <h3 class="text-lg font-semibold text-slate-900">Secure</h3>
        <p class="mt-2 text-slate-600">Sensible defaults keep your data safe from day one.</p>
      </div>
      <div class="rounded-xl border border-slate-200 p-6 shadow-sm transition hover:shadow-md">
        <h3 class="text-lg font-semibold text-slate-900">Collaborative</h3>
        <p class="mt-2 text-slate-600">Invite your team and work together in real time.</p>
      </div>
    </div>
  </div>
</section>`,
	"pricing": `<section id="pricing" class="bg-slate-50 py-20">
  <div class="mx-auto max-w-5xl px-6">
    <h2 class="text-center text-3xl font-bold text-slate-900">Simple pricing</h2>
    <div class="mt-12 grid gap-8 md:grid-cols-3">
      <div class="rounded-2xl bg-white p-8 shadow-sm">
        <h3 class="font-semibold text-slate-900">Starter</h3>
        <p class="mt-4 text-4xl font-bold text-slate-900">$0</p>
        <button class="mt-8 w-full rounded-lg border border-slate-300 py-2 font-medium transition hover:bg-slate-100">Choose plan</button>
      </div>
      <div class="rounded-2xl bg-indigo-600 p-8 text-white shadow-lg">
        <h3 class="font-semibold">Pro</h3>
        <p class="mt-4 text-4xl font-bold">$19</p>
        <button class="mt-8 w-full rounded-lg bg-white py-2 font-medium text-indigo-600 transition hover:bg-indigo-50">Choose plan</button>
      </div>
      <div class="rounded-2xl bg-white p-8 shadow-sm">
        <h3 class="font-semibold text-slate-900">Team</h3>
        <p class="mt-4 text-4xl font-bold text-slate-900">$49</p>
        <button class="mt-8 w-full rounded-lg border border-slate-300 py-2 font-medium transition hover:bg-slate-100">Choose plan</button>
      </div>
    </div>
  </div>
</section>`,
	"testimonials": `<section id="testimonials" class="py-20">
  <div class="mx-auto max-w-5xl px-6">
    <h2 class="text-center text-3xl font-bold text-slate-900">Loved by teams</h2>
    <div class="mt-12 grid gap-8 md:grid-cols-2">
      <figure class="rounded-xl bg-slate-50 p-6">
        <blockquote class="text-slate-700">"We shipped our redesign in half the time."</blockquote>
        <figcaption class="mt-4 text-sm font-semibold text-slate-900">Maria Chen, Product Lead</figcaption>
      </figure>
      <figure class="rounded-xl bg-slate-50 p-6">
        <blockquote class="text-slate-700">"The calmest tool our engineers have ever used."</blockquote>
        <figcaption class="mt-4 text-sm font-semibold text-slate-900">Daniel Okafor, CTO</figcaption>
      </figure>
    </div>
  </div>
</section>`,
	"content": `<section id="content" class="py-20">
  <div class="mx-auto max-w-3xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">About us</h2>
    <p class="mt-6 text-lg leading-relaxed text-slate-600">We are a small team that believes great software should feel effortless. Every detail is designed to help you focus on the work that matters.</p>
    <p class="mt-4 text-lg leading-relaxed text-slate-600">From the first sketch to the final release, we keep things simple, fast and accessible.</p>
  </div>
</section>`,
	"contact": `<section id="contact" class="bg-slate-50 py-20">
  <div class="mx-auto max-w-xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">Contact us</h2>
    <form class="mt-8 space-y-4">
      <label for="contact-email" class="block text-sm font-medium text-slate-700">Email</label>
      <input id="contact-email" type="email" placeholder="you@example.com" class="w-full rounded-lg border border-slate-300 px-4 py-2" />
      <label for="contact-message" class="block text-sm font-medium text-slate-700">Message</label>
      <textarea id="contact-message" rows="4" class="w-full rounded-lg border border-slate-300 px-4 py-2"></textarea>
      <button type="submit" class="rounded-lg bg-indigo-600 px-6 py-2 font-semibold text-white transition hover:bg-indigo-500">Send</button>
    </form>
  </div>
</section>`,
	"footer": `<footer id="footer" class="border-t border-slate-200 py-10">
  <div class="mx-auto flex max-w-6xl flex-col items-center justify-between gap-4 px-6 text-sm text-slate-500 md:flex-row">
    <p>&copy; 2026 Acme Inc. All rights reserved.</p>
    <div class="flex gap-6">
      <a href="#" class="hover:text-slate-900">Privacy</a>
      <a href="#" class="hover:text-slate-900">Terms</a>
      <a href="#" class="hover:text-slate-900">Contact</a>
    </div>
  </div>
</footer>`,
	"stats": `<section id="stats" class="p-6">
  <div class="grid gap-6 sm:grid-cols-2 lg:grid-cols-4">
    <div class="rounded-xl bg-white p-5 shadow-sm"><p class="text-sm text-slate-500">Revenue</p><p class="mt-2 text-2xl font-bold text-slate-900">$48,210</p></div>
    <div class="rounded-xl bg-white p-5 shadow-sm"><p class="text-sm text-slate-500">Users</p><p class="mt-2 text-2xl font-bold text-slate-900">3,842</p></div>
    <div class="rounded-xl bg-white p-5 shadow-sm"><p class="text-sm text-slate-500">Orders</p><p class="mt-2 text-2xl font-bold text-slate-900">1,209</p></div>
    <div class="rounded-xl bg-white p-5 shadow-sm"><p class="text-sm text-slate-500">Conversion</p><p class="mt-2 text-2xl font-bold text-slate-900">4.7%</p></div>
  </div>
</section>`,
	"chart": `<section id="chart" class="p-6">
  <div class="rounded-xl bg-white p-6 shadow-sm">
    <h2 class="font-semibold text-slate-900">Weekly activity</h2>
    <div class="mt-6 flex h-48 items-end gap-3">
      <div class="h-1/3 flex-1 rounded-t bg-indigo-200"></div>
      <div class="h-1/2 flex-1 rounded-t bg-indigo-300"></div>
      <div class="h-2/3 flex-1 rounded-t bg-indigo-400"></div>
      <div class="h-1/2 flex-1 rounded-t bg-indigo-300"></div>
      <div class="h-5/6 flex-1 rounded-t bg-indigo-500"></div>
      <div class="h-full flex-1 rounded-t bg-indigo-600"></div>
      <div class="h-3/4 flex-1 rounded-t bg-indigo-500"></div>
    </div>
  </div>
</section>`,
	"table": `<section id="table" class="p-6">
  <div class="overflow-hidden rounded-xl bg-white shadow-sm">
    <table class="min-w-full divide-y divide-slate-200 text-sm">
      <thead class="bg-slate-50 text-left text-slate-500">
        <tr><th class="px-4 py-3">Customer</th><th class="px-4 py-3">Status</th><th class="px-4 py-3">Amount</th></tr>
      </thead>
      <tbody class="divide-y divide-slate-100 text-slate-700">
        <tr><td class="px-4 py-3">Olivia Martin</td><td class="px-4 py-3">Paid</td><td class="px-4 py-3">$1,999</td></tr>
        <tr><td class="px-4 py-3">Jackson Lee</td><td class="px-4 py-3">Pending</td><td class="px-4 py-3">$39</td></tr>
        <tr><td class="px-4 py-3">Isabella Nguyen</td><td class="px-4 py-3">Paid</td><td class="px-4 py-3">$299</td></tr>
      </tbody>
    </table>
  </div>
</section>`,
	"sidebar": `<aside id="sidebar" class="hidden w-64 shrink-0 border-r border-slate-200 bg-white p-6 md:block">
  <p class="text-lg font-bold text-slate-900">Acme</p>
  <nav class="mt-8 space-y-1 text-sm">
    <a href="#stats" class="block rounded-lg bg-slate-100 px-3 py-2 font-medium text-slate-900">Overview</a>
    <a href="#chart" class="block rounded-lg px-3 py-2 text-slate-600 hover:bg-slate-50">Analytics</a>
    <a href="#table" class="block rounded-lg px-3 py-2 text-slate-600 hover:bg-slate-50">Customers</a>
    <a href="#settings" class="block rounded-lg px-3 py-2 text-slate-600 hover:bg-slate-50">Settings</a>
  </nav>
</aside>`,
	"products": `<section id="products" class="py-20">
  <div class="mx-auto max-w-6xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">Featured products</h2>
    <div class="mt-10 grid gap-8 sm:grid-cols-2 lg:grid-cols-3">
      <div class="group rounded-xl border border-slate-200 p-4 transition hover:shadow-md">
        <img src="https://picsum.photos/seed/acme1/400/300" alt="Product" class="aspect-[4/3] w-full rounded-lg object-cover" />
        <h3 class="mt-4 font-semibold text-slate-900">Everyday Tote</h3>
        <p class="text-slate-600">$48</p>
        <button class="mt-4 w-full rounded-lg bg-slate-900 py-2 text-white transition hover:bg-slate-700">Add to cart</button>
      </div>
      <div class="group rounded-xl border border-slate-200 p-4 transition hover:shadow-md">
        <img src="https://picsum.photos/seed/acme2/400/300" alt="Product" class="aspect-[4/3] w-full rounded-lg object-cover" />
        <h3 class="mt-4 font-semibold text-slate-900">Canvas Backpack</h3>
        <p class="text-slate-600">$85</p>
        <button class="mt-4 w-full rounded-lg bg-slate-900 py-2 text-white transition hover:bg-slate-700">Add to cart</button>
      </div>
      <div class="group rounded-xl border border-slate-200 p-4 transition hover:shadow-md">
        <img src="https://picsum.photos/seed/acme3/400/300" alt="Product" class="aspect-[4/3] w-full rounded-lg object-cover" />
        <h3 class="mt-4 font-semibold text-slate-900">Travel Mug</h3>
        <p class="text-slate-600">$24</p>
        <button class="mt-4 w-full rounded-lg bg-slate-900 py-2 text-white transition hover:bg-slate-700">Add to cart</button>
      </div>
    </div>
  </div>
</section>`,
	"posts": `<section id="posts" class="py-20">
  <div class="mx-auto max-w-4xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">Latest posts</h2>
    <div class="mt-10 space-y-10">
      <article>
        <p class="text-sm text-slate-500">March 12, 2026</p>
        <h3 class="mt-2 text-xl font-semibold text-slate-900">Designing for calm</h3>
        <p class="mt-2 text-slate-600">How restraint in interface design helps people focus on what matters.</p>
        <a href="#" class="mt-3 inline-block font-medium text-indigo-600 hover:underline">Read more</a>
      </article>
      <article>
        <p class="text-sm text-slate-500">February 27, 2026</p>
        <h3 class="mt-2 text-xl font-semibold text-slate-900">Shipping small, shipping often</h3>
        <p class="mt-2 text-slate-600">Lessons from a year of weekly releases.</p>
        <a href="#" class="mt-3 inline-block font-medium text-indigo-600 hover:underline">Read more</a>
      </article>
    </div>
  </div>
</section>`,
	"newsletter": `<section id="newsletter" class="bg-slate-900 py-16 text-white">
  <div class="mx-auto max-w-xl px-6 text-center">
    <h2 class="text-2xl font-bold">Stay in the loop</h2>
    <p class="mt-2 text-slate-300">One short email a month. No spam.</p>
    <form class="mt-6 flex gap-2">
      <input type="email" placeholder="you@example.com" class="flex-1 rounded-lg px-4 py-2 text-slate-900" />
      <button type="submit" class="rounded-lg bg-indigo-500 px-5 py-2 font-semibold transition hover:bg-indigo-400">Subscribe</button>
    </form>
  </div>
</section>`,
	"login": `<section id="login" class="flex min-h-[70vh] items-center justify-center bg-slate-50 px-6 py-16">
  <div class="w-full max-w-sm rounded-2xl bg-white p-8 shadow-lg">
    <h2 class="text-2xl font-bold text-slate-900">Welcome back</h2>
    <p class="mt-1 text-sm text-slate-500">Sign in to your account</p>
    <form class="mt-6 space-y-4">
      <label for="login-email" class="block text-sm font-medium text-slate-700">Email</label>
      <input id="login-email" type="email" class="w-full rounded-lg border border-slate-300 px-4 py-2" />
      <label for="login-password" class="block text-sm font-medium text-slate-700">Password</label>
      <input id="login-password" type="password" class="w-full rounded-lg border border-slate-300 px-4 py-2" />
      <button type="submit" class="w-full rounded-lg bg-indigo-600 py-2 font-semibold text-white transition hover:bg-indigo-500">Sign in</button>
    </form>
  </div>
</section>`,
	"faq": `<section id="faq" class="py-20">
  <div class="mx-auto max-w-3xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">Frequently asked questions</h2>
    <dl class="mt-10 space-y-6">
      <div><dt class="font-semibold text-slate-900">Can I cancel anytime?</dt><dd class="mt-2 text-slate-600">Yes. Plans are month to month and you can cancel with one click.</dd></div>
      <div><dt class="font-semibold text-slate-900">Is there a free trial?</dt><dd class="mt-2 text-slate-600">Every paid plan starts with a 14 day trial.</dd></div>
      <div><dt class="font-semibold text-slate-900">Do you offer discounts?</dt><dd class="mt-2 text-slate-600">Nonprofits and students get 50% off.</dd></div>
    </dl>
  </div>
</section>`,
	"gallery": `<section id="gallery" class="py-20">
  <div class="mx-auto max-w-6xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">Gallery</h2>
    <div class="mt-10 grid grid-cols-2 gap-4 md:grid-cols-4">
      <img src="https://picsum.photos/seed/g1/400/400" alt="Gallery image" class="aspect-square rounded-lg object-cover" />
      <img src="https://picsum.photos/seed/g2/400/400" alt="Gallery image" class="aspect-square rounded-lg object-cover" />
      <img src="https://picsum.photos/seed/g3/400/400" alt="Gallery image" class="aspect-square rounded-lg object-cover" />
      <img src="https://picsum.photos/seed/g4/400/400" alt="Gallery image" class="aspect-square rounded-lg object-cover" />
    </div>
  </div>
</section>`,
	"cta": `<section id="cta" class="bg-indigo-600 py-16 text-white">
  <div class="mx-auto max-w-4xl px-6 text-center">
    <h2 class="text-3xl font-bold">Ready to get started?</h2>
    <p class="mt-3 text-indigo-100">Join thousands of teams building with Acme.</p>
    <button class="mt-8 rounded-lg bg-white px-6 py-3 font-semibold text-indigo-600 shadow transition hover:bg-indigo-50">Start free trial</button>
  </div>
</section>`,
	"team": `<section id="team" class="py-20">
  <div class="mx-auto max-w-5xl px-6">
    <h2 class="text-center text-3xl font-bold text-slate-900">Meet the team</h2>
    <div class="mt-12 grid gap-8 sm:grid-cols-3">
      <div class="text-center"><img src="https://picsum.photos/seed/t1/200/200" alt="Team member" class="mx-auto h-24 w-24 rounded-full object-cover" /><p class="mt-4 font-semibold text-slate-900">Ava Patel</p><p class="text-sm text-slate-500">Design</p></div>
      <div class="text-center"><img src="https://picsum.photos/seed/t2/200/200" alt="Team member" class="mx-auto h-24 w-24 rounded-full object-cover" /><p class="mt-4 font-semibold text-slate-900">Leo Garcia</p><p class="text-sm text-slate-500">Engineering</p></div>
      <div class="text-center"><img src="https://picsum.photos/seed/t3/200/200" alt="Team member" class="mx-auto h-24 w-24 rounded-full object-cover" /><p class="mt-4 font-semibold text-slate-900">Mia Schmidt</p><p class="text-sm text-slate-500">Operations</p></div>
    </div>
  </div>
</section>`,
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SectionKey normalizes a detected section name onto the catalog vocabulary.
func SectionKey(name string) string {
	key := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-"), "-")
	if alias, ok := sectionAliases[key]; ok {
		return alias
	}
	return key
}

var braces = strings.NewReplacer("{", "", "}", "")

// escapeText makes a name safe as markup text in every stack. Braces would open
// an expression in component and template markup.
func escapeText(s string) string {
	return html.EscapeString(strings.TrimSpace(braces.Replace(s)))
}

func sectionMarkup(name string) string {
	key := SectionKey(name)
	if snippet, ok := sectionCatalog[key]; ok {
		return snippet
	}
	title := escapeText(name)
	if title == "" {
		title = "Section"
	}
	return fmt.Sprintf(`<section id="%s" class="py-16">
  <div class="mx-auto max-w-5xl px-6">
    <h2 class="text-3xl font-bold text-slate-900">%s</h2>
    <p class="mt-4 text-lg text-slate-600">This area will hold the %s content.</p>
  </div>
</section>`, key, title, strings.ToLower(title))
}

// fallbackMarkup renders the deterministic page body for in: navigation, the
// detected sections on the first page, one container per additional page.
func fallbackMarkup(in Input) string {
	sections := in.Analysis.Sections
	if len(sections) == 0 {
		sections = entity.DefaultAnalysis().Sections
	}

	var hasSidebar bool
	var body []string
	seen := map[string]bool{}
	for _, s := range sections {
		key := SectionKey(s)
		if navSections[key] || seen[key] {
			continue
		}
		seen[key] = true
		if key == "sidebar" {
			hasSidebar = true
			continue
		}
		body = append(body, sectionMarkup(s))
	}

	pages := in.PageNames()
	var b strings.Builder
	b.WriteString(`<div class="min-h-screen bg-white text-slate-900 antialiased">` + "\n")
	if !hasSidebar && navigationStyle(in) != "none" {
		b.WriteString(topNav(pages, sections))
	}
	if hasSidebar {
		b.WriteString(`<div class="flex min-h-screen bg-slate-50">` + "\n")
		b.WriteString(sectionCatalog["sidebar"] + "\n")
		b.WriteString(`<div class="flex-1">` + "\n")
	}
	if len(pages) > 1 {
		fmt.Fprintf(&b, `<main id="page-1" data-page="%s">`+"\n", escapeText(pages[0]))
	} else {
		b.WriteString("<main>\n")
	}
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString("\n</main>\n")
	for i := 1; i < len(pages); i++ {
		b.WriteString(extraPage(i+1, pages[i], flowDescription(in, i)))
	}
	if hasSidebar {
		b.WriteString("</div>\n</div>\n")
	}
	b.WriteString("</div>")
	return b.String()
}

func navigationStyle(in Input) string {
	nav := in.Config.Page.Navigation
	if nav == "" {
		nav = in.Analysis.Navigation
	}
	return strings.ToLower(strings.TrimSpace(nav))
}

func flowDescription(in Input, i int) string {
	if i < len(in.Config.Flow) {
		return strings.TrimSpace(in.Config.Flow[i].Description)
	}
	return ""
}

func topNav(pages, sections []string) string {
	var links []string
	if len(pages) > 1 {
		for i, p := range pages {
			links = append(links, fmt.Sprintf(`<a href="#page-%d" data-navigate="page-%d" class="text-slate-600 transition hover:text-slate-900">%s</a>`,
				i+1, i+1, escapeText(p)))
		}
	} else {
		for _, s := range sections {
			key := SectionKey(s)
			if navSections[key] || key == "hero" || key == "footer" {
				continue
			}
			if _, ok := sectionCatalog[key]; !ok {
				continue
			}
			links = append(links, fmt.Sprintf(`<a href="#%s" class="text-slate-600 transition hover:text-slate-900">%s</a>`, key, titleCase(key)))
		}
	}
	return `<header class="sticky top-0 z-10 border-b border-slate-200 bg-white/90 backdrop-blur">
  <nav class="mx-auto flex max-w-6xl items-center justify-between px-6 py-4">
    <a href="#" class="text-lg font-bold text-slate-900">Acme</a>
    <div class="flex items-center gap-6 text-sm font-medium">
      ` + strings.Join(links, "\n      ") + `
    </div>
  </nav>
</header>
`
}

func extraPage(n int, name, description string) string {
	if description == "" {
		description = "Content for " + name + " goes here."
	}
	return fmt.Sprintf(`<main id="page-%d" data-page="%s" hidden>
<section class="py-20">
  <div class="mx-auto max-w-4xl px-6">
    <h1 class="text-4xl font-bold text-slate-900">%s</h1>
    <p class="mt-4 text-lg text-slate-600">%s</p>
    <button data-navigate="page-1" class="mt-8 rounded-lg border border-slate-300 px-5 py-2 font-medium transition hover:bg-slate-100">Back</button>
  </div>
</section>
</main>
`, n, escapeText(name), escapeText(name), escapeText(description))
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var (
	classAttr = regexp.MustCompile(`\sclass=`)
	forAttr   = regexp.MustCompile(`\sfor=`)
	rowsAttr  = regexp.MustCompile(`\srows="(\d+)"`)
)

// toJSX converts catalog markup to JSX. The catalog only uses self-closing void
// elements and no braces, so attribute renames are enough.
func toJSX(markup string) string {
	out := classAttr.ReplaceAllString(markup, " className=")
	out = forAttr.ReplaceAllString(out, " htmlFor=")
	out = rowsAttr.ReplaceAllString(out, " rows={$1}")
	return out
}
