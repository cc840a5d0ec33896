package admin

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/ui/features/common"
	"github.com/leapstack-labs/goadmin/internal/ui/notifier"
	"github.com/leapstack-labs/goadmin/internal/ui/resources"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// html accumulates the first write error so components read top to bottom.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

// Page is the full console document: head, navigation and content.
func Page(title string, sidebar common.SidebarData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.rawf("<title>%s - goadmin</title>", templ.EscapeString(title))
		h.rawf("<link rel=\"stylesheet\" href=\"%s\">", resources.StaticPath("console.css"))
		h.rawf("<script type=\"module\" src=\"%s\"></script>", datastarScript)
		h.raw("</head><body data-init=\"@get('/notifications')\">")

		h.raw("<header class=\"topbar\"><a href=\"/\" class=\"brand\">goadmin</a>")
		if sidebar.User != "" {
			h.raw("<span class=\"user\">")
			h.text(sidebar.User)
			h.raw("</span><form method=\"post\" action=\"/logout\"><button type=\"submit\">Log out</button></form>")
		}
		h.raw("</header><div class=\"shell\"><nav id=\"nav\">")
		h.render(ctx, Nav(sidebar.Nav, sidebar.CurrentPath))
		h.raw("</nav><main id=\"content\">")
		h.render(ctx, content)
		h.raw("</main></div>")
		h.render(ctx, Notices(notifier.Event{}))
		h.raw("</body></html>")
		return h.err
	})
}

// Nav renders the navigation tree as nested lists.
func Nav(nodes []common.NavNode, current string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		if len(nodes) == 0 {
			return nil
		}
		h.raw("<ul>")
		for _, n := range nodes {
			class := ""
			if n.Path == current {
				class = " class=\"active\""
			}
			h.rawf("<li%s><a href=\"%s\" data-icon=\"%s\">", class,
				templ.EscapeString(common.ViewPath(n.Path)), templ.EscapeString(n.Icon))
			h.text(n.Title)
			h.raw("</a>")
			h.render(ctx, Nav(n.Children, current))
			h.raw("</li>")
		}
		h.raw("</ul>")
		return h.err
	})
}

// LoginPage renders the login form with an optional error.
func LoginPage(username, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>Login - goadmin</title>")
		h.rawf("<link rel=\"stylesheet\" href=\"%s\"></head><body class=\"login\">", resources.StaticPath("console.css"))
		h.raw("<form method=\"post\" action=\"/login\" class=\"login-form\"><h1>goadmin</h1>")
		if errMsg != "" {
			h.raw("<p class=\"notice notice-error\">")
			h.text(errMsg)
			h.raw("</p>")
		}
		h.rawf("<label>Username <input name=\"username\" value=\"%s\" autocomplete=\"username\" required></label>", templ.EscapeString(username))
		h.raw("<label>Password <input name=\"password\" type=\"password\" autocomplete=\"current-password\" required></label>")
		h.raw("<button type=\"submit\">Log in</button></form></body></html>")
		return h.err
	})
}

// Notices renders the notification area. An event carrying a prompt also
// renders the confirm dialog; confirming logs out.
func Notices(ev notifier.Event) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw("<div id=\"notices\">")
		if ev.Notice.Message != "" {
			h.rawf("<div class=\"notice notice-%s\" data-duration=\"%d\">",
				templ.EscapeString(string(ev.Notice.Type)), ev.Notice.Duration.Milliseconds())
			h.text(ev.Notice.Message)
			if ev.Notice.ShowClose {
				h.raw("<button type=\"button\" class=\"close\" onclick=\"this.parentElement.remove()\">&times;</button>")
			}
			h.raw("</div>")
		}
		if ev.Prompt != nil {
			writePrompt(h, *ev.Prompt)
		}
		h.raw("</div>")
		return h.err
	})
}

func writePrompt(h *html, p auth.Prompt) {
	h.raw("<dialog open class=\"prompt\"><h2>")
	h.text(p.Title)
	h.raw("</h2><p>")
	h.text(p.Message)
	h.raw("</p><form method=\"post\" action=\"/logout\"><button type=\"submit\">")
	h.text(p.Confirm)
	h.raw("</button><button type=\"button\" onclick=\"this.closest('dialog').remove()\">")
	h.text(p.Cancel)
	h.raw("</button></form></dialog>")
}

// Table renders rows under a header.
func Table(header []string, rows [][]string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw("<table><thead><tr>")
		for _, col := range header {
			h.raw("<th>")
			h.text(col)
			h.raw("</th>")
		}
		h.raw("</tr></thead><tbody>")
		if len(rows) == 0 {
			h.rawf("<tr><td colspan=\"%d\" class=\"empty\">No data</td></tr>", len(header))
		}
		for _, row := range rows {
			h.raw("<tr>")
			for _, cell := range row {
				h.raw("<td>")
				h.text(cell)
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")
		return h.err
	})
}

// Section renders a titled block around content.
func Section(title, subtitle string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw("<section><h1>")
		h.text(title)
		h.raw("</h1>")
		if subtitle != "" {
			h.raw("<p class=\"muted\">")
			h.text(subtitle)
			h.raw("</p>")
		}
		h.render(ctx, content)
		h.raw("</section>")
		return h.err
	})
}

// ErrorPage is the content shown for 401/404 and failed views.
func ErrorPage(code int, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.rawf("<section class=\"error-page\"><h1>%d</h1><p>", code)
		h.text(message)
		h.raw("</p><a href=\"/\">Back to home</a></section>")
		return h.err
	})
}
