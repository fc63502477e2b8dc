package web

import (
	"net/http"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"

	"github.com/darkawower/reagentry/internal/theme"
)

const datastarSrc = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"

var pickerOptions = []struct {
	Value theme.Preference
	Label string
}{
	{theme.PreferenceSystem, "System"},
	{theme.PreferenceLight, "Light"},
	{theme.PreferenceDark, "Dark"},
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	s := theme.MustFromContext(r.Context()).State()
	renderHTML(w, http.StatusOK, h.shell(s.Current, s.Preference))
}

func (h *Handler) shell(t theme.Theme, pref theme.Preference) Node {
	return Doctype(HTML(
		Lang("en"),
		Attr("data-theme", t.String()),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Meta(Name("color-scheme"), Content(t.String())),
			Meta(
				Name("theme-color"),
				Content(h.Assets.ThemeColor(t)),
				Attr("data-light", h.Assets.ThemeColorLight),
				Attr("data-dark", h.Assets.ThemeColorDark),
			),
			TitleEl(Text("Reagentry")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/static/app.css")),
			Script(Type("module"), Src(datastarSrc)),
		),
		Body(
			Header(
				Class("app-header"),
				h.logo(t),
				picker(pref),
			),
			Main(
				Class("content"),
				P(Text("Current theme: "), Code(ID("current-theme"), Text(t.String()))),
			),
			Script(Raw(themeSyncScript)),
		),
	))
}

// logo renders the brand mark for t. Both variants travel as data
// attributes so the client can swap them without a reload.
func (h *Handler) logo(t theme.Theme) Node {
	return A(
		Href("/"),
		Img(
			ID("app-logo"),
			Class("app-logo"),
			Src(h.Assets.Logo(t)),
			Alt("Reagentry"),
			Attr("data-light", h.Assets.LogoLight),
			Attr("data-dark", h.Assets.LogoDark),
		),
	)
}

func picker(pref theme.Preference) Node {
	selected := pref
	if selected == theme.PreferenceUnset {
		selected = theme.PreferenceSystem
	}

	options := make([]Node, 0, len(pickerOptions))
	for _, o := range pickerOptions {
		options = append(options, Option(
			Value(string(o.Value)),
			If(o.Value == selected, Selected()),
			Text(o.Label),
		))
	}

	return Form(
		Class("theme-picker"),
		Method("post"),
		Action("/theme"),
		data.Signals(map[string]any{"preference": string(selected)}),
		Label(For("theme-preference"), Text("Theme")),
		Select(ID("theme-preference"), Name("preference"), data.Bind("preference"), Group(options)),
		Button(Type("submit"), Text("Apply")),
		Span(Class("theme-hint"), data.Show("$preference === 'system'"), Text("Following your system setting")),
	)
}
