// Package mailer renders localized transactional emails and delivers them
// from the outbox.
package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"golang.org/x/text/language"
)

type Template string

const (
	TemplateOrderPlaced Template = "order_placed"
	TemplateOrderStatus Template = "order_status"
)

// Data is the set of fields substituted into a template.
type Data struct {
	CustomerName string
	OrderNumber  string
	Status       string
	Total        string
}

type Email struct {
	Subject string
	HTML    string
	Text    string
}

const defaultLanguage = "en"

var (
	matcher = language.NewMatcher([]language.Tag{
		language.English,
		language.German,
		language.French,
		language.Italian,
	})

	htmlShell = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:24px;background:#f6f6f6;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" width="100%" style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;">
<tr><td style="padding:24px;">
<h1 style="font-size:20px;color:#222222;">{{.Heading}}</h1>
<p>{{.Greeting}}</p>
<p>{{.Body}}</p>
<p style="font-size:12px;color:#888888;">{{.Footer}}</p>
</td></tr>
</table>
</body>
</html>
`))

	textShell = template.Must(template.New("text").Parse(`{{.Heading}}

{{.Greeting}}

{{.Body}}

--
{{.Footer}}
`))
)

type view struct {
	Lang     string
	Subject  string
	Heading  string
	Greeting string
	Body     string
	Footer   string
}

type phraseData struct {
	Data
	StatusLabel string
}

// Render produces the subject, HTML and plain-text bodies of tmpl in the
// language closest to lang. Unknown languages fall back to English.
func Render(tmpl Template, lang string, data Data) (Email, error) {
	code := matchLanguage(lang)
	b := bundles[code]

	p, ok := b.Templates[tmpl]
	if !ok {
		return Email{}, fmt.Errorf("unknown email template %q", tmpl)
	}

	values := phraseData{Data: data, StatusLabel: data.Status}
	if label, ok := b.Statuses[data.Status]; ok {
		values.StatusLabel = label
	}

	v := view{Lang: code}

	for _, field := range []struct {
		dst    *string
		phrase string
	}{
		{&v.Subject, p.Subject},
		{&v.Heading, p.Heading},
		{&v.Greeting, b.Greeting},
		{&v.Body, p.Body},
		{&v.Footer, b.Footer},
	} {
		text, err := executePhrase(field.phrase, values)
		if err != nil {
			return Email{}, err
		}

		*field.dst = text
	}

	var html, text bytes.Buffer

	if err := htmlShell.Execute(&html, v); err != nil {
		return Email{}, fmt.Errorf("cannot render html body: %w", err)
	}

	if err := textShell.Execute(&text, v); err != nil {
		return Email{}, fmt.Errorf("cannot render text body: %w", err)
	}

	return Email{
		Subject: v.Subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func matchLanguage(lang string) string {
	tag, _ := language.MatchStrings(matcher, lang)

	base, _ := tag.Base()
	if _, ok := bundles[base.String()]; ok {
		return base.String()
	}

	return defaultLanguage
}

func executePhrase(phrase string, values phraseData) (string, error) {
	t, err := template.New("phrase").Parse(phrase)
	if err != nil {
		return "", fmt.Errorf("cannot parse phrase: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("cannot render phrase: %w", err)
	}

	return buf.String(), nil
}
