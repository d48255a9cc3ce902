// CLAUDE:SUMMARY Renders a finding as a human message; result HTML is sanitised (bluemonday) then converted to Markdown.
package notify

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizer   = bluemonday.UGCPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
)

// Subject is the one-line summary used as e-mail subject.
func Subject(f Finding) string {
	return fmt.Sprintf("Appointment available: %s", f.Profile)
}

// Render builds the message body shared by the text backends.
func Render(f Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment available for profile %s (check #%d, %s)\n",
		f.Profile, f.Cycle, f.At.Format("2006-01-02 15:04"))
	for _, m := range f.Matches {
		b.WriteString("\n")
		if m.Label != "" {
			fmt.Fprintf(&b, "%s\n", m.Label)
		}
		b.WriteString(detail(m, f.URL))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nBook at: %s\n", f.URL)
	return b.String()
}

// detail converts the result element to Markdown. If conversion fails or
// yields nothing, the plain text is used.
func detail(m Match, pageURL string) string {
	if m.HTML == "" {
		return m.Text
	}
	clean := sanitizer.Sanitize(m.HTML)
	md, err := mdConverter.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil || strings.TrimSpace(md) == "" {
		return m.Text
	}
	return strings.TrimSpace(md)
}
