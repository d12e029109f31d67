// Package templates renders notification emails from templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Render writes the component into a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Field is one labelled value of a notification email.
type Field struct {
	Label string
	Value string
}

// Notification renders a lifecycle notification: a heading, a short
// message and a table of the entities involved. Every value is escaped.
func Notification(title, message string, fields []Field) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif">`)
		fmt.Fprintf(&b, "<h2>%s</h2>", templ.EscapeString(title))
		fmt.Fprintf(&b, "<p>%s</p>", templ.EscapeString(message))
		if len(fields) > 0 {
			b.WriteString("<table>")
			for _, f := range fields {
				if f.Value == "" {
					continue
				}
				fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>",
					templ.EscapeString(f.Label), templ.EscapeString(f.Value))
			}
			b.WriteString("</table>")
		}
		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
