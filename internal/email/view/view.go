// Package view renders the subject and body of plain text emails from
// text/template files.
package view

import (
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/willemschots/tuffyestates/internal/email"
)

// validName keeps view names from reaching outside the template root.
var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// funcs are available in every email template.
var funcs = template.FuncMap{
	"dollars": dollars,
	"oneline": oneline,
}

// View is a parsed email template with a subject and a body element.
type View struct {
	tmpl *template.Template
}

// Parse parses {name}.tmpl from the root of fsys. Both the subject and
// body elements must be defined.
func Parse(fsys fs.FS, name string) (*View, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("invalid view name %q", name)
	}

	tmpl, err := template.New(name).
		Funcs(funcs).
		Option("missingkey=error").
		ParseFS(fsys, name+".tmpl")
	if err != nil {
		return nil, err
	}

	for _, el := range []email.TemplateElement{email.ElementSubject, email.ElementBody} {
		if tmpl.Lookup(string(el)) == nil {
			return nil, fmt.Errorf("view %s is missing the %s template", name, el)
		}
	}

	return &View{tmpl: tmpl}, nil
}

func (v *View) Render(w io.Writer, element email.TemplateElement, data any) error {
	return v.tmpl.ExecuteTemplate(w, string(element), data)
}

// dollars formats whole dollars with thousands separators, 240000 becomes $240,000.
func dollars(amount int) string {
	digits := strconv.Itoa(amount)
	sign := ""
	if amount < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	return sign + "$" + b.String()
}

// oneline collapses user input onto a single line, so it can't fake
// extra fields in a message.
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
