// Package assets embeds the files shipped inside the server binary.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed emails/*.tmpl
var embedded embed.FS

// EmailFS holds the email templates, one {name}.tmpl per message.
var EmailFS = mustSub(embedded, "emails")

// EmailTemplates returns the names of the embedded email templates, sorted.
func EmailTemplates() []string {
	files, err := fs.Glob(EmailFS, "*.tmpl")
	if err != nil {
		// only possible for a malformed pattern.
		panic(err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f, path.Ext(f)))
	}
	return names
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("failed to subtree " + dir + ": " + err.Error())
	}
	return sub
}
