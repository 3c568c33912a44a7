package preview

import (
	"strings"

	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

// AssembleStaticDocument composes the first .html file with the first .css
// and the first .js file into one document. It reports false when there is no
// .html file; a missing stylesheet or script leaves its block empty.
func AssembleStaticDocument(files []*tree.Node) (string, bool) {
	html := firstWithSuffix(files, ".html")
	if html == nil {
		return "", false
	}
	css := firstWithSuffix(files, ".css")
	js := firstWithSuffix(files, ".js")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<style>")
	b.WriteString(contentOf(css))
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(html.Content())
	b.WriteString("\n<script>")
	b.WriteString(contentOf(js))
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String(), true
}

func firstWithSuffix(files []*tree.Node, suffix string) *tree.Node {
	for _, f := range files {
		if !f.IsFolder() && strings.HasSuffix(f.Name(), suffix) {
			return f
		}
	}
	return nil
}

func contentOf(n *tree.Node) string {
	if n == nil {
		return ""
	}
	return n.Content()
}
