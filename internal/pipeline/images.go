package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CollectImageRefs walks the markdown AST and returns every image
// destination, in document order, without duplicates.
func CollectImageRefs(markdown string) []string {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	seen := make(map[string]bool)
	var refs []string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			dest := string(img.Destination)
			if dest != "" && !seen[dest] {
				seen[dest] = true
				refs = append(refs, dest)
			}
		}
		return ast.WalkContinue, nil
	})

	return refs
}

// VerifyImageRefs checks that every relative image reference in the
// markdown resolves to a file under the output directory. Absolute and
// remote references are not the pipeline's to verify. Returns the missing
// references.
func VerifyImageRefs(markdown, outputDir string) []string {
	var missing []string
	for _, ref := range CollectImageRefs(markdown) {
		if strings.Contains(ref, "://") || filepath.IsAbs(ref) {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(ref))); err != nil {
			missing = append(missing, ref)
		}
	}
	return missing
}
