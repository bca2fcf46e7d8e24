package architecture_test

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/mod/modfile"
)

type importRef struct {
	file string
	imp  string
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)

	type violation struct {
		importRef
		rule string
	}
	var violations []violation
	walkImports(t, root, func(ref importRef) {
		for _, bad := range disallowedImports(modulePath, layerFor(ref.file)) {
			if ref.imp == bad || strings.HasPrefix(ref.imp, bad+"/") {
				violations = append(violations, violation{importRef: ref, rule: bad})
				return
			}
		}
	})

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

func TestFeaturesAreIndependent(t *testing.T) {
	root, modulePath := moduleRoot(t)
	prefix := modulePath + "/internal/features/"

	var violations []importRef
	walkImports(t, root, func(ref importRef) {
		own, ok := featureOf(ref.file, "internal/features/")
		if !ok {
			return
		}
		imported, ok := featureOf(ref.imp, prefix)
		if ok && imported != own {
			violations = append(violations, ref)
		}
	})

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("features import each other (share through internal/ packages instead):\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q\n", v.file, v.imp)
		}
		t.Fatal(b.String())
	}
}

// featureOf returns the first path element after prefix.
func featureOf(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(path, prefix), "/")
	return name, name != ""
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/mediator/behaviors/"):
		return "behaviors"
	case strings.HasPrefix(rel, "internal/mediator/"):
		return "mediator"
	case strings.HasPrefix(rel, "internal/authz/"), strings.HasPrefix(rel, "internal/validation/"):
		return "contracts"
	case strings.HasPrefix(rel, "internal/features/"):
		return "features"
	case strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	transport := []string{
		modulePath + "/internal/http",
		modulePath + "/internal/app",
		"github.com/gin-gonic",
	}
	switch layer {
	case "contracts":
		return append(transport,
			modulePath+"/internal/mediator",
			modulePath+"/internal/data",
			"gorm.io",
		)
	case "mediator":
		return append(transport,
			modulePath+"/internal/data",
			modulePath+"/internal/features",
			modulePath+"/internal/identity",
			"gorm.io",
		)
	case "behaviors":
		return append(transport,
			modulePath+"/internal/data",
			modulePath+"/internal/features",
		)
	case "features":
		return transport
	case "platform":
		return append(transport,
			modulePath+"/internal/mediator",
			modulePath+"/internal/features",
		)
	default:
		return nil
	}
}

// walkImports calls fn for every import of every Go file under internal/.
func walkImports(t *testing.T, root string, fn func(importRef)) {
	t.Helper()
	fset := token.NewFileSet()
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache", "testdata":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			fn(importRef{file: filepath.ToSlash(rel), imp: imp})
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
}

// moduleRoot walks up from the test's working directory to the nearest go.mod.
func moduleRoot(t *testing.T) (root, modulePath string) {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil {
			modulePath = modfile.ModulePath(data)
			if modulePath == "" {
				t.Fatalf("module path not found in %s", filepath.Join(dir, "go.mod"))
			}
			return dir, modulePath
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("read go.mod: %v", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found")
		}
		dir = parent
	}
}
