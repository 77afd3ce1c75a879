package trace

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gopherjs/stackmap/internal/testingx"
	"github.com/gopherjs/stackmap/resolve"
)

// One mapping: generated 5:10 -> a.js 3:2, name "foo".
const fixtureMap = `{"version":3,"sources":["a.js"],"names":["foo"],"mappings":";;;;UAEEA"}`

// writeFixture writes a generated file with a trailing mapping reference and
// the referenced map next to it, returning the generated file's path.
func writeFixture(t *testing.T, genName, genContent, mapName, mapContent string) string {
	t.Helper()
	dir := t.TempDir()
	gen := filepath.Join(dir, genName)
	if err := os.WriteFile(gen, []byte(genContent), 0o644); err != nil {
		t.Fatalf("Got: unexpected error: %s. Want: no error.", err)
	}
	if mapName != "" {
		if err := os.WriteFile(filepath.Join(dir, mapName), []byte(mapContent), 0o644); err != nil {
			t.Fatalf("Got: unexpected error: %s. Want: no error.", err)
		}
	}
	return gen
}

func TestDiscovery(t *testing.T) {
	gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL=gen.js.map\n", "gen.js.map", fixtureMap)
	c := NewCache()

	r := c.Resolver(gen)
	if r == nil {
		t.Fatalf("Got: Resolver(%q) = nil. Want: a resolver.", gen)
	}

	pos := c.OriginalPositionFor(gen, 5, 10)
	want := &resolve.Position{Source: filepath.Join(filepath.Dir(gen), "a.js"), Line: 3, Column: 2, Name: "foo"}
	if diff := cmp.Diff(want, pos); diff != "" {
		t.Errorf("OriginalPositionFor() returned diff (-want,+got):\n%s", diff)
	}

	if r2 := c.Resolver(gen); r2 != r {
		t.Errorf("Got: second Resolver() call returned a different instance. Want: the cached one.")
	}
}

func TestDiscoveryNegative(t *testing.T) {
	t.Run("no mapping reference", func(t *testing.T) {
		gen := writeFixture(t, "gen.js", "code();\n", "", "")
		c := NewCache()
		for i := 0; i < 2; i++ {
			if r := c.Resolver(gen); r != nil {
				t.Fatalf("Got: Resolver() call %d = %T. Want: nil.", i+1, r)
			}
		}
	})

	t.Run("missing generated file", func(t *testing.T) {
		c := NewCache()
		if r := c.Resolver("/does/not/exist.js"); r != nil {
			t.Errorf("Got: Resolver() = %T. Want: nil.", r)
		}
	})

	t.Run("missing map file", func(t *testing.T) {
		gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL=gone.js.map\n", "", "")
		c := NewCache()
		if r := c.Resolver(gen); r != nil {
			t.Errorf("Got: Resolver() = %T. Want: nil.", r)
		}
	})

	t.Run("malformed map document", func(t *testing.T) {
		gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL=gen.js.map\n", "gen.js.map", "{not json")
		c := NewCache()
		if r := c.Resolver(gen); r != nil {
			t.Errorf("Got: Resolver() = %T. Want: nil.", r)
		}
	})

	t.Run("rejected map document", func(t *testing.T) {
		bad := `{"version":3,"sections":[{"offset":{"line":0,"column":0},"url":"https://example.com/x.map"}]}`
		gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL=gen.js.map\n", "gen.js.map", bad)
		c := NewCache()
		if r := c.Resolver(gen); r != nil {
			t.Errorf("Got: Resolver() = %T. Want: nil.", r)
		}
	})
}

func TestLastMapRef(t *testing.T) {
	tests := []struct {
		descr  string
		source string
		want   string
	}{{
		descr:  "none",
		source: "var x = 1;\n",
		want:   "",
	}, {
		descr:  "single-line comment",
		source: "var x = 1;\n//# sourceMappingURL=a.map\n",
		want:   "a.map",
	}, {
		descr:  "legacy marker",
		source: "var x = 1;\n//@ sourceMappingURL=a.map\n",
		want:   "a.map",
	}, {
		descr:  "block comment",
		source: "var x = 1;\n/*# sourceMappingURL=a.map */\n",
		want:   "a.map",
	}, {
		descr:  "last occurrence wins",
		source: "//# sourceMappingURL=first.map\nvar x = 1;\n//# sourceMappingURL=second.map\n",
		want:   "second.map",
	}, {
		descr:  "reference mid-line is ignored",
		source: "var s = '//# sourceMappingURL=a.map is a marker';\n",
		want:   "",
	}}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got := lastMapRef([]byte(test.source))
			if got != test.want {
				t.Errorf("Got: lastMapRef() = %q. Want: %q.", got, test.want)
			}
		})
	}
}

func TestDataURLMap(t *testing.T) {
	ref := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(fixtureMap))
	gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL="+ref+"\n", "", "")
	c := NewCache()

	pos := c.OriginalPositionFor(gen, 5, 10)
	// Inline maps keep the generated file as their location, so relative
	// sources resolve against its directory.
	want := &resolve.Position{Source: filepath.Join(filepath.Dir(gen), "a.js"), Line: 3, Column: 2, Name: "foo"}
	if diff := cmp.Diff(want, pos); diff != "" {
		t.Errorf("OriginalPositionFor() returned diff (-want,+got):\n%s", diff)
	}
}

func TestXSSIPrefixedMap(t *testing.T) {
	gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL=gen.js.map\n", "gen.js.map", ")]}'\n"+fixtureMap)
	c := NewCache()
	if pos := c.OriginalPositionFor(gen, 5, 10); pos == nil {
		t.Errorf("Got: OriginalPositionFor() = nil. Want: a position from the XSSI-guarded map.")
	}
}

func TestResolverFromSource(t *testing.T) {
	ref := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(fixtureMap))
	source := []byte("code();\n//# sourceMappingURL=" + ref + "\n")
	c := NewCache()

	// Nothing exists on disk at this path; the handed-over text is scanned.
	r := c.ResolverFromSource("/virtual/gen.js", source)
	if r == nil {
		t.Fatalf("Got: ResolverFromSource() = nil. Want: a resolver.")
	}
	if r2 := c.Resolver("/virtual/gen.js"); r2 != r {
		t.Errorf("Got: Resolver() returned a different instance. Want: the one cached by ResolverFromSource.")
	}
}

func TestSourcesContentSeeding(t *testing.T) {
	// The embedded content of a.js carries its own inline map pointing at
	// deep.js, mimicking chained transpilation.
	innerMap := `{"version":3,"sources":["deep.js"],"names":["bar"],"mappings":";;;;UAEEA"}`
	innerRef := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(innerMap))
	content := "original();\n//# sourceMappingURL=" + innerRef + "\n"

	outerMap := testingx.Must[[]byte](t)(json.Marshal(map[string]interface{}{
		"version":        3,
		"sources":        []string{"a.js"},
		"sourcesContent": []string{content},
		"names":          []string{"foo"},
		"mappings":       ";;;;UAEEA",
	}))
	gen := writeFixture(t, "gen.js", "code();\n//# sourceMappingURL=gen.js.map\n", "gen.js.map", string(outerMap))
	c := NewCache()

	if r := c.Resolver(gen); r == nil {
		t.Fatalf("Got: Resolver() = nil. Want: a resolver.")
	}

	// a.js was seeded from the embedded content; deep.js does not exist on
	// disk and must still resolve through the seeded entry.
	seeded := filepath.Join(filepath.Dir(gen), "a.js")
	pos := c.OriginalPositionFor(seeded, 5, 10)
	if pos == nil {
		t.Fatalf("Got: OriginalPositionFor(%q) = nil. Want: a position from the seeded map.", seeded)
	}
	if got, wantSource := pos.Source, filepath.Join(filepath.Dir(gen), "deep.js"); got != wantSource {
		t.Errorf("Got: seeded position source %q. Want: %q.", got, wantSource)
	}
	if pos.Line != 3 || pos.Column != 2 || pos.Name != "bar" {
		t.Errorf("Got: seeded position %+v. Want: line 3, column 2, name bar.", pos)
	}
}

// awaitResolver bounds a discovery that must complete even when the map's
// embedded sources refer back to a path still being discovered.
func awaitResolver(t *testing.T, c *Cache, path string) resolve.Resolver {
	t.Helper()
	done := make(chan resolve.Resolver, 1)
	go func() { done <- c.Resolver(path) }()
	select {
	case r := <-done:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("Got: Resolver(%q) did not return. Want: it to complete.", path)
		return nil
	}
}

func TestSeedingCycles(t *testing.T) {
	t.Run("self-referential map", func(t *testing.T) {
		// An in-place transpile: gen.js's map lists gen.js itself as the
		// original source, embedding the same text with the same map ref.
		content := "code();\n//# sourceMappingURL=gen.js.map\n"
		doc := testingx.Must[[]byte](t)(json.Marshal(map[string]interface{}{
			"version":        3,
			"sources":        []string{"gen.js"},
			"sourcesContent": []string{content},
			"names":          []string{"foo"},
			"mappings":       ";;;;UAEEA",
		}))
		gen := writeFixture(t, "gen.js", content, "gen.js.map", string(doc))
		c := NewCache()

		r := awaitResolver(t, c, gen)
		if r == nil {
			t.Fatalf("Got: Resolver(%q) = nil. Want: a resolver.", gen)
		}
		if pos := c.OriginalPositionFor(gen, 5, 10); pos == nil || pos.Name != "foo" {
			t.Errorf("Got: OriginalPositionFor() = %+v. Want: the mapping with name foo.", pos)
		}
	})

	t.Run("two-file cycle", func(t *testing.T) {
		genContent := "code();\n//# sourceMappingURL=gen.js.map\n"
		origContent := "original();\n//# sourceMappingURL=a.js.map\n"
		genMap := testingx.Must[[]byte](t)(json.Marshal(map[string]interface{}{
			"version":        3,
			"sources":        []string{"a.js"},
			"sourcesContent": []string{origContent},
			"names":          []string{"foo"},
			"mappings":       ";;;;UAEEA",
		}))
		// a.js's map points straight back at gen.js.
		origMap := testingx.Must[[]byte](t)(json.Marshal(map[string]interface{}{
			"version":        3,
			"sources":        []string{"gen.js"},
			"sourcesContent": []string{genContent},
			"names":          []string{"bar"},
			"mappings":       ";;;;UAEEA",
		}))
		gen := writeFixture(t, "gen.js", genContent, "gen.js.map", string(genMap))
		dir := filepath.Dir(gen)
		if err := os.WriteFile(filepath.Join(dir, "a.js.map"), origMap, 0o644); err != nil {
			t.Fatalf("Got: unexpected error: %s. Want: no error.", err)
		}
		c := NewCache()

		if r := awaitResolver(t, c, gen); r == nil {
			t.Fatalf("Got: Resolver(%q) = nil. Want: a resolver.", gen)
		}

		// a.js was seeded during gen.js's discovery; its own map resolves
		// back into gen.js without looping.
		pos := c.OriginalPositionFor(filepath.Join(dir, "a.js"), 5, 10)
		if pos == nil || pos.Name != "bar" {
			t.Fatalf("Got: seeded OriginalPositionFor() = %+v. Want: the mapping with name bar.", pos)
		}
		if want := filepath.Join(dir, "gen.js"); pos.Source != want {
			t.Errorf("Got: seeded position source %q. Want: %q.", pos.Source, want)
		}
	})
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		descr string
		path  string
		want  string
	}{{
		descr: "plain path untouched",
		path:  "/srv/app/out.js",
		want:  "/srv/app/out.js",
	}, {
		descr: "file URL",
		path:  "file:///srv/app/out.js",
		want:  "/srv/app/out.js",
	}, {
		descr: "file URL with a Windows drive",
		path:  "file:///C:/proj/out.js",
		want:  "C:/proj/out.js",
	}, {
		descr: "surrounding whitespace trimmed",
		path:  " file:///srv/out.js \n",
		want:  "/srv/out.js",
	}}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got := localPath(test.path)
			if got != test.want {
				t.Errorf("Got: localPath(%q) = %q. Want: %q.", test.path, got, test.want)
			}
		})
	}
}
