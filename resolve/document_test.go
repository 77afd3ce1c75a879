package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		descr string
		data  string
		want  *Document
	}{{
		descr: "plain document",
		data:  `{"version":3,"file":"out.js","sources":["a.js"],"names":["foo"],"mappings":"AAAAA"}`,
		want: &Document{
			Version:  3,
			File:     "out.js",
			Sources:  []string{"a.js"},
			Names:    []string{"foo"},
			Mappings: "AAAAA",
		},
	}, {
		descr: "XSSI guard line stripped",
		data:  ")]}'\n" + `{"version":3,"mappings":"AAAA","sources":["a.js"]}`,
		want: &Document{
			Version:  3,
			Sources:  []string{"a.js"},
			Mappings: "AAAA",
		},
	}, {
		descr: "indexed document",
		data:  `{"version":3,"sections":[{"offset":{"line":0,"column":0},"map":{"version":3,"mappings":"AAAA","sources":["a.js"]}}]}`,
		want: &Document{
			Version: 3,
			Sections: []Section{{
				Offset: Offset{Line: 0, Column: 0},
				Map: &Document{
					Version:  3,
					Sources:  []string{"a.js"},
					Mappings: "AAAA",
				},
			}},
		},
	}, {
		descr: "source root and content",
		data:  `{"version":3,"sourceRoot":"src","sources":["a.js"],"sourcesContent":["var x;"],"mappings":"AAAA"}`,
		want: &Document{
			Version:        3,
			SourceRoot:     "src",
			Sources:        []string{"a.js"},
			SourcesContent: []string{"var x;"},
			Mappings:       "AAAA",
		},
	}}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, err := Parse([]byte(test.data))
			if err != nil {
				t.Fatalf("Got: Parse() returned error: %s. Want: no error.", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse() returned diff (-want,+got):\n%s", diff)
			}
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := Parse([]byte(`{"version":`)); err == nil {
			t.Errorf("Got: Parse() succeeded. Want: an error.")
		}
	})
}
