package trace

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/gopherjs/stackmap/internal/bisect"
	"github.com/gopherjs/stackmap/resolve"
)

// Cache discovers the source map referenced by a generated file and memoizes
// the outcome per path for the cache's lifetime. A nil entry records that
// discovery found no mapping reference or failed, so the cost is paid once
// per path; entries are never invalidated, edits to files already looked up
// are not observed.
//
// Discovery failures (unreadable files, malformed documents) are deliberately
// swallowed into negative entries: stack rendering must fall back to the
// unmapped frame, never abort.
type Cache struct {
	mu        sync.RWMutex
	group     singleflight.Group
	resolvers map[string]resolve.Resolver
}

func NewCache() *Cache {
	return &Cache{resolvers: make(map[string]resolve.Resolver)}
}

// Resolver returns the resolver for the source map referenced by the
// generated file at path, or nil when it has none. The result, positive or
// negative, is served from the cache on every later call.
func (c *Cache) Resolver(path string) resolve.Resolver {
	return c.lookup(path, nil)
}

// ResolverFromSource is like Resolver but scans already-loaded file text,
// avoiding a redundant read. The text is only consulted on the first call for
// the path.
func (c *Cache) ResolverFromSource(path string, source []byte) resolve.Resolver {
	return c.lookup(path, source)
}

// discovery is the outcome of one flight: the stored resolver plus the
// parsed document it came from, kept so source seeding can run after the
// flight completes.
type discovery struct {
	resolver resolve.Resolver
	doc      *resolve.Document
	mapURL   string
}

func (c *Cache) lookup(path string, source []byte) resolve.Resolver {
	c.mu.RLock()
	r, ok := c.resolvers[path]
	c.mu.RUnlock()
	if ok {
		return r
	}

	v, _, _ := c.group.Do(path, func() (interface{}, error) {
		d := c.discover(path, source)
		c.mu.Lock()
		c.resolvers[path] = d.resolver
		c.mu.Unlock()
		return d, nil
	})
	d, _ := v.(discovery)
	if d.doc != nil {
		// Seeding must not run inside the flight: a map whose embedded
		// sources refer back to this path (in-place transpilation, or a
		// cycle of maps) would re-enter the in-flight key and block forever.
		// Here the entry is already stored, so such references hit the cache.
		c.seedSources(d.doc, d.mapURL)
	}
	return d.resolver
}

// OriginalPositionFor maps a generated position (1-based line, 0-based
// column) to its original source position, or nil when no source map covers
// it. Resolution failures are logged and degrade to nil.
func (c *Cache) OriginalPositionFor(file string, line, column int) *resolve.Position {
	r := c.Resolver(file)
	if r == nil {
		return nil
	}
	pos, err := r.OriginalPositionFor(line, column, bisect.GreatestLowerBound)
	if err != nil {
		log.WithField("file", file).WithError(err).Debug("stackmap: position resolution failed")
		return nil
	}
	return pos
}

// Matches a trailing sourceMappingURL comment, either single-line or block
// form, with the older @ marker accepted alongside #.
var mapRefRx = regexp.MustCompile(`(?m)(?://[@#][ \t]*sourceMappingURL=([^\s'"]+)[ \t]*$)|(?:/\*[@#][ \t]*sourceMappingURL=([^\s*'"]+)[ \t]*\*/[ \t]*$)`)

// lastMapRef returns the reference of the last sourceMappingURL comment in
// the generated text, or "" if there is none.
func lastMapRef(source []byte) string {
	matches := mapRefRx.FindAllSubmatch(source, -1)
	if len(matches) == 0 {
		return ""
	}
	m := matches[len(matches)-1]
	if len(m[1]) > 0 {
		return string(m[1])
	}
	return string(m[2])
}

func (c *Cache) discover(path string, source []byte) discovery {
	if source == nil {
		data, err := os.ReadFile(localPath(path))
		if err != nil {
			log.WithField("file", path).WithError(err).Debug("stackmap: failed to read generated file")
			return discovery{}
		}
		source = data
	}
	ref := lastMapRef(source)
	if ref == "" {
		return discovery{}
	}
	data, mapURL, err := loadMap(path, ref)
	if err != nil {
		log.WithField("file", path).WithField("ref", ref).WithError(err).Debug("stackmap: failed to load source map")
		return discovery{}
	}
	doc, err := resolve.Parse(data)
	if err != nil {
		log.WithField("map", mapURL).WithError(err).Debug("stackmap: failed to parse source map")
		return discovery{}
	}
	r, err := resolve.New(doc, mapURL)
	if err != nil {
		log.WithField("map", mapURL).WithError(err).Warn("stackmap: rejected source map")
		return discovery{}
	}
	return discovery{resolver: r, doc: doc, mapURL: mapURL}
}

var dataURLRx = regexp.MustCompile(`^data:application/json[^,]*;base64,`)

// loadMap fetches the referenced map document. Inline data URLs are decoded
// in place and keep the generated file itself as the document's location, so
// relative sources resolve against the generated file's directory.
func loadMap(generated, ref string) (data []byte, mapURL string, err error) {
	if m := dataURLRx.FindString(ref); m != "" {
		data, err := base64.StdEncoding.DecodeString(ref[len(m):])
		if err != nil {
			return nil, "", fmt.Errorf("decode inline source map: %w", err)
		}
		return data, generated, nil
	}
	mapURL = resolve.ResolveRef(generated, ref)
	data, err = os.ReadFile(localPath(mapURL))
	if err != nil {
		return nil, "", err
	}
	return data, mapURL, nil
}

// seedSources pre-populates the cache for original sources whose text is
// embedded in the map document, recursing into sections. An embedded source
// may carry its own mapping reference (chained transpilation); failures here
// are best-effort and already swallowed by lookup. Already-cached paths,
// including the one whose map is being seeded from, stop the recursion.
func (c *Cache) seedSources(doc *resolve.Document, mapURL string) {
	for i, src := range doc.Sources {
		if i >= len(doc.SourcesContent) || doc.SourcesContent[i] == "" {
			continue
		}
		path := resolve.SourcePath(mapURL, doc.SourceRoot, src)
		c.mu.RLock()
		_, seen := c.resolvers[path]
		c.mu.RUnlock()
		if !seen {
			c.ResolverFromSource(path, []byte(doc.SourcesContent[i]))
		}
	}
	for _, s := range doc.Sections {
		if s.Map != nil {
			c.seedSources(s.Map, mapURL)
		}
	}
}

var fileURLRx = regexp.MustCompile(`^file:///(\w:)?`)

// localPath turns a file: URL into a filesystem path. Drive-qualified URLs
// (file:///C:/...) keep the drive at the front instead of a leading slash.
func localPath(p string) string {
	p = strings.TrimSpace(p)
	m := fileURLRx.FindStringSubmatch(p)
	if m == nil {
		return p
	}
	rest := p[len(m[0]):]
	if m[1] != "" {
		return m[1] + rest
	}
	return "/" + rest
}
