package groups

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/penwyp/go-hwlog-viewer/internal/util"
	"gopkg.in/yaml.v3"
)

//go:embed default_groups.yaml
var defaultGroupsYAML []byte

// Group is one node of the sensor group tree.
type Group struct {
	Fields       []string          `yaml:"fields,omitempty"`
	FieldPattern string            `yaml:"field_pattern,omitempty"`
	Children     map[string]*Group `yaml:"children,omitempty"`
}

// Config holds the top level groups by name.
type Config struct {
	Groups map[string]*Group
}

// Parse decodes a YAML group file. The top level maps group names to groups.
func Parse(data []byte) (*Config, error) {
	groups := make(map[string]*Group)
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse groups config: %w", err)
	}
	for name, g := range groups {
		if g == nil {
			groups[name] = &Group{}
		}
	}
	return &Config{Groups: groups}, nil
}

// Load reads a YAML group file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups config: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in groups.
func Default() *Config {
	cfg, err := Parse(defaultGroupsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in groups config is invalid: %v", err))
	}
	return cfg
}

type patternRule struct {
	re   *regexp.Regexp
	path []string
}

// Classifier maps a column header to its group path.
type Classifier struct {
	exact map[string][]string
	rules []patternRule
}

// NewClassifier flattens cfg. Exact field names win over patterns; among
// patterns, deeper groups are tried first, then paths in name order.
// Invalid patterns are skipped.
func NewClassifier(cfg *Config) *Classifier {
	c := &Classifier{exact: make(map[string][]string)}
	if cfg == nil {
		return c
	}

	names := sortedNames(cfg.Groups)
	for _, name := range names {
		c.collect(cfg.Groups[name], []string{name})
	}

	sort.SliceStable(c.rules, func(i, j int) bool {
		if len(c.rules[i].path) != len(c.rules[j].path) {
			return len(c.rules[i].path) > len(c.rules[j].path)
		}
		return strings.Join(c.rules[i].path, "/") < strings.Join(c.rules[j].path, "/")
	})
	return c
}

func (c *Classifier) collect(g *Group, path []string) {
	if g == nil {
		return
	}
	for _, f := range g.Fields {
		if _, exists := c.exact[f]; !exists {
			c.exact[f] = clonePath(path)
		}
	}
	if g.FieldPattern != "" {
		re, err := regexp.Compile(g.FieldPattern)
		if err != nil {
			util.LogWarnf("groups: skipping invalid pattern for %s: %v", strings.Join(path, "/"), err)
		} else {
			c.rules = append(c.rules, patternRule{re: re, path: clonePath(path)})
		}
	}
	for _, name := range sortedNames(g.Children) {
		c.collect(g.Children[name], append(clonePath(path), name))
	}
}

// Classify returns the group path of header, or false when no group claims it.
func (c *Classifier) Classify(header string) ([]string, bool) {
	if path, ok := c.exact[header]; ok {
		return clonePath(path), true
	}
	for _, r := range c.rules {
		if r.re.MatchString(header) {
			return clonePath(r.path), true
		}
	}
	return nil, false
}

// GroupName returns the path joined with "/", or "Other" when unclassified.
func (c *Classifier) GroupName(header string) string {
	if path, ok := c.Classify(header); ok {
		return strings.Join(path, "/")
	}
	return "Other"
}

// InGroup reports whether header belongs to group or one of its descendants.
// group is matched case-insensitively against the joined path prefix.
func (c *Classifier) InGroup(header, group string) bool {
	path, ok := c.Classify(header)
	if !ok {
		return strings.EqualFold(group, "Other")
	}
	want := strings.Split(strings.Trim(group, "/"), "/")
	if len(want) > len(path) {
		return false
	}
	for i, w := range want {
		if !strings.EqualFold(w, path[i]) {
			return false
		}
	}
	return true
}

func sortedNames(m map[string]*Group) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clonePath(path []string) []string {
	return append([]string(nil), path...)
}
