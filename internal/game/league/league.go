// Package league defines the CP-capped leagues and loads their meta rosters.
package league

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
)

const (
	GreatCap  = 1500
	UltraCap  = 2500
	MasterCap = 10000
)

// Definition names a league and the file stem of its meta roster.
type Definition struct {
	ID       string
	Name     string
	CapLimit int
}

// Definitions lists every known league format.
var Definitions = []Definition{
	{ID: "great", Name: "Great League", CapLimit: GreatCap},
	{ID: "great_remix", Name: "Great League", CapLimit: GreatCap},
	{ID: "ultra", Name: "Ultra League", CapLimit: UltraCap},
	{ID: "ultra_premier", Name: "Ultra League", CapLimit: UltraCap},
	{ID: "ultra_remix", Name: "Ultra League", CapLimit: UltraCap},
	{ID: "master", Name: "Master League", CapLimit: MasterCap},
}

// Entry is one meta-relevant species with its moveset.
type Entry struct {
	Species *catalog.Species
	Moveset catalog.Moveset
}

// League is a CP cap plus its meta roster.
type League struct {
	Definition
	Meta []Entry
}

// Contains reports whether the species form (shadow flag included) is in the meta.
func (l *League) Contains(s *catalog.Species) bool {
	for _, e := range l.Meta {
		if e.Species.Same(s) {
			return true
		}
	}
	return false
}

// Lookup returns the Definition with the given id.
func Lookup(id string) (Definition, bool) {
	for _, d := range Definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// ParseCap accepts a league id ("great", "ultra_remix", ...) or a positive integer.
func ParseCap(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := Lookup(s); ok {
		return d.CapLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("league: %q is neither a league id nor a positive CP cap", s)
	}
	return n, nil
}

// rosterItem is one record of a meta roster file. Files may be JSON or YAML.
type rosterItem struct {
	SpeciesID    string   `yaml:"speciesId"`
	FastMove     string   `yaml:"fastMove"`
	ChargedMoves []string `yaml:"chargedMoves"`
}

// LoadRoster parses a meta roster file and resolves it against c.
//
// Precondition: path must point to a JSON or YAML array of roster items.
// Postcondition: Returns the resolved entries or the first resolution error.
func LoadRoster(c *catalog.Catalog, path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	return DecodeRoster(c, data)
}

// DecodeRoster parses roster data and resolves it against c.
func DecodeRoster(c *catalog.Catalog, data []byte) ([]Entry, error) {
	var items []rosterItem
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	entries := make([]Entry, 0, len(items))
	for i, it := range items {
		e, err := resolve(c, it)
		if err != nil {
			return nil, fmt.Errorf("roster item %d (%s): %w", i, it.SpeciesID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func resolve(c *catalog.Catalog, it rosterItem) (Entry, error) {
	s, err := c.SpeciesByID(it.SpeciesID)
	if err != nil {
		return Entry{}, err
	}
	fast, err := c.FastMoveByID(it.FastMove)
	if err != nil {
		return Entry{}, err
	}
	charged := make([]*catalog.ChargedMove, 0, len(it.ChargedMoves))
	for _, id := range it.ChargedMoves {
		m, err := c.ChargedMoveByID(id)
		if err != nil {
			return Entry{}, err
		}
		charged = append(charged, m)
	}
	ms, err := catalog.NewMoveset(fast, charged...)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Species: s, Moveset: ms}, nil
}

// Registry holds the loaded leagues by id.
type Registry struct {
	leagues map[string]*League
}

// LoadDirectory loads every league in Definitions from dir, trying <id>.json,
// <id>.yaml and <id>.yml in turn. A league without a file gets an empty meta.
//
// Postcondition: Every Definition has a League in the result.
func LoadDirectory(c *catalog.Catalog, dir string) (*Registry, error) {
	reg := &Registry{leagues: make(map[string]*League, len(Definitions))}
	for _, d := range Definitions {
		l := &League{Definition: d}
		for _, ext := range []string{".json", ".yaml", ".yml"} {
			path := filepath.Join(dir, d.ID+ext)
			meta, err := LoadRoster(c, path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("loading league %s: %w", d.ID, err)
			}
			l.Meta = meta
			break
		}
		reg.leagues[d.ID] = l
	}
	return reg, nil
}

// Get returns the league with the given id.
func (r *Registry) Get(id string) (*League, bool) {
	l, ok := r.leagues[id]
	return l, ok
}

// All returns every league in Definitions order.
func (r *Registry) All() []*League {
	out := make([]*League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	order := make(map[string]int, len(Definitions))
	for i, d := range Definitions {
		order[d.ID] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].ID] < order[out[j].ID] })
	return out
}
