package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownID is returned when an id cannot be resolved against the tables.
var ErrUnknownID = errors.New("unknown catalog id")

// UnknownIDError carries the rejected input and the closest known ids.
type UnknownIDError struct {
	Kind        string
	Input       string
	Suggestions []string
}

func (e *UnknownIDError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.Input)
	}
	return fmt.Sprintf("unknown %s %q (did you mean %s?)", e.Kind, e.Input, strings.Join(e.Suggestions, " or "))
}

func (e *UnknownIDError) Unwrap() error { return ErrUnknownID }

// ResolveCrop maps player input to a crop id. Matching ignores case.
func (c *Catalog) ResolveCrop(input string) (CropID, error) {
	token := strings.ToLower(strings.TrimSpace(input))
	if _, ok := c.Crops[CropID(token)]; ok {
		return CropID(token), nil
	}
	cands := make([]string, 0, len(c.cropOrder))
	for _, id := range c.cropOrder {
		cands = append(cands, string(id))
	}
	return "", &UnknownIDError{Kind: "crop", Input: input, Suggestions: suggest(token, cands)}
}

// ResolveBuilding maps player input to a building id. Matching ignores case.
func (c *Catalog) ResolveBuilding(input string) (BuildingID, error) {
	token := strings.ToUpper(strings.TrimSpace(input))
	if _, ok := c.Buildings[BuildingID(token)]; ok {
		return BuildingID(token), nil
	}
	cands := make([]string, 0, len(c.buildOrder))
	for _, id := range c.buildOrder {
		cands = append(cands, string(id))
	}
	return "", &UnknownIDError{Kind: "building", Input: input, Suggestions: suggest(token, cands)}
}

// suggest returns up to two candidates within a length-scaled edit distance.
func suggest(token string, cands []string) []string {
	if token == "" {
		return nil
	}
	type scored struct {
		val  string
		dist int
	}
	var hits []scored
	for _, cand := range cands {
		cmp := strings.ToLower(cand)
		t := strings.ToLower(token)
		if strings.HasPrefix(cmp, t) && len(t) >= 2 {
			hits = append(hits, scored{val: cand, dist: 0})
			continue
		}
		dist := levenshtein.ComputeDistance(t, cmp)
		if dist > distanceLimit(len(cmp)) {
			continue
		}
		hits = append(hits, scored{val: cand, dist: dist})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist == hits[j].dist {
			return hits[i].val < hits[j].val
		}
		return hits[i].dist < hits[j].dist
	})
	out := make([]string, 0, 2)
	for i := 0; i < len(hits) && i < 2; i++ {
		out = append(out, hits[i].val)
	}
	return out
}

func distanceLimit(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 6:
		return 2
	default:
		return 3
	}
}
