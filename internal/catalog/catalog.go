// Package catalog provides the static domain tables: crop species, building
// types, and per-method cultivation multipliers.
// Tables are immutable once loaded; the default set is embedded in the binary.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// CropID identifies a crop species.
type CropID string

// BuildingID identifies a building type.
type BuildingID string

// Method tags a cultivation technique.
type Method string

// Placement is the category a building type belongs to.
type Placement string

// Building type ids shipped with the default tables.
const (
	BuildingEmpty           BuildingID = "EMPTY"
	BuildingCommunityGarden BuildingID = "CG"
	BuildingRoofGarden      BuildingID = "RG"
	BuildingVerticalFarm    BuildingID = "VF"
	BuildingMarket          BuildingID = "MARKET"
	BuildingRainTank        BuildingID = "RAIN"
	BuildingColdHub         BuildingID = "COLD"
	BuildingComposter       BuildingID = "COMPOST"
	BuildingSolar           BuildingID = "SOLAR"
	BuildingEducation       BuildingID = "EDU"
)

// Cultivation methods.
const (
	MethodGround   Method = "CG" // Ground-level community garden
	MethodRoof     Method = "RG" // Rooftop garden
	MethodVertical Method = "VF" // Indoor vertical farm
)

// Placement categories.
const (
	PlacementLand    Placement = "land"
	PlacementRoof    Placement = "roof"
	PlacementService Placement = "service"
	PlacementInfra   Placement = "infra"
)

// Crop is one species in the crop table.
type Crop struct {
	ID          CropID  `json:"id" yaml:"-"`
	Name        string  `json:"name" yaml:"name" validate:"required"`
	BaseYield   float64 `json:"base_yield" yaml:"base_yield" validate:"gt=0"`     // kg per tile per cycle
	CycleDays   int     `json:"cycle_days" yaml:"cycle_days" validate:"gt=0"`     // days from planting to harvest
	WaterLiters float64 `json:"water_liters" yaml:"water_liters" validate:"gte=0"` // liters per day of growth
	BaseLoss    float64 `json:"base_loss" yaml:"base_loss" validate:"gte=0,lte=1"` // postharvest loss fraction
	Price       float64 `json:"price" yaml:"price" validate:"gte=0"`               // IDR per kg
	KcalPerKg   float64 `json:"kcal_per_kg,omitempty" yaml:"kcal_per_kg" validate:"gte=0"`
}

// Building is one entry in the building table.
type Building struct {
	ID         BuildingID `json:"id" yaml:"id" validate:"required"`
	Label      string     `json:"label" yaml:"label" validate:"required"`
	Cost       float64    `json:"cost" yaml:"cost" validate:"gte=0"`
	CanPlant   bool       `json:"can_plant" yaml:"can_plant"`
	Method     Method     `json:"method,omitempty" yaml:"method"`
	Placement  Placement  `json:"placement" yaml:"placement" validate:"oneof=land roof service infra"`
	Workers    int        `json:"workers" yaml:"workers" validate:"gte=0"`
	FloodProne bool       `json:"flood_prone" yaml:"flood_prone"`
}

// RoofOnly reports whether the type may only be placed on roof tiles.
func (b Building) RoofOnly() bool {
	return b.Placement == PlacementRoof
}

// MethodMultiplier scales yield, water and energy relative to ground cultivation.
type MethodMultiplier struct {
	Yield  float64 `json:"yield" yaml:"yield" validate:"gt=0"`
	Water  float64 `json:"water" yaml:"water" validate:"gte=0"`
	Energy float64 `json:"energy" yaml:"energy" validate:"gte=0"`
}

// Catalog holds every static table.
type Catalog struct {
	Crops       map[CropID]Crop
	Buildings   map[BuildingID]Building
	Methods     map[Method]MethodMultiplier
	DefaultCrop CropID
	FastCrops   []CropID

	buildOrder []BuildingID
	cropOrder  []CropID
}

type fileFormat struct {
	DefaultCrop string                      `yaml:"default_crop"`
	FastCrops   []string                    `yaml:"fast_crops"`
	Crops       map[string]Crop             `yaml:"crops"`
	Methods     map[string]MethodMultiplier `yaml:"methods"`
	Buildings   []Building                  `yaml:"buildings"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded tables. Parsed once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads and validates tables from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML tables.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	v := validator.New()
	c := &Catalog{
		Crops:       make(map[CropID]Crop, len(f.Crops)),
		Buildings:   make(map[BuildingID]Building, len(f.Buildings)),
		Methods:     make(map[Method]MethodMultiplier, len(f.Methods)),
		DefaultCrop: CropID(f.DefaultCrop),
	}

	for id, crop := range f.Crops {
		crop.ID = CropID(id)
		if err := v.Struct(crop); err != nil {
			return nil, fmt.Errorf("crop %q: %w", id, err)
		}
		c.Crops[crop.ID] = crop
		c.cropOrder = append(c.cropOrder, crop.ID)
	}
	sort.Slice(c.cropOrder, func(i, j int) bool { return c.cropOrder[i] < c.cropOrder[j] })

	for m, mult := range f.Methods {
		if err := v.Struct(mult); err != nil {
			return nil, fmt.Errorf("method %q: %w", m, err)
		}
		c.Methods[Method(m)] = mult
	}

	for _, b := range f.Buildings {
		if err := v.Struct(b); err != nil {
			return nil, fmt.Errorf("building %q: %w", b.ID, err)
		}
		if _, dup := c.Buildings[b.ID]; dup {
			return nil, fmt.Errorf("building %q listed twice", b.ID)
		}
		if b.CanPlant {
			if _, ok := c.Methods[b.Method]; !ok {
				return nil, fmt.Errorf("building %q: unknown method %q", b.ID, b.Method)
			}
		}
		c.Buildings[b.ID] = b
		c.buildOrder = append(c.buildOrder, b.ID)
	}

	if _, ok := c.Buildings[BuildingEmpty]; !ok {
		return nil, fmt.Errorf("catalog has no %s building", BuildingEmpty)
	}
	if _, ok := c.Crops[c.DefaultCrop]; !ok {
		return nil, fmt.Errorf("default crop %q not in crop table", c.DefaultCrop)
	}
	for _, id := range f.FastCrops {
		if _, ok := c.Crops[CropID(id)]; !ok {
			return nil, fmt.Errorf("fast crop %q not in crop table", id)
		}
		c.FastCrops = append(c.FastCrops, CropID(id))
	}

	return c, nil
}

// Crop looks up a crop species.
func (c *Catalog) Crop(id CropID) (Crop, bool) {
	crop, ok := c.Crops[id]
	return crop, ok
}

// Building looks up a building type.
func (c *Catalog) Building(id BuildingID) (Building, bool) {
	b, ok := c.Buildings[id]
	return b, ok
}

// Method looks up a method multiplier.
func (c *Catalog) Method(m Method) (MethodMultiplier, bool) {
	mult, ok := c.Methods[m]
	return mult, ok
}

// CanPlant reports whether the building id is a known plantable type.
func (c *Catalog) CanPlant(id BuildingID) bool {
	b, ok := c.Buildings[id]
	return ok && b.CanPlant
}

// CropIDs returns crop ids in lexicographic order.
func (c *Catalog) CropIDs() []CropID {
	return append([]CropID(nil), c.cropOrder...)
}

// BuildingIDs returns building ids in table order, EMPTY excluded.
func (c *Catalog) BuildingIDs() []BuildingID {
	out := make([]BuildingID, 0, len(c.buildOrder))
	for _, id := range c.buildOrder {
		if id != BuildingEmpty {
			out = append(out, id)
		}
	}
	return out
}

// IsFast reports whether the crop counts as a fast-growing starter crop.
func (c *Catalog) IsFast(id CropID) bool {
	for _, f := range c.FastCrops {
		if f == id {
			return true
		}
	}
	return false
}
