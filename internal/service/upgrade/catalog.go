package upgrade

import (
	"math"

	"github.com/marcosgv/tribalbot/internal/domain"
)

// Catalog holds the immutable per-building cumulative point tables the engine
// searches. Loaded once at startup.
type Catalog struct {
	buildings []domain.Building
	byKey     map[string]*domain.Building
}

func NewCatalog(buildings []domain.Building) *Catalog {
	c := &Catalog{
		buildings: buildings,
		byKey:     make(map[string]*domain.Building, len(buildings)),
	}
	for i := range c.buildings {
		c.byKey[c.buildings[i].Key] = &c.buildings[i]
	}
	return c
}

func (c *Catalog) All() []domain.Building {
	return c.buildings
}

func (c *Catalog) Get(key string) *domain.Building {
	return c.byKey[key]
}

// baseBuilding describes one building of the default game ruleset. Per-level
// points follow the standard growth curve: round(base * 1.2^(level-1)),
// accumulated over levels.
type baseBuilding struct {
	key      string
	name     string
	base     int
	maxLevel int
}

var defaultBuildings = []baseBuilding{
	{"main", "Cuartel general", 10, 30},
	{"barracks", "Cuartel", 16, 25},
	{"stable", "Establo", 20, 20},
	{"garage", "Taller", 24, 15},
	{"smith", "Herrería", 19, 20},
	{"market", "Mercado", 10, 25},
	{"wood", "Leñador", 6, 30},
	{"stone", "Barrera", 6, 30},
	{"iron", "Mina de hierro", 6, 30},
	{"farm", "Granja", 5, 30},
	{"storage", "Almacén", 6, 30},
	{"hide", "Escondite", 5, 10},
	{"wall", "Muralla", 8, 20},
	{"snob", "Academia", 512, 3},
	{"statue", "Estatua", 24, 1},
}

// DefaultCatalog builds the standard ruleset tables.
func DefaultCatalog() *Catalog {
	buildings := make([]domain.Building, 0, len(defaultBuildings))
	for _, b := range defaultBuildings {
		points := make([]int, b.maxLevel+1)
		total := 0
		for level := 1; level <= b.maxLevel; level++ {
			total += int(math.Round(float64(b.base) * math.Pow(1.2, float64(level-1))))
			points[level] = total
		}
		buildings = append(buildings, domain.Building{
			Key:    b.key,
			Name:   b.name,
			Points: points,
		})
	}
	return NewCatalog(buildings)
}
