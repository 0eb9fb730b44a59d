package services

import (
	"fmt"
	"log"

	"furniroom/server/models"
	"furniroom/server/persistence"
)

// Catalog is the read-only set of furniture definitions, built once at
// startup and passed to every room.
type Catalog struct {
	defs map[int64]*models.Definition
}

// NewCatalog builds a catalog from already validated definitions
func NewCatalog(defs ...*models.Definition) *Catalog {
	c := &Catalog{defs: make(map[int64]*models.Definition, len(defs))}
	for _, d := range defs {
		c.defs[d.ID] = d
	}
	return c
}

// LoadCatalog reads every definition from the store. Rows that fail
// validation are logged and left out.
func LoadCatalog(db persistence.Storage, logger *log.Logger) (*Catalog, error) {
	rows, err := db.LoadDefinitions()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	c := &Catalog{defs: make(map[int64]*models.Definition, len(rows))}
	for _, row := range rows {
		def, err := row.ToDefinition()
		if err != nil {
			logger.Printf("Skipping furniture definition: %v", err)
			continue
		}
		c.defs[def.ID] = def
	}
	logger.Printf("Loaded %d furniture definitions", len(c.defs))
	return c, nil
}

// Get looks up a definition by id
func (c *Catalog) Get(id int64) (*models.Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

func (c *Catalog) Len() int {
	return len(c.defs)
}
