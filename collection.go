package honeybadger

import (
	"encoding/json"
	"sort"
)

// Collection is an immutable set of entities keyed by identifier. Merge returns a new Collection,
// so a published Collection never changes under its readers.
type Collection struct {
	entities map[string]Entity
}

// NewCollection builds a Collection with only ObservationCount populated. The first observation
// of a duplicated identifier wins.
func NewCollection(observations []*Observation) Collection {
	entities := make(map[string]Entity, len(observations))
	for _, obs := range observations {
		if _, ok := entities[obs.Identifier]; ok {
			continue
		}
		entities[obs.Identifier] = Entity{
			Identifier:       obs.Identifier,
			ObservationCount: obs.Count,
		}
	}

	return Collection{entities: entities}
}

// Len returns number of entities
func (x Collection) Len() int { return len(x.entities) }

// Get returns a copy of the entity for id
func (x Collection) Get(id string) (Entity, bool) {
	entity, ok := x.entities[id]
	return entity, ok
}

// Keys returns identifiers in lexical order
func (x Collection) Keys() []string {
	keys := make([]string, 0, len(x.entities))
	for key := range x.entities {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Entities returns copies of all entities, most observed first
func (x Collection) Entities() []Entity {
	entities := make([]Entity, 0, len(x.entities))
	for _, entity := range x.entities {
		entities = append(entities, entity)
	}

	sort.Slice(entities, func(i, j int) bool {
		if entities[i].ObservationCount != entities[j].ObservationCount {
			return entities[i].ObservationCount > entities[j].ObservationCount
		}
		return entities[i].Identifier < entities[j].Identifier
	})
	return entities
}

// Merge applies enrichments to matching entities and returns the result as a new Collection.
// Enrichments for identifiers not in x are ignored, so the key set never changes.
func (x Collection) Merge(enrichments []Enrichment) Collection {
	merged := make(map[string]Entity, len(x.entities))
	for key, entity := range x.entities {
		merged[key] = entity
	}

	for _, enrichment := range enrichments {
		entity, ok := merged[enrichment.EntityID()]
		if !ok {
			continue
		}
		enrichment.Apply(&entity)
		merged[entity.Identifier] = entity
	}

	return Collection{entities: merged}
}

// MarshalJSON encodes the collection as an object keyed by identifier
func (x Collection) MarshalJSON() ([]byte, error) {
	if x.entities == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(x.entities)
}

// UnmarshalJSON decodes an object keyed by identifier
func (x *Collection) UnmarshalJSON(data []byte) error {
	var entities map[string]Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return err
	}
	if entities == nil {
		entities = make(map[string]Entity)
	}
	for key, entity := range entities {
		entity.Identifier = key
		entities[key] = entity
	}
	x.entities = entities
	return nil
}
