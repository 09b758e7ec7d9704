package model

import (
	"github.com/lib/pq"

	"huddle/shared/model"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID        = "id"
	FieldName      = "name"
	FieldBuilding  = "building"
	FieldFloor     = "floor"
	FieldCapacity  = "capacity"
	FieldEquipment = "equipment"
	FieldImage     = "image"
	FieldStatus    = "status"
)

// Room lifecycle: rooms are never deleted, only retired. Retired rooms drop
// out of catalog reads and recommendation candidates.
const (
	StatusActive  = "active"
	StatusRetired = "retired"
)

type Room struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Building  string         `db:"building"`
	Floor     int            `db:"floor"`
	Capacity  int            `db:"capacity"`
	Equipment pq.StringArray `db:"equipment"`
	Image     string         `db:"image"`
	Status    string         `db:"status"`
	model.Metadata
}

// HasEquipment reports whether the room carries the given capability tag.
func (r Room) HasEquipment(tag string) bool {
	for _, have := range r.Equipment {
		if have == tag {
			return true
		}
	}

	return false
}
