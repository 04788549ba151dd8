package storage

import "fmt"

// Field enumerates the session columns a dialogue step may write. The
// closed set keeps single-column updates from ever interpolating caller
// strings into SQL.
type Field string

const (
	FieldLang        Field = "lang"
	FieldCity        Field = "city"
	FieldLocation    Field = "location_id"
	FieldHotelCount  Field = "hotel_count"
	FieldPersons     Field = "persons"
	FieldCheckIn     Field = "check_in"
	FieldCheckOut    Field = "check_out"
	FieldPriceMax    Field = "price_max"
	FieldMaxDistance Field = "max_distance"
	FieldStatus      Field = "status"
)

var updatableFields = map[Field]struct{}{
	FieldLang:        {},
	FieldCity:        {},
	FieldLocation:    {},
	FieldHotelCount:  {},
	FieldPersons:     {},
	FieldCheckIn:     {},
	FieldCheckOut:    {},
	FieldPriceMax:    {},
	FieldMaxDistance: {},
	FieldStatus:      {},
}

// Validate reports whether the field belongs to the updatable set.
func (f Field) Validate() error {
	if _, ok := updatableFields[f]; !ok {
		return fmt.Errorf("storage: field %q is not updatable", string(f))
	}
	return nil
}
