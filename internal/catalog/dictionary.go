package catalog

import (
	"slices"
	"strconv"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"catnorm/internal"
)

// Dictionary maps a catalog attribute name to its synthetic identifier.
// Entries iterate in sorted name order and the dictionary is read-only once built.
type Dictionary struct {
	field internal.Field
	ids   *orderedmap.OrderedMap[string, string]
}

type Dictionaries struct {
	Categories *Dictionary
	Brands     *Dictionary
}

// BuildDictionaries builds the category and brand dictionaries from the same
// collection.
func BuildDictionaries(products []internal.Product, categoryPrefix, brandPrefix string) (Dictionaries, error) {
	categories, err := BuildDictionary(products, internal.FieldCategory, categoryPrefix)
	if err != nil {
		return Dictionaries{}, err
	}
	brands, err := BuildDictionary(products, internal.FieldBrand, brandPrefix)
	if err != nil {
		return Dictionaries{}, err
	}
	return Dictionaries{Categories: categories, Brands: brands}, nil
}

// BuildDictionary assigns prefix+rank to every distinct value of field, ranks
// taken from byte-wise sorted order starting at 1.
func BuildDictionary(products []internal.Product, field internal.Field, prefix string) (*Dictionary, error) {
	seen := make(map[string]struct{})
	for i, p := range products {
		value, err := fieldValue(p, i, field)
		if err != nil {
			return nil, err
		}
		seen[value] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)

	ids := orderedmap.New[string, string]()
	for rank, name := range names {
		ids.Set(name, prefix+strconv.Itoa(rank+1))
	}
	return &Dictionary{field: field, ids: ids}, nil
}

func (d *Dictionary) Field() internal.Field { return d.field }

func (d *Dictionary) Len() int { return d.ids.Len() }

// Lookup returns the identifier assigned to name.
func (d *Dictionary) Lookup(name string) (string, bool) {
	return d.ids.Get(name)
}

// Entries returns a copy of the dictionary in iteration order.
func (d *Dictionary) Entries() []internal.DictionaryEntry {
	out := make([]internal.DictionaryEntry, 0, d.ids.Len())
	for pair := d.ids.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, internal.DictionaryEntry{ID: pair.Value, Name: pair.Key})
	}
	return out
}

// Names indexes the dictionary by identifier.
func (d *Dictionary) Names() map[string]string {
	out := make(map[string]string, d.ids.Len())
	for pair := d.ids.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Value] = pair.Key
	}
	return out
}

func fieldValue(p internal.Product, index int, field internal.Field) (string, error) {
	res := gjson.GetBytes(p, string(field))
	if !gjson.ParseBytes(p).IsObject() || !res.Exists() {
		return "", &FieldError{Index: index, Field: field, Err: ErrMissingField}
	}
	if res.Type != gjson.String {
		return "", &FieldError{Index: index, Field: field, Reason: "not a string", Err: ErrMissingField}
	}
	return res.String(), nil
}
