package vehicle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// CarRecord is one brand/model pair derived from the cars dataset
type CarRecord struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// CountryInfo is a country key from the countries dataset with its value verbatim
type CountryInfo struct {
	Country string          `json:"country"`
	Cities  json.RawMessage `json:"cities"`
}

// ModelsKind tells how a brand's models are encoded in the cars dataset
type ModelsKind int

const (
	// NoModels is a null entry; Flatten rejects it
	NoModels ModelsKind = iota
	// ArrayOfNames yields one record per element
	ArrayOfNames
	// MapOfNames yields one record per key
	MapOfNames
	// ScalarName yields a single record with the stringified value
	ScalarName
)

func (k ModelsKind) String() string {
	switch k {
	case ArrayOfNames:
		return "array"
	case MapOfNames:
		return "map"
	case ScalarName:
		return "scalar"
	default:
		return "none"
	}
}

// KindOf maps a JSON value type onto the models encoding it represents
func KindOf(t jsonparser.ValueType) ModelsKind {
	switch t {
	case jsonparser.Array:
		return ArrayOfNames
	case jsonparser.Object:
		return MapOfNames
	case jsonparser.Null:
		return NoModels
	default:
		return ScalarName
	}
}

var (
	errStop = errors.New("stop iteration")

	// ErrNullModels is returned by Flatten for a brand whose models value is null
	ErrNullModels = errors.New("models value is null")
)

// ============================================================================
// FLATTENING
// ============================================================================

// Flatten turns the brand -> models document into brand/model records.
// Brands and models keep the order they have in the document.
func Flatten(carsJSON []byte) ([]CarRecord, error) {
	if err := expectObject(carsJSON); err != nil {
		return nil, fmt.Errorf("cars dataset: %w", err)
	}

	records := []CarRecord{}
	err := jsonparser.ObjectEach(carsJSON, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		brand, err := jsonparser.ParseString(key)
		if err != nil {
			return fmt.Errorf("brand key %q: %w", key, err)
		}

		models, err := modelNames(value, dataType)
		if err != nil {
			return fmt.Errorf("models of %s: %w", brand, err)
		}
		for _, model := range models {
			records = append(records, CarRecord{Brand: brand, Model: model})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cars dataset: %w", err)
	}

	return records, nil
}

// modelNames decodes a single brand entry according to its kind
func modelNames(value []byte, dataType jsonparser.ValueType) ([]string, error) {
	switch KindOf(dataType) {
	case ArrayOfNames:
		var names []string
		var elemErr error
		_, err := jsonparser.ArrayEach(value, func(elem []byte, elemType jsonparser.ValueType, _ int, err error) {
			if elemErr != nil {
				return
			}
			if err != nil {
				elemErr = err
				return
			}
			name, err := scalarText(elem, elemType)
			if err != nil {
				elemErr = err
				return
			}
			names = append(names, name)
		})
		if err != nil {
			return nil, err
		}
		return names, elemErr

	case MapOfNames:
		var names []string
		err := jsonparser.ObjectEach(value, func(key, _ []byte, _ jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			names = append(names, name)
			return nil
		})
		return names, err

	case ScalarName:
		name, err := scalarText(value, dataType)
		if err != nil {
			return nil, err
		}
		return []string{name}, nil
	}

	return nil, ErrNullModels
}

// scalarText renders a value the way it reads in text: strings unescaped,
// everything else as its JSON literal
func scalarText(value []byte, dataType jsonparser.ValueType) (string, error) {
	if dataType == jsonparser.String {
		return jsonparser.ParseString(value)
	}
	return string(value), nil
}

// ============================================================================
// FILTERING
// ============================================================================

// Filter keeps the records whose "<brand> <model>" contains q, ignoring case
func Filter(records []CarRecord, q string) []CarRecord {
	query := strings.ToLower(q)
	results := []CarRecord{}
	for _, car := range records {
		if strings.Contains(strings.ToLower(car.Brand+" "+car.Model), query) {
			results = append(results, car)
		}
	}
	return results
}

// FindCountry returns the first country (document order) whose name contains
// name, ignoring case. It returns nil when nothing matches.
func FindCountry(countriesJSON []byte, name string) (*CountryInfo, error) {
	if err := expectObject(countriesJSON); err != nil {
		return nil, fmt.Errorf("countries dataset: %w", err)
	}

	needle := strings.ToLower(name)
	var found *CountryInfo
	err := jsonparser.ObjectEach(countriesJSON, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		country, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		if !strings.Contains(strings.ToLower(country), needle) {
			return nil
		}
		found = &CountryInfo{
			Country: country,
			Cities:  rawValue(value, dataType),
		}
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, fmt.Errorf("countries dataset: %w", err)
	}

	return found, nil
}

// rawValue restores the quotes jsonparser strips from string values
func rawValue(value []byte, dataType jsonparser.ValueType) json.RawMessage {
	if dataType == jsonparser.String {
		raw := make([]byte, 0, len(value)+2)
		raw = append(raw, '"')
		raw = append(raw, value...)
		raw = append(raw, '"')
		return raw
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

// expectObject checks the whole document before any partial walk of it
func expectObject(data []byte) error {
	if !json.Valid(data) {
		return errors.New("invalid JSON")
	}
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return err
	}
	if dataType != jsonparser.Object {
		return fmt.Errorf("expected a JSON object, got %s", dataType)
	}
	return nil
}
