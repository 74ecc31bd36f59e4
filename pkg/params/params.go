// Package params provides typed access to acquisition and reconstruction
// parameters by name.
//
// The engine only depends on the Store interface. Map is an in-memory
// implementation that can be filled by hand or loaded from a YAML document
// mapping parameter names to scalars or sequences:
//
//	RECO_size: [32, 32, 16]
//	RECO_fov: [2.4, 2.4, 1.2]
//	PVM_MPI_NrFrequencyComponents: 817
//	ACQ_institution: Example Lab
package params

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store looks up typed parameter values by name. Missing values, indices
// outside an array and values that cannot be converted yield the zero value.
type Store interface {
	Int(name string) int
	IntAt(name string, index int) int
	Float(name string) float64
	FloatAt(name string, index int) float64
	String(name string) string
	StringAt(name string, index int) string
	IsArray(name string) bool
	Dimension(name string) int
	Has(name string) bool
}

// Map is a Store backed by decoded YAML values.
type Map map[string]any

var _ Store = Map(nil)

// LoadYAML reads a parameter document from path.
func LoadYAML(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read parameter file %s: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a parameter document.
func ParseYAML(data []byte) (Map, error) {
	m := Map{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse parameter document: %w", err)
	}
	return m, nil
}

// Has reports whether a parameter with this name exists.
func (m Map) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// IsArray reports whether the parameter holds a sequence.
func (m Map) IsArray(name string) bool {
	_, ok := m[name].([]any)
	return ok
}

// Dimension returns the number of elements of an array parameter, 1 for a
// scalar and 0 for a missing parameter.
func (m Map) Dimension(name string) int {
	v, ok := m[name]
	if !ok {
		return 0
	}
	if a, ok := v.([]any); ok {
		return len(a)
	}
	return 1
}

// Int returns a scalar parameter as int.
func (m Map) Int(name string) int {
	return toInt(m.scalar(name))
}

// IntAt returns element index of an array parameter as int.
func (m Map) IntAt(name string, index int) int {
	return toInt(m.element(name, index))
}

// Float returns a scalar parameter as float64.
func (m Map) Float(name string) float64 {
	return toFloat(m.scalar(name))
}

// FloatAt returns element index of an array parameter as float64.
func (m Map) FloatAt(name string, index int) float64 {
	return toFloat(m.element(name, index))
}

// String returns a scalar parameter as string.
func (m Map) String(name string) string {
	return toString(m.scalar(name))
}

// StringAt returns element index of an array parameter as string.
func (m Map) StringAt(name string, index int) string {
	return toString(m.element(name, index))
}

func (m Map) scalar(name string) any {
	v := m[name]
	if _, ok := v.([]any); ok {
		return nil
	}
	return v
}

// element treats a scalar as a one-element array.
func (m Map) element(name string, index int) any {
	v, ok := m[name]
	if !ok || index < 0 {
		return nil
	}
	a, ok := v.([]any)
	if !ok {
		if index == 0 {
			return v
		}
		return nil
	}
	if index >= len(a) {
		return nil
	}
	return a[index]
}

func toInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint64:
		return int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		// YAML turns bare Yes/No into booleans for some producers
		if x {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
