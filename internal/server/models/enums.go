package models

import (
	"encoding/json"
	"fmt"
)

// EntryPriority and EntryType are closed enumerations. Each has three
// representations kept explicitly distinct: the Go constant used in
// application code, a small integer stored in the database, and a symbolic
// name used on the wire. Unknown names or integers are rejected, never
// coerced.

type EntryPriority int

const (
	PriorityHigh   EntryPriority = 1
	PriorityMedium EntryPriority = 2
	PriorityLow    EntryPriority = 3
	PriorityNone   EntryPriority = 9
)

var priorityNames = map[EntryPriority]string{
	PriorityHigh:   "HIGH",
	PriorityMedium: "MEDIUM",
	PriorityLow:    "LOW",
	PriorityNone:   "NONE",
}

var priorityValues = map[string]EntryPriority{
	"HIGH":   PriorityHigh,
	"MEDIUM": PriorityMedium,
	"LOW":    PriorityLow,
	"NONE":   PriorityNone,
}

// ParseEntryPriority maps a wire name to its EntryPriority.
func ParseEntryPriority(name string) (EntryPriority, error) {
	p, ok := priorityValues[name]
	if !ok {
		return 0, fmt.Errorf("unknown priority %q", name)
	}
	return p, nil
}

// EntryPriorityFromInt maps a stored integer to its EntryPriority.
func EntryPriorityFromInt(v int) (EntryPriority, error) {
	p := EntryPriority(v)
	if _, ok := priorityNames[p]; !ok {
		return 0, fmt.Errorf("unknown priority value %d", v)
	}
	return p, nil
}

func (p EntryPriority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("EntryPriority(%d)", int(p))
}

// MarshalJSON serializes the priority by name, e.g. "HIGH".
func (p EntryPriority) MarshalJSON() ([]byte, error) {
	name, ok := priorityNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown priority value %d", int(p))
	}
	return json.Marshal(name)
}

// UnmarshalJSON accepts only the symbolic names of the enumeration.
func (p *EntryPriority) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	v, err := ParseEntryPriority(name)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type EntryType int

const (
	TypeBullet EntryType = 1
	TypeTask   EntryType = 2
)

var typeNames = map[EntryType]string{
	TypeBullet: "BULLET",
	TypeTask:   "TASK",
}

var typeValues = map[string]EntryType{
	"BULLET": TypeBullet,
	"TASK":   TypeTask,
}

// ParseEntryType maps a wire name to its EntryType.
func ParseEntryType(name string) (EntryType, error) {
	t, ok := typeValues[name]
	if !ok {
		return 0, fmt.Errorf("unknown entry type %q", name)
	}
	return t, nil
}

// EntryTypeFromInt maps a stored integer to its EntryType.
func EntryTypeFromInt(v int) (EntryType, error) {
	t := EntryType(v)
	if _, ok := typeNames[t]; !ok {
		return 0, fmt.Errorf("unknown entry type value %d", v)
	}
	return t, nil
}

func (t EntryType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EntryType(%d)", int(t))
}

// MarshalJSON serializes the type by name, e.g. "TASK".
func (t EntryType) MarshalJSON() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown entry type value %d", int(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON accepts only the symbolic names of the enumeration.
func (t *EntryType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("entry type must be a string: %w", err)
	}
	v, err := ParseEntryType(name)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
