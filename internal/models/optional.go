package models

import "encoding/json"

// OptionalString records whether a JSON field was present at all, so a
// partial update can tell "absent" from an explicit null or "".
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		o.Value = ""
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Some builds a present, non-null value.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// Null builds an explicit null.
func Null() OptionalString {
	return OptionalString{Set: true, Null: true}
}

// TaskInput is the body of a create request.
type TaskInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      OptionalString `json:"status" swaggertype:"string"`
	Priority    OptionalString `json:"priority" swaggertype:"string"`
	DueDate     OptionalString `json:"dueDate" swaggertype:"string"`
}

// TaskPatch is the body of an update request. Only fields with Set are applied.
type TaskPatch struct {
	Title       OptionalString `json:"title" swaggertype:"string"`
	Description OptionalString `json:"description" swaggertype:"string"`
	Status      OptionalString `json:"status" swaggertype:"string"`
	Priority    OptionalString `json:"priority" swaggertype:"string"`
	DueDate     OptionalString `json:"dueDate" swaggertype:"string"`
}

// Empty reports whether the patch carries no fields.
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.Priority.Set && !p.DueDate.Set
}
