package fieldmatch

import (
	"reflect"
	"testing"
)

type audit struct {
	CreatedBy string `bun:"created_by"`
}

type post struct {
	audit
	ID       int64  `bun:"id,pk"`
	Slug     string `json:"slug"`
	AuthorID string
	Title    string `msgpack:"headline"`
	Draft    *bool
	secret   string
}

func TestUnderscore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ID", "id"},
		{"Slug", "slug"},
		{"AuthorID", "author_id"},
		{"HTTPStatus", "http_status"},
		{"Line2Total", "line2_total"},
		{"already_snake", "already_snake"},
	}

	for _, tt := range tests {
		if got := Underscore(tt.in); got != tt.want {
			t.Errorf("Underscore(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestField(t *testing.T) {
	draft := true
	p := &post{
		audit:    audit{CreatedBy: "ops"},
		ID:       7,
		Slug:     "hello",
		AuthorID: "a-1",
		Title:    "Hello",
		Draft:    &draft,
		secret:   "x",
	}

	tests := []struct {
		name  string
		field string
		want  any
		found bool
	}{
		{"go field name", "Slug", "hello", true},
		{"json tag", "slug", "hello", true},
		{"bun tag", "id", int64(7), true},
		{"msgpack tag", "headline", "Hello", true},
		{"snake column", "author_id", "a-1", true},
		{"case folded", "authorid", "a-1", true},
		{"promoted field", "created_by", "ops", true},
		{"unexported field", "secret", nil, false},
		{"unknown field", "missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv, ok := Field(reflect.ValueOf(p), tt.field)
			if ok != tt.found {
				t.Fatalf("Field(%q) found = %v, want %v", tt.field, ok, tt.found)
			}
			if ok && fv.Interface() != tt.want {
				t.Errorf("Field(%q) = %v, want %v", tt.field, fv.Interface(), tt.want)
			}
		})
	}
}

func TestField_Map(t *testing.T) {
	record := map[string]any{"id": 1, "slug": "a"}

	fv, ok := Field(reflect.ValueOf(record), "slug")
	if !ok {
		t.Fatal("expected slug to be found in map record")
	}
	if fv.Interface() != "a" {
		t.Errorf("expected slug a, got %v", fv.Interface())
	}

	if _, ok := Field(reflect.ValueOf(record), "title"); ok {
		t.Error("expected title to be absent")
	}
}

func TestField_NilPointer(t *testing.T) {
	var p *post
	if _, ok := Field(reflect.ValueOf(p), "Slug"); ok {
		t.Error("expected nil record to have no fields")
	}
}

func TestColumn(t *testing.T) {
	typ := reflect.TypeOf(&post{})

	tests := []struct {
		name string
		want string
	}{
		{"ID", "id"},
		{"slug", "slug"},
		{"AuthorID", "author_id"},
		{"headline", "title"},
		{"unknown_field", "unknown_field"},
	}

	for _, tt := range tests {
		if got := Column(typ, tt.name); got != tt.want {
			t.Errorf("Column(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	draft := false

	tests := []struct {
		name  string
		field any
		want  any
		equal bool
	}{
		{"string match", "a", "a", true},
		{"string mismatch", "a", "b", false},
		{"int against route segment", int64(7), "7", true},
		{"bool pointer", &draft, "false", true},
		{"nil pointer against nil", (*bool)(nil), nil, true},
		{"nil pointer against value", (*bool)(nil), "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(reflect.ValueOf(tt.field), tt.want); got != tt.equal {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.field, tt.want, got, tt.equal)
			}
		})
	}
}
