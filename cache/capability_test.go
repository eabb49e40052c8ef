package cache

import (
	"context"
	"reflect"
	"testing"
)

type plainValue struct{}

type valueCacheable struct{}

func (valueCacheable) Cache(context.Context, *Facade, string, TTL) error { return nil }

type pointerCacheable struct{}

func (*pointerCacheable) Cache(context.Context, *Facade, string, TTL) error { return nil }

type modelLike struct{ pointerCacheable }

func (*modelLike) CacheKey() string                 { return "modelLike" }
func (*modelLike) SyncCache(context.Context) error  { return nil }
func (*modelLike) FlushCache(context.Context) error { return nil }
func (*modelLike) IsAutoCacheSyncEnabled() bool     { return true }

func TestIsCacheableClass(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{name: "nil", input: nil, want: false},
		{name: "plain struct", input: plainValue{}, want: false},
		{name: "string", input: "users", want: false},
		{name: "value receiver", input: valueCacheable{}, want: true},
		{name: "pointer receiver via value", input: pointerCacheable{}, want: true},
		{name: "pointer receiver via pointer", input: &pointerCacheable{}, want: true},
		{name: "collection", input: NewCollection(1, 2), want: true},
		{name: "type of cacheable", input: reflect.TypeOf(valueCacheable{}), want: true},
		{name: "type of plain struct", input: reflect.TypeOf(plainValue{}), want: false},
		{name: "model", input: &modelLike{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCacheableClass(tt.input); got != tt.want {
				t.Errorf("IsCacheableClass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCacheableModel(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{name: "nil", input: nil, want: false},
		{name: "plain struct", input: plainValue{}, want: false},
		{name: "cacheable but not a model", input: valueCacheable{}, want: false},
		{name: "collection", input: NewCollection("a"), want: false},
		{name: "model pointer", input: &modelLike{}, want: true},
		{name: "model value", input: modelLike{}, want: true},
		{name: "model type", input: reflect.TypeOf(modelLike{}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCacheableModel(tt.input); got != tt.want {
				t.Errorf("IsCacheableModel() = %v, want %v", got, tt.want)
			}
		})
	}
}
