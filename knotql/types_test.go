package knotql

import (
	"fmt"
	"reflect"
	"testing"
)

func TestTypeSum(t *testing.T) {
	tests := []struct {
		t1   Type
		t2   Type
		want Type
	}{
		{
			t1:   Int,
			t2:   Int,
			want: Int,
		},
		{
			t1:   Int,
			t2:   String,
			want: TypeSum(Int, String),
		},
		{
			t1:   TypeSum(Int, String),
			t2:   String,
			want: TypeSum(Int, String),
		},
		{
			t1:   Null,
			t2:   Int,
			want: TypeSum(Null, Int),
		},
		{
			t1:   Any,
			t2:   Int,
			want: Any,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got := TypeSum(tt.t1, tt.t2)
			if got.Is(tt.want) != TypeRelationIs || tt.want.Is(got) != TypeRelationIs {
				t.Errorf("TypeSum(%s, %s) = %s, want %s", tt.t1, tt.t2, got, tt.want)
			}
		})
	}
}

func TestTypeIntersection(t *testing.T) {
	some := func(t Type) *Type {
		return &t
	}

	tests := []struct {
		t1   Type
		t2   Type
		want *Type
	}{
		{
			t1:   String,
			t2:   String,
			want: some(String),
		},
		{
			t1:   Int,
			t2:   String,
			want: nil,
		},
		{
			t1:   TypeSum(Boolean, Time),
			t2:   TypeSum(Time, Int),
			want: some(Time),
		},
		{
			t1:   TypeSum(Boolean, Time),
			t2:   TypeSum(String, Int),
			want: nil,
		},
		{
			t1:   Any,
			t2:   Int,
			want: some(Int),
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if got := TypeIntersection(tt.t1, tt.t2); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TypeIntersection(%s, %s) = %s, want %s", tt.t1, tt.t2, got, tt.want)
			}
		})
	}
}

func TestTypeIs(t *testing.T) {
	tests := []struct {
		t1   Type
		t2   Type
		want TypeRelation
	}{
		{Int, Int, TypeRelationIs},
		{Int, Any, TypeRelationIs},
		{Int, String, TypeRelationIsnt},
		{Int, TypeSum(Int, String), TypeRelationIs},
		{TypeSum(Int, String), Int, TypeRelationMaybe},
		{ListOf(Int), ListOf(Int), TypeRelationIs},
		{ListOf(Int), ListOf(String), TypeRelationIsnt},
		{
			StructOf([]StructField{{Name: "x", Type: Int}}),
			StructOf([]StructField{{Name: "x", Type: Int}}),
			TypeRelationIs,
		},
		{
			StructOf([]StructField{{Name: "x", Type: Int}}),
			StructOf([]StructField{{Name: "y", Type: Int}}),
			TypeRelationIsnt,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if got := tt.t1.Is(tt.t2); got != tt.want {
				t.Errorf("(%s).Is(%s) = %d, want %d", tt.t1, tt.t2, got, tt.want)
			}
		})
	}
}
