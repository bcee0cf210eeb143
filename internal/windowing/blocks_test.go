package windowing_test

import (
	"testing"

	"github.com/petasbytes/fsagent/internal/windowing"
	"github.com/petasbytes/fsagent/memory"
)

func kinds(groups []windowing.Group) []windowing.GroupKind {
	out := make([]windowing.GroupKind, len(groups))
	for i, g := range groups {
		out[i] = g.Kind
	}
	return out
}

func TestGroupMessages(t *testing.T) {
	S, X := windowing.GroupSingleton, windowing.GroupToolExchange
	cases := []struct {
		name string
		msgs []memory.Message
		want []windowing.GroupKind
		ends []int
	}{
		{"text only", []memory.Message{User("a"), Text("b")}, []windowing.GroupKind{S, S}, []int{1, 2}},
		{"single exchange", []memory.Message{User("a"), Call("1"), Result("1", "r")}, []windowing.GroupKind{S, X}, []int{1, 3}},
		{"parallel exchange", []memory.Message{Call("1", "2"), Result("2", "r"), Result("1", "r")}, []windowing.GroupKind{X}, []int{3}},
		{"missing result", []memory.Message{Call("1", "2"), Result("1", "r")}, []windowing.GroupKind{S, S}, []int{1, 2}},
		{"extra result", []memory.Message{Call("1"), Result("1", "r"), Result("9", "r")}, []windowing.GroupKind{X, S}, []int{2, 3}},
		{"foreign result", []memory.Message{Call("1"), Result("9", "r")}, []windowing.GroupKind{S, S}, []int{1, 2}},
		{"call at end", []memory.Message{User("a"), Call("1")}, []windowing.GroupKind{S, S}, []int{1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups := windowing.GroupMessages(tc.msgs)
			got := kinds(groups)
			if len(got) != len(tc.want) {
				t.Fatalf("groups: got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] || groups[i].End != tc.ends[i] {
					t.Fatalf("group %d: got %+v want kind=%v end=%d", i, groups[i], tc.want[i], tc.ends[i])
				}
			}
		})
	}
}
