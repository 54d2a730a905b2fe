package shard

import (
	"reflect"
	"testing"
)

func TestMapping(t *testing.T) {
	a, b := FromValue("a"), FromValue("b")
	m := NewMapping()

	if err := m.Add("a", a, false); err != nil {
		t.Fatal(err)
	}
	assertErrorIs(t, m.Add("a", b, false), ErrConflict, "Add existing id")
	if err := m.Add("a", b, true); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get("a"); got != Shard(b) {
		t.Fatal("replaceOK Add should replace")
	}
	if err := m.Add("z", a, false); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(m.IDs(), []string{"a", "z"}) || m.Len() != 2 {
		t.Fatalf("unexpected ids %v", m.IDs())
	}

	popped, err := m.Pop("z")
	if err != nil || popped != Shard(a) {
		t.Fatalf("Pop(z) = %v, %v", popped, err)
	}
	if m.Has("z") {
		t.Fatal("Pop should remove")
	}

	_, err = m.Pop("missing")
	assertErrorIs(t, err, ErrNotFound, "Pop(missing)")
	assertErrorIs(t, m.Remove("missing"), ErrNotFound, "Remove(missing)")
	_, err = m.Get("missing")
	assertErrorIs(t, err, ErrNotFound, "Get(missing)")

	data := m.Data()
	delete(data, "a")
	if !m.Has("a") {
		t.Fatal("Data must return a copy")
	}
}

func TestList(t *testing.T) {
	a, b, c := FromValue("a"), FromValue("b"), FromValue("c")
	l := NewList(a)

	if err := l.Append(c); err != nil {
		t.Fatal(err)
	}
	if err := l.Insert(1, b); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, l.Data(), a, b, c)

	assertErrorIs(t, l.Insert(5, a), ErrOutOfRange, "Insert past end")
	assertErrorIs(t, l.Append(nil), ErrMalformed, "Append(nil)")

	last, err := l.Pop(-1)
	if err != nil || last != Shard(c) {
		t.Fatalf("Pop(-1) = %v, %v", last, err)
	}
	if err := l.Remove(0); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, l.Data(), b)

	_, err = l.Pop(3)
	assertErrorIs(t, err, ErrOutOfRange, "Pop(3)")
	_, err = l.Get(1)
	assertErrorIs(t, err, ErrOutOfRange, "Get(1)")
	if l.Len() != 1 {
		t.Fatalf("expected 1 shard, got %d", l.Len())
	}
}

func TestCollectionsBuildComposites(t *testing.T) {
	store, _ := setupTestStore(t)
	m := NewMapping()
	l := NewList()
	for _, name := range []string{"x", "y"} {
		leaf := createLeaf(t, store, name, name)
		if err := m.Add(name, leaf, false); err != nil {
			t.Fatal(err)
		}
		if err := l.Append(leaf); err != nil {
			t.Fatal(err)
		}
	}

	d, err := store.CreateDict(m.Data(), "file:///shards/m.json", false)
	if err != nil {
		t.Fatal(err)
	}
	tup, err := store.CreateTuple(l.Data(), "file:///shards/l.json", false)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 || tup.Len() != 2 {
		t.Fatalf("unexpected sizes %d %d", d.Len(), tup.Len())
	}
}
