// Package dlist implements the intrusive circular doubly-linked list
// primitive used by the sequence timer's FIFO buckets (spec §4.A).
//
// This generalizes original_source/common/db_list.h: a header-sentinel
// circular list with O(1) Init/PushBack/Remove, where removing a node
// nulls its links so a double-remove is detectable rather than
// silently corrupting the list. The original recovers the enclosing
// struct from an embedded node via container-of pointer arithmetic
// (offsetof); spec §9 calls out a generic node parameterized on its
// containing type as the idiomatic replacement in a safety-focused
// language, so Elem carries its Value directly instead of requiring
// unsafe container-of math.
package dlist

// Elem is the intrusive node embedded in list members, carrying the
// payload directly. A zero Elem is not on any list.
type Elem[T any] struct {
	prev, next *Elem[T]
	Value      T
}

// Linked reports whether e is currently attached to a list.
func (e *Elem[T]) Linked() bool {
	return e.prev != nil || e.next != nil
}

// List is a circular, header-sentinel doubly-linked list of Elem[T].
// The zero value is not usable; call Init first (or use New).
type List[T any] struct {
	head Elem[T]
}

// New returns an initialized empty List.
func New[T any]() *List[T] {
	l := &List[T]{}
	l.Init()
	return l
}

// Init (re-)initializes the list to empty. Equivalent to db_list_init.
func (l *List[T]) Init() {
	l.head.prev = &l.head
	l.head.next = &l.head
}

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool {
	return l.head.next == &l.head
}

// PushBack appends e to the tail of the list. Equivalent to
// db_list_add_tail. e must not already be linked.
func (l *List[T]) PushBack(e *Elem[T]) {
	last := l.head.prev
	e.prev = last
	e.next = &l.head
	last.next = e
	l.head.prev = e
}

// Remove detaches e from whatever list it is on and nulls its links,
// making a subsequent double-remove detectable (a nil-pointer
// dereference on the next operation) rather than silent corruption.
// Equivalent to db_list_del.
func (l *List[T]) Remove(e *Elem[T]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

// Front returns the first element, or nil if the list is empty.
func (l *List[T]) Front() *Elem[T] {
	if l.Empty() {
		return nil
	}
	return l.head.next
}

// Next returns the element following e, or nil if e is the last
// element (i.e. the next link is the sentinel head).
func (l *List[T]) Next(e *Elem[T]) *Elem[T] {
	if e.next == &l.head {
		return nil
	}
	return e.next
}
