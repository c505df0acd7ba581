// Package list implements a minimal generic doubly linked list, used as the
// FIFO registry behind the transaction reaper and as the backing queue for
// the journal writer.
package list

// List is a doubly linked list of T.
type List[T any] struct {
	head *Link[T]
	tail *Link[T]
}

// Len walks the list and counts its links. O(n); callers that need the
// count on a hot path should track it themselves.
func (list *List[T]) Len() int {
	n := 0
	for link := list.head; link != nil; link = link.next {
		n++
	}
	return n
}

// NewList creates a new empty list.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// PeekHead returns a pointer to the head of the list, or nil if empty.
func (list *List[T]) PeekHead() *Link[T] {
	return list.head
}

// PeekTail returns a pointer to the tail of the list, or nil if empty.
func (list *List[T]) PeekTail() *Link[T] {
	return list.tail
}

// PushHead adds an element to the start of the list. Returns the added link.
func (list *List[T]) PushHead(value T) *Link[T] {
	newlink := &Link[T]{list, nil, list.head, value}
	if list.head != nil {
		list.head.prev = newlink
	}
	list.head = newlink
	if list.tail == nil {
		list.tail = newlink
	}
	return newlink
}

// PushTail adds an element to the end of the list. Returns the added link.
func (list *List[T]) PushTail(value T) *Link[T] {
	newlink := &Link[T]{list, list.tail, nil, value}
	if list.tail != nil {
		list.tail.next = newlink
	}
	list.tail = newlink
	if list.head == nil {
		list.head = newlink
	}
	return newlink
}

// Find returns the first link for which f evaluates to true, or nil.
func (list *List[T]) Find(f func(*Link[T]) bool) *Link[T] {
	for link := list.head; link != nil; link = link.next {
		if f(link) {
			return link
		}
	}
	return nil
}

// Map applies f to every element in the list, in head-to-tail order. f may
// call PopSelf on the link it's given; Map has already advanced to the next
// link by the time f runs, so that's safe.
func (list *List[T]) Map(f func(*Link[T])) {
	link := list.head
	for link != nil {
		next := link.next
		f(link)
		link = next
	}
}

// Link is one element of a List.
type Link[T any] struct {
	list  *List[T]
	prev  *Link[T]
	next  *Link[T]
	value T
}

// GetList returns the list that this link is a part of, or nil if it has
// been popped.
func (link *Link[T]) GetList() *List[T] {
	return link.list
}

// GetValue returns the link's value.
func (link *Link[T]) GetValue() T {
	return link.value
}

// SetValue sets the link's value.
func (link *Link[T]) SetValue(value T) {
	link.value = value
}

// GetPrev returns the link's predecessor, or nil at the head.
func (link *Link[T]) GetPrev() *Link[T] {
	return link.prev
}

// GetNext returns the link's successor, or nil at the tail.
func (link *Link[T]) GetNext() *Link[T] {
	return link.next
}

// PopSelf removes the link from its list.
/*
Cases to consider:
- If PopSelf() is called by the only link in a list
- If PopSelf() is called by the tail link in a list
- If PopSelf() is called by the head link in a list
- If PopSelf() is called by a link in the middle of a list
*/
func (link *Link[T]) PopSelf() {
	if link.prev == nil && link.next == nil {
		link.list.head = nil
		link.list.tail = nil
		link.list = nil
	} else if link.prev == nil {
		link.next.prev = nil
		link.list.head = link.next
		link.list = nil
		link.next = nil
	} else if link.next == nil {
		link.prev.next = nil
		link.list.tail = link.prev
		link.list = nil
		link.prev = nil
	} else {
		prevlink := link.prev
		prevlink.next = link.next
		link.prev.next = link.next
		link.next.prev = prevlink
		link.list = nil
		link.next = nil
		link.prev = nil
	}
}
