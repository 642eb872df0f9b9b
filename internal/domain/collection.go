package domain

import "fmt"

// Item is implemented by every nested portfolio entry.
type Item[T any] interface {
	ItemID() ItemID
	WithID(ItemID) T
}

// Collection is an ordered list of nested items edited in place.
type Collection[T Item[T]] []T

// Add appends item under a fresh pending id and returns that id.
func (c *Collection[T]) Add(item T) ItemID {
	id := NewPendingID()
	*c = append(*c, item.WithID(id))
	return id
}

// Replace swaps the item with the given id, keeping its id and position.
func (c Collection[T]) Replace(id ItemID, item T) error {
	for i, existing := range c {
		if existing.ItemID() == id {
			c[i] = item.WithID(id)
			return nil
		}
	}
	return fmt.Errorf("item %s not found", id)
}

// Remove drops the item with the given id. Removing a persisted item means the
// API deletes it when the portfolio is submitted without it.
func (c *Collection[T]) Remove(id ItemID) bool {
	for i, existing := range *c {
		if existing.ItemID() == id {
			*c = append((*c)[:i], (*c)[i+1:]...)
			return true
		}
	}
	return false
}

func (c Collection[T]) Find(id ItemID) (T, bool) {
	for _, existing := range c {
		if existing.ItemID() == id {
			return existing, true
		}
	}
	var zero T
	return zero, false
}

// normalize assigns pending ids to items that arrived without one and turns
// a nil collection into an empty one.
func (c *Collection[T]) normalize() {
	if *c == nil {
		*c = Collection[T]{}
		return
	}
	for i, item := range *c {
		if item.ItemID().IsZero() {
			(*c)[i] = item.WithID(NewPendingID())
		}
	}
}

// PendingCount reports how many items the API has not stored yet.
func (c Collection[T]) PendingCount() int {
	n := 0
	for _, item := range c {
		if item.ItemID().IsPending() {
			n++
		}
	}
	return n
}
