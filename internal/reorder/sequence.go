package reorder

// Item is the position-bearing view of a task or list.
type Item struct {
	ID          string `json:"id"`
	ContainerID string `json:"container_id"`
	Position    int    `json:"position"`
}

// Update is one persisted (id -> position, container) change.
type Update struct {
	ID          string
	ContainerID string
	Position    int
}

// Plan is the outcome of planning a move: the new dense sequences and the
// subset of rows whose stored values differ from them.
type Plan struct {
	Destination []Item
	Source      []Item
	Updates     []Update
}

// Clamp bounds an insertion index to [0, length].
func Clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// PlanMove computes the sequences after moving moved to index inside the
// destination container. destination and source must be ordered by position.
// source is ignored when the move stays inside one container.
func PlanMove(moved Item, index int, destinationID string, destination, source []Item) Plan {
	crossContainer := moved.ContainerID != destinationID

	working := make([]Item, 0, len(destination)+1)
	for _, it := range destination {
		if it.ID != moved.ID {
			working = append(working, it)
		}
	}

	at := Clamp(index, len(working))
	working = append(working, Item{})
	copy(working[at+1:], working[at:])
	working[at] = moved

	var plan Plan
	plan.Destination, plan.Updates = renumber(working, destinationID, plan.Updates)

	if crossContainer {
		remaining := make([]Item, 0, len(source))
		for _, it := range source {
			if it.ID != moved.ID {
				remaining = append(remaining, it)
			}
		}
		plan.Source, plan.Updates = renumber(remaining, moved.ContainerID, plan.Updates)
	}

	return plan
}

// PlanCompact renumbers a single container 0..n-1 in its current order.
func PlanCompact(containerID string, items []Item) Plan {
	var plan Plan
	plan.Destination, plan.Updates = renumber(items, containerID, nil)
	return plan
}

// IsDense reports whether the positions of items are exactly 0..n-1 in order.
func IsDense(items []Item) bool {
	for i, it := range items {
		if it.Position != i {
			return false
		}
	}
	return true
}

func renumber(items []Item, containerID string, updates []Update) ([]Item, []Update) {
	out := make([]Item, len(items))
	for i, it := range items {
		if it.Position != i || it.ContainerID != containerID {
			updates = append(updates, Update{ID: it.ID, ContainerID: containerID, Position: i})
		}
		out[i] = Item{ID: it.ID, ContainerID: containerID, Position: i}
	}
	return out, updates
}
