package tracker

import "sort"

// SortForDisplay orders apps by status priority, then newest first. Equal
// timestamps fall back to ascending ID.
func SortForDisplay(apps []Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return displayLess(&apps[i], &apps[j])
	})
}

func displayLess(a, b *Application) bool {
	ra, rb := PriorityRank(a.Status), PriorityRank(b.Status)
	if ra != rb {
		return ra < rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortJobBoards orders boards by last visit, oldest first, with boards
// never visited ahead of all others.
func SortJobBoards(boards []JobBoard) {
	sort.SliceStable(boards, func(i, j int) bool {
		a, b := boards[i].LastVisited, boards[j].LastVisited
		switch {
		case a == nil && b == nil:
			return boards[i].ID < boards[j].ID
		case a == nil:
			return true
		case b == nil:
			return false
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return boards[i].ID < boards[j].ID
	})
}
