package trivia

import (
	"math/rand"
	"sort"
)

// CategoryRandom asks the API for questions across all categories.
const CategoryRandom = "random"

// categoryIDs maps category names to the numeric ids the question API
// expects.
var categoryIDs = map[string]int{
	"general":     9,
	"books":       10,
	"film":        11,
	"music":       12,
	"theatre":     13,
	"television":  14,
	"video_games": 15,
	"board_games": 16,
	"science":     17,
	"computers":   18,
	"mathematics": 19,
	"mythology":   20,
	"sports":      21,
	"geography":   22,
	"history":     23,
	"politics":    24,
	"art":         25,
	"celebrities": 26,
	"animals":     27,
	"vehicles":    28,
	"comics":      29,
	"gadgets":     30,
	"anime_manga": 31,
	"cartoons":    32,
}

// CategoryNames returns all known category names in a stable order.
func CategoryNames() []string {
	names := make([]string, 0, len(categoryIDs))
	for name := range categoryIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryID resolves a category name to its API id.
func CategoryID(name string) (int, bool) {
	id, ok := categoryIDs[name]
	return id, ok
}

// RandomCategory picks a category name using the given source.
func RandomCategory(rnd *rand.Rand) string {
	names := CategoryNames()
	return names[rnd.Intn(len(names))]
}
