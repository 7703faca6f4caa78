package transformers

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// Order is the rule that orders learned categories.
type Order string

// Supported category orders.
const (
	// OrderFrequency sorts by count descending, ties by first appearance.
	OrderFrequency  Order = "frequency"
	OrderAppearance Order = "appearance"
	// OrderAlphabetical sorts by the textual form of the value.
	OrderAlphabetical Order = "alphabetical"
)

// Validate checks that o is a known order.
func (o Order) Validate() error {
	switch o {
	case OrderFrequency, OrderAppearance, OrderAlphabetical:
		return nil
	}
	return fmt.Errorf("unknown category order %q", o)
}

// category is one learned category. Key identifies the value across type
// changes introduced by serialization.
type category struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Count int    `json:"count"`
}

// nullKey is the key of the null category.
const nullKey = "<null>"

// categoryKey returns a key that distinguishes values of different types
// with the same textual form.
func categoryKey(v any) string {
	if core.IsNull(v) {
		return nullKey
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// learnCategories counts the column's values, nulls included, and orders them.
func learnCategories(values []any, order Order) []category {
	index := make(map[string]int)
	var cats []category
	for _, v := range values {
		key := categoryKey(v)
		i, ok := index[key]
		if !ok {
			i = len(cats)
			index[key] = i
			if core.IsNull(v) {
				v = nil
			}
			cats = append(cats, category{Key: key, Value: v})
		}
		cats[i].Count++
	}

	switch order {
	case OrderFrequency:
		sort.SliceStable(cats, func(i, j int) bool { return cats[i].Count > cats[j].Count })
	case OrderAlphabetical:
		sort.SliceStable(cats, func(i, j int) bool {
			return fmt.Sprint(cats[i].Value) < fmt.Sprint(cats[j].Value)
		})
	}
	return cats
}

// categoryIndex maps keys to positions.
func categoryIndex(cats []category) map[string]int {
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		index[c.Key] = i
	}
	return index
}
