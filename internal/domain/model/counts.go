package model

import "sort"

// ValueCount pairs a value with its number of occurrences.
type ValueCount struct {
	Value Value `json:"value"`
	Count int   `json:"count"`
}

// Counts is a frequency table that remembers first-seen order so that every
// iteration over it is deterministic.
type Counts struct {
	order  []Value
	counts map[Value]int
	total  int
}

// CountValues tallies values.
func CountValues(values []Value) *Counts {
	c := &Counts{counts: make(map[Value]int)}
	for _, v := range values {
		c.Add(v)
	}
	return c
}

// Add records one occurrence of v. Values equal under Value.Key share a
// tally reported under the first-seen representation.
func (c *Counts) Add(v Value) {
	k := v.Key()
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[k]++
	c.total++
}

// Count returns the occurrences of v.
func (c *Counts) Count(v Value) int { return c.counts[v.Key()] }

// Distinct returns the number of distinct values.
func (c *Counts) Distinct() int { return len(c.order) }

// Total returns the number of values tallied.
func (c *Counts) Total() int { return c.total }

// Values returns distinct values in first-seen order.
func (c *Counts) Values() []Value { return c.order }

// Frequencies returns counts aligned with Values.
func (c *Counts) Frequencies() []int {
	out := make([]int, len(c.order))
	for i, v := range c.order {
		out[i] = c.counts[v.Key()]
	}
	return out
}

// Singletons returns how many values occur exactly once.
func (c *Counts) Singletons() int {
	n := 0
	for _, v := range c.order {
		if c.counts[v.Key()] == 1 {
			n++
		}
	}
	return n
}

// MostCommon returns up to n entries ordered by count descending, ties kept
// in first-seen order. n <= 0 returns every entry.
func (c *Counts) MostCommon(n int) []ValueCount {
	out := make([]ValueCount, len(c.order))
	for i, v := range c.order {
		out[i] = ValueCount{Value: v, Count: c.counts[v.Key()]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
