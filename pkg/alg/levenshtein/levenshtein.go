// Copyright (c) 2015, Arbo von Monkiewitsch All rights reserved.
// Use of this source code is governed by a BSD-style
// license.

// Package levenshtein calculates the Levenshtein edit distance between strings
// and the normalized label similarity used by the leaf matcher.
//
// Labels compared by the leaf matcher are short and usually share a prefix or
// a suffix, so Distance strips both before doing any work and runs the
// bit-parallel algorithm whenever the shorter remainder fits in a word.
package levenshtein

// wordBits is the longest pattern the bit-parallel path can handle.
const wordBits = 64

// Context is the object which allows to calculate the Levenshtein distance
// with Distance() method. Reusing a Context avoids per-call allocations.
// Not safe for concurrent use.
type Context struct {
	masks map[rune]uint64
	row   []int
}

// Distance calculates the Levenshtein distance between two strings which
// is defined as the minimum number of edits needed to transform one string
// into the other, with the allowable edit operations being insertion, deletion,
// or substitution of a single character.
func (ctx *Context) Distance(str1, str2 string) int {
	if str1 == str2 {
		return 0
	}

	pattern, text := trimCommon([]rune(str1), []rune(str2))
	if len(pattern) > len(text) {
		pattern, text = text, pattern
	}

	switch {
	case len(pattern) == 0:
		return len(text)
	case len(pattern) <= wordBits:
		return ctx.bitParallel(pattern, text)
	default:
		return ctx.rowDP(pattern, text)
	}
}

// Similarity returns 1 - distance/max(len) in [0, 1]. Two empty strings are
// fully similar.
func (ctx *Context) Similarity(str1, str2 string) float64 {
	if str1 == str2 {
		return 1
	}

	longest := max(len([]rune(str1)), len([]rune(str2)))

	return 1 - float64(ctx.Distance(str1, str2))/float64(longest)
}

// trimCommon drops the shared prefix and suffix, which never contribute to
// the distance.
func trimCommon(a, b []rune) (trimmedA, trimmedB []rune) {
	for len(a) > 0 && len(b) > 0 && a[0] == b[0] {
		a, b = a[1:], b[1:]
	}

	for len(a) > 0 && len(b) > 0 && a[len(a)-1] == b[len(b)-1] {
		a, b = a[:len(a)-1], b[:len(b)-1]
	}

	return a, b
}

// bitParallel is Myers' algorithm in Hyyrö's formulation: one machine word
// holds the vertical deltas of a whole column of the edit matrix.
// len(pattern) must be in [1, wordBits].
func (ctx *Context) bitParallel(pattern, text []rune) int {
	if ctx.masks == nil {
		ctx.masks = make(map[rune]uint64, wordBits)
	}

	clear(ctx.masks)

	for i, r := range pattern {
		ctx.masks[r] |= 1 << i
	}

	last := uint64(1) << (len(pattern) - 1)
	pv, mv := ^uint64(0), uint64(0)
	dist := len(pattern)

	for _, r := range text {
		eq := ctx.masks[r]
		xv := eq | mv
		xh := (((eq & pv) + pv) ^ pv) | eq
		ph := mv | ^(xh | pv)
		mh := pv & xh

		switch {
		case ph&last != 0:
			dist++
		case mh&last != 0:
			dist--
		}

		ph = ph<<1 | 1
		mh <<= 1
		pv = mh | ^(xv | ph)
		mv = ph & xv
	}

	return dist
}

// rowDP is the classic dynamic program over one row indexed by pattern.
func (ctx *Context) rowDP(pattern, text []rune) int {
	if cap(ctx.row) < len(pattern)+1 {
		ctx.row = make([]int, len(pattern)+1)
	}

	row := ctx.row[:len(pattern)+1]
	for i := range row {
		row[i] = i
	}

	for j, tr := range text {
		diag := row[0]
		row[0] = j + 1

		for i, pr := range pattern {
			up := row[i+1]

			sub := diag
			if pr != tr {
				sub++
			}

			row[i+1] = min(up+1, row[i]+1, sub)
			diag = up
		}
	}

	return row[len(pattern)]
}
