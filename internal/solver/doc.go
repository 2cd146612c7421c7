// Package solver answers arithmetic, linear-equation and word-problem
// questions written as text.
//
// Input is lexed into numbers, words and operators, spoken operators are
// rewritten to symbols ("plus", "divided by", "3 x 4"), and a fixed list of
// rules is tried in order. Numeric expressions are evaluated by a small
// recursive-descent parser after a character whitelist check; input is
// never compiled or executed.
//
// Example:
//
//	res := solver.Solve("2x + 3 = 11")
//	// res.Answer == "x = 4"
package solver
