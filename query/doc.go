// Package query holds the dialect-neutral building blocks of the search
// layer: composable predicates applied to bun queries and the paging
// strategies that decide when a total count has to be queried.
package query
