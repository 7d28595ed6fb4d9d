// Package orders holds the order queue: loading it from its sources and the
// table view-model the terminal UI renders.
package orders
