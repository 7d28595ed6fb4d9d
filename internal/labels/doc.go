// Package labels requests shipping labels from the label server and remembers
// which tracking numbers already have one.
package labels
