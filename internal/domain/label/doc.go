// Package label contains the shipping label domain model: the record a label is
// rendered from and the fixed physical page it is printed on.
package label
