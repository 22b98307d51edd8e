// Package command classifies lines of the kvsd command language into a
// Kind and its operands. It is consumed by pkg/interpreter one command
// at a time and never touches a Store itself.
package command
